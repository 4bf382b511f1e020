package uploadfiles

import (
	"fmt"
	"strings"

	"kb-chat/internal/common/errors"
	"kb-chat/internal/common/validation"
)

func inputSchema(maxFiles int) *validation.Schema {
	return validation.MustCompile(map[string]interface{}{
		"type":     "object",
		"required": []interface{}{"paths"},
		"properties": map[string]interface{}{
			"paths": map[string]interface{}{
				"type":        "array",
				"description": "Local files to send to the backend for indexing",
				"minItems":    1,
				"maxItems":    maxFiles,
				"items": map[string]interface{}{
					"type":      "string",
					"minLength": 1,
				},
			},
		},
	})
}

func validatePaths(schema *validation.Schema, paths []string) error {
	if len(paths) == 0 {
		return errors.NewInvalidInputError("no files selected")
	}

	items := make([]interface{}, len(paths))
	for i, p := range paths {
		items[i] = p
	}
	res, err := schema.Validate(map[string]interface{}{"paths": items})
	if err != nil {
		return errors.NewInvalidInputError(err.Error())
	}
	if !res.Valid {
		return errors.NewInvalidInputError(fmt.Sprintf("invalid file list: %s", strings.Join(res.GetErrorMessages(), "; ")))
	}
	return nil
}
