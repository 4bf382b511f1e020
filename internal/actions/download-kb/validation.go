package downloadkb

import (
	"strings"

	"kb-chat/internal/common/errors"
	"kb-chat/internal/common/validation"
)

var inputSchema = validation.MustCompile(map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"name"},
	"properties": map[string]interface{}{
		"name": map[string]interface{}{
			"type":        "string",
			"description": "KB number or a file name containing one",
			"pattern":     `\S`,
		},
		"mode": map[string]interface{}{
			"type": "string",
			"enum": []interface{}{"", string(ModeLink), string(ModeBackend), string(ModeRender)},
		},
	},
})

func validateInput(input *Input) error {
	if input == nil {
		return errors.NewInvalidInputError("name is required")
	}
	res, err := inputSchema.Validate(map[string]interface{}{
		"name": input.Name,
		"mode": string(input.Mode),
	})
	if err != nil {
		return errors.NewInvalidInputError(err.Error())
	}
	if !res.Valid {
		return errors.NewInvalidInputError(strings.Join(res.GetErrorMessages(), "; "))
	}
	return nil
}
