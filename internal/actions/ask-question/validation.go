package askquestion

import (
	"strings"

	"kb-chat/internal/common/errors"
	"kb-chat/internal/common/validation"
)

var inputSchema = validation.MustCompile(map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"question"},
	"properties": map[string]interface{}{
		"question": map[string]interface{}{
			"type":        "string",
			"description": "Question to ask about the indexed documents",
			"pattern":     `\S`,
		},
	},
})

func validateInput(input *Input) error {
	if input == nil {
		return errors.NewInvalidInputError("question is required")
	}
	res, err := inputSchema.Validate(map[string]interface{}{"question": input.Question})
	if err != nil {
		return errors.NewInvalidInputError(err.Error())
	}
	if !res.Valid {
		return errors.NewInvalidInputError(strings.Join(res.GetErrorMessages(), "; "))
	}
	return nil
}
