package backend

import "kb-chat/internal/common/validation"

// querySchema describes what the client relies on in /api/query responses.
// Fields that fail it are dropped so the turn degrades to defaults.
var querySchema = validation.MustCompile(map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"answer": map[string]interface{}{
			"type": []interface{}{"string", "null"},
		},
		"sources": map[string]interface{}{
			"type":  []interface{}{"array", "null"},
			"items": map[string]interface{}{"type": []interface{}{"object", "null"}},
		},
		"error":    map[string]interface{}{"type": []interface{}{"string", "null"}},
		"detail":   map[string]interface{}{"type": []interface{}{"string", "null"}},
		"file_url": map[string]interface{}{"type": []interface{}{"string", "null"}},
	},
})
