package recognizer

import (
	"google.golang.org/genai"

	"github.com/nlavoie/expensed/constants"
)

// ReceiptJSONSchema is the local contract every scan result must satisfy
// before we trust it. Kept as a generic map so the same document can be
// compiled by the validator.
func ReceiptJSONSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"merchant": map[string]any{"type": "string", "minLength": 1},
			"date":     map[string]any{"type": "string"},
			"total":    map[string]any{"type": "number", "minimum": 0},
			"currency": map[string]any{"type": "string"},
			"category": map[string]any{"type": "string", "enum": constants.AsStringSlice()},
			"items": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"name":     map[string]any{"type": "string", "minLength": 1},
						"quantity": map[string]any{"type": "number"},
						"price":    map[string]any{"type": "number"},
					},
					"required": []string{"name"},
				},
			},
		},
		"required": []string{"merchant", "total", "items"},
	}
}

// responseSchema mirrors ReceiptJSONSchema as a structured-output constraint
// for the model itself.
func responseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"merchant": {Type: genai.TypeString},
			"date":     {Type: genai.TypeString},
			"total":    {Type: genai.TypeNumber},
			"currency": {Type: genai.TypeString},
			"category": {Type: genai.TypeString, Enum: constants.AsStringSlice()},
			"items": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"name":     {Type: genai.TypeString},
						"quantity": {Type: genai.TypeNumber},
						"price":    {Type: genai.TypeNumber},
					},
					Required: []string{"name"},
				},
			},
		},
		Required: []string{"merchant", "total", "items"},
	}
}
