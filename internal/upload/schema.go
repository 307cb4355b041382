package upload

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// responseSchema is the minimum shape a success payload must have. Metric
// maps are optional and checked per chart. Unknown members of any type are
// accepted; non-object ones are ignored when decoding.
var responseSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"datasetYear":                    map[string]any{"type": "integer"},
		"fileName":                       map[string]any{"type": "string"},
		"message":                        map[string]any{"type": "string"},
		"totalRecordsProcessed":          map[string]any{"type": "integer", "minimum": 0},
		"totalUnpivotedRecordsProcessed": map[string]any{"type": "integer", "minimum": 0},
	},
	"additionalProperties": true,
}

// errorSchema matches the server's structured error body.
var errorSchema = map[string]any{
	"type":     "object",
	"required": []any{"error"},
	"properties": map[string]any{
		"error": map[string]any{"type": "string", "minLength": 1},
	},
}

// CheckPayload validates a raw success body against the response contract.
func CheckPayload(body []byte) error {
	return check(responseSchema, body, "response")
}

func check(schema map[string]any, body []byte, what string) error {
	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(schema), gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("%s is not valid JSON: %w", what, err)
	}
	if result.Valid() {
		return nil
	}
	var details []string
	for _, desc := range result.Errors() {
		details = append(details, desc.String())
	}
	return fmt.Errorf("%s failed validation: %s", what, strings.Join(details, "; "))
}
