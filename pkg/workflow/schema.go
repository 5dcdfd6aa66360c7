package workflow

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// documentSchema is the structural gate applied to raw workflow documents
// before strict decoding. Field-level semantics (action enum, step
// references) are checked afterwards with step-aware diagnostics.
var documentSchema = map[string]any{
	"type":     "object",
	"required": []any{"name", "displayName", "description", "template", "steps"},
	"properties": map[string]any{
		"name":           map[string]any{"type": "string", "minLength": 1},
		"displayName":    map[string]any{"type": "string", "minLength": 1},
		"description":    map[string]any{"type": "string"},
		"template":       map[string]any{"type": "string", "minLength": 1},
		"defaultPersona": map[string]any{"type": "string"},
		"metadata":       map[string]any{"type": "object"},
		"steps": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items": map[string]any{
				"type":     "object",
				"required": []any{"id", "name", "action", "description"},
				"properties": map[string]any{
					"id":          map[string]any{"type": "string", "minLength": 1},
					"name":        map[string]any{"type": "string", "minLength": 1},
					"action":      map[string]any{"type": "string"},
					"description": map[string]any{"type": "string"},
					"persona":     map[string]any{"type": "string"},
					"inputs":      map[string]any{"type": "object"},
					"outputs":     map[string]any{"type": "array"},
					"next":        map[string]any{"type": "string"},
				},
			},
		},
	},
}

// validateDocument checks a raw decoded workflow document against the
// structural schema and returns one issue per violation.
func validateDocument(document map[string]any) ([]Issue, error) {
	schemaLoader := gojsonschema.NewGoLoader(documentSchema)
	dataLoader := gojsonschema.NewGoLoader(document)

	result, err := gojsonschema.Validate(schemaLoader, dataLoader)
	if err != nil {
		return nil, fmt.Errorf("failed to run schema validation: %w", err)
	}

	if result.Valid() {
		return nil, nil
	}

	issues := make([]Issue, 0, len(result.Errors()))
	for _, resultErr := range result.Errors() {
		issues = append(issues, Issue{
			Path:   resultErr.Field(),
			Reason: resultErr.Description(),
		})
	}

	return issues, nil
}
