package remote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Response schemas, one per endpoint shape.
var schemas = map[string]map[string]any{
	"check-answer": {
		"type":     "object",
		"required": []any{"is_correct"},
		"properties": map[string]any{
			"is_correct":   map[string]any{"type": "boolean"},
			"example_span": map[string]any{"type": []any{"string", "null"}},
		},
	},
	"check-answer-legacy": {
		"type":     "array",
		"minItems": 1,
		"items": map[string]any{
			"type":     "object",
			"required": []any{"success"},
			"properties": map[string]any{
				"success":      map[string]any{"enum": []any{"true", "false", true, false}},
				"example_span": map[string]any{"type": []any{"string", "null"}},
			},
		},
	},
	"add-to-learned": {
		"type":     "object",
		"required": []any{"is_last"},
		"properties": map[string]any{
			"created":      map[string]any{"type": "boolean"},
			"user_word_id": map[string]any{"type": []any{"integer", "string", "null"}},
			"is_last":      map[string]any{"type": "boolean"},
		},
	},
	"edit-field": {
		"type":     "object",
		"required": []any{"success"},
		"properties": map[string]any{
			"success":       map[string]any{"type": "boolean"},
			"changed_field": map[string]any{"type": "string"},
			"old_value":     map[string]any{"type": []any{"string", "null"}},
			"new_value":     map[string]any{"type": []any{"string", "null"}},
			"updated_at":    map[string]any{"type": "string"},
		},
	},
	"success": {
		"type":     "object",
		"required": []any{"success"},
		"properties": map[string]any{
			"success": map[string]any{"type": "boolean"},
		},
	},
	"deck": {
		"type":     "object",
		"required": []any{"cards"},
		"properties": map[string]any{
			"learning_block": map[string]any{"type": "string"},
			"mode":           map[string]any{"type": "string"},
			"cards": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":     "object",
					"required": []any{"id", "prompt"},
					"properties": map[string]any{
						"id":              map[string]any{"type": "string", "minLength": 1},
						"prompt":          map[string]any{"type": "string"},
						"transliteration": map[string]any{"type": "string"},
						"translation":     map[string]any{"type": "string"},
						"options": map[string]any{
							"type":  "array",
							"items": map[string]any{"type": "string"},
						},
					},
				},
			},
		},
	},
	"block-stats": {
		"type":     "object",
		"required": []any{"learning_block", "num_words", "levels"},
		"properties": map[string]any{
			"learning_block": map[string]any{"type": "string"},
			"num_words":      map[string]any{"type": "integer", "minimum": 0},
			"num_learned":    map[string]any{"type": "integer", "minimum": 0},
			"mastery_level":  map[string]any{"type": "number", "minimum": 0},
			"levels": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "integer", "minimum": 0},
			},
		},
	},
	"blocks": {
		"type": "array",
		"items": map[string]any{
			"type":     "object",
			"required": []any{"slug"},
			"properties": map[string]any{
				"slug":      map[string]any{"type": "string"},
				"name":      map[string]any{"type": "string"},
				"num_words": map[string]any{"type": "integer"},
			},
		},
	},
}

// schemaCache caches compiled JSON schemas by name.
var schemaCache sync.Map // map[string]*jsonschema.Schema

// validateBody checks raw against the named schema and decodes it into out.
// Failures are returned as *ValidationError.
func validateBody(op, name string, res *Result, out any) error {
	raw := res.Body
	parsed, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return &ValidationError{Op: op, Body: raw, Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	compiled, err := compiledSchema(name)
	if err != nil {
		return &ValidationError{Op: op, Body: raw, Err: fmt.Errorf("compile schema %q: %w", name, err)}
	}
	if err := compiled.Validate(parsed); err != nil {
		return &ValidationError{Op: op, Body: raw, Err: fmt.Errorf("schema validation failed: %w", err)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &ValidationError{Op: op, Body: raw, Err: fmt.Errorf("decode: %w", err)}
	}
	return nil
}

func compiledSchema(name string) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(name); ok {
		return cached.(*jsonschema.Schema), nil
	}
	def, ok := schemas[name]
	if !ok {
		return nil, fmt.Errorf("unknown schema %q", name)
	}

	// The compiler wants the output of UnmarshalJSON, not Go literals.
	defBytes, err := json.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(defBytes))
	if err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	schemaURL := fmt.Sprintf("schema://geogem/%s.json", name)
	if err := c.AddResource(schemaURL, doc); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	schemaCache.Store(name, compiled)
	return compiled, nil
}
