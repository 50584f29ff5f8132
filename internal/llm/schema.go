package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// compiled holds *jsonschema.Schema by Schema.Name.
var compiled sync.Map

// checkOutput validates raw against s. A nil schema accepts anything.
func checkOutput(s *Schema, raw json.RawMessage) error {
	if s == nil {
		return nil
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return &OutputError{Output: raw, Err: fmt.Errorf("invalid JSON: %w", err)}
	}
	sch, err := compile(s)
	if err != nil {
		return &OutputError{Output: raw, Err: fmt.Errorf("schema %q: %w", s.Name, err)}
	}
	if err := sch.Validate(doc); err != nil {
		return &OutputError{Output: raw, Err: err}
	}
	return nil
}

func compile(s *Schema) (*jsonschema.Schema, error) {
	if v, ok := compiled.Load(s.Name); ok {
		return v.(*jsonschema.Schema), nil
	}

	// the compiler wants decoded JSON, not Go maps holding typed slices
	b, err := json.Marshal(s.Definition)
	if err != nil {
		return nil, err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}

	c := jsonschema.NewCompiler()
	url := "mem://" + s.Name + ".json"
	if err := c.AddResource(url, doc); err != nil {
		return nil, err
	}
	sch, err := c.Compile(url)
	if err != nil {
		return nil, err
	}
	compiled.Store(s.Name, sch)
	return sch, nil
}
