// Package schema compiles embedded JSON Schemas and validates documents
// against them.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Schema is a compiled JSON Schema.
type Schema struct {
	name string
	sch  *jsonschema.Schema
}

// Compile compiles raw under url. The url only identifies the resource; it is
// never fetched.
func Compile(url string, raw []byte) (*Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse schema %s: %w", url, err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add schema %s: %w", url, err)
	}
	sch, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", url, err)
	}
	return &Schema{name: url, sch: sch}, nil
}

// MustCompile is Compile for embedded schemas known to be valid.
func MustCompile(url string, raw []byte) *Schema {
	s, err := Compile(url, raw)
	if err != nil {
		panic(err)
	}
	return s
}

// ValidateJSON validates a JSON document.
func (s *Schema) ValidateJSON(data []byte) error {
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("parse JSON: %w", err)
	}
	return s.validate(inst)
}

// ValidateValue validates a decoded value (for example YAML decoded into
// map[string]any) by round-tripping it through JSON.
func (s *Schema) ValidateValue(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode for validation: %w", err)
	}
	return s.ValidateJSON(data)
}

func (s *Schema) validate(inst any) error {
	if err := s.sch.Validate(inst); err != nil {
		return fmt.Errorf("does not match %s: %w", s.name, err)
	}
	return nil
}
