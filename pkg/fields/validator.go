package fields

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/goliatone/go-inspectform/pkg/form"
)

// Validator checks coerced values against their item's ValueSchema.
// Compiled schemas are cached by their canonical JSON, so items sharing a
// contract share a compiled schema. Safe for concurrent use.
type Validator struct {
	mu    sync.Mutex
	cache map[string]*jsonschema.Schema
}

// NewValidator returns an empty Validator.
func NewValidator() *Validator {
	return &Validator{cache: make(map[string]*jsonschema.Schema)}
}

// Validate returns a *ValueError when value breaks item's contract. Empty
// values always pass; mandatory checks happen at submission.
func (v *Validator) Validate(item form.Item, value any) error {
	h := For(item.Type)
	if h == nil {
		return invalid(item, "unsupported type")
	}
	if h.Empty(value) {
		return nil
	}

	schema, err := v.compile(h.ValueSchema(item))
	if err != nil {
		return fmt.Errorf("fields: compile schema for %q: %w", item.ID, err)
	}
	inst, err := toInstance(value)
	if err != nil {
		return invalid(item, "encode value: %v", err)
	}
	if err := schema.Validate(inst); err != nil {
		return invalid(item, "%v", err)
	}
	return nil
}

func (v *Validator) compile(doc map[string]any) (*jsonschema.Schema, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	key := string(raw)

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.cache == nil {
		v.cache = make(map[string]*jsonschema.Schema)
	}
	if compiled, ok := v.cache[key]; ok {
		return compiled, nil
	}

	parsed, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	url := fmt.Sprintf("mem://fields/%d.json", len(v.cache))
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, parsed); err != nil {
		return nil, err
	}
	compiled, err := compiler.Compile(url)
	if err != nil {
		return nil, err
	}
	v.cache[key] = compiled
	return compiled, nil
}

// toInstance converts a Go value into the generic JSON form the validator
// expects.
func toInstance(value any) (any, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return jsonschema.UnmarshalJSON(bytes.NewReader(raw))
}
