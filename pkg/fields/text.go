package fields

import (
	"net/url"

	"github.com/goliatone/go-inspectform/pkg/form"
)

// text holds the behaviour shared by string-valued types.
type text struct{}

func (text) Coerce(item form.Item, raw any) (any, error) {
	if raw == nil {
		return "", nil
	}
	s, ok := asString(raw)
	if !ok {
		return nil, invalid(item, "expected a string, got %T", raw)
	}
	return s, nil
}

func (text) Empty(value any) bool                 { return isBlank(value) }
func (text) Scalars(value any) []string           { return stringScalars(value) }
func (text) ValueSchema(form.Item) map[string]any { return map[string]any{"type": "string"} }

type freeText struct{ text }

func (freeText) Type() form.ItemType        { return form.ItemTypeFreeText }
func (freeText) Default(form.Item, Env) any { return "" }

type inspector struct{ text }

func (inspector) Type() form.ItemType              { return form.ItemTypeInspectorAutofill }
func (inspector) Default(_ form.Item, env Env) any { return env.UserName }

// signature values are opaque image encodings; they are stored or cleared,
// never inspected.
type signature struct{ text }

func (signature) Type() form.ItemType        { return form.ItemTypeSignature }
func (signature) Default(form.Item, Env) any { return "" }
func (signature) Scalars(any) []string       { return nil }

type photo struct{ text }

func (photo) Type() form.ItemType        { return form.ItemTypePhoto }
func (photo) Default(form.Item, Env) any { return "" }
func (photo) Scalars(any) []string       { return nil }

func (p photo) Coerce(item form.Item, raw any) (any, error) {
	value, err := p.text.Coerce(item, raw)
	if err != nil {
		return nil, err
	}
	s := value.(string)
	if s == "" {
		return s, nil
	}
	parsed, err := url.Parse(s)
	if err != nil || parsed.Scheme == "" {
		return nil, invalid(item, "%q is not an absolute URL", s)
	}
	return s, nil
}

func (photo) ValueSchema(form.Item) map[string]any {
	return map[string]any{"type": "string", "minLength": 1}
}
