package fields

import (
	"slices"

	"github.com/goliatone/go-inspectform/pkg/form"
)

// ToggleChoice adds option to values when absent and removes it when
// present. The input slice is not modified and the result never holds
// duplicates.
func ToggleChoice(values []string, option string) []string {
	out := make([]string, 0, len(values)+1)
	removed := false
	for _, v := range values {
		if v == option {
			removed = true
			continue
		}
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	if !removed && option != "" {
		out = append(out, option)
	}
	return out
}

type singleChoice struct{}

func (singleChoice) Type() form.ItemType { return form.ItemTypeSingleChoice }

func (singleChoice) Default(item form.Item, _ Env) any {
	if opts := item.EffectiveOptions(); len(opts) > 0 {
		return opts[0]
	}
	return ""
}

func (singleChoice) Coerce(item form.Item, raw any) (any, error) {
	if raw == nil {
		return "", nil
	}
	s, ok := asString(raw)
	if !ok {
		return nil, invalid(item, "expected a string, got %T", raw)
	}
	if s == "" {
		return "", nil
	}
	if !slices.Contains(item.EffectiveOptions(), s) {
		return nil, invalid(item, "%q is not one of %v", s, item.EffectiveOptions())
	}
	return s, nil
}

func (singleChoice) Empty(value any) bool       { return isBlank(value) }
func (singleChoice) Scalars(value any) []string { return stringScalars(value) }

func (singleChoice) ValueSchema(item form.Item) map[string]any {
	return map[string]any{"type": "string", "enum": enumOf(item.EffectiveOptions())}
}

type multiChoice struct{}

func (multiChoice) Type() form.ItemType { return form.ItemTypeMultiChoice }

func (multiChoice) Default(form.Item, Env) any { return []string{} }

func (multiChoice) Coerce(item form.Item, raw any) (any, error) {
	values, err := asStrings(raw)
	if err != nil {
		return nil, invalid(item, "%v", err)
	}
	values = dedupeStrings(values)
	if len(item.Options) > 0 {
		for _, v := range values {
			if !slices.Contains(item.Options, v) {
				return nil, invalid(item, "%q is not one of %v", v, item.Options)
			}
		}
	}
	return values, nil
}

func (multiChoice) Empty(value any) bool       { return isBlank(value) }
func (multiChoice) Scalars(value any) []string { return stringScalars(value) }

func (multiChoice) ValueSchema(item form.Item) map[string]any {
	items := map[string]any{"type": "string"}
	if len(item.Options) > 0 {
		items["enum"] = enumOf(item.Options)
	}
	return map[string]any{"type": "array", "items": items, "uniqueItems": true}
}

type listChoice struct{}

func (listChoice) Type() form.ItemType { return form.ItemTypeList }

func (listChoice) Default(form.Item, Env) any { return "" }

func (listChoice) Coerce(item form.Item, raw any) (any, error) {
	if raw == nil {
		return "", nil
	}
	s, ok := asString(raw)
	if !ok {
		return nil, invalid(item, "expected a string, got %T", raw)
	}
	if s != "" && len(item.Options) > 0 && !slices.Contains(item.Options, s) {
		return nil, invalid(item, "%q is not one of %v", s, item.Options)
	}
	return s, nil
}

func (listChoice) Empty(value any) bool       { return isBlank(value) }
func (listChoice) Scalars(value any) []string { return stringScalars(value) }

func (listChoice) ValueSchema(item form.Item) map[string]any {
	if len(item.Options) == 0 {
		return map[string]any{"type": "string"}
	}
	return map[string]any{"type": "string", "enum": enumOf(item.Options)}
}
