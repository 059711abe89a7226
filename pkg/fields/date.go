package fields

import (
	"time"

	"github.com/goliatone/go-inspectform/pkg/form"
)

type date struct{}

func (date) Type() form.ItemType { return form.ItemTypeDate }

func (date) Default(_ form.Item, env Env) any {
	return env.today().Format(DateLayout)
}

func (date) Coerce(item form.Item, raw any) (any, error) {
	switch v := raw.(type) {
	case time.Time:
		if v.IsZero() {
			return "", nil
		}
		return v.Format(DateLayout), nil
	case *time.Time:
		if v == nil || v.IsZero() {
			return "", nil
		}
		return v.Format(DateLayout), nil
	}
	if raw == nil {
		return "", nil
	}
	s, ok := asString(raw)
	if !ok {
		return nil, invalid(item, "expected a date string, got %T", raw)
	}
	if s == "" {
		return "", nil
	}
	if parsed, err := time.Parse(DateLayout, s); err == nil {
		return parsed.Format(DateLayout), nil
	}
	if parsed, err := time.Parse(time.RFC3339, s); err == nil {
		return parsed.Format(DateLayout), nil
	}
	return nil, invalid(item, "%q is not a YYYY-MM-DD date", s)
}

func (date) Empty(value any) bool       { return isBlank(value) }
func (date) Scalars(value any) []string { return stringScalars(value) }

func (date) ValueSchema(form.Item) map[string]any {
	return map[string]any{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`}
}
