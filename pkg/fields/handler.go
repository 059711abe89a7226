package fields

import "github.com/goliatone/go-inspectform/pkg/form"

// Handler is the value contract of one item type.
type Handler interface {
	Type() form.ItemType
	// Default is the value an item holds right after initialization.
	Default(item form.Item, env Env) any
	// Coerce normalises raw input into the type's value shape. Clearing a
	// field (nil or "") yields the type's empty value.
	Coerce(item form.Item, raw any) (any, error)
	// Empty reports whether value counts as unanswered.
	Empty(value any) bool
	// Scalars lists the strings alert rules are matched against.
	Scalars(value any) []string
	// ValueSchema describes a non-empty coerced value as JSON Schema.
	ValueSchema(item form.Item) map[string]any
}

// For returns the handler of t, or nil when t is outside the closed set.
func For(t form.ItemType) Handler {
	switch t {
	case form.ItemTypeSingleChoice:
		return singleChoice{}
	case form.ItemTypeMultiChoice:
		return multiChoice{}
	case form.ItemTypeFreeText:
		return freeText{}
	case form.ItemTypeNumber:
		return number{}
	case form.ItemTypeDate:
		return date{}
	case form.ItemTypeList:
		return listChoice{}
	case form.ItemTypeGeolocation:
		return geolocation{}
	case form.ItemTypeSignature:
		return signature{}
	case form.ItemTypeStopwatch:
		return stopwatch{}
	case form.ItemTypeCountdown:
		return countdown{}
	case form.ItemTypePhoto:
		return photo{}
	case form.ItemTypeInspectorAutofill:
		return inspector{}
	case form.ItemTypeWeather:
		return weather{}
	case form.ItemTypeRating:
		return rating{}
	}
	return nil
}

// Default is a convenience over For(item.Type).Default.
func Default(item form.Item, env Env) any {
	if h := For(item.Type); h != nil {
		return h.Default(item, env)
	}
	return ""
}

// Coerce is a convenience over For(item.Type).Coerce.
func Coerce(item form.Item, raw any) (any, error) {
	h := For(item.Type)
	if h == nil {
		return nil, invalid(item, "unsupported type")
	}
	return h.Coerce(item, raw)
}

// Empty reports whether value is unanswered for item.
func Empty(item form.Item, value any) bool {
	if h := For(item.Type); h != nil {
		return h.Empty(value)
	}
	return isBlank(value)
}

// Scalars returns the alert-matchable strings of value for item.
func Scalars(item form.Item, value any) []string {
	if h := For(item.Type); h != nil {
		return h.Scalars(value)
	}
	return nil
}
