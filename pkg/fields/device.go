package fields

import (
	"github.com/goliatone/go-inspectform/pkg/form"
)

type geolocation struct{}

func (geolocation) Type() form.ItemType        { return form.ItemTypeGeolocation }
func (geolocation) Default(form.Item, Env) any { return "" }

func (geolocation) Coerce(item form.Item, raw any) (any, error) {
	if isBlank(raw) {
		return "", nil
	}
	var loc Geolocation
	switch v := raw.(type) {
	case Geolocation:
		loc = v
	case *Geolocation:
		loc = *v
	case map[string]any:
		if err := decodeInto(v, &loc); err != nil {
			return nil, invalid(item, "decode location: %v", err)
		}
	default:
		return nil, invalid(item, "expected a location, got %T", raw)
	}
	if loc.Latitude < -90 || loc.Latitude > 90 {
		return nil, invalid(item, "latitude %v out of range", loc.Latitude)
	}
	if loc.Longitude < -180 || loc.Longitude > 180 {
		return nil, invalid(item, "longitude %v out of range", loc.Longitude)
	}
	if loc.Accuracy != nil && *loc.Accuracy < 0 {
		return nil, invalid(item, "accuracy cannot be negative")
	}
	return loc, nil
}

func (geolocation) Empty(value any) bool { return isBlank(value) }
func (geolocation) Scalars(any) []string { return nil }

func (geolocation) ValueSchema(form.Item) map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []any{"latitude", "longitude"},
		"properties": map[string]any{
			"latitude":  map[string]any{"type": "number", "minimum": -90, "maximum": 90},
			"longitude": map[string]any{"type": "number", "minimum": -180, "maximum": 180},
			"accuracy":  map[string]any{"type": "number", "minimum": 0},
		},
	}
}

// weather values come from the weather provider and are stored as received.
type weather struct{}

func (weather) Type() form.ItemType        { return form.ItemTypeWeather }
func (weather) Default(form.Item, Env) any { return "" }

func (weather) Coerce(item form.Item, raw any) (any, error) {
	if isBlank(raw) {
		return "", nil
	}
	switch v := raw.(type) {
	case Weather:
		return v, nil
	case *Weather:
		return *v, nil
	case map[string]any:
		var w Weather
		if err := decodeInto(v, &w); err != nil {
			return nil, invalid(item, "decode weather: %v", err)
		}
		return w, nil
	}
	return nil, invalid(item, "expected a weather report, got %T", raw)
}

func (weather) Empty(value any) bool { return isBlank(value) }
func (weather) Scalars(any) []string { return nil }

func (weather) ValueSchema(form.Item) map[string]any {
	num := map[string]any{"type": "number"}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"temperature":   num,
			"humidity":      num,
			"windSpeed":     num,
			"windDirection": num,
			"condition":     map[string]any{"type": "string"},
			"icon":          map[string]any{"type": "string"},
			"latitude":      num,
			"longitude":     num,
			"timestamp":     map[string]any{"type": "string"},
		},
	}
}
