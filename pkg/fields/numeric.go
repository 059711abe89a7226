package fields

import (
	"math"
	"strconv"

	"github.com/goliatone/go-inspectform/pkg/form"
)

const stepTolerance = 1e-9

type number struct{}

func (number) Type() form.ItemType { return form.ItemTypeNumber }

func (number) Default(item form.Item, _ Env) any {
	if item.Config.Min != nil {
		return *item.Config.Min
	}
	return float64(0)
}

func (number) Coerce(item form.Item, raw any) (any, error) {
	if isBlank(raw) {
		return nil, nil
	}
	f, err := asFloat(raw)
	if err != nil {
		return nil, invalid(item, "%v", err)
	}
	cfg := item.Config
	if cfg.Min != nil && f < *cfg.Min {
		return nil, invalid(item, "%s is below the minimum %s", formatNumber(f), formatNumber(*cfg.Min))
	}
	if cfg.Max != nil && f > *cfg.Max {
		return nil, invalid(item, "%s is above the maximum %s", formatNumber(f), formatNumber(*cfg.Max))
	}
	if cfg.Step != nil && *cfg.Step > 0 {
		base := 0.0
		if cfg.Min != nil {
			base = *cfg.Min
		}
		steps := (f - base) / *cfg.Step
		if math.Abs(steps-math.Round(steps)) > stepTolerance {
			return nil, invalid(item, "%s is not a multiple of step %s", formatNumber(f), formatNumber(*cfg.Step))
		}
	}
	return f, nil
}

func (number) Empty(value any) bool { return value == nil }

func (number) Scalars(value any) []string {
	if f, ok := value.(float64); ok {
		return []string{formatNumber(f)}
	}
	return nil
}

func (number) ValueSchema(item form.Item) map[string]any {
	schema := map[string]any{"type": "number"}
	if item.Config.Min != nil {
		schema["minimum"] = *item.Config.Min
	}
	if item.Config.Max != nil {
		schema["maximum"] = *item.Config.Max
	}
	return schema
}

// stopwatch values are elapsed seconds. Zero means the stopwatch never ran.
type stopwatch struct{}

func (stopwatch) Type() form.ItemType        { return form.ItemTypeStopwatch }
func (stopwatch) Default(form.Item, Env) any { return float64(0) }

func (stopwatch) Coerce(item form.Item, raw any) (any, error) {
	if isBlank(raw) {
		return float64(0), nil
	}
	f, err := asFloat(raw)
	if err != nil {
		return nil, invalid(item, "%v", err)
	}
	if f < 0 {
		return nil, invalid(item, "elapsed time cannot be negative")
	}
	return f, nil
}

func (stopwatch) Empty(value any) bool {
	f, ok := value.(float64)
	return !ok || f == 0
}

func (stopwatch) Scalars(value any) []string {
	if f, ok := value.(float64); ok {
		return []string{formatNumber(f)}
	}
	return nil
}

func (stopwatch) ValueSchema(form.Item) map[string]any {
	return map[string]any{"type": "number", "minimum": 0}
}

// countdown values are remaining seconds, clamped at zero.
type countdown struct{}

func (countdown) Type() form.ItemType { return form.ItemTypeCountdown }

func (countdown) Default(item form.Item, env Env) any {
	return CountdownInitial(item, env)
}

func (countdown) Coerce(item form.Item, raw any) (any, error) {
	if isBlank(raw) {
		return nil, nil
	}
	f, err := asFloat(raw)
	if err != nil {
		return nil, invalid(item, "%v", err)
	}
	return math.Max(f, 0), nil
}

func (countdown) Empty(value any) bool { return value == nil }

func (countdown) Scalars(value any) []string {
	if f, ok := value.(float64); ok {
		return []string{formatNumber(f)}
	}
	return nil
}

func (countdown) ValueSchema(form.Item) map[string]any {
	return map[string]any{"type": "number", "minimum": 0}
}

const (
	minRating = 1
	maxRating = 5
)

type rating struct{}

func (rating) Type() form.ItemType        { return form.ItemTypeRating }
func (rating) Default(form.Item, Env) any { return "" }

func (rating) Coerce(item form.Item, raw any) (any, error) {
	if isBlank(raw) {
		return "", nil
	}
	f, err := asFloat(raw)
	if err != nil {
		return nil, invalid(item, "%v", err)
	}
	if f != math.Trunc(f) {
		return nil, invalid(item, "rating must be a whole number")
	}
	n := int(f)
	if n < minRating || n > maxRating {
		return nil, invalid(item, "rating must be between %d and %d", minRating, maxRating)
	}
	return n, nil
}

func (rating) Empty(value any) bool {
	_, ok := value.(int)
	return !ok
}

func (rating) Scalars(value any) []string {
	if n, ok := value.(int); ok {
		return []string{strconv.Itoa(n)}
	}
	return nil
}

func (rating) ValueSchema(form.Item) map[string]any {
	return map[string]any{"type": "integer", "minimum": minRating, "maximum": maxRating}
}
