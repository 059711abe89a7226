package fields

import (
	"fmt"
	"time"

	"github.com/goliatone/go-inspectform/pkg/form"
)

// DefaultCountdownMinutes applies when neither the item nor the Env sets a
// countdown duration.
const DefaultCountdownMinutes = 5

// DateLayout is the wire layout of date values.
const DateLayout = time.DateOnly

// Env carries the ambient inputs defaults depend on.
type Env struct {
	UserName         string
	Today            time.Time
	CountdownMinutes float64
}

func (e Env) today() time.Time {
	if e.Today.IsZero() {
		return time.Now()
	}
	return e.Today
}

// Geolocation is the value of geolocation items.
type Geolocation struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Accuracy  *float64 `json:"accuracy,omitempty"`
}

// Weather is the value of weather items, as reported by the weather provider.
type Weather struct {
	Temperature   float64   `json:"temperature"`
	Humidity      float64   `json:"humidity"`
	WindSpeed     float64   `json:"windSpeed"`
	WindDirection float64   `json:"windDirection"`
	Condition     string    `json:"condition"`
	Icon          string    `json:"icon"`
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	Timestamp     time.Time `json:"timestamp"`
}

// ValueError reports a value that does not satisfy its item's contract.
type ValueError struct {
	ItemID string
	Type   form.ItemType
	Reason string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("fields: item %q (%s): %s", e.ItemID, e.Type, e.Reason)
}

func invalid(item form.Item, format string, args ...any) error {
	return &ValueError{ItemID: item.ID, Type: item.Type, Reason: fmt.Sprintf(format, args...)}
}

// CountdownInitial returns the starting value of a countdown item in seconds.
func CountdownInitial(item form.Item, env Env) float64 {
	if d := item.Config.DurationMinutes; d != nil && *d > 0 {
		return *d * 60
	}
	if env.CountdownMinutes > 0 {
		return env.CountdownMinutes * 60
	}
	return DefaultCountdownMinutes * 60
}
