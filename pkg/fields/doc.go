// Package fields maps each form.ItemType to its value contract: the default
// an item starts with, how raw input is coerced, when a value counts as
// empty, which strings alert rules match against, and the JSON Schema the
// coerced value must satisfy.
//
// Values produced here are plain Go values: string, []string, float64, int,
// Geolocation and Weather. Device-backed values (location, weather, photo,
// signature) are carried as supplied and never computed.
package fields
