package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrCancelled is returned when the inspector abandons the inspection
	// from the navigation menu.
	ErrCancelled = errors.New("tui: inspection cancelled")
)
