package tui

import (
	"io"
	"log/slog"
	"os"
)

// Theme captures optional formatting hints the renderer applies when printing
// messages. Keep minimal to avoid coupling renderer logic to ANSI specifics.
type Theme struct {
	InfoPrefix  string
	AlertPrefix string
	ErrorPrefix string
}

// DefaultTheme is used when WithTheme is not supplied.
var DefaultTheme = Theme{
	AlertPrefix: "⚠ ",
	ErrorPrefix: "✗ ",
}

// FileOpener opens the photo file named by the inspector.
type FileOpener func(path string) (io.ReadCloser, error)

// Option configures the TUI renderer.
type Option func(*Renderer)

// WithPromptDriver overrides the prompt driver used by the renderer.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithOutput redirects informational messages of the default survey driver.
func WithOutput(w io.Writer) Option {
	return func(r *Renderer) {
		if w != nil {
			r.out = w
		}
	}
}

// WithTheme applies optional message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Renderer) {
		r.theme = theme
	}
}

// WithLogger sets the logger used for recoverable prompt failures.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithFileOpener overrides how photo paths are opened.
func WithFileOpener(open FileOpener) Option {
	return func(r *Renderer) {
		if open != nil {
			r.open = open
		}
	}
}

func openFile(path string) (io.ReadCloser, error) {
	return os.Open(path)
}
