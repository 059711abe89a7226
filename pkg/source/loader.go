package source

import (
	"context"
	"io/fs"
	"net/http"
	"time"

	"github.com/goliatone/go-inspectform/pkg/form"
)

// Loader fetches and decodes form schemas. The implementation lives under
// internal/source/loader.
type Loader interface {
	// Load decodes a single form document.
	Load(ctx context.Context, src Source) (form.Form, error)
	// LoadAll decodes a list document (bare array or wrapped list).
	LoadAll(ctx context.Context, src Source) ([]form.Form, error)
}

// LoaderOptions configures how a Loader resolves sources.
type LoaderOptions struct {
	// FileSystem backs KindFS sources.
	FileSystem fs.FS

	// HTTPClient serves KindURL sources. Nil disables HTTP unless
	// AllowHTTPFallback is set.
	HTTPClient *http.Client

	// AllowHTTPFallback builds a default client when HTTPClient is nil.
	AllowHTTPFallback bool

	// RequestTimeout caps remote fetches.
	RequestTimeout time.Duration
}

// LoaderOption mutates LoaderOptions prior to construction.
type LoaderOption func(*LoaderOptions)

// WithFileSystem injects the fs.FS used by KindFS sources.
func WithFileSystem(files fs.FS) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.FileSystem = files
	}
}

// WithHTTPClient injects a custom HTTP client for remote schemas.
func WithHTTPClient(client *http.Client) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.HTTPClient = client
	}
}

// WithHTTPFallback enables HTTP loading with a default client and an
// optional timeout.
func WithHTTPFallback(timeout time.Duration) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.AllowHTTPFallback = true
		opts.RequestTimeout = timeout
	}
}

// NewLoaderOptions applies options and returns the resulting configuration.
func NewLoaderOptions(options ...LoaderOption) LoaderOptions {
	cfg := LoaderOptions{}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
