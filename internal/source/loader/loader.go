package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/goliatone/go-inspectform/internal/wire"
	"github.com/goliatone/go-inspectform/pkg/form"
	"github.com/goliatone/go-inspectform/pkg/source"
)

// Loader implements source.Loader by delegating to file, fs.FS, or HTTP
// strategies and decoding through the wire package.
type Loader struct {
	fs        fs.FS
	http      *http.Client
	allowHTTP bool
	timeout   time.Duration
}

var _ source.Loader = (*Loader)(nil)

// New constructs a Loader from pre-resolved options.
func New(options source.LoaderOptions) *Loader {
	timeout := options.RequestTimeout

	var httpClient *http.Client
	switch {
	case options.HTTPClient != nil:
		clone := *options.HTTPClient
		if timeout > 0 && clone.Timeout == 0 {
			clone.Timeout = timeout
		}
		httpClient = &clone
	case options.AllowHTTPFallback:
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Loader{
		fs:        options.FileSystem,
		http:      httpClient,
		allowHTTP: httpClient != nil,
		timeout:   timeout,
	}
}

// Load fetches a single form document.
func (l *Loader) Load(ctx context.Context, src source.Source) (form.Form, error) {
	data, err := l.fetch(ctx, src)
	if err != nil {
		return form.Form{}, err
	}
	f, err := wire.Decode(data)
	if err != nil {
		return form.Form{}, fmt.Errorf("source loader: %s: %w", src.Location(), err)
	}
	return f, nil
}

// LoadAll fetches a list of forms.
func (l *Loader) LoadAll(ctx context.Context, src source.Source) ([]form.Form, error) {
	data, err := l.fetch(ctx, src)
	if err != nil {
		return nil, err
	}
	forms, err := wire.DecodeList(data)
	if err != nil {
		return nil, fmt.Errorf("source loader: %s: %w", src.Location(), err)
	}
	return forms, nil
}

func (l *Loader) fetch(ctx context.Context, src source.Source) ([]byte, error) {
	if src == nil {
		return nil, errors.New("source loader: source is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	switch src.Kind() {
	case source.KindFile:
		return loadFile(ctx, src.Location())
	case source.KindFS:
		return loadFromFS(ctx, l.fs, src.Location())
	case source.KindURL:
		if !l.allowHTTP {
			return nil, errors.New("source loader: http support disabled")
		}
		return loadHTTP(ctx, l.http, src.Location(), l.timeout)
	default:
		return nil, fmt.Errorf("source loader: unsupported source kind %q", src.Kind())
	}
}
