package source

import (
	"fmt"
	"net/url"
	"path/filepath"
)

// Source describes where a raw form schema lives.
type Source interface {
	Kind() Kind
	Location() string
}

// Kind enumerates the loader modalities.
type Kind string

const (
	KindFile Kind = "file"
	KindFS   Kind = "fs"
	KindURL  Kind = "url"
)

type fileSource struct {
	path string
}

func (s fileSource) Location() string { return s.path }
func (s fileSource) Kind() Kind       { return KindFile }

// FromFile returns a Source pointing to a schema file on disk. JSON and YAML
// are both accepted.
func FromFile(path string) Source {
	return fileSource{path: filepath.Clean(path)}
}

type fsSource struct {
	name string
}

func (s fsSource) Location() string { return s.name }
func (s fsSource) Kind() Kind       { return KindFS }

// FromFS returns a Source identifying a schema inside the loader's fs.FS.
func FromFS(name string) Source {
	return fsSource{name: name}
}

type urlSource struct {
	raw string
}

func (s urlSource) Location() string { return s.raw }
func (s urlSource) Kind() Kind       { return KindURL }

// FromURL parses raw and returns a Source for an HTTP(S) endpoint.
func FromURL(raw string) (Source, error) {
	if raw == "" {
		return nil, fmt.Errorf("source: empty URL")
	}
	parsed, err := url.ParseRequestURI(raw)
	if err != nil {
		return nil, fmt.Errorf("source: invalid URL %q: %w", raw, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("source: unsupported scheme %q", parsed.Scheme)
	}
	return urlSource{raw: raw}, nil
}

// MustURL is FromURL for static configuration; it panics on invalid input.
func MustURL(raw string) Source {
	src, err := FromURL(raw)
	if err != nil {
		panic(err)
	}
	return src
}

// Detect picks a URL source for http(s) locations and a file source
// otherwise.
func Detect(location string) (Source, error) {
	if parsed, err := url.Parse(location); err == nil && (parsed.Scheme == "http" || parsed.Scheme == "https") {
		return FromURL(location)
	}
	if location == "" {
		return nil, fmt.Errorf("source: empty location")
	}
	return FromFile(location), nil
}
