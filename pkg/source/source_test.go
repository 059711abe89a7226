package source_test

import (
	"testing"

	"github.com/goliatone/go-inspectform/pkg/source"
)

func TestFromURL(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{name: "https", raw: "https://api.example.com/formulaires/3"},
		{name: "empty", raw: "", wantErr: true},
		{name: "relative", raw: "formulaires/3", wantErr: true},
		{name: "ftp", raw: "ftp://example.com/form.json", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src, err := source.FromURL(tc.raw)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tc.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if src.Kind() != source.KindURL || src.Location() != tc.raw {
				t.Fatalf("unexpected source %v %q", src.Kind(), src.Location())
			}
		})
	}
}

func TestDetect(t *testing.T) {
	src, err := source.Detect("http://localhost:8080/formulaires/1")
	if err != nil || src.Kind() != source.KindURL {
		t.Fatalf("expected url source, got %v (%v)", src, err)
	}
	src, err = source.Detect("./forms/../forms/borne.yaml")
	if err != nil || src.Kind() != source.KindFile {
		t.Fatalf("expected file source, got %v (%v)", src, err)
	}
	if src.Location() != "forms/borne.yaml" {
		t.Fatalf("expected cleaned path, got %q", src.Location())
	}
	if _, err := source.Detect(""); err == nil {
		t.Fatalf("expected error for empty location")
	}
}

func TestNewLoaderOptions(t *testing.T) {
	opts := source.NewLoaderOptions(source.WithHTTPFallback(0), nil)
	if !opts.AllowHTTPFallback {
		t.Fatalf("expected http fallback enabled")
	}
}
