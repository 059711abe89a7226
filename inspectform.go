// Package inspectform is the top-level entry point of the inspection form
// engine. It wires schema loading to session creation for callers that do not
// need the individual packages.
package inspectform

import (
	"context"

	"github.com/goliatone/go-inspectform/internal/source/loader"
	"github.com/goliatone/go-inspectform/pkg/backend"
	"github.com/goliatone/go-inspectform/pkg/form"
	"github.com/goliatone/go-inspectform/pkg/session"
	"github.com/goliatone/go-inspectform/pkg/source"
	"github.com/goliatone/go-inspectform/pkg/submission"
)

// Form aliases form.Form for callers that only use the root package.
type Form = form.Form

// Payload is the body handed to a Submitter.
type Payload = submission.Payload

// Receipt acknowledges a persisted submission.
type Receipt = submission.Receipt

// NewLoader constructs a schema loader using the internal implementation while
// keeping the concrete type hidden from consumers.
func NewLoader(options ...source.LoaderOption) source.Loader {
	return loader.New(source.NewLoaderOptions(options...))
}

// LoadForm loads a single schema from a file path or http(s) URL.
func LoadForm(ctx context.Context, location string, options ...source.LoaderOption) (Form, error) {
	src, err := source.Detect(location)
	if err != nil {
		return Form{}, err
	}
	return NewLoader(options...).Load(ctx, src)
}

// LoadForms loads a schema list from a file path or http(s) URL.
func LoadForms(ctx context.Context, location string, options ...source.LoaderOption) ([]Form, error) {
	src, err := source.Detect(location)
	if err != nil {
		return nil, err
	}
	return NewLoader(options...).LoadAll(ctx, src)
}

// SourceFetcher serves session form resolution from a schema list document,
// for offline use where no backend is reachable.
type SourceFetcher struct {
	Loader source.Loader
	Source source.Source
}

var _ session.FormFetcher = SourceFetcher{}

// ListForms loads the list and applies q.
func (f SourceFetcher) ListForms(ctx context.Context, q backend.Query) ([]Form, error) {
	forms, err := f.Loader.LoadAll(ctx, f.Source)
	if err != nil {
		return nil, err
	}
	out := forms[:0]
	for _, candidate := range forms {
		if q.ActiveOnly && !candidate.Active {
			continue
		}
		if q.CategoryID != "" && !candidate.HasCategory(q.CategoryID) {
			continue
		}
		out = append(out, candidate)
	}
	return out, nil
}

// OpenSession opens a fill-in session. It is session.Open re-exported.
func OpenSession(ctx context.Context, cfg session.Config, opts ...session.Option) (*session.Session, error) {
	return session.Open(ctx, cfg, opts...)
}
