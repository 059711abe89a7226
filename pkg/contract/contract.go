// Package contract describes the backend endpoints the engine talks to as
// an OpenAPI 3 document and validates submission payloads against it.
package contract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-inspectform/pkg/submission"
)

const (
	PathForms       = "/formulaires"
	PathForm        = "/formulaires/{id}"
	PathSubmissions = "/inspections-unifiees"

	// HeaderIdempotencyKey deduplicates retried submissions.
	HeaderIdempotencyKey = "Idempotency-Key"

	Version = "1.0.0"
)

var (
	once    sync.Once
	payload *openapi3.Schema
)

func payloadOnce() *openapi3.Schema {
	once.Do(func() {
		payload = payloadSchema()
	})
	return payload
}

// PayloadSchema returns the schema of a submission body.
func PayloadSchema() *openapi3.Schema {
	return payloadOnce()
}

// Document builds the OpenAPI description of the form and submission
// endpoints.
func Document() *openapi3.T {
	listForms := openapi3.NewOperation()
	listForms.OperationID = "listForms"
	listForms.Summary = "List inspection forms"
	listForms.AddParameter(openapi3.NewQueryParameter("categorie_id").WithSchema(openapi3.NewStringSchema()))
	listForms.AddParameter(openapi3.NewQueryParameter("actif").WithSchema(openapi3.NewBoolSchema()))
	listForms.Responses = openapi3.NewResponses(
		openapi3.WithStatus(http.StatusOK, &openapi3.ResponseRef{Value: jsonResponse("Forms", openapi3.NewArraySchema().WithItems(formSchema()))}),
	)

	getForm := openapi3.NewOperation()
	getForm.OperationID = "getForm"
	getForm.Summary = "Fetch one inspection form"
	getForm.AddParameter(openapi3.NewPathParameter("id").WithSchema(openapi3.NewStringSchema()))
	getForm.Responses = openapi3.NewResponses(
		openapi3.WithStatus(http.StatusOK, &openapi3.ResponseRef{Value: jsonResponse("Form", formSchema())}),
		openapi3.WithStatus(http.StatusNotFound, &openapi3.ResponseRef{Value: jsonResponse("Unknown form", errorSchema())}),
	)

	submit := openapi3.NewOperation()
	submit.OperationID = "submitInspection"
	submit.Summary = "Store a completed inspection"
	submit.AddParameter(openapi3.NewHeaderParameter(HeaderIdempotencyKey).WithSchema(openapi3.NewUUIDSchema()))
	submit.RequestBody = &openapi3.RequestBodyRef{
		Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchema(PayloadSchema()),
	}
	submit.Responses = openapi3.NewResponses(
		openapi3.WithStatus(http.StatusCreated, &openapi3.ResponseRef{Value: jsonResponse("Stored", receiptSchema())}),
		openapi3.WithStatus(http.StatusBadRequest, &openapi3.ResponseRef{Value: jsonResponse("Malformed payload", errorSchema())}),
		openapi3.WithStatus(http.StatusUnprocessableEntity, &openapi3.ResponseRef{Value: jsonResponse("Rejected payload", errorSchema())}),
	)

	return &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:   "Inspection forms",
			Version: Version,
		},
		Paths: openapi3.NewPaths(
			openapi3.WithPath(PathForms, &openapi3.PathItem{Get: listForms}),
			openapi3.WithPath(PathForm, &openapi3.PathItem{Get: getForm}),
			openapi3.WithPath(PathSubmissions, &openapi3.PathItem{Post: submit}),
		),
	}
}

func jsonResponse(description string, schema *openapi3.Schema) *openapi3.Response {
	return openapi3.NewResponse().WithDescription(description).WithJSONSchema(schema)
}

// ErrConformityMismatch reports a payload whose conforms flag disagrees with
// its alert list.
var ErrConformityMismatch = errors.New("contract: conforms must be true exactly when alerts is empty")

// ValidatePayload checks p against PayloadSchema and the conformity rule.
func ValidatePayload(p submission.Payload) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("contract: encode payload: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("contract: decode payload: %w", err)
	}
	if err := PayloadSchema().VisitJSON(doc, openapi3.MultiErrors()); err != nil {
		return fmt.Errorf("contract: payload: %w", err)
	}
	if p.Conforms != (len(p.Alerts) == 0) {
		return ErrConformityMismatch
	}
	return nil
}

// Validate checks the generated document itself.
func Validate(ctx context.Context) error {
	return Document().Validate(ctx)
}

// YAML renders the document as YAML.
func YAML() ([]byte, error) {
	raw, err := json.Marshal(Document())
	if err != nil {
		return nil, fmt.Errorf("contract: encode document: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("contract: decode document: %w", err)
	}
	return yaml.Marshal(doc)
}
