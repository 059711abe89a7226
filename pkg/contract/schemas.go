package contract

import (
	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-inspectform/pkg/alerts"
)

func anyValue() *openapi3.Schema {
	return openapi3.NewSchema().WithNullable()
}

func answerSchema() *openapi3.Schema {
	schema := openapi3.NewObjectSchema().
		WithProperty("value", anyValue()).
		WithProperty("section", openapi3.NewStringSchema()).
		WithProperty("label", openapi3.NewStringSchema())
	schema.Required = []string{"value", "section"}
	return schema
}

func alertSchema() *openapi3.Schema {
	schema := openapi3.NewObjectSchema().
		WithProperty("id", openapi3.NewStringSchema().WithMinLength(1)).
		WithProperty("sectionId", openapi3.NewStringSchema()).
		WithProperty("sectionTitle", openapi3.NewStringSchema()).
		WithProperty("itemId", openapi3.NewStringSchema()).
		WithProperty("itemName", openapi3.NewStringSchema()).
		WithProperty("value", anyValue()).
		WithProperty("message", openapi3.NewStringSchema()).
		WithProperty("severity", openapi3.NewStringSchema().WithEnum(string(alerts.SeverityError), string(alerts.SeverityWarning)))
	schema.Required = []string{"id", "itemName", "message", "severity"}
	return schema
}

func payloadSchema() *openapi3.Schema {
	schema := openapi3.NewObjectSchema().
		WithProperty("formId", openapi3.NewStringSchema().WithMinLength(1)).
		WithProperty("targetId", openapi3.NewStringSchema().WithMinLength(1)).
		WithProperty("targetType", openapi3.NewStringSchema().WithMinLength(1)).
		WithProperty("answers", openapi3.NewObjectSchema().WithAdditionalProperties(answerSchema())).
		WithProperty("conforms", openapi3.NewBoolSchema()).
		WithProperty("generalNotes", openapi3.NewStringSchema()).
		WithProperty("alerts", openapi3.NewArraySchema().WithItems(alertSchema())).
		WithProperty("metadata", openapi3.NewObjectSchema())
	schema.Required = []string{"formId", "targetId", "targetType", "answers", "conforms", "alerts"}
	schema.Description = "Unified inspection submission."
	return schema
}

func receiptSchema() *openapi3.Schema {
	schema := openapi3.NewObjectSchema().
		WithProperty("id", openapi3.NewStringSchema()).
		WithProperty("idempotencyKey", openapi3.NewStringSchema()).
		WithProperty("submittedAt", openapi3.NewDateTimeSchema())
	schema.Required = []string{"id"}
	return schema
}

// formSchema is deliberately loose: the backend serves both the unified and
// the legacy wire shapes.
func formSchema() *openapi3.Schema {
	section := openapi3.NewObjectSchema().
		WithProperty("id", anyValue()).
		WithProperty("items", openapi3.NewArraySchema().WithItems(openapi3.NewObjectSchema()))
	schema := openapi3.NewObjectSchema().
		WithProperty("id", anyValue()).
		WithProperty("sections", openapi3.NewArraySchema().WithItems(section))
	schema.Required = []string{"id", "sections"}
	return schema
}

func errorSchema() *openapi3.Schema {
	return openapi3.NewObjectSchema().
		WithProperty("message", openapi3.NewStringSchema()).
		WithProperty("errors", openapi3.NewObjectSchema())
}
