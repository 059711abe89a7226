// Package form defines the canonical inspection form model shared by the
// answer store, the alert evaluator and the submission assembler. Forms are
// read-only once loaded: sections are ordered by their explicit Order value,
// each section is either item-bearing or a legacy scalar section (see
// SectionKind), and every item carries one of the closed ItemType variants.
// Wire decoding lives in internal/wire; this package never sees raw payloads.
package form
