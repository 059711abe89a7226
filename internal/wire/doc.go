// Package wire decodes backend form payloads into the canonical form model.
// Two historical shapes are accepted transparently: the unified shape
// (items[].label, categorie_ids) and the legacy shape (items[].nom, sections
// answered as a single value). Payloads may be JSON or YAML.
package wire
