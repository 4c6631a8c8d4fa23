// Package model defines the declarative field schema shared by every farmdesk
// host together with the typed values a form holds while it is being edited.
//
// A Field describes one input: its label, kind, name, whether it is required
// and an optional default. Select fields carry an ordered option list and
// repeating groups carry the nested schema of one row. Both are gated by the
// field type and checked by Validate.
//
// Values are stored as a tagged union (string, number or rows) resolved
// against the schema, never as free-form maps. Export converts them back into
// plain JSON-ready data for submit handlers.
package model
