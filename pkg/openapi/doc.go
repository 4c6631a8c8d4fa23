// Package openapi exposes the farm API contract as plain Go types so field
// schemas can be derived from request bodies without leaking kin-openapi
// structures to callers.
package openapi
