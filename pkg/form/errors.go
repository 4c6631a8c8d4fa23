package form

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrClosed is returned for edits or submissions on a closed form.
	ErrClosed = errors.New("form: form is closed")
	// ErrUnknownField reports a path that does not name a field.
	ErrUnknownField = errors.New("form: unknown field")
	// ErrPath reports a malformed value path.
	ErrPath = errors.New("form: invalid path")
)

// RequiredMessage is attached to every missing required field.
const RequiredMessage = "Preencha este campo."

// ValidationError lists per-path messages that blocked a submission. Paths
// use the same dotted form as EditPath, e.g. "modulos.0.categoria".
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	paths := e.Paths()
	return fmt.Sprintf("form: %d required field(s) missing: %s", len(paths), strings.Join(paths, ", "))
}

// Paths returns the failing paths in sorted order.
func (e *ValidationError) Paths() []string {
	paths := make([]string, 0, len(e.Fields))
	for path := range e.Fields {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}
