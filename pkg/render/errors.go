package render

import (
	"errors"
	"strconv"
	"strings"

	"github.com/goliatone/go-farmdesk/pkg/form"
	"github.com/goliatone/go-farmdesk/pkg/model"
)

// ErrorMapping splits an error payload into field-level messages keyed by
// dotted value paths and form-level messages.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// MapErrorPayload normalises server error payloads ("modulos[0].categoria",
// "/body/modulos/0/categoria") into value paths such as
// "modulos.0.categoria". Paths that do not resolve against the schema are
// kept as form-level messages so nothing is lost.
func MapErrorPayload(fields []model.Field, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{Fields: make(map[string][]string)}
	for rawPath, messages := range payload {
		normalized := normalizeMessages(messages)
		if len(normalized) == 0 {
			continue
		}
		path, ok := resolvePath(fields, dropWrapperSegments(parsePathSegments(rawPath)))
		if !ok {
			mapping.Form = append(mapping.Form, normalized...)
			continue
		}
		mapping.Fields[path] = append(mapping.Fields[path], normalized...)
	}
	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

// FieldError is implemented by errors that report messages per field, keyed
// by the server's own paths.
type FieldError interface {
	error
	FieldErrors() map[string][]string
}

// ErrorsFrom extracts render errors from a form submission error. Validation
// errors map to their paths and server field errors are resolved against
// fields. Anything else becomes a form-level message.
func ErrorsFrom(fields []model.Field, err error) ErrorMapping {
	if err == nil {
		return ErrorMapping{}
	}
	var verr *form.ValidationError
	if errors.As(err, &verr) {
		mapped := make(map[string][]string, len(verr.Fields))
		for path, messages := range verr.Fields {
			mapped[path] = append([]string(nil), messages...)
		}
		return ErrorMapping{Fields: mapped}
	}
	var ferr FieldError
	if errors.As(err, &ferr) {
		if payload := ferr.FieldErrors(); len(payload) > 0 {
			return MapErrorPayload(fields, payload)
		}
	}
	return ErrorMapping{Form: []string{err.Error()}}
}

// resolvePath walks the schema, accepting a row index after every group
// name, and returns the longest prefix that names a field.
func resolvePath(fields []model.Field, segments []string) (string, bool) {
	var (
		resolved []string
		current  = fields
	)
	for i := 0; i < len(segments); i++ {
		field, ok := model.Lookup(current, segments[i])
		if !ok {
			break
		}
		resolved = append(resolved, field.Name)
		if !field.IsGroup() || i+1 >= len(segments) {
			break
		}
		index, err := strconv.Atoi(segments[i+1])
		if err != nil || index < 0 {
			break
		}
		resolved = append(resolved, segments[i+1])
		current = field.Nested
		i++
	}
	if len(resolved) == 0 {
		return "", false
	}
	return strings.Join(resolved, "."), true
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}
	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func parsePathSegments(path string) []string {
	clean := strings.TrimSpace(path)
	clean = strings.TrimLeft(clean, "#$./")
	clean = strings.NewReplacer("[", ".", "]", "").Replace(clean)
	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/'
	})
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if segment := strings.TrimSpace(part); segment != "" {
			out = append(out, segment)
		}
	}
	return out
}

func dropWrapperSegments(segments []string) []string {
	for len(segments) > 0 {
		switch strings.ToLower(segments[0]) {
		case "body", "request", "payload", "data":
			segments = segments[1:]
			continue
		}
		break
	}
	return segments
}
