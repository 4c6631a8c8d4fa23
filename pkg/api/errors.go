package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	json "github.com/goccy/go-json"
)

// ErrEmptyID is returned when an id-addressed call receives no id.
var ErrEmptyID = errors.New("api: empty id")

// Error is returned for every non-2xx response. Fields carries per-field
// messages when the API reports them.
type Error struct {
	Method  string
	Path    string
	Status  int
	Body    []byte
	Message string
	Fields  map[string][]string
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("api: %s %s: %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// FieldErrors returns the per-field messages of the response body.
func (e *Error) FieldErrors() map[string][]string {
	return e.Fields
}

// NotFound reports a 404 response.
func (e *Error) NotFound() bool {
	return e.Status == http.StatusNotFound
}

// newError decodes the common error payload shapes:
//
//	{"message": "...", "errors": {"nome": ["..."]}}
//	{"error": "...", "errors": {"nome": "..."}}
//	{"errors": [{"path": "nome", "message": "..."}]}
func newError(method, path string, status int, body []byte) *Error {
	e := &Error{Method: method, Path: path, Status: status, Body: body}

	var payload struct {
		Message string          `json:"message"`
		Error   string          `json:"error"`
		Errors  json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return e
	}
	e.Message = strings.TrimSpace(payload.Message)
	if e.Message == "" {
		e.Message = strings.TrimSpace(payload.Error)
	}
	e.Fields = decodeFieldErrors(payload.Errors)
	return e
}

func decodeFieldErrors(raw json.RawMessage) map[string][]string {
	if len(raw) == 0 {
		return nil
	}
	fields := make(map[string][]string)

	var byName map[string]any
	if err := json.Unmarshal(raw, &byName); err == nil {
		for name, value := range byName {
			switch v := value.(type) {
			case string:
				fields[name] = append(fields[name], v)
			case []any:
				for _, item := range v {
					if s, ok := item.(string); ok {
						fields[name] = append(fields[name], s)
					}
				}
			case map[string]any:
				if s, ok := v["message"].(string); ok {
					fields[name] = append(fields[name], s)
				}
			}
		}
	}

	var list []struct {
		Path    string `json:"path"`
		Field   string `json:"field"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &list); err == nil {
		for _, item := range list {
			name := item.Path
			if name == "" {
				name = item.Field
			}
			if name != "" && item.Message != "" {
				fields[name] = append(fields[name], item.Message)
			}
		}
	}

	if len(fields) == 0 {
		return nil
	}
	return fields
}
