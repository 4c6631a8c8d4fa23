package tui

import (
	"errors"
	"io"
)

var (
	// ErrAborted is returned when the user interrupts a prompt.
	ErrAborted = errors.New("tui: aborted")
	// ErrNoRecords is returned by RenderList for an empty list.
	ErrNoRecords = errors.New("tui: no records to select")
)

// Format selects how RenderForm and RenderList encode their result.
type Format string

const (
	FormatJSON Format = "json"
	// FormatText writes one "name: value" line per field, sorted by name.
	FormatText Format = "text"
)

// Messages are the prefixes written before group row headings and
// validation errors.
type Messages struct {
	Row   string
	Error string
}

var defaultMessages = Messages{Row: "» ", Error: "✗ "}

type Option func(*Renderer)

// WithPromptDriver replaces the survey driver, typically with a scripted
// one in tests.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithOutput sets where the survey driver draws prompts and prints
// informational lines. The default is stderr.
func WithOutput(out io.Writer) Option {
	return func(r *Renderer) {
		r.out = out
	}
}

func WithFormat(format Format) Option {
	return func(r *Renderer) {
		if format == FormatJSON || format == FormatText {
			r.format = format
		}
	}
}

func WithMessages(messages Messages) Option {
	return func(r *Renderer) {
		r.messages = messages
	}
}
