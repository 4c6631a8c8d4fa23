package form

import "github.com/goliatone/go-farmdesk/pkg/overlay"

// Mode distinguishes creating a record from editing an existing one.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}

// Reason explains why a form closed.
type Reason string

const (
	ReasonSubmitted Reason = "submitted"
	ReasonDismissed Reason = "dismissed"
	ReasonCancelled Reason = "cancelled"
)

// Option configures a Form.
type Option func(*Form)

// WithID sets the element identifier used as the outside-detection boundary.
func WithID(id string) Option {
	return func(f *Form) {
		if id != "" {
			f.id = id
		}
	}
}

// WithTitle sets the heading shown above the fields.
func WithTitle(title string) Option {
	return func(f *Form) {
		f.title = title
	}
}

// WithMode marks the form as creating or editing.
func WithMode(mode Mode) Option {
	return func(f *Form) {
		f.mode = mode
	}
}

// WithRecord seeds values from an existing record. Keys missing from the
// record fall back to field defaults.
func WithRecord(record map[string]any) Option {
	return func(f *Form) {
		f.record = record
	}
}

// WithSubmitLabel overrides the mode-derived submit label.
func WithSubmitLabel(label string) Option {
	return func(f *Form) {
		f.submitLabel = label
	}
}

// WithOverlay wires outside-interaction detection.
func WithOverlay(bus *overlay.Bus) Option {
	return func(f *Form) {
		f.bus = bus
	}
}

// WithCloseHandler registers a callback that runs whenever the form closes.
func WithCloseHandler(fn func(Reason)) Option {
	return func(f *Form) {
		f.onClose = fn
	}
}
