package form

import "github.com/goliatone/go-farmdesk/pkg/model"

// View is a read-only snapshot of a form for renderers.
type View struct {
	ID          string
	Title       string
	SubmitLabel string
	CancelLabel string
	Mode        Mode
	Open        bool
	Fields      []model.Field
	Values      model.Values
}
