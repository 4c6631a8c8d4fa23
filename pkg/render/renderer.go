package render

import (
	"context"

	"github.com/goliatone/go-farmdesk/pkg/form"
	"github.com/goliatone/go-farmdesk/pkg/table"
)

// Renderer turns form and list snapshots into a byte representation (HTML,
// plain text).
type Renderer interface {
	Name() string
	ContentType() string
	RenderForm(ctx context.Context, view form.View, options RenderOptions) ([]byte, error)
	RenderList(ctx context.Context, view table.View, options RenderOptions) ([]byte, error)
}
