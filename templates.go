package farmdesk

import (
	"io/fs"

	"github.com/goliatone/go-farmdesk/pkg/pages"
	"github.com/goliatone/go-farmdesk/pkg/renderers/vanilla"
)

// EmbeddedTemplates exposes the built-in vanilla renderer templates so callers
// can reuse or extend them without importing the renderer package directly.
func EmbeddedTemplates() fs.FS {
	return vanilla.TemplatesFS()
}

// EmbeddedPages exposes the bundled page definitions.
func EmbeddedPages() fs.FS {
	return pages.EmbeddedFS()
}
