package pages

import (
	"embed"
	"io/fs"
)

//go:embed definitions/*.yaml
var embeddedDefinitions embed.FS

// EmbeddedFS returns the bundled page definitions.
func EmbeddedFS() fs.FS {
	sub, err := fs.Sub(embeddedDefinitions, "definitions")
	if err != nil {
		panic(err)
	}
	return sub
}
