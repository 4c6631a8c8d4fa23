package vanilla

import (
	"embed"
	"io/fs"
)

// StylesheetName is the embedded stylesheet served under the asset prefix.
const StylesheetName = "farmdesk.css"

//go:embed templates/*.tmpl assets/*
var bundle embed.FS

// TemplatesFS returns the embedded templates rooted so that names read
// "templates/form.tmpl".
func TemplatesFS() fs.FS {
	return bundle
}

// AssetsFS returns the embedded static assets rooted at the assets
// directory, ready for http.FS.
func AssetsFS() fs.FS {
	assets, err := fs.Sub(bundle, "assets")
	if err != nil {
		panic(err)
	}
	return assets
}
