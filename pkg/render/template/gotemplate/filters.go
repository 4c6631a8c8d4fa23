package gotemplate

import (
	"strings"
	"time"

	"github.com/flosch/pongo2/v6"
)

func registerDefaultFilters() {
	if !pongo2.FilterExists("trim") {
		_ = pongo2.RegisterFilter("trim", filterTrim)
	}
	if !pongo2.FilterExists("datebr") {
		_ = pongo2.RegisterFilter("datebr", filterDateBR)
	}
}

func filterTrim(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.Len() <= 0 {
		return pongo2.AsValue(""), nil
	}
	return pongo2.AsValue(strings.TrimSpace(in.String())), nil
}

// filterDateBR renders YYYY-MM-DD as DD/MM/YYYY and leaves anything else
// untouched.
func filterDateBR(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	raw := strings.TrimSpace(in.String())
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return pongo2.AsValue(raw), nil
	}
	return pongo2.AsValue(t.Format("02/01/2006")), nil
}
