package render

import theme "github.com/goliatone/go-theme"

// DefaultThemeName is the bundled theme.
const DefaultThemeName = "campo"

// BuiltinManifests returns the bundled theme manifests. "campo" matches the
// embedded stylesheet; its "escuro" variant darkens the surfaces.
func BuiltinManifests() []*theme.Manifest {
	return []*theme.Manifest{{
		Name:    DefaultThemeName,
		Version: "1.0.0",
		Tokens: map[string]string{
			"brand":          "#2f6f3e",
			"brand-contrast": "#ffffff",
			"surface":        "#ffffff",
			"surface-muted":  "#f4f6f3",
			"border":         "#d7ddd5",
			"text":           "#1f2a1f",
			"danger":         "#b42318",
			"radius":         "6px",
		},
		Variants: map[string]theme.Variant{
			"escuro": {
				Tokens: map[string]string{
					"surface":       "#1c231d",
					"surface-muted": "#141a15",
					"border":        "#34403a",
					"text":          "#e6ede6",
				},
			},
		},
	}}
}

// BuiltinThemes returns a selector over the bundled manifests. An empty
// defaultTheme selects DefaultThemeName.
func BuiltinThemes(defaultTheme, defaultVariant string) (*Themes, error) {
	if defaultTheme == "" {
		defaultTheme = DefaultThemeName
	}
	return NewThemes(defaultTheme, defaultVariant, BuiltinManifests()...)
}
