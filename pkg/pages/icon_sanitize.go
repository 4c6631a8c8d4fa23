package pages

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	iconPolicyOnce sync.Once
	iconPolicy     *bluemonday.Policy
)

// sanitizeIcon keeps inline SVG shapes and drops everything else, including
// scripts, event handlers and external references.
func sanitizeIcon(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(iconSanitizer().Sanitize(trimmed))
}

func iconSanitizer() *bluemonday.Policy {
	iconPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		shapes := []string{"path", "circle", "rect", "line", "polyline", "polygon", "ellipse"}
		policy.AllowElements(append([]string{"svg", "g", "title"}, shapes...)...)

		policy.AllowAttrs(
			"xmlns", "viewBox", "width", "height", "fill", "stroke",
			"stroke-width", "stroke-linecap", "stroke-linejoin", "aria-hidden",
			"focusable", "class",
		).OnElements("svg")
		policy.AllowAttrs("fill", "stroke", "transform").OnElements("g")
		policy.AllowAttrs(
			"d", "cx", "cy", "r", "x", "y", "x1", "y1", "x2", "y2",
			"points", "rx", "ry", "fill", "stroke", "stroke-width",
			"stroke-linecap", "stroke-linejoin",
		).OnElements(shapes...)

		iconPolicy = policy
	})
	return iconPolicy
}
