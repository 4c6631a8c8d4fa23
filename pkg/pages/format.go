package pages

import (
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-farmdesk/pkg/model"
	"github.com/goliatone/go-farmdesk/pkg/table"
)

const (
	FormatDate     = "date"
	FormatCurrency = "currency"
	FormatDecimal  = "decimal"
)

func knownFormat(name string) bool {
	switch name {
	case "", FormatDate, FormatCurrency, FormatDecimal:
		return true
	}
	return false
}

// formatter returns the cell formatter for a format name. Unknown names and
// the empty name fall back to the list's default text.
func formatter(name string) func(any) string {
	switch name {
	case FormatDate:
		return formatDate
	case FormatCurrency:
		return func(v any) string {
			if text, ok := decimal(v); ok {
				return "R$ " + text
			}
			return table.Text(v)
		}
	case FormatDecimal:
		return func(v any) string {
			if text, ok := decimal(v); ok {
				return text
			}
			return table.Text(v)
		}
	default:
		return nil
	}
}

// formatDate shows calendar days as DD/MM/YYYY.
func formatDate(v any) string {
	if v == nil {
		return ""
	}
	day := model.NormalizeDate(v)
	t, err := time.Parse("2006-01-02", day)
	if err != nil {
		return day
	}
	return t.Format("02/01/2006")
}

// decimal renders a number with two places and a comma separator.
func decimal(v any) (string, bool) {
	var n float64
	switch value := v.(type) {
	case float64:
		n = value
	case int:
		n = float64(value)
	case string:
		parsed, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(value), ",", "."), 64)
		if err != nil {
			return "", false
		}
		n = parsed
	default:
		return "", false
	}
	return strings.Replace(strconv.FormatFloat(n, 'f', 2, 64), ".", ",", 1), true
}
