package handler

import (
	"html/template"
	"time"

	"github.com/joaobaungartner/goncalves-frontend/internal/derive"
	"github.com/joaobaungartner/goncalves-frontend/internal/format"
)

// TemplateFuncs returns the FuncMap shared by every template set. Number
// rendering is delegated to the format package so templates and summary
// strings agree on locale.
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		// Locale-aware number rendering
		"brl": format.BRL,
		"num": format.Int,
		"dec": func(v float64) string {
			return format.Decimal(v, 2)
		},
		"kg":        format.Kg,
		"pct":       format.Pct,
		"signedPct": format.SignedPct,

		// Period labels
		"monthLabel":  derive.MonthLabel,
		"periodLabel": derive.PeriodLabel,

		// Math
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },

		// Dates
		"year": func() int {
			return time.Now().Year()
		},
		"dataBR": func(s string) string {
			// Order dates arrive as ISO strings from the backend.
			t, err := time.Parse("2006-01-02", s)
			if err != nil {
				return s
			}
			return t.Format("02/01/2006")
		},

		// Pointer helpers for nullable backend fields
		"deref": func(v *float64) float64 {
			if v == nil {
				return 0
			}
			return *v
		},
		"isSet": func(v *float64) bool {
			return v != nil
		},
	}
}
