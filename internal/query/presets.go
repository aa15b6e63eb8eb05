package query

import "medallion-demo/internal/frame"

// Preset is a named, ready-made query. When the selected table lacks any
// of the Requires columns, Fallback is used instead.
type Preset struct {
	Name     string   `json:"name"`
	Title    string   `json:"title"`
	Query    string   `json:"query"`
	Requires []string `json:"requires,omitempty"`
}

// Fallback is the query substituted for a preset whose columns are missing.
const Fallback = "head()"

// Presets lists the built-in queries in display order.
var Presets = []Preset{
	{Name: "top10", Title: "Top 10 rows", Query: "head(10)"},
	{
		Name:     "by-category",
		Title:    "Products by category",
		Query:    "groupBy(category) -> count() | sort(count, false)",
		Requires: []string{"category"},
	},
	{
		Name:     "top-brands",
		Title:    "Top brands",
		Query:    "groupBy(brand) -> aggregate(selling_price_clean, mean) | sort(selling_price_clean, false) | head(10)",
		Requires: []string{"brand", "selling_price_clean"},
	},
	{
		Name:     "high-discount",
		Title:    "High discount products",
		Query:    "sort(discount_pct_calc, false) | head(20) | select(title, brand, discount_pct_calc, selling_price_clean)",
		Requires: []string{"title", "brand", "discount_pct_calc", "selling_price_clean"},
	},
	{
		Name:     "rating-distribution",
		Title:    "Rating distribution",
		Query:    "valueCounts(average_rating) | sort(average_rating)",
		Requires: []string{"average_rating"},
	},
	{Name: "summary", Title: "Statistical summary", Query: "describe()"},
	{Name: "nulls", Title: "Null value counts", Query: "nullCounts()"},
}

// LookupPreset returns the preset with the given name.
func LookupPreset(name string) (Preset, bool) {
	for _, p := range Presets {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}

// For returns the preset's query for t, or Fallback when t lacks a
// required column.
func (p Preset) For(t *frame.Table) string {
	if t != nil && !t.Has(p.Requires...) {
		return Fallback
	}
	return p.Query
}
