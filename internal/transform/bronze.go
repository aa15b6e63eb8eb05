package transform

import (
	"strconv"
	"strings"

	"medallion-demo/internal/frame"
)

// CleanSuffix is appended to a price column's name to form its numeric form.
const CleanSuffix = "_clean"

// ToBronze drops rows with null keys, removes duplicates under the dedupe
// keys, and parses currency-formatted prices and discount strings. Sub-steps
// whose input columns are absent are skipped.
func (e *Engine) ToBronze(t *frame.Table) (*frame.Table, error) {
	r := e.rules.Bronze
	out := t.DropNulls(r.NullKeys...)
	if keys := present(out, r.DedupeKeys); len(keys) > 0 {
		out = out.DropDuplicates(keys...)
	}

	var err error
	for _, col := range r.PriceColumns {
		clean := col + CleanSuffix
		if !out.Has(col) || out.Has(clean) {
			continue
		}
		idx, _ := out.Index(col)
		out, err = out.WithColumn(frame.Column{Name: clean, Type: frame.Float}, func(row frame.Row) (any, error) {
			return parseNumber(row[idx], r.CurrencySymbols, ","), nil
		})
		if err != nil {
			return nil, err
		}
	}

	if d := r.DiscountColumn; d != "" && out.Has(d) && !out.Has(DiscountPctColumn) {
		idx, _ := out.Index(d)
		out, err = out.WithColumn(frame.Column{Name: DiscountPctColumn, Type: frame.Float}, func(row frame.Row) (any, error) {
			return parseNumber(row[idx], []string{"%", "off"}, ","), nil
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// DiscountPctColumn is the numeric discount parsed from the discount column.
const DiscountPctColumn = "discount_pct"

// parseNumber converts v to float64. Strings have every token in strip
// removed first; unparsable values become null.
func parseNumber(v any, strip []string, thousands string) any {
	if frame.IsNull(v) {
		return nil
	}
	if f, ok := frame.ToFloat(v); ok {
		if _, isBool := v.(bool); !isBool {
			return f
		}
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return nil
	}
	for _, tok := range strip {
		s = strings.ReplaceAll(s, tok, "")
	}
	s = strings.TrimSpace(strings.ReplaceAll(s, thousands, ""))
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return f
}
