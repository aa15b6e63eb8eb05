package transform

import (
	"medallion-demo/internal/frame"
)

// Derived silver columns.
const (
	PriceSavingsColumn   = "price_savings"
	DiscountCalcColumn   = "discount_pct_calc"
	RevenueColumn        = "revenue"
	RatingCategoryColumn = "rating_category"
)

// ToSilver adds derived business columns. Each column is computed only when
// its inputs exist.
func (e *Engine) ToSilver(t *frame.Table) (*frame.Table, error) {
	r := e.rules.Silver
	out := t
	var err error

	if out.Has(r.ActualPrice, r.SellingPrice) {
		a, _ := out.Index(r.ActualPrice)
		s, _ := out.Index(r.SellingPrice)
		out, err = out.WithColumn(frame.Column{Name: PriceSavingsColumn, Type: frame.Float}, func(row frame.Row) (any, error) {
			actual, ok1 := frame.ToFloat(row[a])
			selling, ok2 := frame.ToFloat(row[s])
			if !ok1 || !ok2 {
				return nil, nil
			}
			return actual - selling, nil
		})
		if err != nil {
			return nil, err
		}
		out, err = out.WithColumn(frame.Column{Name: DiscountCalcColumn, Type: frame.Float}, func(row frame.Row) (any, error) {
			return DiscountPercent(row[a], row[s]), nil
		})
		if err != nil {
			return nil, err
		}
	}

	if out.Has(r.SellingPrice, r.Quantity) {
		s, _ := out.Index(r.SellingPrice)
		q, _ := out.Index(r.Quantity)
		d, hasDiscount := out.Index(r.Discount)
		out, err = out.WithColumn(frame.Column{Name: RevenueColumn, Type: frame.Float}, func(row frame.Row) (any, error) {
			price, ok1 := frame.ToFloat(row[s])
			qty, ok2 := frame.ToFloat(row[q])
			if !ok1 || !ok2 {
				return nil, nil
			}
			rev := price * qty
			if hasDiscount {
				if pct, ok := frame.ToFloat(row[d]); ok {
					rev *= 1 - pct/100
				}
			}
			return frame.Round2(rev), nil
		})
		if err != nil {
			return nil, err
		}
	}

	if out.Has(r.Rating) && len(r.RatingBins) > 1 {
		idx, _ := out.Index(r.Rating)
		col := frame.Column{Name: RatingCategoryColumn, Type: frame.Category, Categories: r.RatingLabels}
		out, err = out.WithColumn(col, func(row frame.Row) (any, error) {
			return bin(row[idx], r.RatingBins, r.RatingLabels), nil
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// DiscountPercent returns round((actual-selling)/actual*100, 2), or nil when
// either input is null or actual is zero.
func DiscountPercent(actual, selling any) any {
	a, ok1 := frame.ToFloat(actual)
	s, ok2 := frame.ToFloat(selling)
	if !ok1 || !ok2 || a == 0 {
		return nil
	}
	return frame.Round2((a - s) / a * 100)
}

// bin places v in the right-closed interval (edges[i], edges[i+1]] and
// returns its label. Values outside every interval are null.
func bin(v any, edges []float64, labels []string) any {
	f, ok := frame.ToFloat(v)
	if !ok {
		return nil
	}
	for i := 0; i+1 < len(edges); i++ {
		if f > edges[i] && f <= edges[i+1] {
			return labels[i]
		}
	}
	return nil
}
