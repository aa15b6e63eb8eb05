package transform

import (
	"medallion-demo/internal/frame"
)

// Gold KPI columns, in output order after the dimension.
const (
	ProductCountColumn    = "product_count"
	AvgPriceColumn        = "avg_price"
	MedianPriceColumn     = "median_price"
	MinPriceColumn        = "min_price"
	MaxPriceColumn        = "max_price"
	AvgRatingColumn       = "avg_rating"
	AvgDiscountColumn     = "avg_discount"
	OutOfStockCountColumn = "out_of_stock_count"
)

// ToGold aggregates KPIs per dimension value, sorted by product count
// descending then dimension ascending. A missing dimension or measure column
// is an error, which Apply turns into the sampled fallback.
func (e *Engine) ToGold(t *frame.Table) (*frame.Table, error) {
	r := e.rules.Gold
	if err := requireColumns(t, r.Dimension, r.Measure); err != nil {
		return nil, err
	}

	count := frame.Aggregation{Func: frame.AggCount, As: ProductCountColumn}
	if t.Has(r.Key) {
		count.Column = r.Key
	}
	aggs := []frame.Aggregation{
		count,
		{Column: r.Measure, Func: frame.AggMean, As: AvgPriceColumn, Round: true},
		{Column: r.Measure, Func: frame.AggMedian, As: MedianPriceColumn, Round: true},
		{Column: r.Measure, Func: frame.AggMin, As: MinPriceColumn, Round: true},
		{Column: r.Measure, Func: frame.AggMax, As: MaxPriceColumn, Round: true},
	}
	if t.Has(r.Rating) {
		aggs = append(aggs, frame.Aggregation{Column: r.Rating, Func: frame.AggMean, As: AvgRatingColumn, Round: true})
	}
	switch {
	case t.Has(r.Discount):
		aggs = append(aggs, frame.Aggregation{Column: r.Discount, Func: frame.AggMean, As: AvgDiscountColumn, Round: true})
	case t.Has(DiscountPctColumn):
		aggs = append(aggs, frame.Aggregation{Column: DiscountPctColumn, Func: frame.AggMean, As: AvgDiscountColumn, Round: true})
	}
	if t.Has(r.Flag) {
		aggs = append(aggs, frame.Aggregation{Column: r.Flag, Func: frame.AggSum, As: OutOfStockCountColumn, Round: true})
	}

	out, err := t.GroupBy(r.Dimension, aggs)
	if err != nil {
		return nil, err
	}
	if out, err = out.Sort(r.Dimension, true); err != nil {
		return nil, err
	}
	return out.Sort(ProductCountColumn, false)
}
