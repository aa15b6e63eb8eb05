package frame

import (
	"fmt"
	"math"
	"slices"
)

// AggFunc names an aggregate function.
type AggFunc string

const (
	AggCount  AggFunc = "count"
	AggSum    AggFunc = "sum"
	AggMean   AggFunc = "mean"
	AggMedian AggFunc = "median"
	AggMin    AggFunc = "min"
	AggMax    AggFunc = "max"
)

// ParseAggFunc resolves an aggregate function name.
func ParseAggFunc(s string) (AggFunc, bool) {
	switch f := AggFunc(s); f {
	case AggCount, AggSum, AggMean, AggMedian, AggMin, AggMax:
		return f, true
	}
	return "", false
}

// Aggregation computes Func over Column within each group and stores the
// result as As. For AggCount an empty Column counts rows; otherwise count
// is the number of non-null values.
type Aggregation struct {
	Column string
	Func   AggFunc
	As     string
	Round  bool // round float results to two decimals
}

// GroupBy groups rows by the key column and evaluates the aggregations per
// group. Groups keep first-appearance order; null keys are dropped.
func (t *Table) GroupBy(key string, aggs []Aggregation) (*Table, error) {
	k, ok := t.index[key]
	if !ok {
		return nil, fmt.Errorf("unknown group column %q", key)
	}
	src, aggCols, err := t.resolve(aggs)
	if err != nil {
		return nil, err
	}
	cols := append([]Column{t.columns[k]}, aggCols...)

	var order []string
	groups := map[string][]int{}
	keys := map[string]any{}
	for i, row := range t.rows {
		v := row[k]
		if IsNull(v) {
			continue
		}
		gk := valueKey(v)
		if _, seen := groups[gk]; !seen {
			order = append(order, gk)
			keys[gk] = v
		}
		groups[gk] = append(groups[gk], i)
	}

	rows := make([]Row, 0, len(order))
	for _, gk := range order {
		row := Row{keys[gk]}
		for i, a := range aggs {
			v, err := t.aggregate(groups[gk], src[i], a.Func)
			if err != nil {
				return nil, fmt.Errorf("%s(%s): %w", a.Func, a.Column, err)
			}
			if f, ok := v.(float64); ok && a.Round {
				v = Round2(f)
			}
			row = append(row, v)
		}
		rows = append(rows, row)
	}
	return New(cols, rows)
}

// Aggregate evaluates the aggregations over the whole table and returns a
// single-row table.
func (t *Table) Aggregate(aggs []Aggregation) (*Table, error) {
	src, cols, err := t.resolve(aggs)
	if err != nil {
		return nil, err
	}
	all := allIndexes(len(t.rows))
	row := make(Row, 0, len(aggs))
	for i, a := range aggs {
		v, err := t.aggregate(all, src[i], a.Func)
		if err != nil {
			return nil, fmt.Errorf("%s(%s): %w", a.Func, a.Column, err)
		}
		if f, ok := v.(float64); ok && a.Round {
			v = Round2(f)
		}
		row = append(row, v)
	}
	return New(cols, []Row{row})
}

// resolve maps aggregations to source column indexes (-1 for row counts)
// and output columns.
func (t *Table) resolve(aggs []Aggregation) ([]int, []Column, error) {
	src := make([]int, len(aggs))
	cols := make([]Column, 0, len(aggs))
	for i, a := range aggs {
		if _, ok := ParseAggFunc(string(a.Func)); !ok {
			return nil, nil, fmt.Errorf("unknown aggregate %q", a.Func)
		}
		src[i] = -1
		if a.Column != "" {
			c, ok := t.index[a.Column]
			if !ok {
				return nil, nil, fmt.Errorf("unknown column %q", a.Column)
			}
			src[i] = c
		} else if a.Func != AggCount {
			return nil, nil, fmt.Errorf("%s needs a column", a.Func)
		}
		name := a.As
		if name == "" {
			name = a.Column
		}
		if name == "" {
			name = string(a.Func)
		}
		typ := Float
		if a.Func == AggCount {
			typ = Int
		}
		cols = append(cols, Column{Name: name, Type: typ})
	}
	return src, cols, nil
}

func (t *Table) aggregate(idx []int, col int, fn AggFunc) (any, error) {
	if fn == AggCount {
		if col < 0 {
			return int64(len(idx)), nil
		}
		var n int64
		for _, i := range idx {
			if !IsNull(t.rows[i][col]) {
				n++
			}
		}
		return n, nil
	}
	vals := make([]float64, 0, len(idx))
	for _, i := range idx {
		v := t.rows[i][col]
		if IsNull(v) {
			continue
		}
		f, ok := ToFloat(v)
		if !ok {
			return nil, fmt.Errorf("column %q is not numeric", t.columns[col].Name)
		}
		vals = append(vals, f)
	}
	if fn == AggSum {
		var s float64
		for _, f := range vals {
			s += f
		}
		return s, nil
	}
	if len(vals) == 0 {
		return nil, nil
	}
	switch fn {
	case AggMean:
		return mean(vals), nil
	case AggMedian:
		return quantile(vals, 0.5), nil
	case AggMin:
		return slices.Min(vals), nil
	case AggMax:
		return slices.Max(vals), nil
	}
	return nil, fmt.Errorf("unknown aggregate %q", fn)
}

// describeStats are the rows of Describe, in order.
var describeStats = []string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"}

// Describe returns summary statistics (count, mean, sample std, min,
// quartiles, max) for every numeric column. The first column names the
// statistic. A table without numeric columns yields only that column.
func (t *Table) Describe() *Table {
	cols := []Column{{Name: "statistic", Type: String}}
	var numericCols []int
	for i, c := range t.columns {
		if c.Type == Float || c.Type == Int {
			numericCols = append(numericCols, i)
			cols = append(cols, Column{Name: c.Name, Type: Float})
		}
	}
	stats := make([][]any, len(numericCols))
	for j, c := range numericCols {
		var vals []float64
		for _, row := range t.rows {
			if f, ok := ToFloat(row[c]); ok {
				vals = append(vals, f)
			}
		}
		stats[j] = summarize(vals)
	}
	rows := make([]Row, len(describeStats))
	for s, name := range describeStats {
		row := Row{name}
		for j := range numericCols {
			row = append(row, stats[j][s])
		}
		rows[s] = row
	}
	return MustNew(cols, rows)
}

func summarize(vals []float64) []any {
	out := make([]any, len(describeStats))
	out[0] = float64(len(vals))
	if len(vals) == 0 {
		return out
	}
	out[1] = mean(vals)
	if len(vals) > 1 {
		out[2] = stddev(vals)
	}
	out[3] = slices.Min(vals)
	out[4] = quantile(vals, 0.25)
	out[5] = quantile(vals, 0.5)
	out[6] = quantile(vals, 0.75)
	out[7] = slices.Max(vals)
	return out
}

func mean(vals []float64) float64 {
	var s float64
	for _, f := range vals {
		s += f
	}
	return s / float64(len(vals))
}

func stddev(vals []float64) float64 {
	m := mean(vals)
	var ss float64
	for _, f := range vals {
		ss += (f - m) * (f - m)
	}
	return math.Sqrt(ss / float64(len(vals)-1))
}

// quantile uses linear interpolation between closest ranks.
func quantile(vals []float64, q float64) float64 {
	sorted := slices.Clone(vals)
	slices.Sort(sorted)
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}
