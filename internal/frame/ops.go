package frame

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Head returns the first n rows (all rows when n exceeds the length).
func (t *Table) Head(n int) *Table {
	if n < 0 {
		n = 0
	}
	if n > len(t.rows) {
		n = len(t.rows)
	}
	return t.selectRows(allIndexes(n))
}

// Filter keeps the rows for which keep returns true. keep receives a copy.
func (t *Table) Filter(keep func(Row) (bool, error)) (*Table, error) {
	idx := make([]int, 0, len(t.rows))
	for i := range t.rows {
		ok, err := keep(t.Row(i))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		if ok {
			idx = append(idx, i)
		}
	}
	return t.selectRows(idx), nil
}

// DropNulls removes rows with a null in any of the named columns. Columns
// that do not exist are ignored.
func (t *Table) DropNulls(names ...string) *Table {
	cols := t.existing(names)
	idx := make([]int, 0, len(t.rows))
	for i, row := range t.rows {
		if !slices.ContainsFunc(cols, func(c int) bool { return IsNull(row[c]) }) {
			idx = append(idx, i)
		}
	}
	return t.selectRows(idx)
}

// DropDuplicates keeps the first row of every distinct combination of the
// named columns. With no existing columns named, whole rows are compared.
func (t *Table) DropDuplicates(names ...string) *Table {
	cols := t.existing(names)
	if len(cols) == 0 {
		cols = allIndexes(len(t.columns))
	}
	seen := make(map[string]struct{}, len(t.rows))
	idx := make([]int, 0, len(t.rows))
	for i, row := range t.rows {
		k := rowKey(row, cols)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		idx = append(idx, i)
	}
	return t.selectRows(idx)
}

// WithColumn returns a table with col computed by fn for every row. An
// existing column of the same name is replaced in place; otherwise the
// column is appended.
func (t *Table) WithColumn(col Column, fn func(Row) (any, error)) (*Table, error) {
	pos, replace := t.index[col.Name]
	cols := t.Columns()
	if replace {
		cols[pos] = col
	} else {
		pos = len(cols)
		cols = append(cols, col)
	}
	rows := make([]Row, len(t.rows))
	for i := range t.rows {
		v, err := fn(t.Row(i))
		if err != nil {
			return nil, fmt.Errorf("column %q row %d: %w", col.Name, i, err)
		}
		row := t.Row(i)
		if replace {
			row[pos] = v
		} else {
			row = append(row, v)
		}
		rows[i] = row
	}
	return New(cols, rows)
}

// Select projects the named columns in the given order.
func (t *Table) Select(names ...string) (*Table, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("select needs at least one column")
	}
	pos := make([]int, len(names))
	cols := make([]Column, len(names))
	for i, n := range names {
		p, ok := t.index[n]
		if !ok {
			return nil, fmt.Errorf("unknown column %q", n)
		}
		pos[i] = p
		cols[i] = t.columns[p]
	}
	rows := make([]Row, len(t.rows))
	for i, row := range t.rows {
		out := make(Row, len(pos))
		for j, p := range pos {
			out[j] = row[p]
		}
		rows[i] = out
	}
	return New(cols, rows)
}

// Sort orders rows by the named column. The sort is stable and nulls always
// sort last. Category columns sort by label order.
func (t *Table) Sort(name string, ascending bool) (*Table, error) {
	c, ok := t.index[name]
	if !ok {
		return nil, fmt.Errorf("unknown column %q", name)
	}
	col := t.columns[c]
	idx := allIndexes(len(t.rows))
	var cmpErr error
	slices.SortStableFunc(idx, func(a, b int) int {
		va, vb := t.rows[a][c], t.rows[b][c]
		na, nb := IsNull(va), IsNull(vb)
		switch {
		case na && nb:
			return 0
		case na:
			return 1
		case nb:
			return -1
		}
		r, err := col.compare(va, vb)
		if err != nil && cmpErr == nil {
			cmpErr = err
		}
		if !ascending {
			r = -r
		}
		return r
	})
	if cmpErr != nil {
		return nil, cmpErr
	}
	return t.selectRows(idx), nil
}

// NullCounts returns a (column, nulls) table with one row per column.
func (t *Table) NullCounts() *Table {
	rows := make([]Row, len(t.columns))
	for c, col := range t.columns {
		var n int64
		for _, row := range t.rows {
			if IsNull(row[c]) {
				n++
			}
		}
		rows[c] = Row{col.Name, n}
	}
	return MustNew([]Column{{Name: "column", Type: String}, {Name: "nulls", Type: Int}}, rows)
}

// ValueCounts returns (value, count) rows for the named column ordered by
// count descending, ties broken by first appearance. Nulls are not counted.
func (t *Table) ValueCounts(name string) (*Table, error) {
	c, ok := t.index[name]
	if !ok {
		return nil, fmt.Errorf("unknown column %q", name)
	}
	type bucket struct {
		value any
		count int64
	}
	var order []string
	buckets := map[string]*bucket{}
	for _, row := range t.rows {
		v := row[c]
		if IsNull(v) {
			continue
		}
		k := valueKey(v)
		b, ok := buckets[k]
		if !ok {
			b = &bucket{value: v}
			buckets[k] = b
			order = append(order, k)
		}
		b.count++
	}
	slices.SortStableFunc(order, func(a, b string) int {
		return cmp.Compare(buckets[b].count, buckets[a].count)
	})
	rows := make([]Row, len(order))
	for i, k := range order {
		rows[i] = Row{buckets[k].value, buckets[k].count}
	}
	return New([]Column{t.columns[c], {Name: "count", Type: Int}}, rows)
}

// Equal reports whether two tables have the same schema and row-for-row
// identical content.
func Equal(a, b *Table) bool {
	if !slices.EqualFunc(a.columns, b.columns, func(x, y Column) bool {
		return x.Name == y.Name && x.Type == y.Type && slices.Equal(x.Categories, y.Categories)
	}) {
		return false
	}
	if len(a.rows) != len(b.rows) {
		return false
	}
	all := allIndexes(len(a.columns))
	for i := range a.rows {
		if rowKey(a.rows[i], all) != rowKey(b.rows[i], all) {
			return false
		}
	}
	return true
}

func (t *Table) existing(names []string) []int {
	cols := make([]int, 0, len(names))
	for _, n := range names {
		if c, ok := t.index[n]; ok {
			cols = append(cols, c)
		}
	}
	return cols
}

func (c Column) compare(a, b any) (int, error) {
	if c.Type == Category && len(c.Categories) > 0 {
		sa, _ := a.(string)
		sb, _ := b.(string)
		return cmp.Compare(slices.Index(c.Categories, sa), slices.Index(c.Categories, sb)), nil
	}
	return Compare(a, b)
}

func rowKey(row Row, cols []int) string {
	var sb strings.Builder
	for _, c := range cols {
		sb.WriteString(valueKey(row[c]))
		sb.WriteByte(0x1f)
	}
	return sb.String()
}

func valueKey(v any) string {
	if IsNull(v) {
		return "\x00null"
	}
	if tm, ok := v.(time.Time); ok {
		return "t:" + tm.UTC().Format(time.RFC3339Nano)
	}
	return fmt.Sprintf("%T:%v", v, v)
}
