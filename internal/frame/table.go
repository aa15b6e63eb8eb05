// Package frame implements the immutable in-memory tables stored in the lake
// and the column operations the transforms and queries are built from.
package frame

import (
	"fmt"
	"time"
)

// Type is the declared type of a column.
type Type string

const (
	String    Type = "string"
	Float     Type = "float64"
	Int       Type = "int64"
	Bool      Type = "bool"
	Category  Type = "category"
	Timestamp Type = "timestamp"
)

// Column describes one column. Categories holds the label order of a
// Category column and is empty for every other type.
type Column struct {
	Name       string   `json:"name"`
	Type       Type     `json:"type"`
	Categories []string `json:"categories,omitempty"`
}

// Row holds one value per column. A nil value is a null. Non-null values are
// string (String, Category), float64, int64, bool, or time.Time.
type Row []any

// Table is an ordered collection of rows sharing a column schema. Tables are
// immutable: every operation returns a new table and never aliases a row
// slice that a caller could later modify.
type Table struct {
	columns []Column
	rows    []Row
	index   map[string]int
}

// New builds a table, validating column names, row widths and value types.
// The table takes ownership of rows.
func New(columns []Column, rows []Row) (*Table, error) {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		if c.Name == "" {
			return nil, fmt.Errorf("column %d has an empty name", i)
		}
		if _, dup := index[c.Name]; dup {
			return nil, fmt.Errorf("duplicate column %q", c.Name)
		}
		if !c.Type.valid() {
			return nil, fmt.Errorf("column %q has unknown type %q", c.Name, c.Type)
		}
		index[c.Name] = i
	}
	for r, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("row %d has %d values, want %d", r, len(row), len(columns))
		}
		for i, v := range row {
			if !columns[i].accepts(v) {
				return nil, fmt.Errorf("row %d column %q: value %v (%T) is not %s", r, columns[i].Name, v, v, columns[i].Type)
			}
		}
	}
	cols := make([]Column, len(columns))
	copy(cols, columns)
	if rows == nil {
		rows = []Row{}
	}
	return &Table{columns: cols, rows: rows, index: index}, nil
}

// MustNew is New for statically known tables; it panics on invalid input.
func MustNew(columns []Column, rows []Row) *Table {
	t, err := New(columns, rows)
	if err != nil {
		panic(err)
	}
	return t
}

// Empty returns a zero-row table with the given columns.
func Empty(columns ...Column) *Table {
	return MustNew(columns, nil)
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Width returns the number of columns.
func (t *Table) Width() int { return len(t.columns) }

// Columns returns a copy of the schema.
func (t *Table) Columns() []Column {
	out := make([]Column, len(t.columns))
	copy(out, t.columns)
	return out
}

// ColumnNames returns the column names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// Column returns the named column.
func (t *Table) Column(name string) (Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return Column{}, false
	}
	return t.columns[i], true
}

// Has reports whether every named column exists.
func (t *Table) Has(names ...string) bool {
	for _, n := range names {
		if _, ok := t.index[n]; !ok {
			return false
		}
	}
	return true
}

// Index returns the position of the named column.
func (t *Table) Index(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// Row returns a copy of row i.
func (t *Table) Row(i int) Row {
	out := make(Row, len(t.rows[i]))
	copy(out, t.rows[i])
	return out
}

// Value returns the value of the named column in row i.
func (t *Table) Value(i int, name string) any {
	c, ok := t.index[name]
	if !ok {
		return nil
	}
	return t.rows[i][c]
}

// Values returns a copy of the named column's values.
func (t *Table) Values(name string) []any {
	c, ok := t.index[name]
	if !ok {
		return nil
	}
	out := make([]any, len(t.rows))
	for i, row := range t.rows {
		out[i] = row[c]
	}
	return out
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	return t.selectRows(allIndexes(len(t.rows)))
}

func (t *Table) selectRows(idx []int) *Table {
	rows := make([]Row, len(idx))
	for i, r := range idx {
		rows[i] = t.Row(r)
	}
	index := make(map[string]int, len(t.index))
	for k, v := range t.index {
		index[k] = v
	}
	return &Table{columns: t.Columns(), rows: rows, index: index}
}

func allIndexes(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

func (ty Type) valid() bool {
	switch ty {
	case String, Float, Int, Bool, Category, Timestamp:
		return true
	}
	return false
}

func (c Column) accepts(v any) bool {
	if v == nil {
		return true
	}
	switch c.Type {
	case String:
		_, ok := v.(string)
		return ok
	case Category:
		s, ok := v.(string)
		if !ok {
			return false
		}
		if len(c.Categories) == 0 {
			return true
		}
		for _, label := range c.Categories {
			if label == s {
				return true
			}
		}
		return false
	case Float:
		_, ok := v.(float64)
		return ok
	case Int:
		_, ok := v.(int64)
		return ok
	case Bool:
		_, ok := v.(bool)
		return ok
	case Timestamp:
		_, ok := v.(time.Time)
		return ok
	}
	return false
}
