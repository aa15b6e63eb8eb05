package query

import "medallion-demo/internal/frame"

// Query is a parsed pipeline of stages applied left to right.
type Query struct {
	Stages []Stage
}

// Stage is one step of a query pipeline.
type Stage interface {
	stage()
}

// SelectStage projects columns.
type SelectStage struct {
	Columns []string
}

// FilterStage keeps rows where Cond holds.
type FilterStage struct {
	Cond Expr
}

// GroupStage groups by Key and aggregates Column with Func. A row count
// (count()) has an empty Column and produces a "count" column.
type GroupStage struct {
	Key    string
	Column string
	Func   frame.AggFunc
}

// AggregateStage aggregates the whole table into a 1×1 table.
type AggregateStage struct {
	Column string
	Func   frame.AggFunc
}

// SortStage orders rows by Column.
type SortStage struct {
	Column    string
	Ascending bool
}

// LimitStage keeps the first N rows.
type LimitStage struct {
	N int
}

// DescribeStage computes summary statistics.
type DescribeStage struct{}

// NullCountsStage counts nulls per column.
type NullCountsStage struct{}

// ValueCountsStage counts occurrences of each value of Column.
type ValueCountsStage struct {
	Column string
}

func (SelectStage) stage()      {}
func (FilterStage) stage()      {}
func (GroupStage) stage()       {}
func (AggregateStage) stage()   {}
func (SortStage) stage()        {}
func (LimitStage) stage()       {}
func (DescribeStage) stage()    {}
func (NullCountsStage) stage()  {}
func (ValueCountsStage) stage() {}

// Expr is a boolean filter expression.
type Expr interface {
	expr()
}

// AndExpr holds when both sides hold.
type AndExpr struct{ Left, Right Expr }

// OrExpr holds when either side holds.
type OrExpr struct{ Left, Right Expr }

// NotExpr negates X.
type NotExpr struct{ X Expr }

// CompareExpr compares a column against a literal. Rows whose value is
// null never satisfy a comparison.
type CompareExpr struct {
	Column string
	Op     string
	Value  any
}

// IsNullExpr tests a column for null, or for non-null when Negate is set.
type IsNullExpr struct {
	Column string
	Negate bool
}

func (AndExpr) expr()     {}
func (OrExpr) expr()      {}
func (NotExpr) expr()     {}
func (CompareExpr) expr() {}
func (IsNullExpr) expr()  {}
