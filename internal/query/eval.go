package query

import (
	"context"
	"errors"
	"fmt"

	"medallion-demo/internal/domain"
	"medallion-demo/internal/frame"
)

// ctxCheckInterval is how many rows a filter scans between context checks.
const ctxCheckInterval = 1024

// Run parses and evaluates a query against t. Parse failures are
// *domain.QuerySyntaxError; evaluation failures, including cancellation,
// are *domain.QueryExecutionError.
func Run(ctx context.Context, query string, t *frame.Table) (*frame.Table, error) {
	q, err := Parse(query)
	if err != nil {
		return nil, err
	}
	out, err := q.Eval(ctx, t)
	if err != nil {
		return nil, &domain.QueryExecutionError{Query: query, Message: err.Error()}
	}
	return out, nil
}

// Eval applies the stages in order. Scalar stages return a 1×1 table.
func (q *Query) Eval(ctx context.Context, t *frame.Table) (*frame.Table, error) {
	if t == nil {
		return nil, errors.New("no table selected")
	}
	out := t
	for i, st := range q.Stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, err := evalStage(ctx, st, out)
		if err != nil {
			return nil, fmt.Errorf("stage %d: %w", i+1, err)
		}
		out = next
	}
	return out, nil
}

func evalStage(ctx context.Context, st Stage, t *frame.Table) (*frame.Table, error) {
	switch s := st.(type) {
	case SelectStage:
		return t.Select(s.Columns...)
	case FilterStage:
		pred, err := compile(s.Cond, t)
		if err != nil {
			return nil, err
		}
		scanned := 0
		return t.Filter(func(row frame.Row) (bool, error) {
			scanned++
			if scanned%ctxCheckInterval == 0 {
				if err := ctx.Err(); err != nil {
					return false, err
				}
			}
			v, err := pred(row)
			return v == truthTrue, err
		})
	case GroupStage:
		agg := frame.Aggregation{Column: s.Column, Func: s.Func}
		switch s.Column {
		case "":
			agg.As = "count"
		case s.Key:
			agg.As = s.Column + "_" + string(s.Func)
		}
		return t.GroupBy(s.Key, []frame.Aggregation{agg})
	case AggregateStage:
		agg := frame.Aggregation{Column: s.Column, Func: s.Func}
		if s.Column == "" {
			agg.As = "count"
		}
		return t.Aggregate([]frame.Aggregation{agg})
	case SortStage:
		return t.Sort(s.Column, s.Ascending)
	case LimitStage:
		return t.Head(s.N), nil
	case DescribeStage:
		return t.Describe(), nil
	case NullCountsStage:
		return t.NullCounts(), nil
	case ValueCountsStage:
		return t.ValueCounts(s.Column)
	}
	return nil, fmt.Errorf("unsupported stage %T", st)
}

// truth is a three-valued logic result. A comparison against null is
// unknown, and filter keeps only rows that are true.
type truth int8

const (
	truthFalse truth = iota
	truthTrue
	truthUnknown
)

func truthOf(b bool) truth {
	if b {
		return truthTrue
	}
	return truthFalse
}

// predicate evaluates a compiled filter expression against one row.
type predicate func(frame.Row) (truth, error)

// compile resolves column names against t once so that rows are read by
// position.
func compile(e Expr, t *frame.Table) (predicate, error) {
	switch x := e.(type) {
	case AndExpr:
		l, r, err := compilePair(x.Left, x.Right, t)
		if err != nil {
			return nil, err
		}
		return func(row frame.Row) (truth, error) {
			lv, err := l(row)
			if err != nil || lv == truthFalse {
				return truthFalse, err
			}
			rv, err := r(row)
			if err != nil || rv == truthFalse {
				return truthFalse, err
			}
			if lv == truthUnknown || rv == truthUnknown {
				return truthUnknown, nil
			}
			return truthTrue, nil
		}, nil
	case OrExpr:
		l, r, err := compilePair(x.Left, x.Right, t)
		if err != nil {
			return nil, err
		}
		return func(row frame.Row) (truth, error) {
			lv, err := l(row)
			if err != nil || lv == truthTrue {
				return lv, err
			}
			rv, err := r(row)
			if err != nil || rv == truthTrue {
				return rv, err
			}
			if lv == truthUnknown || rv == truthUnknown {
				return truthUnknown, nil
			}
			return truthFalse, nil
		}, nil
	case NotExpr:
		inner, err := compile(x.X, t)
		if err != nil {
			return nil, err
		}
		return func(row frame.Row) (truth, error) {
			v, err := inner(row)
			switch v {
			case truthTrue:
				return truthFalse, err
			case truthFalse:
				return truthTrue, err
			}
			return v, err
		}, nil
	case IsNullExpr:
		idx, err := columnIndex(t, x.Column)
		if err != nil {
			return nil, err
		}
		return func(row frame.Row) (truth, error) {
			return truthOf(frame.IsNull(row[idx]) != x.Negate), nil
		}, nil
	case CompareExpr:
		idx, err := columnIndex(t, x.Column)
		if err != nil {
			return nil, err
		}
		test, err := opTest(x.Op)
		if err != nil {
			return nil, err
		}
		return func(row frame.Row) (truth, error) {
			v := row[idx]
			if frame.IsNull(v) {
				return truthUnknown, nil
			}
			c, err := frame.Compare(v, x.Value)
			if err != nil {
				return truthFalse, fmt.Errorf("column %q: %w", x.Column, err)
			}
			return truthOf(test(c)), nil
		}, nil
	}
	return nil, fmt.Errorf("unsupported expression %T", e)
}

func compilePair(left, right Expr, t *frame.Table) (predicate, predicate, error) {
	l, err := compile(left, t)
	if err != nil {
		return nil, nil, err
	}
	r, err := compile(right, t)
	if err != nil {
		return nil, nil, err
	}
	return l, r, nil
}

func columnIndex(t *frame.Table, name string) (int, error) {
	idx, ok := t.Index(name)
	if !ok {
		return 0, fmt.Errorf("unknown column %q", name)
	}
	return idx, nil
}

func opTest(op string) (func(int) bool, error) {
	switch op {
	case "==":
		return func(c int) bool { return c == 0 }, nil
	case "!=":
		return func(c int) bool { return c != 0 }, nil
	case "<":
		return func(c int) bool { return c < 0 }, nil
	case "<=":
		return func(c int) bool { return c <= 0 }, nil
	case ">":
		return func(c int) bool { return c > 0 }, nil
	case ">=":
		return func(c int) bool { return c >= 0 }, nil
	}
	return nil, fmt.Errorf("unknown operator %q", op)
}
