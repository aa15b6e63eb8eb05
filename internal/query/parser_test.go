package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medallion-demo/internal/domain"
	"medallion-demo/internal/frame"
)

func TestParse_Stages(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Stage
	}{
		{"head default", "head()", []Stage{LimitStage{N: DefaultHeadRows}}},
		{"limit", "limit(3)", []Stage{LimitStage{N: 3}}},
		{"select", "select(a, `b c`)", []Stage{SelectStage{Columns: []string{"a", "b c"}}}},
		{"sort default ascending", "sort(price)", []Stage{SortStage{Column: "price", Ascending: true}}},
		{"sort descending", "sort(price, false)", []Stage{SortStage{Column: "price", Ascending: false}}},
		{
			"group aggregate",
			"groupBy(category) -> aggregate(revenue, sum)",
			[]Stage{GroupStage{Key: "category", Column: "revenue", Func: frame.AggSum}},
		},
		{"group count", "groupby(category)->count()", []Stage{GroupStage{Key: "category", Func: frame.AggCount}}},
		{"scalar aggregate", "aggregate(price, MEAN)", []Stage{AggregateStage{Column: "price", Func: frame.AggMean}}},
		{"scalar count", "count()", []Stage{AggregateStage{Func: frame.AggCount}}},
		{"describe", "describe()", []Stage{DescribeStage{}}},
		{"null counts", "nullCounts()", []Stage{NullCountsStage{}}},
		{"value counts", "valueCounts(brand)", []Stage{ValueCountsStage{Column: "brand"}}},
		{
			"chain",
			"valueCounts(brand) | head(3)",
			[]Stage{ValueCountsStage{Column: "brand"}, LimitStage{N: 3}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, q.Stages)
		})
	}
}

func TestParse_FilterPrecedence(t *testing.T) {
	q, err := Parse("filter(a > 1 or b == 'x' and not c is null)")
	require.NoError(t, err)
	require.Len(t, q.Stages, 1)

	want := OrExpr{
		Left: CompareExpr{Column: "a", Op: ">", Value: int64(1)},
		Right: AndExpr{
			Left:  CompareExpr{Column: "b", Op: "==", Value: "x"},
			Right: NotExpr{X: IsNullExpr{Column: "c"}},
		},
	}
	assert.Equal(t, want, q.Stages[0].(FilterStage).Cond)
}

func TestParse_FilterForms(t *testing.T) {
	tests := []struct {
		input string
		want  Expr
	}{
		{"filter((a < 2.5))", CompareExpr{Column: "a", Op: "<", Value: 2.5}},
		{"filter(a is not null)", IsNullExpr{Column: "a", Negate: true}},
		{"filter(a == null)", IsNullExpr{Column: "a"}},
		{"filter(a != null)", IsNullExpr{Column: "a", Negate: true}},
		{"filter(flag == true)", CompareExpr{Column: "flag", Op: "==", Value: true}},
		{"filter(`not` == false)", CompareExpr{Column: "not", Op: "==", Value: false}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			q, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, q.Stages[0].(FilterStage).Cond)
		})
	}
}

func TestParse_SyntaxErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantPos int
		wantMsg string
	}{
		{"empty", "   ", 0, "empty query"},
		{"python expression", "df.head(10)", 2, "forbidden"},
		{"import", "__import__('os')", 0, "unknown stage"},
		{"statement separator", "head(1); describe()", 7, "forbidden"},
		{"unknown stage", "drop(x)", 0, "unknown stage"},
		{"missing paren", "head(1", 6, "end of query"},
		{"trailing garbage", "head(1) x", 8, "'|' or end of query"},
		{"bad agg func", "aggregate(x, exec)", 13, "unknown aggregate function"},
		{"groupBy without arrow", "groupBy(a) count()", 11, "'->'"},
		{"negative limit", "limit(-1)", 6, "non-negative"},
		{"float limit", "head(1.5)", 5, "non-negative"},
		{"null ordering", "filter(a < null)", 9, "null only compares"},
		{"assignment", "filter(a = 1)", 9, "forbidden"},
		{"dangling pipe", "head() |", 8, "stage name"},
		{"sort flag", "sort(a, 1)", 8, "true or false"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			var se *domain.QuerySyntaxError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.input, se.Query)
			assert.Equal(t, tt.wantPos, se.Pos)
			assert.Contains(t, se.Message, tt.wantMsg)
		})
	}
}
