package transform

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medallion-demo/internal/domain"
	"medallion-demo/internal/frame"
)

func newEngine(t *testing.T, rules Rules) *Engine {
	t.Helper()
	return NewEngine(rules, slog.New(slog.DiscardHandler))
}

var productColumns = []frame.Column{
	{Name: "pid", Type: frame.String},
	{Name: "title", Type: frame.String},
	{Name: "category", Type: frame.String},
	{Name: "actual_price", Type: frame.String},
	{Name: "selling_price", Type: frame.String},
	{Name: "discount", Type: frame.String},
	{Name: "average_rating", Type: frame.Float},
	{Name: "out_of_stock", Type: frame.Bool},
}

func productsTable(t *testing.T) *frame.Table {
	t.Helper()
	return frame.MustNew(productColumns, []frame.Row{
		{"P1", "Shirt", "Clothing", "₹1,000", "₹800", "20% off", 4.5, false},
		{"P2", "Jeans", "Clothing", "₹2,000", "₹1,500", "25% off", 3.5, true},
		{"P1", "Shirt (dup)", "Clothing", "₹1,000", "₹800", "20% off", 4.5, false},
		{nil, "Orphan", "Footwear", "₹500", "₹400", "20% off", 2.0, false},
		{"P3", nil, "Footwear", "₹500", "₹400", "20% off", 2.0, false},
		{"P4", "Sneakers", "Footwear", "₹3,000", "₹3,000", "", nil, true},
		{"P5", "Socks", "Accessories", "n/a", "₹100", "10% off", 0.0, false},
	})
}

func TestToBronze_CleansKeysAndPrices(t *testing.T) {
	e := newEngine(t, DefaultRules())
	out, err := e.ToBronze(productsTable(t))
	require.NoError(t, err)

	assert.Equal(t, []any{"P1", "P2", "P4", "P5"}, out.Values("pid"))
	for _, key := range []string{"pid", "title"} {
		for _, v := range out.Values(key) {
			assert.NotNil(t, v, key)
		}
	}
	assert.Equal(t, []any{1000.0, 2000.0, 3000.0, nil}, out.Values("actual_price_clean"))
	assert.Equal(t, []any{800.0, 1500.0, 3000.0, 100.0}, out.Values("selling_price_clean"))
	assert.Equal(t, []any{20.0, 25.0, nil, 10.0}, out.Values("discount_pct"))
}

func TestToBronze_NoDuplicateOrNullKeys(t *testing.T) {
	e := newEngine(t, DefaultRules())
	out, err := e.ToBronze(productsTable(t))
	require.NoError(t, err)

	seen := map[any]bool{}
	for _, v := range out.Values("pid") {
		require.NotNil(t, v)
		assert.False(t, seen[v], "duplicate pid %v", v)
		seen[v] = true
	}
}

func TestToBronze_SkipsMissingColumns(t *testing.T) {
	e := newEngine(t, DefaultRules())
	in := frame.MustNew(
		[]frame.Column{{Name: "name", Type: frame.String}},
		[]frame.Row{{"a"}, {"a"}, {nil}},
	)
	out, err := e.ToBronze(in)
	require.NoError(t, err)
	assert.True(t, frame.Equal(in, out))
}

func TestToBronze_ExistingCleanColumnKept(t *testing.T) {
	e := newEngine(t, DefaultRules())
	in := frame.MustNew(
		[]frame.Column{
			{Name: "pid", Type: frame.String},
			{Name: "title", Type: frame.String},
			{Name: "actual_price", Type: frame.String},
			{Name: "actual_price_clean", Type: frame.Float},
		},
		[]frame.Row{{"P1", "t", "₹999", 1.0}},
	)
	out, err := e.ToBronze(in)
	require.NoError(t, err)
	assert.Equal(t, 1.0, out.Value(0, "actual_price_clean"))
}

func TestApply_ScenarioNullCustomerIDs(t *testing.T) {
	rules := DefaultRules()
	rules.Bronze.NullKeys = []string{"customer_id"}
	rules.Bronze.DedupeKeys = []string{"order_id"}
	e := newEngine(t, rules)

	rows := make([]frame.Row, 500)
	for i := range rows {
		var customer any = fmt.Sprintf("C%03d", i%40)
		if i == 7 || i == 250 || i == 499 {
			customer = nil
		}
		rows[i] = frame.Row{int64(i), customer, float64(i)}
	}
	orders := frame.MustNew([]frame.Column{
		{Name: "order_id", Type: frame.Int},
		{Name: "customer_id", Type: frame.String},
		{Name: "amount", Type: frame.Float},
	}, rows)

	out, err := e.Apply(context.Background(), domain.ZoneBronze, orders)
	require.NoError(t, err)
	assert.Nil(t, out.Degraded)
	assert.Equal(t, 497, out.Table.Len())
	for _, v := range out.Table.Values("customer_id") {
		assert.NotNil(t, v)
	}
}

func TestToSilver_DerivedColumns(t *testing.T) {
	e := newEngine(t, DefaultRules())
	in := frame.MustNew(
		[]frame.Column{
			{Name: "actual_price_clean", Type: frame.Float},
			{Name: "selling_price_clean", Type: frame.Float},
			{Name: "average_rating", Type: frame.Float},
		},
		[]frame.Row{
			{1000.0, 800.0, 4.5},
			{3.0, 1.0, 2.0},
			{0.0, 10.0, 0.0},
			{nil, 10.0, 5.0},
			{100.0, 100.0, 5.5},
			{999.0, 333.0, 2.1},
		},
	)
	out, err := e.ToSilver(in)
	require.NoError(t, err)

	assert.Equal(t, []any{200.0, 2.0, -10.0, nil, 0.0, 666.0}, out.Values("price_savings"))
	assert.Equal(t, []any{20.0, 66.67, nil, nil, 0.0, 66.67}, out.Values("discount_pct_calc"))
	assert.Equal(t, []any{"Excellent", "Poor", nil, "Excellent", nil, "Fair"}, out.Values("rating_category"))

	col, ok := out.Column("rating_category")
	require.True(t, ok)
	assert.Equal(t, frame.Category, col.Type)
	assert.Equal(t, []string{"Poor", "Fair", "Good", "Excellent"}, col.Categories)
	assert.False(t, out.Has("revenue"))
}

func TestToSilver_DiscountFormulaHolds(t *testing.T) {
	e := newEngine(t, DefaultRules())
	bronze, err := e.ToBronze(productsTable(t))
	require.NoError(t, err)
	out, err := e.ToSilver(bronze)
	require.NoError(t, err)

	for i := range out.Len() {
		got := out.Value(i, "discount_pct_calc")
		a, okA := frame.ToFloat(out.Value(i, "actual_price_clean"))
		s, okS := frame.ToFloat(out.Value(i, "selling_price_clean"))
		if !okA || !okS || a == 0 {
			assert.Nil(t, got)
			continue
		}
		assert.Equal(t, frame.Round2((a-s)/a*100), got)
	}
}

func TestToSilver_Revenue(t *testing.T) {
	e := newEngine(t, DefaultRules())
	in := frame.MustNew(
		[]frame.Column{
			{Name: "selling_price_clean", Type: frame.Float},
			{Name: "quantity", Type: frame.Int},
			{Name: "discount_pct", Type: frame.Float},
		},
		[]frame.Row{
			{10.0, int64(3), 10.0},
			{5.0, int64(2), nil},
			{nil, int64(1), 0.0},
		},
	)
	out, err := e.ToSilver(in)
	require.NoError(t, err)
	assert.Equal(t, []any{27.0, 10.0, nil}, out.Values("revenue"))
}

func TestToGold_AggregatesAndSorts(t *testing.T) {
	e := newEngine(t, DefaultRules())
	bronze, err := e.ToBronze(productsTable(t))
	require.NoError(t, err)
	silver, err := e.ToSilver(bronze)
	require.NoError(t, err)
	gold, err := e.ToGold(silver)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"category", "product_count", "avg_price", "median_price", "min_price",
		"max_price", "avg_rating", "avg_discount", "out_of_stock_count",
	}, gold.ColumnNames())
	assert.Equal(t, []any{"Clothing", "Accessories", "Footwear"}, gold.Values("category"))
	assert.Equal(t, []any{int64(2), int64(1), int64(1)}, gold.Values("product_count"))
	assert.Equal(t, []any{1150.0, 100.0, 3000.0}, gold.Values("avg_price"))
	assert.Equal(t, []any{4.0, 0.0, nil}, gold.Values("avg_rating"))
	assert.Equal(t, []any{22.5, nil, 0.0}, gold.Values("avg_discount"))
	assert.Equal(t, []any{1.0, 0.0, 1.0}, gold.Values("out_of_stock_count"))
}

func TestApply_ScenarioGoldWithoutCategoryDegrades(t *testing.T) {
	e := newEngine(t, DefaultRules())
	rows := make([]frame.Row, 150)
	for i := range rows {
		rows[i] = frame.Row{fmt.Sprintf("P%d", i), float64(i)}
	}
	silver := frame.MustNew([]frame.Column{
		{Name: "pid", Type: frame.String},
		{Name: "selling_price_clean", Type: frame.Float},
	}, rows)

	out, err := e.Apply(context.Background(), domain.ZoneGold, silver)
	require.NoError(t, err)
	require.NotNil(t, out.Degraded)
	assert.Equal(t, domain.ZoneGold, out.Degraded.Zone)
	assert.Contains(t, out.Degraded.Reason, "category")
	assert.True(t, frame.Equal(silver.Head(100), out.Table))
}

func TestApply_Idempotent(t *testing.T) {
	e := newEngine(t, DefaultRules())
	raw := productsTable(t)
	for _, zone := range []domain.Zone{domain.ZoneBronze, domain.ZoneSilver, domain.ZoneGold} {
		first, err := e.Apply(context.Background(), zone, raw)
		require.NoError(t, err)
		second, err := e.Apply(context.Background(), zone, raw)
		require.NoError(t, err)
		assert.True(t, frame.Equal(first.Table, second.Table), zone)
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	e := newEngine(t, DefaultRules())
	raw := productsTable(t)
	before := raw.Clone()
	_, err := e.Apply(context.Background(), domain.ZoneBronze, raw)
	require.NoError(t, err)
	assert.True(t, frame.Equal(before, raw))
}

func TestApply_ZeroRows(t *testing.T) {
	e := newEngine(t, DefaultRules())
	table := frame.Empty(productColumns...)
	ctx := context.Background()
	for _, zone := range []domain.Zone{domain.ZoneBronze, domain.ZoneSilver, domain.ZoneGold} {
		out, err := e.Apply(ctx, zone, table)
		require.NoError(t, err)
		assert.Nil(t, out.Degraded, zone)
		assert.Equal(t, 0, out.Table.Len(), zone)
		table = out.Table
	}
	assert.True(t, table.Has("category", "product_count"))
}

func TestApply_InvalidTarget(t *testing.T) {
	e := newEngine(t, DefaultRules())
	_, err := e.Apply(context.Background(), domain.ZoneRaw, productsTable(t))
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestApply_CancelledContext(t *testing.T) {
	e := newEngine(t, DefaultRules())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.Apply(ctx, domain.ZoneBronze, productsTable(t))
	require.ErrorIs(t, err, context.Canceled)
}

func TestGuard_RecoversPanic(t *testing.T) {
	out, err := guard(func(*frame.Table) (*frame.Table, error) {
		panic("boom")
	}, frame.Empty())
	assert.Nil(t, out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestParseRules(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
		check   func(t *testing.T, r Rules)
	}{
		{
			name: "overrides_keep_defaults",
			yaml: "bronze:\n  null_keys: [customer_id]\nschedules:\n  - name: nightly\n    cron: \"0 2 * * *\"\n",
			check: func(t *testing.T, r Rules) {
				assert.Equal(t, []string{"customer_id"}, r.Bronze.NullKeys)
				assert.Equal(t, []string{"pid"}, r.Bronze.DedupeKeys)
				assert.Equal(t, "category", r.Gold.Dimension)
				require.Len(t, r.Schedules, 1)
				assert.Equal(t, "nightly", r.Schedules[0].Name)
			},
		},
		{name: "label_mismatch", yaml: "silver:\n  rating_labels: [Low]\n", wantErr: "rating_labels"},
		{name: "unsorted_bins", yaml: "silver:\n  rating_bins: [0, 3, 2]\n  rating_labels: [a, b]\n", wantErr: "rating_bins"},
		{name: "bad_fallback", yaml: "fallback_rows: 0\n", wantErr: "fallback_rows"},
		{name: "schedule_without_cron", yaml: "schedules:\n  - name: x\n", wantErr: "no cron"},
		{name: "malformed", yaml: "bronze: [", wantErr: "parse rules"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ParseRules([]byte(tt.yaml))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, r)
		})
	}
}
