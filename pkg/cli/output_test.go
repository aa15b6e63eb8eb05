package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintJSON(&buf, map[string]int{"rows": 3}))
	assert.Equal(t, "{\n  \"rows\": 3\n}\n", buf.String())
}

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer
	PrintTable(&buf, []string{"zone", "name"}, [][]string{{"raw", "orders"}, {"gold", "gold_orders_120000"}})
	out := buf.String()
	assert.Contains(t, out, "ZONE")
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "gold_orders_120000")
	assert.NotContains(t, out, "│", "pipes get plain output")
}

func TestPrintTable_NoColumns(t *testing.T) {
	var buf bytes.Buffer
	PrintTable(&buf, nil, nil)
	assert.Empty(t, buf.String())
}

func TestPrintCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintCSV(&buf, []string{"a", "b"}, [][]string{{"1", "x,y"}}))
	assert.Equal(t, "a,b\n1,\"x,y\"\n", buf.String())
}

func TestPrintDetail(t *testing.T) {
	var buf bytes.Buffer
	PrintDetail(&buf, map[string]any{"jobs": 4.0, "catalog entries": 2.0})
	assert.Equal(t, "catalog entries:  2\njobs:             4\n", buf.String())
}

func TestExtractRows(t *testing.T) {
	items := []map[string]any{
		{"name": "orders", "rows": 1500000.0, "tags": []any{"a"}, "ok": true},
		{"name": "empty"},
	}
	rows := ExtractRows(items, []string{"name", "rows", "tags", "ok"})
	assert.Equal(t, [][]string{
		{"orders", "1500000", `["a"]`, "true"},
		{"empty", "", "", ""},
	}, rows)
}

func TestValidateOutputFormat(t *testing.T) {
	for _, f := range []string{"", "table", "json", "csv"} {
		assert.NoError(t, validateOutputFormat(f), f)
	}
	assert.Error(t, validateOutputFormat("yaml"))
}
