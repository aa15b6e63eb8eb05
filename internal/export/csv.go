// Package export serializes tables for download.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"medallion-demo/internal/frame"
)

// ContentType is the MIME type of WriteCSV output.
const ContentType = "text/csv; charset=utf-8"

// WriteCSV writes t as CSV with a header row. Nulls are empty cells and
// timestamps are RFC 3339.
func WriteCSV(w io.Writer, t *frame.Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.ColumnNames()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	record := make([]string, t.Width())
	for i := range t.Len() {
		for j, v := range t.Row(i) {
			record[j] = frame.Format(v)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write csv row %d: %w", i+1, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// Filename returns the download name of a table, e.g. "silver_products.csv".
func Filename(name string) string {
	return name + ".csv"
}
