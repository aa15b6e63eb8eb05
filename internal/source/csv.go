package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"medallion-demo/internal/frame"
)

// nullTokens are cell values read as null.
var nullTokens = map[string]bool{"": true, "na": true, "n/a": true, "nan": true, "null": true, "none": true}

// DecodeCSV reads a CSV document with a header row. Column types are inferred
// from the non-null cells: int64, then float64, bool, timestamp, and string
// when nothing narrower fits. A column with only nulls is a string column.
func DecodeCSV(r io.Reader) (*frame.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("csv is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	names := headerNames(header)

	var records [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record %d: %w", len(records)+1, err)
		}
		if len(rec) != len(names) {
			return nil, fmt.Errorf("record %d has %d fields, header has %d", len(records)+1, len(rec), len(names))
		}
		records = append(records, rec)
	}

	cols := make([]frame.Column, len(names))
	for c, name := range names {
		cols[c] = frame.Column{Name: name, Type: inferType(records, c)}
	}
	rows := make([]frame.Row, len(records))
	for i, rec := range records {
		row := make(frame.Row, len(cols))
		for c, cell := range rec {
			row[c] = convert(cell, cols[c].Type)
		}
		rows[i] = row
	}
	return frame.New(cols, rows)
}

// headerNames trims header cells, names blank ones "column_N" and suffixes
// repeats so every column name is unique.
func headerNames(header []string) []string {
	names := make([]string, len(header))
	used := map[string]bool{}
	repeats := map[string]int{}
	for i, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF"))
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		base := name
		for used[name] {
			repeats[base]++
			name = fmt.Sprintf("%s_%d", base, repeats[base]+1)
		}
		used[name] = true
		names[i] = name
	}
	return names
}

func isNullCell(s string) bool {
	return nullTokens[strings.ToLower(strings.TrimSpace(s))]
}

func inferType(records [][]string, c int) frame.Type {
	candidates := []frame.Type{frame.Int, frame.Float, frame.Bool, frame.Timestamp}
	seen := false
	for _, rec := range records {
		cell := strings.TrimSpace(rec[c])
		if isNullCell(cell) {
			continue
		}
		seen = true
		kept := candidates[:0]
		for _, ty := range candidates {
			if convert(cell, ty) != nil {
				kept = append(kept, ty)
			}
		}
		candidates = kept
		if len(candidates) == 0 {
			return frame.String
		}
	}
	if !seen {
		return frame.String
	}
	return candidates[0]
}

// convert parses a cell as ty, returning nil when it is null or does not parse.
func convert(cell string, ty frame.Type) any {
	cell = strings.TrimSpace(cell)
	if isNullCell(cell) {
		return nil
	}
	switch ty {
	case frame.Int:
		if n, err := strconv.ParseInt(cell, 10, 64); err == nil {
			return n
		}
	case frame.Float:
		if f, err := strconv.ParseFloat(cell, 64); err == nil {
			return f
		}
	case frame.Bool:
		switch strings.ToLower(cell) {
		case "true":
			return true
		case "false":
			return false
		}
	case frame.Timestamp:
		if t, ok := frame.ParseTime(cell); ok {
			return t
		}
	default:
		return cell
	}
	return nil
}
