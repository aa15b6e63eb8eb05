package domain

import (
	"slices"
	"strconv"
	"strings"
	"time"
)

// SchemaField is one (column, type) pair of a catalog schema snapshot.
type SchemaField struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// CatalogEntry is the metadata snapshot of one table at creation time.
// Entries are created once and never mutated.
type CatalogEntry struct {
	ID        string        `json:"id"`
	TableName string        `json:"table_name"`
	Zone      Zone          `json:"zone"`
	Schema    []SchemaField `json:"schema"`
	RowCount  int           `json:"row_count"`
	Source    string        `json:"source"`
	CreatedAt time.Time     `json:"created_at"`
	Checksum  string        `json:"checksum"`
	Format    string        `json:"format"`
	Owner     string        `json:"owner"`
	Tags      []string      `json:"tags"`
}

// Ref returns the table reference this entry describes.
func (e CatalogEntry) Ref() TableRef {
	return TableRef{Zone: e.Zone, Name: e.TableName}
}

// CatalogFilter narrows a catalog search. Empty fields match everything.
type CatalogFilter struct {
	Zone Zone
	Text string
}

// Matches reports whether the entry passes the zone filter and contains the
// search text (case-insensitive) in any of its fields.
func (f CatalogFilter) Matches(e CatalogEntry) bool {
	if f.Zone != "" && e.Zone != f.Zone {
		return false
	}
	needle := strings.ToLower(strings.TrimSpace(f.Text))
	if needle == "" {
		return true
	}
	return slices.ContainsFunc(e.searchFields(), func(s string) bool {
		return strings.Contains(strings.ToLower(s), needle)
	})
}

func (e CatalogEntry) searchFields() []string {
	fields := []string{
		e.ID, e.TableName, string(e.Zone), e.Source, e.Checksum, e.Format, e.Owner,
		strconv.Itoa(e.RowCount), e.CreatedAt.Format(time.RFC3339),
	}
	fields = append(fields, e.Tags...)
	for _, f := range e.Schema {
		fields = append(fields, f.Name, f.Type)
	}
	return fields
}

// IngestionLogEntry records one dataset landing in the raw zone.
type IngestionLogEntry struct {
	Dataset string    `json:"dataset"`
	Rows    int       `json:"rows"`
	Time    time.Time `json:"time"`
	Source  string    `json:"source"`
}
