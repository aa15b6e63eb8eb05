package domain

// ZoneStats summarises one zone for the overview.
type ZoneStats struct {
	Zone      Zone `json:"zone"`
	Tables    int  `json:"tables"`
	TotalRows int  `json:"total_rows"`
}

// Overview is the dashboard landing summary.
type Overview struct {
	Zones          []ZoneStats  `json:"zones"`
	CatalogEntries int          `json:"catalog_entries"`
	Jobs           int          `json:"jobs"`
	Queries        int          `json:"queries"`
	Lineage        LineageStats `json:"lineage"`
}

// TableSummary describes one stored table for zone listings.
type TableSummary struct {
	Zone    Zone   `json:"zone"`
	Name    string `json:"name"`
	Rows    int    `json:"rows"`
	Columns int    `json:"columns"`
}
