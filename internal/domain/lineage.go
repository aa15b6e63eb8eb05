package domain

import "time"

// Lineage operations recorded outside of pipeline runs.
const (
	OperationIngest  = "INGEST"
	OperationPromote = "PROMOTE"
)

// Status values shared by lineage events and job records.
const (
	StatusSuccess  = "SUCCESS"
	StatusWarning  = "WARNING"
	StatusDegraded = "DEGRADED"
)

// LineageEvent is a directed source → destination edge produced by one
// ingestion or promotion. Events are append-only.
type LineageEvent struct {
	ID            string    `json:"id"`
	Source        string    `json:"source"`
	Destination   string    `json:"destination"`
	Operation     string    `json:"operation"`
	RowsProcessed int       `json:"rows_processed"`
	Timestamp     time.Time `json:"timestamp"`
	DurationMs    int64     `json:"duration_ms"`
	Status        string    `json:"status"`
	Detail        string    `json:"detail,omitempty"`
}

// LineageGraph is the node/link form of the lineage log, suitable for flow
// diagrams. Link weights are rows processed, floored at 1.
type LineageGraph struct {
	Nodes []string      `json:"nodes"`
	Links []LineageLink `json:"links"`
}

// LineageLink connects Nodes[Source] to Nodes[Target].
type LineageLink struct {
	Source int `json:"source"`
	Target int `json:"target"`
	Value  int `json:"value"`
}

// LineageStats summarises the lineage log.
type LineageStats struct {
	TotalEvents    int     `json:"total_events"`
	TotalRowsMoved int64   `json:"total_rows_moved"`
	AvgDurationMs  float64 `json:"avg_duration_ms"`
}
