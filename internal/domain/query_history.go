package domain

import "time"

// MaxHistoryQueryLen bounds the query text kept in history.
const MaxHistoryQueryLen = 80

// Query history status values. Failures are recorded as "ERROR: <message>".
const (
	QueryStatusOK          = "OK"
	QueryStatusErrorPrefix = "ERROR"
)

// QueryHistoryEntry records one query execution, successful or not.
type QueryHistoryEntry struct {
	ID        string    `json:"id"`
	Query     string    `json:"query"`
	Dataset   string    `json:"dataset"`
	Rows      int       `json:"rows"`
	TimeMs    int64     `json:"time_ms"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// TruncateQuery shortens query text to MaxHistoryQueryLen runes.
func TruncateQuery(q string) string {
	r := []rune(q)
	if len(r) <= MaxHistoryQueryLen {
		return q
	}
	return string(r[:MaxHistoryQueryLen])
}
