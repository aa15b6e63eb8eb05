package domain

import "time"

// JobRecord is the execution record of one ETL step. Records are append-only.
type JobRecord struct {
	ID         string    `json:"id"`
	JobName    string    `json:"job_name"`
	Zone       Zone      `json:"zone"`
	Rows       int       `json:"rows"`
	DurationMs int64     `json:"duration_ms"`
	StartedAt  time.Time `json:"started_at"`
	Status     string    `json:"status"`
	// Workers is the parallelism degree of the runner that executed the job.
	Workers int `json:"workers"`
}
