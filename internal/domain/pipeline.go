package domain

import "time"

// Pipeline run states.
const (
	PipelineStateIdle                     = "IDLE"
	PipelineStateRunning                  = "RUNNING"
	PipelineStateCompleted                = "COMPLETED"
	PipelineStateCompletedWithDegradation = "COMPLETED_WITH_DEGRADATION"
	PipelineStateHalted                   = "HALTED"
)

// Pipeline stage names, in execution order.
const (
	StageBronze = "Bronze: Clean & Validate"
	StageSilver = "Silver: Enrich & Transform"
	StageGold   = "Gold: Aggregate KPIs"
)

// PipelineStageCount is the number of zone transitions in a full run.
const PipelineStageCount = 3

// StageResult describes one committed pipeline stage.
type StageResult struct {
	Index      int                     `json:"index"`
	Name       string                  `json:"name"`
	Output     TableRef                `json:"output"`
	Rows       int                     `json:"rows"`
	DurationMs int64                   `json:"duration_ms"`
	Degraded   *TransformDegradedError `json:"degraded,omitempty"`
}

// PipelineResult summarises a pipeline run over one raw table.
type PipelineResult struct {
	RunID           string        `json:"run_id"`
	Raw             TableRef      `json:"raw"`
	State           string        `json:"state"`
	StagesCompleted int           `json:"stages_completed"`
	Degraded        bool          `json:"degraded"`
	Stages          []StageResult `json:"stages"`
	StartedAt       time.Time     `json:"started_at"`
	FinishedAt      time.Time     `json:"finished_at"`
}

// Progress is a pipeline progress report: Completed of Total stages committed.
type Progress struct {
	RunID     string
	Stage     string
	Completed int
	Total     int
}

// Fraction returns progress as a value in [0, 1].
func (p Progress) Fraction() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Completed) / float64(p.Total)
}

// PipelineSchedule re-runs the pipeline on a cron expression. Raw names a raw table;
// empty means the most recently ingested raw table at trigger time.
type PipelineSchedule struct {
	Name           string `yaml:"name" json:"name"`
	Cron           string `yaml:"cron" json:"cron"`
	Raw            string `yaml:"raw" json:"raw"`
	HaltOnDegraded bool   `yaml:"halt_on_degraded" json:"halt_on_degraded"`
}
