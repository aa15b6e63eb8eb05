package pipeline

import (
	"context"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"

	"medallion-demo/internal/domain"
)

// Scheduler re-runs the pipeline on cron schedules.
type Scheduler struct {
	cron      *cron.Cron
	runner    *Runner
	schedules []domain.PipelineSchedule
	logger    *slog.Logger
	mu        sync.Mutex
	entries   map[string]cron.EntryID // schedule name → cron entry
}

// NewScheduler creates a new pipeline scheduler.
func NewScheduler(runner *Runner, schedules []domain.PipelineSchedule, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		runner:    runner,
		schedules: schedules,
		logger:    logger.With("component", "scheduler"),
		entries:   make(map[string]cron.EntryID),
	}
}

// Start registers the configured schedules and starts the cron scheduler.
func (s *Scheduler) Start(_ context.Context) error {
	s.mu.Lock()
	s.loadSchedules()
	s.mu.Unlock()
	s.cron.Start()
	s.logger.Info("pipeline scheduler started", "schedules", len(s.entries))
	return nil
}

// Stop stops the cron scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("pipeline scheduler stopped")
}

// Reload replaces every cron entry with the given schedules.
func (s *Scheduler) Reload(schedules []domain.PipelineSchedule) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entryID := range s.entries {
		s.cron.Remove(entryID)
	}
	s.entries = make(map[string]cron.EntryID)
	s.schedules = schedules
	s.loadSchedules()
}

// Schedules returns the names of the registered schedules.
func (s *Scheduler) Schedules() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	return names
}

// loadSchedules adds every valid schedule to cron. Callers hold mu.
func (s *Scheduler) loadSchedules() {
	for _, sched := range s.schedules {
		entryID, err := s.cron.AddFunc(sched.Cron, func() {
			if _, err := s.trigger(context.Background(), sched); err != nil {
				s.logger.Warn("scheduled run failed", "schedule", sched.Name, "error", err)
			}
		})
		if err != nil {
			s.logger.Warn("invalid cron schedule",
				"schedule", sched.Name,
				"cron", sched.Cron,
				"error", err,
			)
			continue
		}
		s.entries[sched.Name] = entryID
		s.logger.Info("scheduled pipeline", "schedule", sched.Name, "cron", sched.Cron, "raw", sched.Raw)
	}
}

// trigger runs the pipeline for one schedule. An empty Raw resolves to the
// most recently ingested raw table.
func (s *Scheduler) trigger(ctx context.Context, sched domain.PipelineSchedule) (*domain.PipelineResult, error) {
	raw := sched.Raw
	if raw == "" {
		latest, ok := s.runner.LatestRaw()
		if !ok {
			return nil, domain.ErrNotFound("schedule %s: no raw table to run", sched.Name)
		}
		raw = latest
	}
	return s.runner.Run(ctx, raw, Options{HaltOnDegraded: sched.HaltOnDegraded})
}
