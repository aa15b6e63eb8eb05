package repository

import (
	"context"

	"medallion-demo/internal/domain"
)

// JobRepo implements domain.JobRepository in memory.
type JobRepo struct {
	log appendLog[domain.JobRecord]
}

// NewJobRepo creates an empty JobRepo.
func NewJobRepo() *JobRepo {
	return &JobRepo{}
}

// Append records a job.
func (r *JobRepo) Append(ctx context.Context, j domain.JobRecord) error {
	return r.log.append(ctx, j)
}

// List returns all jobs in append order.
func (r *JobRepo) List(ctx context.Context) ([]domain.JobRecord, error) {
	return r.log.list(ctx)
}

var _ domain.JobRepository = (*JobRepo)(nil)
