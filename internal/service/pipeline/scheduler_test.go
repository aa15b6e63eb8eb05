package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medallion-demo/internal/domain"
)

func TestScheduler_Start(t *testing.T) {
	tests := []struct {
		name      string
		schedules []domain.PipelineSchedule
		wantNames []string
	}{
		{
			name:      "loads valid schedules",
			schedules: []domain.PipelineSchedule{{Name: "nightly", Cron: "0 2 * * *"}},
			wantNames: []string{"nightly"},
		},
		{
			name:      "empty schedules",
			schedules: nil,
			wantNames: []string{},
		},
		{
			name: "invalid cron skipped",
			schedules: []domain.PipelineSchedule{
				{Name: "broken", Cron: "not a cron"},
				{Name: "hourly", Cron: "@hourly"},
			},
			wantNames: []string{"hourly"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			s := NewScheduler(h.runner, tt.schedules, discardLogger())
			require.NoError(t, s.Start(context.Background()))
			defer s.Stop()
			assert.ElementsMatch(t, tt.wantNames, s.Schedules())
		})
	}
}

func TestScheduler_Reload(t *testing.T) {
	h := newHarness(t)
	s := NewScheduler(h.runner, []domain.PipelineSchedule{{Name: "a", Cron: "@daily"}}, discardLogger())
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	s.Reload([]domain.PipelineSchedule{{Name: "b", Cron: "@hourly"}, {Name: "c", Cron: "@weekly"}})
	assert.ElementsMatch(t, []string{"b", "c"}, s.Schedules())
	assert.Len(t, s.cron.Entries(), 2)
}

func TestScheduler_Trigger(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	s := NewScheduler(h.runner, nil, discardLogger())

	_, err := s.trigger(ctx, domain.PipelineSchedule{Name: "latest"})
	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)

	h.ingest(t, "first", productsTable(t))
	h.ingest(t, "second", productsTable(t))

	res, err := s.trigger(ctx, domain.PipelineSchedule{Name: "latest"})
	require.NoError(t, err)
	assert.Equal(t, "second", res.Raw.Name)

	res, err = s.trigger(ctx, domain.PipelineSchedule{Name: "named", Raw: "first"})
	require.NoError(t, err)
	assert.Equal(t, "first", res.Raw.Name)
	assert.Equal(t, domain.PipelineStateCompleted, res.State)
}
