package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medallion-demo/internal/domain"
)

func TestCatalogRepo_AppendIsolatesCaller(t *testing.T) {
	ctx := context.Background()
	repo := NewCatalogRepo()

	entry := domain.CatalogEntry{
		TableName: "orders",
		Zone:      domain.ZoneRaw,
		Schema:    []domain.SchemaField{{Name: "id", Type: "int64"}},
		Tags:      []string{"raw"},
	}
	require.NoError(t, repo.Append(ctx, entry))
	entry.Schema[0].Name = "mutated"
	entry.Tags[0] = "mutated"

	got, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "id", got[0].Schema[0].Name)
	assert.Equal(t, "raw", got[0].Tags[0])
}

func TestLineageRepo_OrderPreserved(t *testing.T) {
	ctx := context.Background()
	repo := NewLineageRepo()
	for _, dst := range []string{"raw/a", "bronze/a", "silver/a"} {
		require.NoError(t, repo.Append(ctx, domain.LineageEvent{Destination: dst}))
	}
	got, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "raw/a", got[0].Destination)
	assert.Equal(t, "silver/a", got[2].Destination)
}

func TestAppendLog_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	repo := NewJobRepo()
	require.ErrorIs(t, repo.Append(ctx, domain.JobRecord{JobName: "x"}), context.Canceled)
	_, err := repo.List(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestAppendLog_ListIsSnapshot(t *testing.T) {
	ctx := context.Background()
	repo := NewQueryHistoryRepo()
	require.NoError(t, repo.Append(ctx, domain.QueryHistoryEntry{Query: "head()"}))

	snap, err := repo.List(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.Append(ctx, domain.QueryHistoryEntry{Query: "describe()"}))
	assert.Len(t, snap, 1)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestIngestionLogRepo_ConcurrentAppend(t *testing.T) {
	ctx := context.Background()
	repo := NewIngestionLogRepo()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = repo.Append(ctx, domain.IngestionLogEntry{Dataset: "d", Rows: 1})
		}()
	}
	wg.Wait()
	got, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 50)
}
