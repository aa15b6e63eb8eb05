package store

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medallion-demo/internal/domain"
	"medallion-demo/internal/frame"
)

func tinyTable(n int) *frame.Table {
	rows := make([]frame.Row, n)
	for i := range rows {
		rows[i] = frame.Row{int64(i)}
	}
	return frame.MustNew([]frame.Column{{Name: "id", Type: frame.Int}}, rows)
}

func TestStore_PutGet(t *testing.T) {
	s := New()
	require.NoError(t, s.Put(domain.ZoneRaw, "orders", tinyTable(3)))

	got, err := s.Get(domain.ZoneRaw, "orders")
	require.NoError(t, err)
	assert.Equal(t, 3, got.Len())

	_, err = s.Get(domain.ZoneBronze, "orders")
	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestStore_PutDuplicate(t *testing.T) {
	s := New()
	require.NoError(t, s.Put(domain.ZoneRaw, "orders", tinyTable(3)))

	err := s.Put(domain.ZoneRaw, "orders", tinyTable(1))
	var dup *domain.DuplicateNameError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, domain.ZoneRaw, dup.Zone)

	got, err := s.Get(domain.ZoneRaw, "orders")
	require.NoError(t, err)
	assert.Equal(t, 3, got.Len(), "original table must survive the collision")

	// Same name in another zone is fine.
	require.NoError(t, s.Put(domain.ZoneBronze, "orders", tinyTable(1)))
}

func TestStore_PutValidation(t *testing.T) {
	s := New()
	var ve *domain.ValidationError
	require.ErrorAs(t, s.Put(domain.ZoneRaw, "", tinyTable(1)), &ve)
	require.ErrorAs(t, s.Put(domain.ZoneRaw, "x", nil), &ve)

	var nf *domain.NotFoundError
	require.ErrorAs(t, s.Put(domain.Zone("platinum"), "x", tinyTable(1)), &nf)
}

func TestStore_ListOrderAndRestart(t *testing.T) {
	s := New()
	for _, n := range []string{"c", "a", "b"} {
		require.NoError(t, s.Put(domain.ZoneSilver, n, tinyTable(1)))
	}

	collect := func() []string {
		var names []string
		for name := range s.List(domain.ZoneSilver) {
			names = append(names, name)
		}
		return names
	}
	assert.Equal(t, []string{"c", "a", "b"}, collect())
	assert.Equal(t, []string{"c", "a", "b"}, collect(), "sequence must be restartable")

	var first string
	for name := range s.List(domain.ZoneSilver) {
		first = name
		break
	}
	assert.Equal(t, "c", first)

	latest, ok := s.Latest(domain.ZoneSilver)
	require.True(t, ok)
	assert.Equal(t, "b", latest)
}

func TestStore_Stats(t *testing.T) {
	s := New()
	require.NoError(t, s.Put(domain.ZoneRaw, "a", tinyTable(3)))
	require.NoError(t, s.Put(domain.ZoneRaw, "b", tinyTable(2)))
	require.NoError(t, s.Put(domain.ZoneGold, "g", tinyTable(1)))

	stats := s.Stats()
	require.Len(t, stats, 4)
	assert.Equal(t, domain.ZoneStats{Zone: domain.ZoneRaw, Tables: 2, TotalRows: 5}, stats[0])
	assert.Equal(t, domain.ZoneStats{Zone: domain.ZoneBronze}, stats[1])
	assert.Equal(t, domain.ZoneStats{Zone: domain.ZoneGold, Tables: 1, TotalRows: 1}, stats[3])
}

func TestStore_ConcurrentPuts(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- s.Put(domain.ZoneRaw, fmt.Sprintf("t%d", i%32), tinyTable(1))
		}(i)
	}
	wg.Wait()
	close(errs)

	var dups int
	for err := range errs {
		if err != nil {
			dups++
		}
	}
	assert.Equal(t, 32, dups)
	assert.Equal(t, 32, s.Stats()[0].Tables)
}

func TestStore_PutUnique(t *testing.T) {
	s := New()
	name, err := s.PutUnique(domain.ZoneBronze, "bronze_orders_120000", tinyTable(1))
	require.NoError(t, err)
	assert.Equal(t, "bronze_orders_120000", name)

	name, err = s.PutUnique(domain.ZoneBronze, "bronze_orders_120000", tinyTable(2))
	require.NoError(t, err)
	assert.Equal(t, "bronze_orders_120000_2", name)

	name, err = s.PutUnique(domain.ZoneBronze, "bronze_orders_120000", tinyTable(3))
	require.NoError(t, err)
	assert.Equal(t, "bronze_orders_120000_3", name)

	first, err := s.Get(domain.ZoneBronze, "bronze_orders_120000")
	require.NoError(t, err)
	assert.Equal(t, 1, first.Len())

	_, err = s.PutUnique(domain.ZoneBronze, "", tinyTable(1))
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
}
