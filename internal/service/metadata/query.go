package metadata

import (
	"context"
	"slices"

	"medallion-demo/internal/domain"
)

// Search scans the catalog linearly and returns the entries matching the
// filter, in creation order.
func (s *Service) Search(ctx context.Context, filter domain.CatalogFilter) ([]domain.CatalogEntry, error) {
	entries, err := s.catalog.List(ctx)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(entries, func(e domain.CatalogEntry) bool {
		return !filter.Matches(e)
	}), nil
}

// ListLineage returns every lineage event in causal order.
func (s *Service) ListLineage(ctx context.Context) ([]domain.LineageEvent, error) {
	return s.lineage.List(ctx)
}

// ListJobs returns every job record in execution order.
func (s *Service) ListJobs(ctx context.Context) ([]domain.JobRecord, error) {
	return s.jobs.List(ctx)
}

// ListIngestionLog returns every ingestion in order.
func (s *Service) ListIngestionLog(ctx context.Context) ([]domain.IngestionLogEntry, error) {
	return s.ingestions.List(ctx)
}

// CatalogEntry returns the entry describing the given table.
func (s *Service) CatalogEntry(ctx context.Context, ref domain.TableRef) (*domain.CatalogEntry, error) {
	entries, err := s.catalog.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if entries[i].Ref() == ref {
			return &entries[i], nil
		}
	}
	return nil, domain.ErrNotFound("no catalog entry for %s", ref)
}

// LineageGraph builds the node/link view of the lineage log. Nodes appear in
// first-seen order; link weights are rows processed, floored at 1.
func (s *Service) LineageGraph(ctx context.Context) (*domain.LineageGraph, error) {
	events, err := s.lineage.List(ctx)
	if err != nil {
		return nil, err
	}
	g := &domain.LineageGraph{Nodes: []string{}, Links: make([]domain.LineageLink, 0, len(events))}
	index := map[string]int{}
	node := func(name string) int {
		if i, ok := index[name]; ok {
			return i
		}
		index[name] = len(g.Nodes)
		g.Nodes = append(g.Nodes, name)
		return index[name]
	}
	for _, e := range events {
		g.Links = append(g.Links, domain.LineageLink{
			Source: node(e.Source),
			Target: node(e.Destination),
			Value:  max(e.RowsProcessed, 1),
		})
	}
	return g, nil
}

// LineageStats returns event count, rows moved and mean duration.
func (s *Service) LineageStats(ctx context.Context) (domain.LineageStats, error) {
	events, err := s.lineage.List(ctx)
	if err != nil {
		return domain.LineageStats{}, err
	}
	st := domain.LineageStats{TotalEvents: len(events)}
	if len(events) == 0 {
		return st, nil
	}
	var totalMs int64
	for _, e := range events {
		st.TotalRowsMoved += int64(e.RowsProcessed)
		totalMs += e.DurationMs
	}
	st.AvgDurationMs = float64(totalMs) / float64(len(events))
	return st, nil
}
