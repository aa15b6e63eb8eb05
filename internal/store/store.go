// Package store holds the lake's tables, keyed by zone and name.
package store

import (
	"fmt"
	"iter"
	"slices"
	"sync"

	"medallion-demo/internal/domain"
	"medallion-demo/internal/frame"
)

// zoneTables is the table map of one zone, guarded by its own lock.
type zoneTables struct {
	mu     sync.RWMutex
	order  []string
	tables map[string]*frame.Table
}

// Store keeps named tables per zone. Names are unique within a zone and a
// table is never replaced once written.
type Store struct {
	zones map[domain.Zone]*zoneTables
}

// New creates an empty store with all four zones.
func New() *Store {
	s := &Store{zones: make(map[domain.Zone]*zoneTables, len(domain.Zones))}
	for _, z := range domain.Zones {
		s.zones[z] = &zoneTables{tables: map[string]*frame.Table{}}
	}
	return s
}

func (s *Store) zone(z domain.Zone) (*zoneTables, error) {
	zt, ok := s.zones[z]
	if !ok {
		return nil, domain.ErrNotFound("zone %q not found", z)
	}
	return zt, nil
}

// Put writes a table. It fails with a DuplicateNameError when the name is
// already taken in the zone. The store takes ownership of t.
func (s *Store) Put(z domain.Zone, name string, t *frame.Table) error {
	if name == "" {
		return domain.ErrValidation("table name is required")
	}
	if t == nil {
		return domain.ErrValidation("table %q is nil", name)
	}
	zt, err := s.zone(z)
	if err != nil {
		return err
	}
	zt.mu.Lock()
	defer zt.mu.Unlock()
	if _, exists := zt.tables[name]; exists {
		return &domain.DuplicateNameError{Zone: z, Name: name}
	}
	zt.tables[name] = t
	zt.order = append(zt.order, name)
	return nil
}

// PutUnique writes a table under name, or under the first free "name_N"
// (N starting at 2) when name is taken. It returns the name used.
func (s *Store) PutUnique(z domain.Zone, name string, t *frame.Table) (string, error) {
	if name == "" {
		return "", domain.ErrValidation("table name is required")
	}
	if t == nil {
		return "", domain.ErrValidation("table %q is nil", name)
	}
	zt, err := s.zone(z)
	if err != nil {
		return "", err
	}
	zt.mu.Lock()
	defer zt.mu.Unlock()
	candidate := name
	for n := 2; ; n++ {
		if _, exists := zt.tables[candidate]; !exists {
			break
		}
		candidate = fmt.Sprintf("%s_%d", name, n)
	}
	zt.tables[candidate] = t
	zt.order = append(zt.order, candidate)
	return candidate, nil
}

// Get returns the named table.
func (s *Store) Get(z domain.Zone, name string) (*frame.Table, error) {
	zt, err := s.zone(z)
	if err != nil {
		return nil, err
	}
	zt.mu.RLock()
	defer zt.mu.RUnlock()
	t, ok := zt.tables[name]
	if !ok {
		return nil, domain.ErrNotFound("table %q not found in zone %s", name, z)
	}
	return t, nil
}

// Exists reports whether the name is taken in the zone.
func (s *Store) Exists(z domain.Zone, name string) bool {
	_, err := s.Get(z, name)
	return err == nil
}

// List returns the zone's tables lazily in insertion order. Each iteration
// walks the names present when it starts, so the sequence is finite and can
// be ranged over again. An unknown zone yields nothing.
func (s *Store) List(z domain.Zone) iter.Seq2[string, *frame.Table] {
	return func(yield func(string, *frame.Table) bool) {
		zt, err := s.zone(z)
		if err != nil {
			return
		}
		zt.mu.RLock()
		names := slices.Clone(zt.order)
		zt.mu.RUnlock()
		for _, name := range names {
			zt.mu.RLock()
			t := zt.tables[name]
			zt.mu.RUnlock()
			if !yield(name, t) {
				return
			}
		}
	}
}

// Latest returns the most recently written table name in the zone.
func (s *Store) Latest(z domain.Zone) (string, bool) {
	zt, err := s.zone(z)
	if err != nil {
		return "", false
	}
	zt.mu.RLock()
	defer zt.mu.RUnlock()
	if len(zt.order) == 0 {
		return "", false
	}
	return zt.order[len(zt.order)-1], true
}

// Stats returns table and row counts for every zone in promotion order.
func (s *Store) Stats() []domain.ZoneStats {
	out := make([]domain.ZoneStats, 0, len(domain.Zones))
	for _, z := range domain.Zones {
		st := domain.ZoneStats{Zone: z}
		for _, t := range s.List(z) {
			st.Tables++
			st.TotalRows += t.Len()
		}
		out = append(out, st)
	}
	return out
}
