// Package repository implements the append-only metadata logs of the lake.
// All logs live in process memory for the lifetime of the lake.
package repository

import (
	"context"
	"slices"
	"sync"
)

// appendLog is an ordered, append-only record list safe for concurrent use.
type appendLog[T any] struct {
	mu      sync.RWMutex
	entries []T
}

func (l *appendLog[T]) append(ctx context.Context, e T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
	return nil
}

// list returns a snapshot in append order.
func (l *appendLog[T]) list(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.entries), nil
}
