package app

import (
	"context"
	"fmt"
)

// seedSynthetic ingests a synthetic product dataset of n rows so a fresh
// lake has something to promote and query. n of zero disables seeding.
func (a *App) seedSynthetic(ctx context.Context, n int, seed uint64) error {
	if n <= 0 {
		return nil
	}
	entry, err := a.Lake.Generate(ctx, n, seed)
	if err != nil {
		return fmt.Errorf("generate %d rows: %w", n, err)
	}
	a.logger.Info("seeded synthetic dataset", "table", entry.TableName, "rows", entry.RowCount)
	return nil
}
