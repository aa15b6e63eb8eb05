package app

import (
	"context"
	"errors"
	"fmt"
)

// restoreSources ingests each startup dataset into the raw zone. The lake is
// in-memory, so this runs on every start. A failing source is logged and
// skipped; the joined errors are returned once every source was tried.
func (a *App) restoreSources(ctx context.Context, uris []string) error {
	if len(uris) == 0 {
		return nil
	}

	var errs []error
	restored := 0
	for _, uri := range uris {
		entry, err := a.Lake.IngestURI(ctx, uri, "")
		if err != nil {
			a.logger.Warn("restore source failed", "uri", uri, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", uri, err))
			continue
		}
		a.logger.Debug("restored source", "uri", uri, "table", entry.TableName, "rows", entry.RowCount)
		restored++
	}
	if restored > 0 {
		a.logger.Info("restored startup sources", "count", restored)
	}
	return errors.Join(errs...)
}
