package library

import (
	"context"
	"errors"
	"log/slog"

	"github.com/amonks/backlog/data"
	"github.com/amonks/backlog/workers"
)

// Refresh syncs every store, then runs IGDB and Metacritic passes for the
// games still missing metadata, side by side. A provider that isn't
// configured is skipped with a warning. If a report file is set, catalog
// counts are appended to it while the refresh runs.
func (l *Library) Refresh(ctx context.Context) error {
	eng := workers.NewEngine()

	eng.Add("sync", func(ctx context.Context) error {
		_, err := l.Sync(ctx)
		return err
	})
	for _, p := range []data.Provider{data.IGDB, data.Metacritic} {
		eng.Add(string(p), func(ctx context.Context) error {
			_, err := l.Match(ctx, p, Missing, 0)
			if errors.Is(err, ErrProviderUnavailable) {
				slog.Warn("skipping provider", "provider", p, "error", err)
				return nil
			}
			return err
		}, "sync")
	}

	if l.reportFile == "" {
		return eng.Start(ctx)
	}

	reportCtx, stopReporting := context.WithCancel(ctx)
	reported := make(chan error, 1)
	go func() {
		reported <- workers.RunReporter(reportCtx, nil, l.db, l.reportFile, l.reportTick)
	}()

	err := eng.Start(ctx)
	stopReporting()
	if reportErr := <-reported; reportErr != nil {
		slog.Warn("reporter failed", "error", reportErr)
	}
	return err
}
