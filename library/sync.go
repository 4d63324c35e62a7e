package library

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/amonks/backlog/data"
	"github.com/amonks/backlog/metrics"
	"github.com/amonks/backlog/normalize"
	"github.com/google/uuid"
)

// SyncReport counts what one store's sync did with each game it reported.
type SyncReport struct {
	Store data.Store
	// Set when the store couldn't be read at all; the counts are then zero.
	Err error

	Imported int
	// Nameless or idless records.
	Skipped int
	// Records that didn't decode or didn't save.
	Failed int
}

// Sync imports every game the given stores report, or every store's if none
// are given. Each game is upserted on its own, so a sync that stops midway
// keeps what it saved.
//
// When syncing every store, stores without an export or configuration are
// skipped quietly. Any other store that can't be read gets a report with Err
// set; Sync itself only fails on cancellation or when a store named
// explicitly is unavailable.
func (l *Library) Sync(ctx context.Context, stores ...data.Store) ([]SyncReport, error) {
	explicit := len(stores) > 0
	if !explicit {
		stores = data.Stores
	}

	run := uuid.NewString()
	log := slog.With("run", run, "pass", "sync")
	start := time.Now()
	defer metrics.ObservePass("sync", start)

	var reports []SyncReport
	for _, store := range stores {
		if err := ctx.Err(); err != nil {
			return reports, fmt.Errorf("canceled: %w", err)
		}

		report, err := l.syncStore(ctx, log, store)
		switch {
		case err == nil:
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return append(reports, report), err
		case !explicit && (errors.Is(err, ErrProviderUnavailable) || errors.Is(err, fs.ErrNotExist)):
			log.Debug("skipping store", "store", store, "error", err)
			continue
		case explicit && errors.Is(err, fs.ErrNotExist):
			return reports, fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
		case explicit && errors.Is(err, ErrProviderUnavailable):
			return reports, err
		default:
			log.Warn("store sync failed", "store", store, "error", err)
			report.Err = err
		}
		reports = append(reports, report)
	}

	log.Info("sync done", "stores", len(reports), "took", time.Since(start).Round(time.Millisecond))
	return reports, nil
}

func (l *Library) syncStore(ctx context.Context, log *slog.Logger, store data.Store) (SyncReport, error) {
	report := SyncReport{Store: store}

	src, err := l.sources(store)
	if err != nil {
		return report, err
	}
	payloads, err := src.Payloads(ctx)
	if err != nil {
		return report, err
	}

	count := func(outcome string, n *int) {
		*n++
		metrics.SyncedGames.WithLabelValues(string(store), outcome).Inc()
	}

	for _, raw := range payloads {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("canceled: %w", err)
		}

		rec, err := normalize.Decode(store, raw)
		if err != nil {
			log.Warn("undecodable game", "store", store, "error", err)
			count("failed", &report.Failed)
			continue
		}

		game, err := normalize.Normalize(rec)
		if errors.Is(err, normalize.ErrNoName) || errors.Is(err, normalize.ErrNoID) {
			log.Warn("skipping game", "store", store, "error", err)
			count("skipped", &report.Skipped)
			continue
		} else if err != nil {
			log.Warn("unnormalizable game", "store", store, "error", err)
			count("failed", &report.Failed)
			continue
		}

		if _, err := l.db.UpsertGame(game); err != nil {
			log.Warn("error saving game", "store", store, "error", err)
			count("failed", &report.Failed)
			continue
		}
		count("imported", &report.Imported)
	}

	log.Info("store synced", "store", store,
		"imported", report.Imported, "skipped", report.Skipped, "failed", report.Failed)
	return report, nil
}
