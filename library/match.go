package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amonks/backlog/data"
	"github.com/amonks/backlog/merge"
	"github.com/amonks/backlog/metrics"
	"github.com/amonks/backlog/workers"
	"github.com/google/uuid"
)

// Mode picks which games a match pass looks at.
type Mode string

const (
	// Missing matches only games the provider has never been searched for.
	Missing Mode = "missing"
	// All re-matches every game, overwriting earlier matches, manual ones
	// included.
	All Mode = "all"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case Missing, All:
		return Mode(s), nil
	}
	return "", badInput("unknown match mode '%s'", s)
}

// MatchReport counts what a match pass did.
type MatchReport struct {
	Run      string
	Provider data.Provider
	Mode     Mode

	// Games (or, for Metacritic, distinct names) searched.
	Total     int
	Matched   int
	Unmatched int
	Failed    int
	// Rows written. Metacritic results go to every game sharing a name.
	Updated int
}

// A result is what one lookup found: the accepted record, or nil if nothing
// scored well enough.
type result struct {
	md    *data.MetadataRecord
	score float64
}

// Match searches provider for the selected games and merges what it finds.
// Lookups run concurrently; every write happens on the calling goroutine.
// Per-game failures are counted and skipped. The pass fails as a whole only
// if the provider is unavailable or ctx ends, and in either case games
// already written stay written. A limit of 0 means no limit.
func (l *Library) Match(ctx context.Context, provider data.Provider, mode Mode, limit int) (*MatchReport, error) {
	if _, err := ParseMode(string(mode)); err != nil {
		return nil, err
	}
	p, err := l.providers(provider)
	if err != nil {
		return nil, err
	}

	report := &MatchReport{Run: uuid.NewString(), Provider: provider, Mode: mode}
	log := slog.With("run", report.Run, "pass", "match", "provider", provider, "mode", mode)
	start := time.Now()
	defer metrics.ObservePass("match_"+string(provider), start)

	var games []data.Game
	switch provider {
	case data.IGDB:
		games, err = l.db.GetGamesToMatchIGDB(mode == All, limit)
	case data.Metacritic:
		games, err = l.db.GetGamesToMatchMetacritic(mode == All, limit)
	default:
		return nil, badInput("unknown provider '%s'", provider)
	}
	if err != nil {
		return nil, err
	}
	report.Total = len(games)
	log.Info("match started", "games", len(games))

	count := func(outcome string, n *int) {
		*n++
		metrics.MatchedGames.WithLabelValues(string(provider), outcome).Inc()
	}

	work := func(ctx context.Context, game data.Game) (result, error) {
		return l.lookup(ctx, p, game.Name)
	}

	write := func(game data.Game, found result, err error) error {
		switch {
		case errors.Is(err, ErrProviderUnavailable):
			return err
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil
		case err != nil:
			log.Warn("lookup failed", "game", game.ID, "name", game.Name, "error", err)
			count("failed", &report.Failed)
			return nil
		}

		var updated int
		switch provider {
		case data.IGDB:
			updated, err = l.writeIGDB(game.ID, found.md)
		case data.Metacritic:
			updated, err = l.writeMetacritic(game.Name, found.md)
		}
		if err != nil {
			log.Warn("error saving match", "game", game.ID, "name", game.Name, "error", err)
			count("failed", &report.Failed)
			return nil
		}
		report.Updated += updated

		if found.md == nil {
			log.Debug("no match", "game", game.ID, "name", game.Name, "best_score", found.score)
			count("unmatched", &report.Unmatched)
		} else {
			log.Debug("matched", "game", game.ID, "name", game.Name, "match", found.md.Name, "score", found.score)
			count("matched", &report.Matched)
		}
		return nil
	}

	err = workers.Pool(ctx, l.workers, games, work, write)
	log.Info("match done",
		"matched", report.Matched, "unmatched", report.Unmatched,
		"failed", report.Failed, "updated", report.Updated,
		"took", time.Since(start).Round(time.Millisecond))
	if err != nil {
		return report, err
	}
	return report, nil
}

// lookup searches p for name and resolves the best acceptable candidate.
func (l *Library) lookup(ctx context.Context, p Provider, name string) (result, error) {
	query := p.SearchName(name)
	if query == "" {
		return result{}, nil
	}

	candidates, err := p.Search(ctx, query)
	if err != nil {
		metrics.ProviderRequests.WithLabelValues(string(p.Name()), "error").Inc()
		return result{}, err
	}
	metrics.ProviderRequests.WithLabelValues(string(p.Name()), "ok").Inc()

	best, score := merge.Best(name, candidates)
	if best == nil || !merge.Accept(score) {
		return result{score: score}, nil
	}

	md, err := p.Resolve(ctx, best)
	if err != nil {
		return result{}, fmt.Errorf("error resolving %s match '%s': %w", p.Name(), merge.CandidateName(best), err)
	}
	return result{md: md, score: score}, nil
}

// writeIGDB merges md, or the unmatched sentinel if md is nil, into the
// game's current row.
func (l *Library) writeIGDB(id int64, md *data.MetadataRecord) (int, error) {
	l.mergeMu.Lock()
	defer l.mergeMu.Unlock()

	game, err := l.db.GetGameByID(id)
	if err != nil {
		return 0, err
	}
	var cols []string
	if md == nil {
		cols = merge.IGDBUnmatched(game, l.now())
	} else {
		cols = merge.IGDB(game, md, l.now())
	}
	if err := l.db.UpdateColumns(game, cols); err != nil {
		return 0, err
	}
	return 1, nil
}

// writeMetacritic merges md into every game named name, ignoring case.
// Metacritic has no "searched, not found" marker, so a nil md writes
// nothing.
func (l *Library) writeMetacritic(name string, md *data.MetadataRecord) (int, error) {
	if md == nil {
		return 0, nil
	}

	l.mergeMu.Lock()
	defer l.mergeMu.Unlock()

	games, err := l.db.GetGamesByName(name)
	if err != nil {
		return 0, err
	}
	var updated int
	for i := range games {
		game := &games[i]
		if err := l.db.UpdateColumns(game, merge.Metacritic(game, md, l.now())); err != nil {
			return updated, err
		}
		updated++
	}
	return updated, nil
}
