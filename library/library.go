// Package library is everything the CLI and the web server can do to a game
// library: sync stores, match metadata, moderate, list, and curate
// collections.
package library

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/amonks/backlog/config"
	"github.com/amonks/backlog/data"
	"github.com/amonks/backlog/db"
	"github.com/amonks/backlog/sources"
)

var (
	// ErrBadInput is returned for requests that can never succeed as given,
	// like a non-numeric IGDB id or an empty collection name.
	ErrBadInput = errors.New("bad input")

	// ErrProviderUnavailable is returned when a store or metadata provider
	// can't be used at all, usually for lack of credentials. Its message
	// says how to fix that.
	ErrProviderUnavailable = errors.New("provider unavailable")
)

func badInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrBadInput, fmt.Sprintf(format, args...))
}

type Library struct {
	db *db.DB

	// Held across each read-merge-write of a game's metadata, so concurrent
	// passes for different providers don't compute averages from stale rows.
	mergeMu sync.Mutex

	providers func(data.Provider) (Provider, error)
	sources   func(data.Store) (sources.Source, error)

	workers    int
	exclude    []string
	reportFile string
	reportTick time.Duration
	now        func() time.Time
}

type Option func(*Library)

// WithProviders sets how metadata providers are built. It's called once per
// match pass or manual match.
func WithProviders(f func(data.Provider) (Provider, error)) Option {
	return func(l *Library) { l.providers = f }
}

// WithSources sets how each store's games are read. It's called once per
// store per sync.
func WithSources(f func(data.Store) (sources.Source, error)) Option {
	return func(l *Library) { l.sources = f }
}

// WithWorkers sets how many provider lookups a match pass runs at once.
func WithWorkers(n int) Option {
	return func(l *Library) { l.workers = n }
}

// WithExcludeNameSuffixes sets the name suffixes listings leave out.
func WithExcludeNameSuffixes(suffixes ...string) Option {
	return func(l *Library) { l.exclude = suffixes }
}

// WithReport makes Refresh append catalog counts to filename every tick.
func WithReport(filename string, every time.Duration) Option {
	return func(l *Library) { l.reportFile, l.reportTick = filename, every }
}

func WithClock(now func() time.Time) Option {
	return func(l *Library) { l.now = now }
}

func New(db *db.DB, opts ...Option) *Library {
	l := &Library{
		db:         db,
		providers:  noProviders,
		sources:    noSources,
		workers:    5,
		reportTick: time.Minute,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// FromConfig builds a library whose providers, sources, and limits come from
// cfg. Provider credentials are resolved against the database's settings on
// every pass, so a credential saved while the server runs is picked up by
// the next pass.
func FromConfig(database *db.DB, cfg *config.Config) *Library {
	settings := cfg.Settings(database)
	hc := &http.Client{Timeout: cfg.GetHTTPTimeout()}
	return New(database,
		WithProviders(func(p data.Provider) (Provider, error) {
			return NewProvider(p, cfg, settings, hc)
		}),
		WithSources(func(store data.Store) (sources.Source, error) {
			return NewSource(store, cfg)
		}),
		WithWorkers(cfg.GetMatchWorkers()),
		WithExcludeNameSuffixes(cfg.GetExcludeNameSuffixes()...),
		WithReport(cfg.GetReportFile(), cfg.GetReportInterval()),
	)
}

// NewSource reads local folders for the local store and an export file for
// every other store.
func NewSource(store data.Store, cfg *config.Config) (sources.Source, error) {
	if store == data.Local {
		dirs := cfg.GetLocalGamesDirs()
		if len(dirs) == 0 {
			return nil, fmt.Errorf("%w: no local game folders; set LOCAL_GAMES_DIRS", ErrProviderUnavailable)
		}
		return sources.NewLocal(dirs...), nil
	}
	return sources.NewExport(store, sources.ExportPath(cfg.GetExportsDir(), store)), nil
}

func noProviders(p data.Provider) (Provider, error) {
	return nil, fmt.Errorf("%w: %s is not configured", ErrProviderUnavailable, p)
}

func noSources(store data.Store) (sources.Source, error) {
	return nil, fmt.Errorf("%w: %s is not configured", ErrProviderUnavailable, store)
}
