package library

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/amonks/backlog/config"
	"github.com/amonks/backlog/data"
	"github.com/amonks/backlog/igdb"
	"github.com/amonks/backlog/limiter"
	"github.com/amonks/backlog/merge"
	"github.com/amonks/backlog/metacritic"
	"github.com/amonks/backlog/readthrough"
)

// A Provider finds metadata for games.
type Provider interface {
	Name() data.Provider

	// SearchName is what to search for, given a stored name.
	SearchName(name string) string

	// Search returns candidates for a name, best guess first.
	Search(ctx context.Context, name string) ([]data.MetadataRecord, error)

	// Lookup fetches the game with the given IGDB id or Metacritic slug. It
	// returns nil, nil if there is none, and ErrBadInput if key can't be an
	// id at all.
	Lookup(ctx context.Context, key string) (*data.MetadataRecord, error)

	// Resolve turns a search result into a full record, or nil, nil if it
	// has disappeared since.
	Resolve(ctx context.Context, candidate *data.MetadataRecord) (*data.MetadataRecord, error)
}

// NewProvider builds a client for p. Each call returns a fresh client; the
// pacing state that must outlive it is kept in RETRY_STATE_DIR.
func NewProvider(p data.Provider, cfg *config.Config, settings *config.Settings, hc *http.Client) (Provider, error) {
	lim := limiter.New(filepath.Join(cfg.GetRetryStateDir(), string(p)+".retry"), 0)
	if err := lim.Load(); err != nil {
		return nil, err
	}

	switch p {
	case data.IGDB:
		id, err := settings.Get(config.IGDBClientID)
		if err != nil {
			return nil, err
		}
		secret, err := settings.Get(config.IGDBClientSecret)
		if err != nil {
			return nil, err
		}
		c, err := igdb.New(id, secret,
			igdb.WithHTTPClient(hc),
			igdb.WithRate(cfg.GetIGDBRate()),
			igdb.WithLimiter(lim))
		if err != nil {
			return nil, unavailable(err)
		}
		return &IGDB{c}, nil

	case data.Metacritic:
		return &Metacritic{metacritic.New(
			metacritic.WithHTTPClient(hc),
			metacritic.WithInterval(cfg.GetMetacriticInterval()),
			metacritic.WithLimiter(lim),
			metacritic.WithCache(readthrough.New(cfg.GetCacheDir(), "metacritic-")),
		)}, nil
	}
	return nil, badInput("unknown provider '%s'", p)
}

func unavailable(err error) error {
	if errors.Is(err, igdb.ErrNoCredentials) {
		return fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}
	return err
}

// IGDB adapts an igdb.Client.
type IGDB struct{ c *igdb.Client }

func (p *IGDB) Name() data.Provider { return data.IGDB }

func (p *IGDB) SearchName(name string) string { return merge.SearchName(name) }

func (p *IGDB) Search(ctx context.Context, name string) ([]data.MetadataRecord, error) {
	results, err := p.c.Search(ctx, name)
	return results, unavailable(err)
}

func (p *IGDB) Lookup(ctx context.Context, key string) (*data.MetadataRecord, error) {
	id, err := ParseIGDBID(key)
	if err != nil {
		return nil, err
	}
	md, err := p.c.Game(ctx, id)
	return md, unavailable(err)
}

// Resolve returns the candidate as is; IGDB search results are complete.
func (p *IGDB) Resolve(ctx context.Context, candidate *data.MetadataRecord) (*data.MetadataRecord, error) {
	return candidate, nil
}

// ParseIGDBID parses a positive IGDB id.
func ParseIGDBID(key string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(key), 10, 64)
	if err != nil || id <= 0 {
		return 0, badInput("igdb id must be a positive number, not '%s'", key)
	}
	return id, nil
}

// Metacritic adapts a metacritic.Client.
type Metacritic struct{ c *metacritic.Client }

func (p *Metacritic) Name() data.Provider { return data.Metacritic }

func (p *Metacritic) SearchName(name string) string { return merge.SearchNameWithoutEdition(name) }

func (p *Metacritic) Search(ctx context.Context, name string) ([]data.MetadataRecord, error) {
	return p.c.Search(ctx, name)
}

func (p *Metacritic) Lookup(ctx context.Context, key string) (*data.MetadataRecord, error) {
	slug := metacritic.CleanSlug(key)
	if slug == "" {
		return nil, badInput("metacritic slug must have letters or digits, not '%s'", key)
	}
	return p.c.Game(ctx, slug)
}

// Resolve fetches the candidate's page for its scores. The search result's
// title is kept if the page has none.
func (p *Metacritic) Resolve(ctx context.Context, candidate *data.MetadataRecord) (*data.MetadataRecord, error) {
	md, err := p.c.Game(ctx, candidate.Slug)
	if err != nil || md == nil {
		return md, err
	}
	if md.Name == "" {
		md.Name = candidate.Name
	}
	return md, nil
}
