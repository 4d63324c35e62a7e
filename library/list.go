package library

import (
	"strings"

	"github.com/amonks/backlog/data"
	"github.com/amonks/backlog/db"
	"github.com/amonks/backlog/group"
)

// ListOptions narrow and order a listing.
type ListOptions struct {
	Stores []data.Store
	Genres []string
	Search string

	IncludeHidden bool
	OnlyHidden    bool
	// Keep games whose names end with an excluded suffix.
	IncludeDuplicates bool

	// A group.SortKeys key; empty keeps grouping order.
	Sort string
	Desc bool
}

// Listing is one page of the library.
type Listing struct {
	Groups []*group.Group

	// Games before grouping.
	Total int
	// Groups.
	Unique int

	Stores []db.Facet
	Genres []db.Facet
	Hidden int64
}

func (l *Library) filter(opts ListOptions) db.Filter {
	f := db.Filter{
		Stores:        opts.Stores,
		Genres:        opts.Genres,
		Search:        strings.TrimSpace(opts.Search),
		IncludeHidden: opts.IncludeHidden,
		OnlyHidden:    opts.OnlyHidden,
	}
	if !opts.IncludeDuplicates {
		f.ExcludeNameSuffixes = l.exclude
	}
	return f
}

// List returns the games passing opts, grouped by IGDB match and sorted.
// Facets count the whole library, not just the filtered games, so every
// filter value stays selectable.
func (l *Library) List(opts ListOptions) (*Listing, error) {
	if opts.Sort != "" && !group.ValidSortKey(opts.Sort) {
		return nil, badInput("unsupported sort key '%s'; use one of %s", opts.Sort, strings.Join(group.SortKeys(), ", "))
	}
	for _, store := range opts.Stores {
		if _, err := data.ParseStore(string(store)); err != nil {
			return nil, badInput("%s", err)
		}
	}

	games, err := l.db.ListGames(l.filter(opts))
	if err != nil {
		return nil, err
	}
	groups := group.Games(games)
	if opts.Sort != "" {
		if err := group.Sort(groups, opts.Sort, opts.Desc); err != nil {
			return nil, badInput("%s", err)
		}
	}

	base := l.filter(ListOptions{IncludeDuplicates: opts.IncludeDuplicates})
	stats, err := l.db.GetStats(base)
	if err != nil {
		return nil, err
	}
	genres, err := l.db.GetGenreFacets(base)
	if err != nil {
		return nil, err
	}

	return &Listing{
		Groups: groups,
		Total:  len(games),
		Unique: len(groups),
		Stores: storeFacets(stats.ByStore),
		Genres: genres,
		Hidden: stats.Hidden,
	}, nil
}

// storeFacets orders store counts the way stores are synced.
func storeFacets(counts map[data.Store]int64) []db.Facet {
	var out []db.Facet
	for _, store := range data.Stores {
		if n := counts[store]; n > 0 {
			out = append(out, db.Facet{Name: string(store), Count: int(n)})
		}
	}
	return out
}
