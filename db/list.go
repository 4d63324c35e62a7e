package db

import (
	"fmt"
	"strings"

	"github.com/amonks/backlog/data"
	"gorm.io/gorm"
)

// Filter narrows a game listing. The zero Filter lists every visible game.
type Filter struct {
	Stores []data.Store
	// At least one listed genre must be present, compared case-insensitively.
	Genres []string
	// Substring of the name, compared case-insensitively.
	Search string

	IncludeHidden bool
	OnlyHidden    bool

	// Games whose name ends with one of these are left out. Used to drop
	// the duplicate "- Amazon Prime" style entries some stores list.
	ExcludeNameSuffixes []string
}

func (f Filter) scope(q *gorm.DB) *gorm.DB {
	if len(f.Stores) > 0 {
		q = q.Where("store in ?", f.Stores)
	}
	if f.Search != "" {
		q = q.Where("lower(name) like ? escape '\\'", "%"+escapeLike(strings.ToLower(f.Search))+"%")
	}
	switch {
	case f.OnlyHidden:
		q = q.Where("hidden = ?", true)
	case !f.IncludeHidden:
		q = q.Where("hidden = ?", false)
	}
	for _, suffix := range f.ExcludeNameSuffixes {
		if suffix == "" {
			continue
		}
		q = q.Where("name not like ? escape '\\'", "%"+escapeLike(suffix))
	}
	return q
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike quotes the wildcards in s for a like pattern using escape '\'.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// ListGames returns every game passing the filter, ordered by name.
func (db *DB) ListGames(f Filter) ([]data.Game, error) {
	var games []data.Game
	if err := db.
		Scopes(f.scope).
		Order("name collate nocase").
		Order("id").
		Find(&games).
		Error; err != nil {
		return nil, fmt.Errorf("error listing games: %w", err)
	}
	if len(f.Genres) == 0 {
		return games, nil
	}

	// Genres are stored as json, whose escaping makes matching them in sql
	// unreliable.
	kept := games[:0]
	for _, game := range games {
		if hasAnyGenre(game.Genres, f.Genres) {
			kept = append(kept, game)
		}
	}
	return kept, nil
}

func hasAnyGenre(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if strings.EqualFold(strings.TrimSpace(h), strings.TrimSpace(w)) {
				return true
			}
		}
	}
	return false
}
