package db

import (
	"fmt"
	"math"

	"github.com/amonks/backlog/data"
	"gorm.io/gorm"
)

// Stats summarizes the library.
type Stats struct {
	Total              int64
	ByStore            map[data.Store]int64
	TotalPlaytimeHours float64

	Hidden int64
	NSFW   int64

	IGDBMatched   int64
	IGDBUnmatched int64
	IGDBPending   int64

	MetacriticMatched int64

	AverageTotalRating     *float64
	AverageMetacriticScore *float64
}

// CountGames counts the games passing the filter.
func (db *DB) CountGames(f Filter) (int64, error) {
	var count int64
	if err := db.
		Model(&data.Game{}).
		Scopes(f.scope).
		Count(&count).
		Error; err != nil {
		return 0, fmt.Errorf("error counting games: %w", err)
	}
	return count, nil
}

// GetStats summarizes the games passing the filter.
func (db *DB) GetStats(f Filter) (*Stats, error) {
	stats := &Stats{ByStore: map[data.Store]int64{}}

	count := func(dest *int64, where string, args ...any) error {
		q := db.Model(&data.Game{}).Scopes(f.scope)
		if where != "" {
			q = q.Where(where, args...)
		}
		if err := q.Count(dest).Error; err != nil {
			return fmt.Errorf("error counting games where '%s': %w", where, err)
		}
		return nil
	}

	for _, c := range []struct {
		dest  *int64
		where string
	}{
		{&stats.Total, ""},
		{&stats.NSFW, "nsfw = 1"},
		{&stats.IGDBMatched, "igdb_id > 0"},
		{&stats.IGDBUnmatched, "igdb_id = 0"},
		{&stats.IGDBPending, "igdb_id is null"},
		{&stats.MetacriticMatched, "metacritic_score is not null"},
	} {
		if err := count(c.dest, c.where); err != nil {
			return nil, err
		}
	}

	hidden := f
	hidden.IncludeHidden, hidden.OnlyHidden = false, true
	if err := db.Model(&data.Game{}).Scopes(hidden.scope).Count(&stats.Hidden).Error; err != nil {
		return nil, fmt.Errorf("error counting hidden games: %w", err)
	}

	var byStore []struct {
		Store data.Store
		Count int64
	}
	if err := db.
		Model(&data.Game{}).
		Scopes(f.scope).
		Select("store, count(*) as count").
		Group("store").
		Scan(&byStore).
		Error; err != nil {
		return nil, fmt.Errorf("error counting games by store: %w", err)
	}
	for _, row := range byStore {
		stats.ByStore[row.Store] = row.Count
	}

	var aggs struct {
		Playtime   *float64
		Total      *float64
		Metacritic *float64
	}
	if err := db.
		Model(&data.Game{}).
		Scopes(f.scope).
		Select("sum(playtime_hours) as playtime, avg(total_rating) as total, avg(metacritic_score) as metacritic").
		Scan(&aggs).
		Error; err != nil {
		return nil, fmt.Errorf("error aggregating ratings: %w", err)
	}
	if aggs.Playtime != nil {
		stats.TotalPlaytimeHours = math.Round(*aggs.Playtime*10) / 10
	}
	stats.AverageTotalRating = aggs.Total
	stats.AverageMetacriticScore = aggs.Metacritic

	return stats, nil
}

// A Facet is one filter value and how many games carry it.
type Facet struct {
	Name  string
	Count int
}

// GetGenreFacets counts the games passing the filter by genre, most common
// first. Genres are compared case-insensitively; the first spelling seen is
// reported.
func (db *DB) GetGenreFacets(f Filter) ([]Facet, error) {
	var rows []data.Game
	if err := db.
		Select("genres").
		Scopes(f.scope).
		Find(&rows).
		Error; err != nil {
		return nil, fmt.Errorf("error getting genre facets: %w", err)
	}
	return countFacets(rows), nil
}

// Discovery is the set of curated shelves shown on the discover page. Every
// shelf only holds visible, IGDB-matched games.
type Discovery struct {
	HighlyRated     []data.Game
	HiddenGems      []data.Game
	MostPlayed      []data.Game
	CriticFavorites []data.Game
}

// GetDiscovery fills each discover shelf with up to limit games.
func (db *DB) GetDiscovery(f Filter, limit int) (*Discovery, error) {
	matched := func(q *gorm.DB) *gorm.DB {
		return q.Scopes(f.scope).Where("igdb_id > 0").Limit(limit)
	}

	d := &Discovery{}
	for _, shelf := range []struct {
		name  string
		dest  *[]data.Game
		where string
		order string
	}{
		{"highly rated", &d.HighlyRated, "total_rating >= 90", "total_rating desc"},
		{"hidden gems", &d.HiddenGems, "total_rating >= 75 and total_rating < 90 and aggregated_rating is null", "igdb_rating desc nulls last"},
		{"most played", &d.MostPlayed, "playtime_hours > 0", "playtime_hours desc"},
		{"critic favorites", &d.CriticFavorites, "aggregated_rating >= 80", "aggregated_rating desc"},
	} {
		if err := db.
			Scopes(matched).
			Where(shelf.where).
			Order(shelf.order).
			Order("id").
			Find(shelf.dest).
			Error; err != nil {
			return nil, fmt.Errorf("error getting %s games: %w", shelf.name, err)
		}
	}
	return d, nil
}
