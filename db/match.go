package db

import (
	"fmt"

	"github.com/amonks/backlog/data"
)

// GetGamesToMatchIGDB lists games for an IGDB pass, ordered by name. Unless
// all is set, only games never searched on IGDB are returned. A limit of 0
// means no limit.
func (db *DB) GetGamesToMatchIGDB(all bool, limit int) ([]data.Game, error) {
	q := db.
		Where("name != ''").
		Order("name").
		Order("id")
	if !all {
		q = q.Where("igdb_id is null")
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var games []data.Game
	if err := q.Find(&games).Error; err != nil {
		return nil, fmt.Errorf("error getting games to match on igdb: %w", err)
	}
	return games, nil
}

// GetGamesToMatchMetacritic lists one visible game per distinct name, ignoring
// case, for a Metacritic pass. Unless all is set, only names with no
// Metacritic data are returned. Each result carries the lowest id and the
// name; the rest of the columns are empty.
func (db *DB) GetGamesToMatchMetacritic(all bool, limit int) ([]data.Game, error) {
	q := db.
		Model(&data.Game{}).
		Select("min(id) as id, name").
		Where("hidden = ?", false).
		Where("name != ''").
		Group("lower(name)").
		Order("name").
		Order("id")
	if !all {
		q = q.Where("metacritic_score is null and metacritic_slug is null")
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var games []data.Game
	if err := q.Find(&games).Error; err != nil {
		return nil, fmt.Errorf("error getting games to match on metacritic: %w", err)
	}
	return games, nil
}
