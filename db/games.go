package db

import (
	"errors"
	"fmt"
	"slices"

	"github.com/amonks/backlog/data"
	"github.com/amonks/backlog/merge"
	"github.com/amonks/backlog/rating"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StoreColumns are the columns a store sync owns. A re-import overwrites the
// subset its game declares in Columns, or all of them when Columns is nil.
var StoreColumns = []string{
	"name",
	"description",
	"developers",
	"publishers",
	"genres",
	"cover_image",
	"background_image",
	"icon",
	"supported_platforms",
	"release_date",
	"created_date",
	"last_modified",
	"playtime_hours",
	"critics_score",
	"can_run_offline",
	"dlcs",
	"extra_data",
}

// UpsertGame inserts game, or, if a row with the same store and store id
// already exists, overwrites that row's store columns. Genres are unioned
// with what the row already has, and the average rating is recomputed
// against the row's metadata. Metadata, flags, and overrides on an existing
// row are left alone. It returns the row's id.
func (db *DB) UpsertGame(game *data.Game) (int64, error) {
	columns, err := upsertColumns(game)
	if err != nil {
		return 0, fmt.Errorf("error upserting game %s/%s '%s': %w", game.Store, game.StoreID, game.Name, err)
	}
	if len(game.ExtraData) == 0 {
		game.ExtraData = datatypes.JSON(`{}`)
	}

	if err := db.Transaction(func(tx *gorm.DB) error {
		var existing data.Game
		err := tx.
			Select("id", "genres", "critics_score", "igdb_rating", "aggregated_rating",
				"total_rating", "metacritic_score", "metacritic_user_score").
			Where("store = ? and store_id = ?", game.Store, game.StoreID).
			Take(&existing).
			Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			game.AverageRating = rating.Average(game)
		case err != nil:
			return err
		default:
			game.Genres = merge.Genres(existing.Genres, game.Genres)
			if slices.Contains(columns, "critics_score") {
				existing.CriticsScore = game.CriticsScore
			}
			game.AverageRating = rating.Average(&existing)
		}

		if err := tx.
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "store"}, {Name: "store_id"}},
				DoUpdates: clause.AssignmentColumns(columns),
			}).
			Create(game).
			Error; err != nil {
			return err
		}

		if existing.ID != 0 {
			game.ID = existing.ID
		}
		return nil
	}); err != nil {
		return 0, fmt.Errorf("error upserting game %s/%s '%s': %w", game.Store, game.StoreID, game.Name, err)
	}
	return game.ID, nil
}

// upsertColumns is the update set for a re-import: the store columns the
// game declares, plus name and genres, which every import writes, and the
// bookkeeping columns.
func upsertColumns(game *data.Game) ([]string, error) {
	columns := StoreColumns
	if game.Columns != nil {
		columns = []string{"name", "genres"}
		for _, c := range game.Columns {
			if !slices.Contains(StoreColumns, c) {
				return nil, fmt.Errorf("'%s' is not a store column", c)
			}
			if !slices.Contains(columns, c) {
				columns = append(columns, c)
			}
		}
	}
	return append(slices.Clone(columns), "average_rating", "updated_at"), nil
}

// GetGame looks a game up by its natural key.
func (db *DB) GetGame(store data.Store, storeID string) (*data.Game, error) {
	var game data.Game
	if err := db.
		Where("store = ? and store_id = ?", store, storeID).
		Take(&game).
		Error; err != nil {
		return nil, fmt.Errorf("error getting game %s/%s: %w", store, storeID, notFound(err))
	}
	return &game, nil
}

// GetGameByID looks a game up by its row id.
func (db *DB) GetGameByID(id int64) (*data.Game, error) {
	var game data.Game
	if err := db.
		Where("id = ?", id).
		Take(&game).
		Error; err != nil {
		return nil, fmt.Errorf("error getting game %d: %w", id, notFound(err))
	}
	return &game, nil
}

// GetGamesByIGDBID returns every copy matched to the same IGDB game.
func (db *DB) GetGamesByIGDBID(igdbID int64) ([]data.Game, error) {
	var games []data.Game
	if igdbID <= 0 {
		return games, nil
	}
	if err := db.
		Where("igdb_id = ?", igdbID).
		Order("id").
		Find(&games).
		Error; err != nil {
		return nil, fmt.Errorf("error getting games for igdb id %d: %w", igdbID, err)
	}
	return games, nil
}

// GetGamesByName returns every game whose name matches name, ignoring case.
func (db *DB) GetGamesByName(name string) ([]data.Game, error) {
	var games []data.Game
	if err := db.
		Where("lower(name) = lower(?)", name).
		Order("id").
		Find(&games).
		Error; err != nil {
		return nil, fmt.Errorf("error getting games named '%s': %w", name, err)
	}
	return games, nil
}

// UpdateColumns writes the named columns of game, and only those, to its
// row.
func (db *DB) UpdateColumns(game *data.Game, columns []string) error {
	if game.ID == 0 {
		return fmt.Errorf("error updating game '%s': no id", game.Name)
	}
	res := db.
		Model(game).
		Select(columns).
		Updates(game)
	if res.Error != nil {
		return fmt.Errorf("error updating game %d: %w", game.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("error updating game %d: %w", game.ID, ErrNotFound)
	}
	return nil
}

// SetFlag sets a user flag on one game.
func (db *DB) SetFlag(id int64, flag data.Flag, value bool) error {
	res := db.
		Model(&data.Game{}).
		Where("id = ?", id).
		Update(string(flag), value)
	if res.Error != nil {
		return fmt.Errorf("error setting %s on game %d: %w", flag, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("error setting %s on game %d: %w", flag, id, ErrNotFound)
	}
	return nil
}

// SetFlagBulk sets a user flag on many games, returning how many rows
// changed. Unknown ids are skipped.
func (db *DB) SetFlagBulk(ids []int64, flag data.Flag, value bool) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := db.
		Model(&data.Game{}).
		Where("id in ?", ids).
		Update(string(flag), value)
	if res.Error != nil {
		return 0, fmt.Errorf("error setting %s on %d games: %w", flag, len(ids), res.Error)
	}
	return int(res.RowsAffected), nil
}

// SetCoverOverride sets or, given nil, clears a game's cover override.
func (db *DB) SetCoverOverride(id int64, url *string) error {
	res := db.
		Model(&data.Game{}).
		Where("id = ?", id).
		Update("cover_url_override", url)
	if res.Error != nil {
		return fmt.Errorf("error setting cover override on game %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("error setting cover override on game %d: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteGame removes a game and its collection memberships.
func (db *DB) DeleteGame(id int64) error {
	res := db.Delete(&data.Game{}, id)
	if res.Error != nil {
		return fmt.Errorf("error deleting game %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("error deleting game %d: %w", id, ErrNotFound)
	}
	return nil
}
