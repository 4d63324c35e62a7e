package db

import (
	"errors"
	"fmt"
	"time"

	"github.com/amonks/backlog/data"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MaxCollectionCovers is how many game covers a collection listing carries.
const MaxCollectionCovers = 4

// CreateCollection inserts a collection and returns it with its id.
func (db *DB) CreateCollection(name string, description *string) (*data.Collection, error) {
	c := &data.Collection{Name: name, Description: description}
	if err := db.Create(c).Error; err != nil {
		return nil, fmt.Errorf("error creating collection '%s': %w", name, err)
	}
	return c, nil
}

// UpdateCollection renames and/or redescribes a collection. Nil arguments
// are left unchanged.
func (db *DB) UpdateCollection(id int64, name, description *string) (*data.Collection, error) {
	updates := map[string]any{"updated_at": time.Now()}
	if name != nil {
		updates["name"] = *name
	}
	if description != nil {
		updates["description"] = *description
	}

	res := db.
		Model(&data.Collection{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return nil, fmt.Errorf("error updating collection %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("error updating collection %d: %w", id, ErrNotFound)
	}
	return db.GetCollection(id)
}

// DeleteCollection removes a collection and its memberships.
func (db *DB) DeleteCollection(id int64) error {
	res := db.Delete(&data.Collection{}, id)
	if res.Error != nil {
		return fmt.Errorf("error deleting collection %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("error deleting collection %d: %w", id, ErrNotFound)
	}
	return nil
}

// GetCollection returns one collection with its game count.
func (db *DB) GetCollection(id int64) (*data.Collection, error) {
	var c data.Collection
	if err := db.
		Model(&data.Collection{}).
		Select("collections.*, (select count(*) from collection_games cg where cg.collection_id = collections.id) as game_count").
		Where("id = ?", id).
		Take(&c).
		Error; err != nil {
		return nil, fmt.Errorf("error getting collection %d: %w", id, notFound(err))
	}
	return &c, nil
}

// ListCollections returns every collection, most recently updated first,
// with its game count and up to MaxCollectionCovers covers.
func (db *DB) ListCollections() ([]data.Collection, error) {
	var cs []data.Collection
	if err := db.
		Model(&data.Collection{}).
		Select("collections.*, (select count(*) from collection_games cg where cg.collection_id = collections.id) as game_count").
		Order("updated_at desc").
		Order("id desc").
		Find(&cs).
		Error; err != nil {
		return nil, fmt.Errorf("error listing collections: %w", err)
	}

	for i := range cs {
		covers, err := db.collectionCovers(cs[i].ID)
		if err != nil {
			return nil, err
		}
		cs[i].Covers = covers
	}
	return cs, nil
}

func (db *DB) collectionCovers(id int64) ([]string, error) {
	covers := []string{}
	if err := db.
		Table("collection_games cg").
		Joins("join games g on g.id = cg.game_id").
		Where("cg.collection_id = ?", id).
		Where("coalesce(g.cover_url_override, g.igdb_cover_url, g.cover_image) is not null").
		Order("cg.added_at desc").
		Order("g.id desc").
		Limit(MaxCollectionCovers).
		Pluck("coalesce(g.cover_url_override, g.igdb_cover_url, g.cover_image)", &covers).
		Error; err != nil {
		return nil, fmt.Errorf("error getting covers for collection %d: %w", id, err)
	}
	return covers, nil
}

// GetCollectionGames returns a collection's games, most recently added
// first.
func (db *DB) GetCollectionGames(id int64) ([]data.Game, error) {
	if _, err := db.GetCollection(id); err != nil {
		return nil, err
	}

	var games []data.Game
	if err := db.
		Table("games").
		Select("games.*").
		Joins("join collection_games cg on cg.game_id = games.id").
		Where("cg.collection_id = ?", id).
		Order("cg.added_at desc").
		Order("games.id desc").
		Find(&games).
		Error; err != nil {
		return nil, fmt.Errorf("error getting games in collection %d: %w", id, err)
	}
	return games, nil
}

// GetGameCollections returns the collections a game belongs to.
func (db *DB) GetGameCollections(gameID int64) ([]data.Collection, error) {
	var cs []data.Collection
	if err := db.
		Table("collections").
		Select("collections.*").
		Joins("join collection_games cg on cg.collection_id = collections.id").
		Where("cg.game_id = ?", gameID).
		Order("collections.name").
		Find(&cs).
		Error; err != nil {
		return nil, fmt.Errorf("error getting collections for game %d: %w", gameID, err)
	}
	return cs, nil
}

// AddToCollection adds a game to a collection. Adding a game that's already
// a member is a no-op apart from bumping the collection's updated_at.
func (db *DB) AddToCollection(collectionID, gameID int64) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := exists(tx, &data.Collection{}, collectionID); err != nil {
			return fmt.Errorf("error adding game %d to collection %d: collection %w", gameID, collectionID, err)
		}
		if err := exists(tx, &data.Game{}, gameID); err != nil {
			return fmt.Errorf("error adding game %d to collection %d: game %w", gameID, collectionID, err)
		}

		if err := tx.
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&data.CollectionGame{CollectionID: collectionID, GameID: gameID}).
			Error; err != nil {
			return fmt.Errorf("error adding game %d to collection %d: %w", gameID, collectionID, err)
		}

		return touchCollection(tx, collectionID)
	})
}

// RemoveFromCollection removes a game from a collection.
func (db *DB) RemoveFromCollection(collectionID, gameID int64) error {
	return db.Transaction(func(tx *gorm.DB) error {
		res := tx.
			Where("collection_id = ? and game_id = ?", collectionID, gameID).
			Delete(&data.CollectionGame{})
		if res.Error != nil {
			return fmt.Errorf("error removing game %d from collection %d: %w", gameID, collectionID, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("error removing game %d from collection %d: %w", gameID, collectionID, ErrNotFound)
		}
		return touchCollection(tx, collectionID)
	})
}

func touchCollection(tx *gorm.DB, id int64) error {
	if err := tx.
		Model(&data.Collection{}).
		Where("id = ?", id).
		Update("updated_at", time.Now()).
		Error; err != nil {
		return fmt.Errorf("error touching collection %d: %w", id, err)
	}
	return nil
}

func exists(tx *gorm.DB, model any, id int64) error {
	var count int64
	if err := tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("%d: %w", id, ErrNotFound)
	}
	return nil
}

// IsNotFound reports whether err means something the caller named doesn't
// exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
