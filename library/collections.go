package library

import (
	"strings"

	"github.com/amonks/backlog/data"
	"github.com/amonks/backlog/group"
)

// CreateCollection requires a name; an empty description is stored as none.
func (l *Library) CreateCollection(name, description string) (*data.Collection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, badInput("collection name is required")
	}
	return l.db.CreateCollection(name, optional(description))
}

// UpdateCollection changes whichever of name and description aren't nil.
// A name can't be emptied; a description can.
func (l *Library) UpdateCollection(id int64, name, description *string) (*data.Collection, error) {
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return nil, badInput("collection name can't be empty")
		}
		name = &trimmed
	}
	if description != nil {
		trimmed := strings.TrimSpace(*description)
		description = &trimmed
	}
	return l.db.UpdateCollection(id, name, description)
}

func (l *Library) DeleteCollection(id int64) error {
	return l.db.DeleteCollection(id)
}

func (l *Library) ListCollections() ([]data.Collection, error) {
	return l.db.ListCollections()
}

// CollectionDetail is a collection with its games grouped the way the
// library groups them.
type CollectionDetail struct {
	Collection *data.Collection
	Groups     []*group.Group
}

func (l *Library) Collection(id int64) (*CollectionDetail, error) {
	c, err := l.db.GetCollection(id)
	if err != nil {
		return nil, err
	}
	games, err := l.db.GetCollectionGames(id)
	if err != nil {
		return nil, err
	}
	return &CollectionDetail{Collection: c, Groups: group.Games(games)}, nil
}

// AddToCollection is idempotent. It fails with db.ErrNotFound if either the
// collection or the game is missing.
func (l *Library) AddToCollection(collectionID, gameID int64) error {
	return l.db.AddToCollection(collectionID, gameID)
}

// RemoveFromCollection fails with db.ErrNotFound if the game isn't in the
// collection.
func (l *Library) RemoveFromCollection(collectionID, gameID int64) error {
	return l.db.RemoveFromCollection(collectionID, gameID)
}

func (l *Library) GameCollections(gameID int64) ([]data.Collection, error) {
	if _, err := l.db.GetGameByID(gameID); err != nil {
		return nil, err
	}
	return l.db.GetGameCollections(gameID)
}

func optional(s string) *string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return &s
}
