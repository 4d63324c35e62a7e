package data

import "time"

// Collection is a user-named set of games. Games belong to collections via
// the association table collection_games; deleting either side deletes the
// membership.
type Collection struct {
	ID          int64
	Name        string
	Description *string

	CreatedAt time.Time
	UpdatedAt time.Time

	// Populated by listing queries only.
	GameCount int64    `gorm:"->;-:migration"`
	Covers    []string `gorm:"-"`
}

type CollectionGame struct {
	CollectionID int64
	GameID       int64
	AddedAt      time.Time `gorm:"autoCreateTime"`
}

// Setting is one row of the settings key-value table. Values here are
// overridden by environment variables of the upper-cased key.
type Setting struct {
	Key       string `gorm:"primaryKey"`
	Value     string
	UpdatedAt time.Time
}
