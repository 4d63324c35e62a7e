package data

import (
	"database/sql"
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Game is one owned copy of a game on one store. (Store, StoreID) is the
// natural key; every other column is owned by exactly one writer:
//
//   - store columns are overwritten by every sync that supplies them,
//   - igdb and metacritic columns only change through a metadata merge or an
//     explicit clear,
//   - Hidden, NSFW and CoverURLOverride only change through user toggles
//     (NSFW can additionally be raised by an IGDB merge).
//
// See db/schema.sql for the table.
type Game struct {
	ID int64

	// like "steam"
	Store Store
	// like "1091500" for steam, "Fortnite" for epic
	StoreID string

	Name        string
	Description *string
	Developers  datatypes.JSONSlice[string]
	Publishers  datatypes.JSONSlice[string]

	// A case-insensitively deduplicated tag set. Syncs and IGDB merges only
	// ever add to it.
	Genres datatypes.JSONSlice[string]

	CoverImage      *string
	BackgroundImage *string
	Icon            *string

	SupportedPlatforms datatypes.JSONSlice[string]

	ReleaseDate  *string
	CreatedDate  *string
	LastModified *string

	PlaytimeHours *float64
	// 0-100, as reported by the store (steam review percentage, gog critics
	// score).
	CriticsScore *float64

	CanRunOffline *bool
	DLCs          datatypes.JSONSlice[string] `gorm:"column:dlcs"`

	// The store's raw payload, kept for traceability and for store URLs that
	// can't be derived from the id alone.
	ExtraData datatypes.JSON

	Hidden           bool
	NSFW             bool `gorm:"column:nsfw"`
	CoverURLOverride *string

	// nil: never searched. 0: searched, no acceptable match. >0: matched.
	IGDBID                *int64   `gorm:"column:igdb_id"`
	IGDBSlug              *string  `gorm:"column:igdb_slug"`
	IGDBRating            *float64 `gorm:"column:igdb_rating"`
	IGDBRatingCount       *int64   `gorm:"column:igdb_rating_count"`
	AggregatedRating      *float64
	AggregatedRatingCount *int64
	TotalRating           *float64
	TotalRatingCount      *int64
	IGDBSummary           *string                     `gorm:"column:igdb_summary"`
	IGDBCoverURL          *string                     `gorm:"column:igdb_cover_url"`
	IGDBScreenshots       datatypes.JSONSlice[string] `gorm:"column:igdb_screenshots"`
	IGDBMatchedAt         sql.NullTime                `gorm:"column:igdb_matched_at"`

	// 0-100
	MetacriticScore *float64
	// 0-10, stored as scraped
	MetacriticUserScore *float64
	MetacriticURL       *string
	MetacriticSlug      *string
	MetacriticMatchedAt sql.NullTime

	// Derived by rating.Average whenever a rating source changes.
	AverageRating *float64

	AddedAt   time.Time `gorm:"<-:create;autoCreateTime"`
	UpdatedAt time.Time

	// Columns names the store columns an import actually supplied. A
	// re-import overwrites only those, so a sparse payload doesn't erase
	// what a richer one stored. nil means every store column.
	Columns []string `gorm:"-"`
}

// IsMatched reports whether the game has a real IGDB match, as opposed to
// never having been searched or having been searched without success.
func (g *Game) IsMatched() bool {
	return g.IGDBID != nil && *g.IGDBID > 0
}

// IsStreaming reports whether the store says the game is only playable by
// streaming, like a Game Pass title. Stores record it in their extra data.
func (g *Game) IsStreaming() bool {
	var extra struct {
		IsStreaming bool `json:"is_streaming"`
	}
	if err := json.Unmarshal(g.ExtraData, &extra); err != nil {
		return false
	}
	return extra.IsStreaming
}

// Cover picks the image to show for the game: the user's override, then the
// IGDB cover, then the store's own cover.
func (g *Game) Cover() string {
	for _, s := range []*string{g.CoverURLOverride, g.IGDBCoverURL, g.CoverImage} {
		if s != nil && *s != "" {
			return *s
		}
	}
	return ""
}
