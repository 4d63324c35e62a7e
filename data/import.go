package data

import "encoding/json"

// ImportRecord is what a store client hands to the normalizer: one owned game
// in the store's own terms. Only Name and StoreNativeID are required; every
// other field may be missing.
type ImportRecord struct {
	Name  string
	Store Store

	// like "1091500" for steam, "Fortnite" for epic
	StoreNativeID string

	Description   *string
	CoverURL      *string
	BackgroundURL *string
	IconURL       *string

	Developers []string
	Publishers []string
	Genres     []string
	Platforms  []string
	DLCs       []string

	ReleaseDate  *string
	CreatedDate  *string
	LastModified *string

	PlaytimeHours *float64
	CriticScore   *float64
	CanRunOffline *bool

	// Only local folders carry one, via a game.json override. It seeds the
	// first insert and is never written again by a sync.
	IGDBID *int64

	RawPayload json.RawMessage
}
