// Package normalize turns each store's raw game payload into an
// ImportRecord, and an ImportRecord into a storable Game.
package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/amonks/backlog/data"
	"gorm.io/datatypes"
)

var (
	// ErrNoName is returned for records without a name. Callers skip them.
	ErrNoName = errors.New("record has no name")

	// ErrNoID is returned for records without a store id.
	ErrNoID = errors.New("record has no store id")
)

// A Payload is one game as a store reports it.
type Payload interface {
	Record() data.ImportRecord
}

// Decode parses one raw payload from store into an ImportRecord. The raw
// bytes are kept as the record's payload unless the store nests its own raw
// data.
func Decode(store data.Store, raw json.RawMessage) (data.ImportRecord, error) {
	p, err := payloadFor(store)
	if err != nil {
		return data.ImportRecord{}, err
	}
	if err := json.Unmarshal(raw, p); err != nil {
		return data.ImportRecord{}, fmt.Errorf("error decoding %s game: %w", store, err)
	}

	rec := p.Record()
	if rec.RawPayload == nil {
		rec.RawPayload = raw
	}
	return rec, nil
}

func payloadFor(store data.Store) (Payload, error) {
	switch store {
	case data.Steam:
		return &SteamGame{}, nil
	case data.Epic:
		return &EpicGame{}, nil
	case data.GOG:
		return &GOGGame{}, nil
	case data.Itch:
		return &ItchGame{}, nil
	case data.Humble:
		return &HumbleGame{}, nil
	case data.Battlenet:
		return &BattlenetGame{}, nil
	case data.Amazon:
		return &AmazonGame{}, nil
	case data.EA:
		return &EAGame{}, nil
	case data.Xbox:
		return &XboxGame{}, nil
	case data.Ubisoft:
		return &UbisoftGame{}, nil
	case data.Local:
		return &LocalGame{}, nil
	}
	return nil, fmt.Errorf("unknown store '%s'", store)
}

// Normalize maps an ImportRecord onto a new Game, ready to upsert. Records
// without a name or id are rejected; every other field may be absent.
func Normalize(rec data.ImportRecord) (*data.Game, error) {
	name := strings.TrimSpace(rec.Name)
	if name == "" {
		return nil, fmt.Errorf("%s game '%s': %w", rec.Store, rec.StoreNativeID, ErrNoName)
	}
	id := strings.TrimSpace(rec.StoreNativeID)
	if id == "" {
		return nil, fmt.Errorf("%s game '%s': %w", rec.Store, name, ErrNoID)
	}

	extra := datatypes.JSON(`{}`)
	if len(rec.RawPayload) > 0 && json.Valid(rec.RawPayload) {
		extra = datatypes.JSON(rec.RawPayload)
	}

	game := &data.Game{
		Store:   rec.Store,
		StoreID: id,
		Name:    name,

		Description: nonEmpty(rec.Description),
		Developers:  list(rec.Developers),
		Publishers:  list(rec.Publishers),
		Genres:      list(rec.Genres),

		CoverImage:      nonEmpty(rec.CoverURL),
		BackgroundImage: nonEmpty(rec.BackgroundURL),
		Icon:            nonEmpty(rec.IconURL),

		SupportedPlatforms: list(rec.Platforms),

		ReleaseDate:  nonEmpty(rec.ReleaseDate),
		CreatedDate:  nonEmpty(rec.CreatedDate),
		LastModified: nonEmpty(rec.LastModified),

		PlaytimeHours: rec.PlaytimeHours,
		CriticsScore:  rec.CriticScore,
		CanRunOffline: rec.CanRunOffline,
		DLCs:          list(rec.DLCs),
		ExtraData:     extra,

		IGDBID: rec.IGDBID,
	}
	game.Columns = supplied(game)
	return game, nil
}

// supplied lists the store columns the record carried a value for. Name
// and genres are always written, so they aren't listed.
func supplied(g *data.Game) []string {
	columns := []string{"extra_data"}
	add := func(column string, ok bool) {
		if ok {
			columns = append(columns, column)
		}
	}
	add("description", g.Description != nil)
	add("developers", len(g.Developers) > 0)
	add("publishers", len(g.Publishers) > 0)
	add("cover_image", g.CoverImage != nil)
	add("background_image", g.BackgroundImage != nil)
	add("icon", g.Icon != nil)
	add("supported_platforms", len(g.SupportedPlatforms) > 0)
	add("release_date", g.ReleaseDate != nil)
	add("created_date", g.CreatedDate != nil)
	add("last_modified", g.LastModified != nil)
	add("playtime_hours", g.PlaytimeHours != nil)
	add("critics_score", g.CriticsScore != nil)
	add("can_run_offline", g.CanRunOffline != nil)
	add("dlcs", len(g.DLCs) > 0)
	return columns
}

// list trims and drops empty entries, and never returns nil, so empty lists
// are stored as [].
func list(in []string) datatypes.JSONSlice[string] {
	out := datatypes.JSONSlice[string]{}
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func nonEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	if t := strings.TrimSpace(*s); t != "" {
		return &t
	}
	return nil
}

func ptr[T any](v T) *T { return &v }

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func single(s string) []string {
	if s == "" {
		return nil
	}
	return []string{s}
}
