package library

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/amonks/backlog/data"
	"github.com/amonks/backlog/db"
	"github.com/amonks/backlog/group"
	"github.com/amonks/backlog/merge"
)

// SetManualMatch matches a game to the given IGDB id or Metacritic slug,
// overwriting any earlier match for that provider. An empty key clears the
// provider's columns instead. It returns db.ErrNotFound if there's no such
// game or the provider has nothing under key, and ErrBadInput if key can't
// be an id for the provider.
func (l *Library) SetManualMatch(ctx context.Context, gameID int64, provider data.Provider, key string) (*data.Game, error) {
	if _, err := data.ParseProvider(string(provider)); err != nil {
		return nil, badInput("%s", err)
	}
	if _, err := l.db.GetGameByID(gameID); err != nil {
		return nil, err
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return l.ClearMatch(gameID, provider)
	}

	p, err := l.providers(provider)
	if err != nil {
		return nil, err
	}
	md, err := p.Lookup(ctx, key)
	if err != nil {
		return nil, err
	}
	if md == nil {
		return nil, fmt.Errorf("no %s game '%s': %w", provider, key, db.ErrNotFound)
	}

	l.mergeMu.Lock()
	defer l.mergeMu.Unlock()

	game, err := l.db.GetGameByID(gameID)
	if err != nil {
		return nil, err
	}
	var cols []string
	switch provider {
	case data.IGDB:
		cols = merge.IGDB(game, md, l.now())
	case data.Metacritic:
		cols = merge.Metacritic(game, md, l.now())
	}
	if err := l.db.UpdateColumns(game, cols); err != nil {
		return nil, err
	}
	return game, nil
}

// ClearMatch nulls one provider's columns on a game, leaving the other
// provider's alone.
func (l *Library) ClearMatch(gameID int64, provider data.Provider) (*data.Game, error) {
	l.mergeMu.Lock()
	defer l.mergeMu.Unlock()

	game, err := l.db.GetGameByID(gameID)
	if err != nil {
		return nil, err
	}
	var cols []string
	switch provider {
	case data.IGDB:
		cols = merge.ClearIGDB(game)
	case data.Metacritic:
		cols = merge.ClearMetacritic(game)
	default:
		return nil, badInput("unknown provider '%s'", provider)
	}
	if err := l.db.UpdateColumns(game, cols); err != nil {
		return nil, err
	}
	return game, nil
}

func (l *Library) SetFlag(gameID int64, flag data.Flag, value bool) error {
	if _, err := data.ParseFlag(string(flag)); err != nil {
		return badInput("%s", err)
	}
	return l.db.SetFlag(gameID, flag, value)
}

// ToggleFlag flips a flag on a game and returns its new value.
func (l *Library) ToggleFlag(gameID int64, flag data.Flag) (bool, error) {
	game, err := l.db.GetGameByID(gameID)
	if err != nil {
		return false, err
	}
	var value bool
	switch flag {
	case data.Hidden:
		value = !game.Hidden
	case data.NSFW:
		value = !game.NSFW
	default:
		return false, badInput("unknown flag '%s'", flag)
	}
	if err := l.db.SetFlag(gameID, flag, value); err != nil {
		return false, err
	}
	return value, nil
}

// SetFlagBulk sets a flag on many games at once, returning how many rows
// changed. An empty id list is bad input.
func (l *Library) SetFlagBulk(ids []int64, flag data.Flag, value bool) (int, error) {
	if len(ids) == 0 {
		return 0, badInput("no games given")
	}
	if _, err := data.ParseFlag(string(flag)); err != nil {
		return 0, badInput("%s", err)
	}
	return l.db.SetFlagBulk(ids, flag, value)
}

// SetCoverOverride replaces the cover shown for a game. An empty url clears
// the override.
func (l *Library) SetCoverOverride(gameID int64, url string) error {
	var override *string
	if url = strings.TrimSpace(url); url != "" {
		override = &url
	}
	return l.db.SetCoverOverride(gameID, override)
}

// Copy is one owned copy of a game, with its store page.
type Copy struct {
	*data.Game
	StoreURL string
}

// Detail is one game as the detail page shows it: the requested copy, every
// other copy matched to the same IGDB game, and the collections it's in.
type Detail struct {
	Game    *data.Game
	Primary *data.Game
	Copies  []Copy

	Collections []data.Collection
}

func (l *Library) Detail(gameID int64) (*Detail, error) {
	game, err := l.db.GetGameByID(gameID)
	if err != nil {
		return nil, err
	}

	games := []data.Game{*game}
	if game.IsMatched() {
		if games, err = l.db.GetGamesByIGDBID(*game.IGDBID); err != nil {
			return nil, err
		}
	}
	groups := group.Games(games)
	if len(groups) != 1 {
		return nil, fmt.Errorf("game %d: expected 1 group, got %d", gameID, len(groups))
	}
	g := groups[0]

	collections, err := l.db.GetGameCollections(gameID)
	if err != nil {
		return nil, err
	}

	d := &Detail{Game: game, Primary: g.Primary, Collections: collections}
	for _, c := range g.Games {
		d.Copies = append(d.Copies, Copy{Game: c, StoreURL: StoreURL(c)})
	}
	return d, nil
}

// StoreURL is the game's page on its store, or "" if there's no way to link
// to it.
func StoreURL(game *data.Game) string {
	id := game.StoreID
	if id == "" {
		return ""
	}
	switch game.Store {
	case data.Steam:
		return "https://store.steampowered.com/app/" + id
	case data.Epic:
		return "https://store.epicgames.com/en-US/p/" + id
	case data.GOG:
		return "https://www.gog.com/en/game/" + id
	case data.Itch:
		return extraString(game, "url")
	case data.Humble:
		if key := extraString(game, "gamekey"); key != "" {
			return "https://www.humblebundle.com/downloads?key=" + key
		}
	case data.Battlenet:
		return "https://account.battle.net/games"
	case data.Amazon:
		return "https://gaming.amazon.com/home"
	case data.Xbox:
		return "https://www.xbox.com/games/store/" + id
	}
	return ""
}

func extraString(game *data.Game, key string) string {
	var extra map[string]any
	if err := json.Unmarshal(game.ExtraData, &extra); err != nil {
		return ""
	}
	s, _ := extra[key].(string)
	return s
}
