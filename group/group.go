// Package group assembles owned copies of the same game, across stores, into
// one entry for display.
package group

import (
	"github.com/amonks/backlog/data"
)

// A Group is every owned copy of one logical game. Copies are the same game
// when they share a positive IGDB id; everything else is its own group.
type Group struct {
	// The copy to display.
	Primary *data.Game

	// Stores and GameIDs are in input order.
	Stores  []data.Store
	GameIDs []int64

	// StoreData holds every copy, keyed by store. The same store can only
	// appear twice if a store lists the same game under two ids; both are
	// kept in Games.
	StoreData map[data.Store]*data.Game
	Games     []*data.Game

	// Set if any copy is a streaming-only title.
	IsStreaming bool
}

func newGroup(game *data.Game) *Group {
	return &Group{
		Primary:   game,
		Stores:    []data.Store{game.Store},
		GameIDs:   []int64{game.ID},
		StoreData: map[data.Store]*data.Game{game.Store: game},
		Games:     []*data.Game{game},

		IsStreaming: game.IsStreaming(),
	}
}

func (g *Group) add(game *data.Game) {
	g.Stores = append(g.Stores, game.Store)
	g.GameIDs = append(g.GameIDs, game.ID)
	g.StoreData[game.Store] = game
	g.Games = append(g.Games, game)
	g.IsStreaming = g.IsStreaming || game.IsStreaming()
	if Prefer(g.Primary, game) {
		g.Primary = game
	}
}

// Prefer reports whether candidate should replace current as a group's
// primary: it does when it has playtime and current doesn't, or, failing
// that, when it has an IGDB cover and current doesn't. Otherwise the
// earlier copy stays.
func Prefer(current, candidate *data.Game) bool {
	if has(candidate.PlaytimeHours) && !has(current.PlaytimeHours) {
		return true
	}
	if hasString(candidate.IGDBCoverURL) && !hasString(current.IGDBCoverURL) {
		return true
	}
	return false
}

// Games partitions games into groups. Matched groups come first, in the
// order their IGDB id was first seen, followed by one group per unmatched
// game in input order. An IGDB id of 0 means "searched, not found" and is
// unmatched.
func Games(games []data.Game) []*Group {
	var matched, unmatched []*Group
	byIGDBID := map[int64]*Group{}

	for i := range games {
		game := &games[i]
		if !game.IsMatched() {
			unmatched = append(unmatched, newGroup(game))
			continue
		}
		if g, ok := byIGDBID[*game.IGDBID]; ok {
			g.add(game)
			continue
		}
		g := newGroup(game)
		byIGDBID[*game.IGDBID] = g
		matched = append(matched, g)
	}

	return append(matched, unmatched...)
}

func has(f *float64) bool {
	return f != nil && *f != 0
}

func hasString(s *string) bool {
	return s != nil && *s != ""
}
