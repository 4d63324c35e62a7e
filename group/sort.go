package group

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/amonks/backlog/data"
)

// A sort key reads one field from a game. Exactly one of the results is
// meaningful; ok is false when the field is null.
type key struct {
	text    bool
	extract func(*data.Game) (s string, f float64, ok bool)
}

func str(get func(*data.Game) string) key {
	return key{text: true, extract: func(g *data.Game) (string, float64, bool) {
		s := get(g)
		return strings.ToLower(s), 0, s != ""
	}}
}

func optStr(get func(*data.Game) *string) key {
	return key{text: true, extract: func(g *data.Game) (string, float64, bool) {
		s := get(g)
		if s == nil {
			return "", 0, false
		}
		return strings.ToLower(*s), 0, true
	}}
}

func num(get func(*data.Game) *float64) key {
	return key{extract: func(g *data.Game) (string, float64, bool) {
		f := get(g)
		if f == nil {
			return "", 0, false
		}
		return "", *f, true
	}}
}

var keys = map[string]key{
	"name":                  str(func(g *data.Game) string { return g.Name }),
	"store":                 str(func(g *data.Game) string { return string(g.Store) }),
	"release_date":          optStr(func(g *data.Game) *string { return g.ReleaseDate }),
	"playtime_hours":        num(func(g *data.Game) *float64 { return g.PlaytimeHours }),
	"critics_score":         num(func(g *data.Game) *float64 { return g.CriticsScore }),
	"total_rating":          num(func(g *data.Game) *float64 { return g.TotalRating }),
	"igdb_rating":           num(func(g *data.Game) *float64 { return g.IGDBRating }),
	"aggregated_rating":     num(func(g *data.Game) *float64 { return g.AggregatedRating }),
	"average_rating":        num(func(g *data.Game) *float64 { return g.AverageRating }),
	"metacritic_score":      num(func(g *data.Game) *float64 { return g.MetacriticScore }),
	"metacritic_user_score": num(func(g *data.Game) *float64 { return g.MetacriticUserScore }),
}

// SortKeys lists the fields groups can be sorted by.
func SortKeys() []string {
	names := make([]string, 0, len(keys))
	for name := range keys {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ValidSortKey reports whether name is a supported sort key.
func ValidSortKey(name string) bool {
	_, ok := keys[name]
	return ok
}

// Sort orders groups by a field of their primary game. Groups whose field is
// null go last in either direction. Text compares case-insensitively. The
// sort is stable.
func Sort(groups []*Group, by string, desc bool) error {
	k, ok := keys[by]
	if !ok {
		return fmt.Errorf("unsupported sort key '%s'", by)
	}

	slices.SortStableFunc(groups, func(a, b *Group) int {
		as, af, aok := k.extract(a.Primary)
		bs, bf, bok := k.extract(b.Primary)
		switch {
		case !aok && !bok:
			return 0
		case !aok:
			return 1
		case !bok:
			return -1
		}

		var c int
		if k.text {
			c = cmp.Compare(as, bs)
		} else {
			c = cmp.Compare(af, bf)
		}
		if desc {
			return -c
		}
		return c
	})

	return nil
}
