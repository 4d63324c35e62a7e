package db

import (
	"cmp"
	"slices"
	"strings"

	"github.com/amonks/backlog/data"
)

func countFacets(games []data.Game) []Facet {
	index := map[string]int{}
	var facets []Facet
	for _, game := range games {
		seen := map[string]bool{}
		for _, genre := range game.Genres {
			genre = strings.TrimSpace(genre)
			key := strings.ToLower(genre)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			if i, ok := index[key]; ok {
				facets[i].Count++
				continue
			}
			index[key] = len(facets)
			facets = append(facets, Facet{Name: genre, Count: 1})
		}
	}
	slices.SortStableFunc(facets, func(a, b Facet) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return facets
}
