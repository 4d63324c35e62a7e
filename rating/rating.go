// Package rating folds every rating source on a game into one 0-100 score.
package rating

import (
	"math"

	"github.com/amonks/backlog/data"
)

// Average returns the mean of every rating present on the game, on a 0-100
// scale, rounded to one decimal place. Metacritic's user score is the only
// source on a 0-10 scale and is multiplied by ten first.
//
// A game with no ratings at all is unrated: Average returns nil, not zero.
func Average(game *data.Game) *float64 {
	return Of(
		game.CriticsScore,
		game.IGDBRating,
		game.AggregatedRating,
		game.TotalRating,
		game.MetacriticScore,
		scale(game.MetacriticUserScore, 10),
	)
}

// Of averages the non-nil values, rounding to one decimal place.
func Of(values ...*float64) *float64 {
	var sum float64
	var n int
	for _, v := range values {
		if v == nil {
			continue
		}
		sum += *v
		n++
	}
	if n == 0 {
		return nil
	}
	avg := math.Round(sum/float64(n)*10) / 10
	return &avg
}

func scale(v *float64, by float64) *float64 {
	if v == nil {
		return nil
	}
	scaled := *v * by
	return &scaled
}
