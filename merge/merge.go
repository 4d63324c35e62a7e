// Package merge folds provider metadata into stored games.
//
// Every function here mutates a *data.Game in memory and returns the columns
// it touched, so the caller can persist exactly those columns and nothing a
// concurrent writer might own. None of them perform I/O.
package merge

import (
	"database/sql"
	"time"

	"github.com/amonks/backlog/data"
	"github.com/amonks/backlog/rating"
)

// IGDBColumns are the columns owned by IGDB merges.
var IGDBColumns = []string{
	"igdb_id",
	"igdb_slug",
	"igdb_rating",
	"igdb_rating_count",
	"aggregated_rating",
	"aggregated_rating_count",
	"total_rating",
	"total_rating_count",
	"igdb_summary",
	"igdb_cover_url",
	"igdb_screenshots",
	"igdb_matched_at",
}

// MetacriticColumns are the columns owned by Metacritic merges.
var MetacriticColumns = []string{
	"metacritic_score",
	"metacritic_user_score",
	"metacritic_url",
	"metacritic_slug",
	"metacritic_matched_at",
}

// IGDB overwrites the game's IGDB columns with md, unions md's tags into
// the game's genres, and raises the nsfw flag if md is adult content. The
// flag is never lowered here.
func IGDB(game *data.Game, md *data.MetadataRecord, now time.Time) []string {
	id := md.ExternalID
	game.IGDBID = &id
	game.IGDBSlug = optional(md.Slug)
	game.IGDBRating = md.Rating
	game.IGDBRatingCount = md.RatingCount
	game.AggregatedRating = md.AggregatedRating
	game.AggregatedRatingCount = md.AggregatedRatingCount
	game.TotalRating = md.TotalRating
	game.TotalRatingCount = md.TotalRatingCount
	game.IGDBSummary = md.Summary
	game.IGDBCoverURL = optional(CoverURL(md.CoverURL))
	game.IGDBScreenshots = ScreenshotURLs(md.ScreenshotURLs)
	game.IGDBMatchedAt = sql.NullTime{Time: now, Valid: true}

	cols := append([]string{}, IGDBColumns...)

	if md.Adult() && !game.NSFW {
		game.NSFW = true
		cols = append(cols, "nsfw")
	}

	game.Genres = Genres(game.Genres, Tags(md))
	cols = append(cols, "genres")

	return append(cols, updateAverage(game)...)
}

// IGDBUnmatched records that an IGDB search found nothing acceptable, using
// the sentinel id 0. The rest of the game's IGDB columns are left alone.
func IGDBUnmatched(game *data.Game, now time.Time) []string {
	var zero int64
	game.IGDBID = &zero
	game.IGDBMatchedAt = sql.NullTime{Time: now, Valid: true}
	return []string{"igdb_id", "igdb_matched_at"}
}

// ClearIGDB nulls every IGDB column, returning the game to "never searched".
// Genres and nsfw keep whatever earlier merges added.
func ClearIGDB(game *data.Game) []string {
	game.IGDBID = nil
	game.IGDBSlug = nil
	game.IGDBRating = nil
	game.IGDBRatingCount = nil
	game.AggregatedRating = nil
	game.AggregatedRatingCount = nil
	game.TotalRating = nil
	game.TotalRatingCount = nil
	game.IGDBSummary = nil
	game.IGDBCoverURL = nil
	game.IGDBScreenshots = nil
	game.IGDBMatchedAt = sql.NullTime{}

	cols := append([]string{}, IGDBColumns...)
	return append(cols, updateAverage(game)...)
}

// Metacritic overwrites the game's Metacritic columns with md. The user
// score is kept on its 0-10 scale.
func Metacritic(game *data.Game, md *data.MetadataRecord, now time.Time) []string {
	game.MetacriticScore = md.CriticScore
	game.MetacriticUserScore = md.UserScore
	game.MetacriticURL = optional(md.URL)
	game.MetacriticSlug = optional(md.Slug)
	game.MetacriticMatchedAt = sql.NullTime{Time: now, Valid: true}

	cols := append([]string{}, MetacriticColumns...)
	return append(cols, updateAverage(game)...)
}

// ClearMetacritic nulls every Metacritic column.
func ClearMetacritic(game *data.Game) []string {
	game.MetacriticScore = nil
	game.MetacriticUserScore = nil
	game.MetacriticURL = nil
	game.MetacriticSlug = nil
	game.MetacriticMatchedAt = sql.NullTime{}

	cols := append([]string{}, MetacriticColumns...)
	return append(cols, updateAverage(game)...)
}

func updateAverage(game *data.Game) []string {
	game.AverageRating = rating.Average(game)
	return []string{"average_rating"}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
