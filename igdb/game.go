package igdb

import "github.com/amonks/backlog/data"

type game struct {
	ID                    int64    `json:"id"`
	Name                  string   `json:"name"`
	Slug                  string   `json:"slug"`
	Rating                *float64 `json:"rating"`
	RatingCount           *int64   `json:"rating_count"`
	AggregatedRating      *float64 `json:"aggregated_rating"`
	AggregatedRatingCount *int64   `json:"aggregated_rating_count"`
	TotalRating           *float64 `json:"total_rating"`
	TotalRatingCount      *int64   `json:"total_rating_count"`
	Summary               *string  `json:"summary"`

	Genres []struct {
		Name string `json:"name"`
	} `json:"genres"`
	Themes []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"themes"`

	Cover *struct {
		URL string `json:"url"`
	} `json:"cover"`
	Screenshots []struct {
		URL string `json:"url"`
	} `json:"screenshots"`
}

func (g *game) record() data.MetadataRecord {
	md := data.MetadataRecord{
		Provider:              data.IGDB,
		ExternalID:            g.ID,
		Slug:                  g.Slug,
		Name:                  g.Name,
		URL:                   "https://www.igdb.com/games/" + g.Slug,
		Rating:                g.Rating,
		RatingCount:           g.RatingCount,
		AggregatedRating:      g.AggregatedRating,
		AggregatedRatingCount: g.AggregatedRatingCount,
		TotalRating:           g.TotalRating,
		TotalRatingCount:      g.TotalRatingCount,
		Summary:               g.Summary,
	}
	if g.Slug == "" {
		md.URL = ""
	}
	if g.Cover != nil {
		md.CoverURL = g.Cover.URL
	}
	for _, s := range g.Screenshots {
		md.ScreenshotURLs = append(md.ScreenshotURLs, s.URL)
	}
	for _, genre := range g.Genres {
		if genre.Name != "" {
			md.Genres = append(md.Genres, genre.Name)
		}
	}
	for _, theme := range g.Themes {
		md.Themes = append(md.Themes, data.Theme{ID: theme.ID, Name: theme.Name})
	}
	md.IsAdultContent = md.Adult()
	return md
}
