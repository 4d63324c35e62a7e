package data

// EroticThemeID is IGDB's id for its "Erotic" theme. Games carrying it are
// flagged nsfw and the theme is never added to their tags.
const EroticThemeID = 42

// Theme is an IGDB theme. Themes are tags like genres, but they are
// identified by id so that the erotic theme can be recognised whatever its
// display name.
type Theme struct {
	ID   int64
	Name string
}

// MetadataRecord is one provider's view of a game. IGDB fills the IGDB
// fields; Metacritic fills the Metacritic fields.
type MetadataRecord struct {
	Provider Provider

	// IGDB numeric id.
	ExternalID int64
	// IGDB or Metacritic slug.
	Slug string
	Name string
	URL  string

	// IGDB, 0-100
	Rating                *float64
	RatingCount           *int64
	AggregatedRating      *float64
	AggregatedRatingCount *int64
	TotalRating           *float64
	TotalRatingCount      *int64

	// Metacritic, 0-100 and 0-10
	CriticScore *float64
	UserScore   *float64

	Summary *string

	// As returned by the provider, usually thumbnail sized and scheme
	// relative, like "//images.igdb.com/igdb/image/upload/t_thumb/co1wyy.jpg".
	CoverURL       string
	ScreenshotURLs []string

	Genres []string
	Themes []Theme

	IsAdultContent bool
}

// Adult reports whether the record marks its game as adult content, either
// explicitly or through the erotic theme.
func (md *MetadataRecord) Adult() bool {
	if md.IsAdultContent {
		return true
	}
	for _, theme := range md.Themes {
		if theme.ID == EroticThemeID {
			return true
		}
	}
	return false
}
