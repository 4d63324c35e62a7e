package server

import (
	"time"

	"github.com/amonks/backlog/data"
	"github.com/amonks/backlog/db"
	"github.com/amonks/backlog/group"
	"github.com/amonks/backlog/library"
)

type gameView struct {
	ID      int64      `json:"id"`
	Store   data.Store `json:"store"`
	StoreID string     `json:"store_id"`
	Name    string     `json:"name"`

	Description *string  `json:"description,omitempty"`
	Developers  []string `json:"developers"`
	Publishers  []string `json:"publishers"`
	Genres      []string `json:"genres"`
	Platforms   []string `json:"supported_platforms"`
	ReleaseDate *string  `json:"release_date,omitempty"`

	Cover            string  `json:"cover,omitempty"`
	BackgroundImage  *string `json:"background_image,omitempty"`
	CoverURLOverride *string `json:"cover_url_override,omitempty"`
	StoreURL         string  `json:"store_url,omitempty"`

	PlaytimeHours *float64 `json:"playtime_hours,omitempty"`
	CriticsScore  *float64 `json:"critics_score,omitempty"`

	Hidden bool `json:"hidden"`
	NSFW   bool `json:"nsfw"`

	IGDBID           *int64     `json:"igdb_id"`
	IGDBSlug         *string    `json:"igdb_slug,omitempty"`
	IGDBRating       *float64   `json:"igdb_rating,omitempty"`
	AggregatedRating *float64   `json:"aggregated_rating,omitempty"`
	TotalRating      *float64   `json:"total_rating,omitempty"`
	IGDBSummary      *string    `json:"igdb_summary,omitempty"`
	IGDBScreenshots  []string   `json:"igdb_screenshots,omitempty"`
	IGDBMatchedAt    *time.Time `json:"igdb_matched_at,omitempty"`

	MetacriticScore     *float64   `json:"metacritic_score,omitempty"`
	MetacriticUserScore *float64   `json:"metacritic_user_score,omitempty"`
	MetacriticURL       *string    `json:"metacritic_url,omitempty"`
	MetacriticSlug      *string    `json:"metacritic_slug,omitempty"`
	MetacriticMatchedAt *time.Time `json:"metacritic_matched_at,omitempty"`

	AverageRating *float64 `json:"average_rating,omitempty"`

	AddedAt time.Time `json:"added_at"`
}

func newGameView(g *data.Game) gameView {
	v := gameView{
		ID:      g.ID,
		Store:   g.Store,
		StoreID: g.StoreID,
		Name:    g.Name,

		Description: g.Description,
		Developers:  nonNil(g.Developers),
		Publishers:  nonNil(g.Publishers),
		Genres:      nonNil(g.Genres),
		Platforms:   nonNil(g.SupportedPlatforms),
		ReleaseDate: g.ReleaseDate,

		Cover:            g.Cover(),
		BackgroundImage:  g.BackgroundImage,
		CoverURLOverride: g.CoverURLOverride,
		StoreURL:         library.StoreURL(g),

		PlaytimeHours: g.PlaytimeHours,
		CriticsScore:  g.CriticsScore,

		Hidden: g.Hidden,
		NSFW:   g.NSFW,

		IGDBID:           g.IGDBID,
		IGDBSlug:         g.IGDBSlug,
		IGDBRating:       g.IGDBRating,
		AggregatedRating: g.AggregatedRating,
		TotalRating:      g.TotalRating,
		IGDBSummary:      g.IGDBSummary,
		IGDBScreenshots:  g.IGDBScreenshots,

		MetacriticScore:     g.MetacriticScore,
		MetacriticUserScore: g.MetacriticUserScore,
		MetacriticURL:       g.MetacriticURL,
		MetacriticSlug:      g.MetacriticSlug,

		AverageRating: g.AverageRating,
		AddedAt:       g.AddedAt,
	}
	if g.IGDBMatchedAt.Valid {
		v.IGDBMatchedAt = &g.IGDBMatchedAt.Time
	}
	if g.MetacriticMatchedAt.Valid {
		v.MetacriticMatchedAt = &g.MetacriticMatchedAt.Time
	}
	return v
}

func newGameViews(games []data.Game) []gameView {
	out := make([]gameView, len(games))
	for i := range games {
		out[i] = newGameView(&games[i])
	}
	return out
}

func nonNil(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}

type groupView struct {
	Primary     gameView     `json:"primary"`
	Stores      []data.Store `json:"stores"`
	GameIDs     []int64      `json:"game_ids"`
	IsStreaming bool         `json:"is_streaming"`
}

func newGroupViews(groups []*group.Group) []groupView {
	out := make([]groupView, len(groups))
	for i, g := range groups {
		out[i] = groupView{
			Primary:     newGameView(g.Primary),
			Stores:      g.Stores,
			GameIDs:     g.GameIDs,
			IsStreaming: g.IsStreaming,
		}
	}
	return out
}

type listingView struct {
	Groups []groupView `json:"groups"`
	Total  int         `json:"total"`
	Unique int         `json:"unique"`
	Stores []facetView `json:"stores"`
	Genres []facetView `json:"genres"`
	Hidden int64       `json:"hidden"`
}

type facetView struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newFacetViews(facets []db.Facet) []facetView {
	out := make([]facetView, len(facets))
	for i, f := range facets {
		out[i] = facetView{Name: f.Name, Count: f.Count}
	}
	return out
}

func newListingView(l *library.Listing) listingView {
	return listingView{
		Groups: newGroupViews(l.Groups),
		Total:  l.Total,
		Unique: l.Unique,
		Stores: newFacetViews(l.Stores),
		Genres: newFacetViews(l.Genres),
		Hidden: l.Hidden,
	}
}

type detailView struct {
	Game        gameView         `json:"game"`
	PrimaryID   int64            `json:"primary_id"`
	Copies      []gameView       `json:"copies"`
	Collections []collectionView `json:"collections"`
}

func newDetailView(d *library.Detail) detailView {
	v := detailView{
		Game:        newGameView(d.Game),
		PrimaryID:   d.Primary.ID,
		Copies:      make([]gameView, len(d.Copies)),
		Collections: newCollectionViews(d.Collections),
	}
	for i, c := range d.Copies {
		v.Copies[i] = newGameView(c.Game)
	}
	return v
}

type collectionView struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	GameCount   int64     `json:"game_count"`
	Covers      []string  `json:"covers"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newCollectionView(c *data.Collection) collectionView {
	return collectionView{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		GameCount:   c.GameCount,
		Covers:      nonNil(c.Covers),
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func newCollectionViews(collections []data.Collection) []collectionView {
	out := make([]collectionView, len(collections))
	for i := range collections {
		out[i] = newCollectionView(&collections[i])
	}
	return out
}

type collectionDetailView struct {
	collectionView
	Groups []groupView `json:"groups"`
}

type syncView struct {
	Store    data.Store `json:"store"`
	Error    string     `json:"error,omitempty"`
	Imported int        `json:"imported"`
	Skipped  int        `json:"skipped"`
	Failed   int        `json:"failed"`
}

func newSyncViews(reports []library.SyncReport) []syncView {
	out := make([]syncView, len(reports))
	for i, r := range reports {
		out[i] = syncView{Store: r.Store, Imported: r.Imported, Skipped: r.Skipped, Failed: r.Failed}
		if r.Err != nil {
			out[i].Error = r.Err.Error()
		}
	}
	return out
}

type matchView struct {
	Run       string        `json:"run"`
	Provider  data.Provider `json:"provider"`
	Mode      library.Mode  `json:"mode"`
	Total     int           `json:"total"`
	Matched   int           `json:"matched"`
	Unmatched int           `json:"unmatched"`
	Failed    int           `json:"failed"`
	Updated   int           `json:"updated"`
}

func newMatchView(r *library.MatchReport) matchView {
	return matchView{
		Run:       r.Run,
		Provider:  r.Provider,
		Mode:      r.Mode,
		Total:     r.Total,
		Matched:   r.Matched,
		Unmatched: r.Unmatched,
		Failed:    r.Failed,
		Updated:   r.Updated,
	}
}

type statsView struct {
	Total              int64                `json:"total"`
	ByStore            map[data.Store]int64 `json:"by_store"`
	TotalPlaytimeHours float64              `json:"total_playtime_hours"`
	Hidden             int64                `json:"hidden"`
	NSFW               int64                `json:"nsfw"`

	IGDBMatched   int64   `json:"igdb_matched"`
	IGDBUnmatched int64   `json:"igdb_unmatched"`
	IGDBPending   int64   `json:"igdb_pending"`
	IGDBMatchRate float64 `json:"igdb_match_rate"`

	MetacriticMatched int64 `json:"metacritic_matched"`

	AverageTotalRating     *float64 `json:"average_total_rating"`
	AverageMetacriticScore *float64 `json:"average_metacritic_score"`

	Genres []facetView `json:"genres"`
}

func newStatsView(s *library.Stats) statsView {
	return statsView{
		Total:                  s.Total,
		ByStore:                s.ByStore,
		TotalPlaytimeHours:     s.TotalPlaytimeHours,
		Hidden:                 s.Hidden,
		NSFW:                   s.NSFW,
		IGDBMatched:            s.IGDBMatched,
		IGDBUnmatched:          s.IGDBUnmatched,
		IGDBPending:            s.IGDBPending,
		IGDBMatchRate:          s.IGDBMatchRate,
		MetacriticMatched:      s.MetacriticMatched,
		AverageTotalRating:     s.AverageTotalRating,
		AverageMetacriticScore: s.AverageMetacriticScore,
		Genres:                 newFacetViews(s.Genres),
	}
}

type settingView struct {
	Key    string `json:"key"`
	Value  string `json:"value"`
	Source string `json:"source"`
}
