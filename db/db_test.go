package db_test

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/amonks/backlog/data"
	"github.com/amonks/backlog/db"
	"github.com/amonks/backlog/merge"
	"github.com/amonks/backlog/normalize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func f(v float64) *float64 { return &v }
func s(v string) *string   { return &v }

func open(t *testing.T) *db.DB {
	t.Helper()
	d, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d
}

func game(store data.Store, id, name string) *data.Game {
	return &data.Game{
		Store:     store,
		StoreID:   id,
		Name:      name,
		ExtraData: datatypes.JSON(`{}`),
	}
}

func insert(t *testing.T, d *db.DB, g *data.Game) int64 {
	t.Helper()
	id, err := d.UpsertGame(g)
	require.NoError(t, err)
	require.NotZero(t, id)
	return id
}

func TestUpsertIsIdempotent(t *testing.T) {
	d := open(t)

	mk := func() *data.Game {
		g := game(data.Steam, "620", "Portal 2")
		g.PlaytimeHours = f(12.5)
		g.Genres = []string{"Puzzle"}
		g.SupportedPlatforms = []string{"Windows", "Mac"}
		return g
	}

	id := insert(t, d, mk())
	first, err := d.GetGameByID(id)
	require.NoError(t, err)

	id2 := insert(t, d, mk())
	assert.Equal(t, id, id2)
	second, err := d.GetGameByID(id)
	require.NoError(t, err)

	first.UpdatedAt, second.UpdatedAt = time.Time{}, time.Time{}
	assert.Equal(t, first, second)

	all, err := d.ListGames(db.Filter{IncludeHidden: true})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestUpsertLeavesMetadataAlone(t *testing.T) {
	d := open(t)

	g := game(data.GOG, "1207658924", "The Witcher")
	g.Genres = []string{"RPG"}
	id := insert(t, d, g)

	stored, err := d.GetGameByID(id)
	require.NoError(t, err)
	cols := merge.IGDB(stored, &data.MetadataRecord{
		ExternalID:  1,
		TotalRating: f(81),
		Genres:      []string{"Adventure"},
	}, time.Now())
	require.NoError(t, d.UpdateColumns(stored, cols))
	require.NoError(t, d.SetFlag(id, data.Hidden, true))

	again := game(data.GOG, "1207658924", "The Witcher: Enhanced Edition")
	again.Genres = []string{"rpg", "Fantasy"}
	insert(t, d, again)

	got, err := d.GetGameByID(id)
	require.NoError(t, err)
	assert.Equal(t, "The Witcher: Enhanced Edition", got.Name)
	assert.Equal(t, int64(1), *got.IGDBID)
	assert.Equal(t, 81.0, *got.TotalRating)
	assert.True(t, got.Hidden)
	assert.Equal(t, []string{"RPG", "Adventure", "Fantasy"}, []string(got.Genres))
}

func TestSearchMatchesWildcardsLiterally(t *testing.T) {
	d := open(t)
	insert(t, d, game(data.Itch, "1", "100% Orange Juice"))
	insert(t, d, game(data.Itch, "2", "1000 Orange Juices"))
	insert(t, d, game(data.Itch, "3", "snake_case"))
	insert(t, d, game(data.Itch, "4", "snakescase"))

	search := func(q string) []string {
		games, err := d.ListGames(db.Filter{Search: q})
		require.NoError(t, err)
		var out []string
		for _, g := range games {
			out = append(out, g.Name)
		}
		return out
	}

	assert.Equal(t, []string{"100% Orange Juice"}, search("0% orange"))
	assert.Equal(t, []string{"snake_case"}, search("e_c"))
	assert.Equal(t, []string{"snake_case"}, search("snake_"))
}

func normalized(t *testing.T, store data.Store, raw string) *data.Game {
	t.Helper()
	rec, err := normalize.Decode(store, json.RawMessage(raw))
	require.NoError(t, err)
	g, err := normalize.Normalize(rec)
	require.NoError(t, err)
	return g
}

func TestSparseReimportKeepsOtherColumns(t *testing.T) {
	d := open(t)

	id := insert(t, d, normalized(t, data.GOG, `{
		"release_key": "gog_1207658924", "name": "The Witcher",
		"summary": "A witcher's tale", "developers": ["CD Projekt Red"],
		"cover_image": "https://cover", "critics_score": 81
	}`))
	insert(t, d, normalized(t, data.GOG, `{"id": "1207658924", "title": "The Witcher: Enhanced Edition"}`))

	got, err := d.GetGameByID(id)
	require.NoError(t, err)
	assert.Equal(t, "The Witcher: Enhanced Edition", got.Name)
	require.NotNil(t, got.Description)
	assert.Equal(t, "A witcher's tale", *got.Description)
	assert.Equal(t, []string{"CD Projekt Red"}, []string(got.Developers))
	require.NotNil(t, got.CoverImage)
	assert.Equal(t, "https://cover", *got.CoverImage)
	require.NotNil(t, got.CriticsScore)
	assert.Equal(t, 81.0, *got.CriticsScore)
	assert.Equal(t, 81.0, *got.AverageRating)

	bad := game(data.GOG, "1207658924", "The Witcher")
	bad.Columns = []string{"hidden"}
	_, err = d.UpsertGame(bad)
	assert.Error(t, err)
}

func TestReimportRecomputesAverage(t *testing.T) {
	d := open(t)

	g := game(data.Steam, "10", "Half-Life")
	g.CriticsScore = f(90)
	id := insert(t, d, g)

	stored, err := d.GetGameByID(id)
	require.NoError(t, err)
	assert.Equal(t, 90.0, *stored.AverageRating)
	cols := merge.Metacritic(stored, &data.MetadataRecord{Slug: "half-life", CriticScore: f(96)}, time.Now())
	require.NoError(t, d.UpdateColumns(stored, cols))

	again := game(data.Steam, "10", "Half-Life")
	again.CriticsScore = f(40)
	insert(t, d, again)

	got, err := d.GetGameByID(id)
	require.NoError(t, err)
	assert.Equal(t, 40.0, *got.CriticsScore)
	assert.Equal(t, 96.0, *got.MetacriticScore)
	assert.Equal(t, 68.0, *got.AverageRating)
}

func TestUpsertWithoutExtraData(t *testing.T) {
	d := open(t)
	id := insert(t, d, &data.Game{Store: data.Steam, StoreID: "1", Name: "Hades"})

	got, err := d.GetGameByID(id)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(got.ExtraData))
}

func TestGetGameNotFound(t *testing.T) {
	d := open(t)

	_, err := d.GetGame(data.Steam, "nope")
	assert.ErrorIs(t, err, db.ErrNotFound)

	_, err = d.GetGameByID(99)
	assert.True(t, db.IsNotFound(err))

	assert.ErrorIs(t, d.SetFlag(99, data.NSFW, true), db.ErrNotFound)
	assert.ErrorIs(t, d.SetCoverOverride(99, s("x")), db.ErrNotFound)
}

func TestUpdateColumnsWritesOnlyNamedColumns(t *testing.T) {
	d := open(t)
	id := insert(t, d, game(data.Epic, "Fortnite", "Fortnite"))

	stale, err := d.GetGameByID(id)
	require.NoError(t, err)

	require.NoError(t, d.SetFlag(id, data.NSFW, true))

	cols := merge.Metacritic(stale, &data.MetadataRecord{Slug: "fortnite", CriticScore: f(81)}, time.Now())
	require.NoError(t, d.UpdateColumns(stale, cols))

	got, err := d.GetGameByID(id)
	require.NoError(t, err)
	assert.True(t, got.NSFW)
	assert.Equal(t, 81.0, *got.MetacriticScore)
	assert.Equal(t, 81.0, *got.AverageRating)
}

func TestListGamesFilter(t *testing.T) {
	d := open(t)

	a := game(data.Steam, "1", "Hades")
	a.Genres = []string{"Roguelike", "Action"}
	insert(t, d, a)

	b := game(data.Epic, "2", "Hades")
	b.Genres = []string{"action"}
	insert(t, d, b)

	c := game(data.Amazon, "3", "Fallout 3 - Amazon Prime")
	insert(t, d, c)

	hidden := game(data.GOG, "4", "Hidden Thing")
	hiddenID := insert(t, d, hidden)
	require.NoError(t, d.SetFlag(hiddenID, data.Hidden, true))

	names := func(f db.Filter) []string {
		games, err := d.ListGames(f)
		require.NoError(t, err)
		var out []string
		for _, g := range games {
			out = append(out, string(g.Store)+":"+g.Name)
		}
		return out
	}

	assert.Equal(t, []string{"amazon:Fallout 3 - Amazon Prime", "steam:Hades", "epic:Hades"}, names(db.Filter{}))
	assert.Equal(t, []string{"steam:Hades", "epic:Hades"}, names(db.Filter{ExcludeNameSuffixes: []string{" - Amazon Prime", " - Amazon Luna"}}))
	assert.Equal(t, []string{"epic:Hades"}, names(db.Filter{Stores: []data.Store{data.Epic}}))
	assert.Equal(t, []string{"steam:Hades", "epic:Hades"}, names(db.Filter{Genres: []string{"ACTION"}}))
	assert.Equal(t, []string{"steam:Hades"}, names(db.Filter{Genres: []string{"puzzle", "ROGUELIKE"}}))
	assert.Equal(t, []string{"amazon:Fallout 3 - Amazon Prime"}, names(db.Filter{Search: "fall"}))
	assert.Empty(t, names(db.Filter{Search: "%"}))
	assert.Empty(t, names(db.Filter{Search: "_"}))
	assert.Equal(t, []string{"gog:Hidden Thing"}, names(db.Filter{OnlyHidden: true}))
	assert.Len(t, names(db.Filter{IncludeHidden: true}), 4)
}

func TestGamesToMatch(t *testing.T) {
	d := open(t)

	aID := insert(t, d, game(data.Steam, "1", "Celeste"))
	insert(t, d, game(data.Epic, "2", "celeste"))
	insert(t, d, game(data.GOG, "3", "Braid"))
	hiddenID := insert(t, d, game(data.Itch, "4", "Secret"))
	require.NoError(t, d.SetFlag(hiddenID, data.Hidden, true))

	igdb, err := d.GetGamesToMatchIGDB(false, 0)
	require.NoError(t, err)
	assert.Len(t, igdb, 4)

	a, err := d.GetGameByID(aID)
	require.NoError(t, err)
	require.NoError(t, d.UpdateColumns(a, merge.IGDBUnmatched(a, time.Now())))

	igdb, err = d.GetGamesToMatchIGDB(false, 0)
	require.NoError(t, err)
	assert.Len(t, igdb, 3)

	igdb, err = d.GetGamesToMatchIGDB(true, 2)
	require.NoError(t, err)
	assert.Len(t, igdb, 2)

	mc, err := d.GetGamesToMatchMetacritic(false, 0)
	require.NoError(t, err)
	require.Len(t, mc, 2)
	assert.Equal(t, "Braid", mc[0].Name)
	assert.Equal(t, aID, mc[1].ID)

	same, err := d.GetGamesByName("CELESTE")
	require.NoError(t, err)
	assert.Len(t, same, 2)
}

func TestFlagsAndCover(t *testing.T) {
	d := open(t)
	a := insert(t, d, game(data.Steam, "1", "A"))
	b := insert(t, d, game(data.Steam, "2", "B"))

	n, err := d.SetFlagBulk([]int64{a, b, 999}, data.NSFW, true)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, d.SetCoverOverride(a, s("https://example.com/a.png")))
	got, err := d.GetGameByID(a)
	require.NoError(t, err)
	assert.True(t, got.NSFW)
	assert.Equal(t, "https://example.com/a.png", got.Cover())

	require.NoError(t, d.SetCoverOverride(a, nil))
	got, err = d.GetGameByID(a)
	require.NoError(t, err)
	assert.Nil(t, got.CoverURLOverride)
}

func TestCollections(t *testing.T) {
	d := open(t)
	a := game(data.Steam, "1", "A")
	a.CoverImage = s("https://a")
	aID := insert(t, d, a)
	bID := insert(t, d, game(data.Steam, "2", "B"))

	favs, err := d.CreateCollection("Favorites", nil)
	require.NoError(t, err)
	later, err := d.CreateCollection("Later", s("someday"))
	require.NoError(t, err)

	require.NoError(t, d.AddToCollection(favs.ID, aID))
	require.NoError(t, d.AddToCollection(favs.ID, aID))
	require.NoError(t, d.AddToCollection(favs.ID, bID))

	assert.ErrorIs(t, d.AddToCollection(999, aID), db.ErrNotFound)
	assert.ErrorIs(t, d.AddToCollection(favs.ID, 999), db.ErrNotFound)
	assert.ErrorIs(t, d.RemoveFromCollection(later.ID, aID), db.ErrNotFound)

	list, err := d.ListCollections()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Favorites", list[0].Name)
	assert.Equal(t, int64(2), list[0].GameCount)
	assert.Equal(t, []string{"https://a"}, list[0].Covers)
	assert.Equal(t, int64(0), list[1].GameCount)
	assert.Empty(t, list[1].Covers)

	games, err := d.GetCollectionGames(favs.ID)
	require.NoError(t, err)
	assert.Len(t, games, 2)

	in, err := d.GetGameCollections(aID)
	require.NoError(t, err)
	require.Len(t, in, 1)
	assert.Equal(t, favs.ID, in[0].ID)

	renamed, err := d.UpdateCollection(later.ID, s("Backlog"), nil)
	require.NoError(t, err)
	assert.Equal(t, "Backlog", renamed.Name)
	assert.Equal(t, "someday", *renamed.Description)

	require.NoError(t, d.DeleteGame(bID))
	c, err := d.GetCollection(favs.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.GameCount)

	require.NoError(t, d.DeleteCollection(favs.ID))
	assert.ErrorIs(t, d.DeleteCollection(favs.ID), db.ErrNotFound)
	_, err = d.GetCollectionGames(favs.ID)
	assert.ErrorIs(t, err, db.ErrNotFound)

	var memberships int64
	require.NoError(t, d.Table("collection_games").Count(&memberships).Error)
	assert.Zero(t, memberships)
}

func TestSettings(t *testing.T) {
	d := open(t)

	_, ok, err := d.GetSetting("IGDB_CLIENT_ID")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, d.SetSetting("IGDB_CLIENT_ID", "one"))
	require.NoError(t, d.SetSetting("IGDB_CLIENT_ID", "two"))
	v, ok, err := d.GetSetting("IGDB_CLIENT_ID")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "two", v)

	all, err := d.ListSettings()
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, d.DeleteSetting("IGDB_CLIENT_ID"))
	assert.ErrorIs(t, d.DeleteSetting("IGDB_CLIENT_ID"), db.ErrNotFound)
}

func TestStatsAndDiscovery(t *testing.T) {
	d := open(t)

	rate := func(store data.Store, id, name string, md *data.MetadataRecord, playtime *float64) {
		g := game(store, id, name)
		g.PlaytimeHours = playtime
		g.Genres = []string{"Action"}
		gid := insert(t, d, g)
		if md == nil {
			return
		}
		stored, err := d.GetGameByID(gid)
		require.NoError(t, err)
		require.NoError(t, d.UpdateColumns(stored, merge.IGDB(stored, md, time.Now())))
	}

	rate(data.Steam, "1", "Great", &data.MetadataRecord{ExternalID: 1, TotalRating: f(95), AggregatedRating: f(96)}, f(10))
	rate(data.Steam, "2", "Gem", &data.MetadataRecord{ExternalID: 2, TotalRating: f(80), Rating: f(80)}, nil)
	rate(data.Epic, "3", "Plain", nil, f(2.25))

	stats, err := d.GetStats(db.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(2), stats.ByStore[data.Steam])
	assert.Equal(t, int64(2), stats.IGDBMatched)
	assert.Equal(t, int64(1), stats.IGDBPending)
	assert.Equal(t, 12.3, stats.TotalPlaytimeHours)
	require.NotNil(t, stats.AverageTotalRating)
	assert.Equal(t, 87.5, *stats.AverageTotalRating)

	facets, err := d.GetGenreFacets(db.Filter{})
	require.NoError(t, err)
	assert.Equal(t, []db.Facet{{Name: "Action", Count: 3}}, facets)

	disc, err := d.GetDiscovery(db.Filter{}, 10)
	require.NoError(t, err)
	require.Len(t, disc.HighlyRated, 1)
	assert.Equal(t, "Great", disc.HighlyRated[0].Name)
	require.Len(t, disc.HiddenGems, 1)
	assert.Equal(t, "Gem", disc.HiddenGems[0].Name)
	require.Len(t, disc.MostPlayed, 1)
	assert.Equal(t, "Great", disc.MostPlayed[0].Name)
	require.Len(t, disc.CriticFavorites, 1)
}
