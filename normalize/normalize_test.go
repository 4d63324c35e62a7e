package normalize_test

import (
	"encoding/json"
	"testing"

	"github.com/amonks/backlog/data"
	"github.com/amonks/backlog/normalize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, store data.Store, raw string) *data.Game {
	t.Helper()
	rec, err := normalize.Decode(store, json.RawMessage(raw))
	require.NoError(t, err)
	game, err := normalize.Normalize(rec)
	require.NoError(t, err)
	return game
}

func TestSteam(t *testing.T) {
	g := decode(t, data.Steam, `{"appid": 10, "name": "Half-Life", "playtime_forever": 90, "review_score": 96}`)
	assert.Equal(t, "10", g.StoreID)
	assert.Equal(t, "https://cdn.cloudflare.steamstatic.com/steam/apps/10/library_600x900_2x.jpg", *g.CoverImage)
	assert.Equal(t, "https://cdn.cloudflare.steamstatic.com/steam/apps/10/library_hero.jpg", *g.BackgroundImage)
	assert.Equal(t, 1.5, *g.PlaytimeHours)
	assert.Equal(t, 96.0, *g.CriticsScore)
	assert.Nil(t, g.Description)
	assert.JSONEq(t, `{"appid": 10, "name": "Half-Life", "playtime_forever": 90, "review_score": 96}`, string(g.ExtraData))
}

func TestEpic(t *testing.T) {
	g := decode(t, data.Epic, `{
		"app_name": "hl2", "title": "Half-Life 2", "developer": "Valve",
		"created_date": "2004-11-16", "can_run_offline": true, "dlcs": ["ep1"]
	}`)
	assert.Equal(t, "hl2", g.StoreID)
	assert.Equal(t, "Half-Life 2", g.Name)
	assert.Equal(t, []string{"Valve"}, []string(g.Developers))
	assert.Equal(t, "2004-11-16", *g.ReleaseDate)
	assert.True(t, *g.CanRunOffline)
	assert.Equal(t, []string{"ep1"}, []string(g.DLCs))
	assert.NotNil(t, g.Publishers)
	assert.Empty(t, g.Publishers)
}

func TestGOG(t *testing.T) {
	g := decode(t, data.GOG, `{
		"release_key": "gog_1207658924", "name": "The Witcher",
		"genres": ["RPG", "Adventure"], "themes": ["Fantasy", "rpg"],
		"release_date": 1193875200, "critics_score": 81
	}`)
	assert.Equal(t, "1207658924", g.StoreID)
	assert.Equal(t, []string{"RPG", "Adventure", "Fantasy"}, []string(g.Genres))
	assert.Equal(t, "2007-11-01T00:00:00", *g.ReleaseDate)

	scraped := decode(t, data.GOG, `{"id": "1207658924", "title": "The Witcher", "storeUrl": "https://www.gog.com/en/game/the_witcher"}`)
	assert.Equal(t, "1207658924", scraped.StoreID)
	assert.Equal(t, "The Witcher", scraped.Name)
	assert.Equal(t, []string{"extra_data"}, scraped.Columns)
	assert.Contains(t, g.Columns, "critics_score")
	assert.Contains(t, g.Columns, "release_date")
}

func TestItchPlatformsAndNumericID(t *testing.T) {
	g := decode(t, data.Itch, `{"id": 12345, "title": "Celeste Classic", "url": "https://x.itch.io/cc", "platforms": {"windows": true, "linux": true}}`)
	assert.Equal(t, "12345", g.StoreID)
	assert.Equal(t, []string{"Windows", "Linux"}, []string(g.SupportedPlatforms))
}

func TestHumble(t *testing.T) {
	g := decode(t, data.Humble, `{"human_name": "FTL", "machine_name": "ftl_faster_than_light", "icon": "https://icon", "payee": "Subset Games"}`)
	assert.Equal(t, "ftl_faster_than_light", g.StoreID)
	assert.Equal(t, "https://icon", *g.CoverImage)
	assert.Equal(t, "https://icon", *g.Icon)
	assert.Equal(t, []string{"Subset Games"}, []string(g.Publishers))
}

func TestNestedRawData(t *testing.T) {
	g := decode(t, data.Battlenet, `{"name": "Diablo II", "title_id": 5198665, "raw_data": {"region": "us"}}`)
	assert.Equal(t, "5198665", g.StoreID)
	assert.JSONEq(t, `{"region": "us"}`, string(g.ExtraData))

	g = decode(t, data.Amazon, `{"name": "Fallout 3 - Amazon Prime", "product_id": "amzn1.x", "raw_data": null}`)
	assert.JSONEq(t, `{"name": "Fallout 3 - Amazon Prime", "product_id": "amzn1.x", "raw_data": null}`, string(g.ExtraData))
}

func TestXbox(t *testing.T) {
	g := decode(t, data.Xbox, `{
		"name": "Halo Infinite", "store_id": "9PP5G1F0C2B6",
		"cover_image": "https://store-images/halo.jpg",
		"is_streaming": true, "acquisition_type": "Recurring",
		"developer": "343 Industries", "publisher": "Xbox Game Studios",
		"release_date": "2021-12-08T00:00:00.0000000Z",
		"raw_data": {"ProductId": "9PP5G1F0C2B6"}
	}`)
	assert.Equal(t, "9PP5G1F0C2B6", g.StoreID)
	assert.Equal(t, []string{"343 Industries"}, []string(g.Developers))
	assert.Equal(t, []string{"Xbox Game Studios"}, []string(g.Publishers))
	assert.Equal(t, "2021-12-08T00:00:00.0000000Z", *g.ReleaseDate)
	assert.True(t, g.IsStreaming())

	owned := decode(t, data.Xbox, `{"name": "Celeste", "pfn": "Celeste_pfn"}`)
	assert.Equal(t, "Celeste_pfn", owned.StoreID)
	assert.Nil(t, owned.ReleaseDate)
	assert.False(t, owned.IsStreaming())
}

func TestUbisoft(t *testing.T) {
	g := decode(t, data.Ubisoft, `{"title": "Assassin's Creed: Origins", "playtime": "10 hours 30 minutes"}`)
	assert.Equal(t, "assassins-creed-origins", g.StoreID)
	assert.Equal(t, 10.5, *g.PlaytimeHours)

	assert.Nil(t, normalize.UbisoftPlaytime("not played"))
	assert.Equal(t, 0.75, *normalize.UbisoftPlaytime("45 min"))
}

func TestNoNameIsSkipped(t *testing.T) {
	for store, raw := range map[data.Store]string{
		data.Steam:  `{"appid": 10}`,
		data.Epic:   `{"app_name": "x", "name": "  "}`,
		data.Humble: `{"machine_name": "x"}`,
	} {
		rec, err := normalize.Decode(store, json.RawMessage(raw))
		require.NoError(t, err)
		_, err = normalize.Normalize(rec)
		assert.ErrorIs(t, err, normalize.ErrNoName, store)
	}
}

func TestNoIDIsRejected(t *testing.T) {
	_, err := normalize.Normalize(data.ImportRecord{Name: "Orphan", Store: data.EA})
	assert.ErrorIs(t, err, normalize.ErrNoID)
}

func TestUnknownStore(t *testing.T) {
	_, err := normalize.Decode(data.Store("origin"), json.RawMessage(`{}`))
	assert.Error(t, err)
}

func TestLocalSeedsIGDBID(t *testing.T) {
	g := decode(t, data.Local, `{"name": "Cave Story", "store_id": "abc123def456", "igdb_id": 1234, "genres": ["Metroidvania"]}`)
	require.NotNil(t, g.IGDBID)
	assert.Equal(t, int64(1234), *g.IGDBID)
	assert.Equal(t, []string{"Metroidvania"}, []string(g.Genres))
}
