package server_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/amonks/backlog/config"
	"github.com/amonks/backlog/data"
	"github.com/amonks/backlog/db"
	"github.com/amonks/backlog/library"
	"github.com/amonks/backlog/server"
	"github.com/amonks/backlog/sources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type source struct {
	store    data.Store
	payloads []string
}

func (s source) Store() data.Store { return s.store }

func (s source) Payloads(ctx context.Context) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, len(s.payloads))
	for i, p := range s.payloads {
		out[i] = json.RawMessage(p)
	}
	return out, nil
}

func setup(t *testing.T) (*httptest.Server, *db.DB) {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	lib := library.New(database, library.WithSources(func(store data.Store) (sources.Source, error) {
		if store != data.Steam {
			return nil, library.ErrProviderUnavailable
		}
		return source{store: store, payloads: []string{
			`{"appid": 1, "name": "Hades", "playtime_forever": 600}`,
			`{"appid": 2, "name": "Celeste"}`,
		}}, nil
	}))
	_, err = lib.Sync(context.Background())
	require.NoError(t, err)

	srv := httptest.NewServer(server.New(lib, config.New().Settings(database)))
	t.Cleanup(srv.Close)
	return srv, database
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) (int, envelope) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, srv.URL+path, r)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	if resp.StatusCode != http.StatusNoContent && !strings.HasPrefix(path, "/metrics") {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	}
	return resp.StatusCode, env
}

func gameID(t *testing.T, database *db.DB, storeID string) int64 {
	t.Helper()
	game, err := database.GetGame(data.Steam, storeID)
	require.NoError(t, err)
	return game.ID
}

func TestListGames(t *testing.T) {
	srv, _ := setup(t)

	status, env := do(t, srv, "GET", "/api/games?sort=playtime_hours&order=desc", "")
	require.Equal(t, http.StatusOK, status)
	var listing struct {
		Groups []struct {
			Primary struct {
				Name          string   `json:"name"`
				PlaytimeHours *float64 `json:"playtime_hours"`
				StoreURL      string   `json:"store_url"`
			} `json:"primary"`
			Stores []string `json:"stores"`
		} `json:"groups"`
		Total  int `json:"total"`
		Stores []struct {
			Name  string `json:"name"`
			Count int    `json:"count"`
		} `json:"stores"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &listing))
	require.Len(t, listing.Groups, 2)
	assert.Equal(t, "Hades", listing.Groups[0].Primary.Name)
	assert.Equal(t, 10.0, *listing.Groups[0].Primary.PlaytimeHours)
	assert.Equal(t, "https://store.steampowered.com/app/1", listing.Groups[0].Primary.StoreURL)
	assert.Equal(t, []string{"steam"}, listing.Groups[0].Stores)
	assert.Equal(t, 2, listing.Total)
	require.Len(t, listing.Stores, 1)
	assert.Equal(t, 2, listing.Stores[0].Count)

	status, env = do(t, srv, "GET", "/api/games?sort=bogus", "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "bad_input", env.Error.Code)

	status, _ = do(t, srv, "GET", "/api/games?hidden=sometimes", "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestGameErrors(t *testing.T) {
	srv, database := setup(t)
	id := gameID(t, database, "1")

	status, _ := do(t, srv, "GET", "/api/games/abc", "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, env := do(t, srv, "GET", "/api/games/9999", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "not_found", env.Error.Code)

	status, _ = do(t, srv, "POST", fmt.Sprintf("/api/games/%d/match", id), `{"provider": "igdb", "key": "not-a-number"}`)
	assert.Equal(t, http.StatusServiceUnavailable, status)

	status, _ = do(t, srv, "POST", fmt.Sprintf("/api/games/%d/match", id), `{"provider": "steamdb", "key": "1"}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, srv, "POST", fmt.Sprintf("/api/games/%d/match", id), `{"nope": true}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = do(t, srv, "POST", "/api/match?provider=igdb", "")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "provider_unavailable", env.Error.Code)
}

func TestModeration(t *testing.T) {
	srv, database := setup(t)
	id := gameID(t, database, "1")

	status, env := do(t, srv, "POST", fmt.Sprintf("/api/games/%d/toggle/hidden", id), "")
	require.Equal(t, http.StatusOK, status)
	var toggled map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &toggled))
	assert.Equal(t, true, toggled["hidden"])

	status, _ = do(t, srv, "POST", fmt.Sprintf("/api/games/%d/toggle/pinned", id), "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, srv, "POST", "/api/bulk/nsfw", `{"ids": []}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = do(t, srv, "POST", "/api/bulk/nsfw", fmt.Sprintf(`{"ids": [%d]}`, id))
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"updated": 1}`, string(env.Data))

	status, _ = do(t, srv, "PUT", fmt.Sprintf("/api/games/%d/cover", id), `{"url": " https://cover "}`)
	assert.Equal(t, http.StatusNoContent, status)

	game, err := database.GetGameByID(id)
	require.NoError(t, err)
	assert.True(t, game.Hidden)
	assert.True(t, game.NSFW)
	assert.Equal(t, "https://cover", *game.CoverURLOverride)

	status, env = do(t, srv, "GET", "/api/games?hidden=only", "")
	require.Equal(t, http.StatusOK, status)
	var listing struct {
		Unique int `json:"unique"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &listing))
	assert.Equal(t, 1, listing.Unique)
}

func TestCollections(t *testing.T) {
	srv, database := setup(t)
	id := gameID(t, database, "2")

	status, _ := do(t, srv, "POST", "/api/collections", `{"name": " "}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, env := do(t, srv, "POST", "/api/collections", `{"name": "Cozy", "description": "for rainy days"}`)
	require.Equal(t, http.StatusCreated, status)
	var c struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &c))
	assert.Equal(t, "Cozy", c.Name)

	path := fmt.Sprintf("/api/collections/%d/games/%d", c.ID, id)
	status, _ = do(t, srv, "PUT", path, "")
	assert.Equal(t, http.StatusNoContent, status)

	status, env = do(t, srv, "GET", fmt.Sprintf("/api/collections/%d", c.ID), "")
	require.Equal(t, http.StatusOK, status)
	var detail struct {
		Name      string `json:"name"`
		GameCount int64  `json:"game_count"`
		Groups    []any  `json:"groups"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &detail))
	assert.Equal(t, "Cozy", detail.Name)
	assert.Equal(t, int64(1), detail.GameCount)
	assert.Len(t, detail.Groups, 1)

	status, _ = do(t, srv, "PATCH", fmt.Sprintf("/api/collections/%d", c.ID), `{"name": "Cozier"}`)
	assert.Equal(t, http.StatusOK, status)

	status, _ = do(t, srv, "DELETE", path, "")
	assert.Equal(t, http.StatusNoContent, status)
	status, _ = do(t, srv, "DELETE", path, "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = do(t, srv, "DELETE", fmt.Sprintf("/api/collections/%d", c.ID), "")
	assert.Equal(t, http.StatusNoContent, status)
	status, _ = do(t, srv, "GET", fmt.Sprintf("/api/collections/%d", c.ID), "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestSettings(t *testing.T) {
	t.Setenv("IGDB_CLIENT_SECRET", "abcdefghijkl")
	srv, _ := setup(t)

	status, _ := do(t, srv, "PUT", "/api/settings/favorite_color", `{"value": "blue"}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, srv, "PUT", "/api/settings/steam_id", `{"value": "7656"}`)
	assert.Equal(t, http.StatusNoContent, status)

	status, env := do(t, srv, "GET", "/api/settings", "")
	require.Equal(t, http.StatusOK, status)
	var values []struct {
		Key    string `json:"key"`
		Value  string `json:"value"`
		Source string `json:"source"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &values))
	byKey := map[string]string{}
	origins := map[string]string{}
	for _, v := range values {
		byKey[v.Key], origins[v.Key] = v.Value, v.Source
	}
	assert.Equal(t, "********ijkl", byKey[config.IGDBClientSecret])
	assert.Equal(t, "env", origins[config.IGDBClientSecret])
	assert.Equal(t, "7656", byKey[config.SteamID])
	assert.Equal(t, "db", origins[config.SteamID])
}

func TestStatsAndMetrics(t *testing.T) {
	srv, _ := setup(t)

	status, env := do(t, srv, "GET", "/api/stats", "")
	require.Equal(t, http.StatusOK, status)
	var stats struct {
		Total              int64   `json:"total"`
		TotalPlaytimeHours float64 `json:"total_playtime_hours"`
		IGDBPending        int64   `json:"igdb_pending"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, int64(2), stats.Total)
	assert.Equal(t, 10.0, stats.TotalPlaytimeHours)
	assert.Equal(t, int64(2), stats.IGDBPending)

	resp, err := srv.Client().Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `backlog_synced_games_total{result="imported",store="steam"}`)
}
