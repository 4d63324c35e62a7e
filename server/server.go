// Package server is the JSON HTTP API over a game library.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/amonks/backlog/config"
	"github.com/amonks/backlog/data"
	"github.com/amonks/backlog/db"
	"github.com/amonks/backlog/library"
	"github.com/amonks/backlog/metrics"
	"github.com/google/uuid"
)

type Server struct {
	lib      *library.Library
	settings *config.Settings
	mux      *http.ServeMux
}

func New(lib *library.Library, settings *config.Settings) *Server {
	s := &Server{lib: lib, settings: settings, mux: http.NewServeMux()}

	s.mux.HandleFunc("GET /api/games", s.listGames)
	s.mux.HandleFunc("GET /api/games/{id}", s.getGame)
	s.mux.HandleFunc("GET /api/games/{id}/collections", s.getGameCollections)
	s.mux.HandleFunc("POST /api/games/{id}/match", s.setMatch)
	s.mux.HandleFunc("DELETE /api/games/{id}/match/{provider}", s.clearMatch)
	s.mux.HandleFunc("POST /api/games/{id}/toggle/{flag}", s.toggleFlag)
	s.mux.HandleFunc("PUT /api/games/{id}/cover", s.setCover)
	s.mux.HandleFunc("POST /api/bulk/{flag}", s.setFlagBulk)

	s.mux.HandleFunc("POST /api/sync", s.sync)
	s.mux.HandleFunc("POST /api/match", s.match)

	s.mux.HandleFunc("GET /api/collections", s.listCollections)
	s.mux.HandleFunc("POST /api/collections", s.createCollection)
	s.mux.HandleFunc("GET /api/collections/{id}", s.getCollection)
	s.mux.HandleFunc("PATCH /api/collections/{id}", s.updateCollection)
	s.mux.HandleFunc("DELETE /api/collections/{id}", s.deleteCollection)
	s.mux.HandleFunc("PUT /api/collections/{id}/games/{gameID}", s.addToCollection)
	s.mux.HandleFunc("DELETE /api/collections/{id}/games/{gameID}", s.removeFromCollection)

	s.mux.HandleFunc("GET /api/stats", s.stats)
	s.mux.HandleFunc("GET /api/discover", s.discover)
	s.mux.HandleFunc("GET /api/settings", s.listSettings)
	s.mux.HandleFunc("PUT /api/settings/{key}", s.setSetting)

	s.mux.Handle("GET /metrics", metrics.Handler())
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, req *http.Request) {
		writeData(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	id := uuid.NewString()
	w.Header().Set("X-Request-Id", id)
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	start := time.Now()

	s.mux.ServeHTTP(rec, req)

	slog.Debug("request",
		"request_id", id,
		"method", req.Method,
		"path", req.URL.Path,
		"status", rec.status,
		"took", time.Since(start).Round(time.Microsecond))
}

// Run serves h on addr until ctx is done, then shuts down gracefully.
func Run(ctx context.Context, h http.Handler, addr string) error {
	srv := http.Server{Addr: addr, Handler: h}

	errs := make(chan error)
	go func() { errs <- srv.ListenAndServe() }()
	slog.Info("listening", "addr", addr)

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
		if err := srv.Shutdown(context.Background()); err != nil {
			return err
		}
		if err := <-errs; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func writeData(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"data": v})
}

// writeError maps library and store sentinels onto status codes. Anything
// unrecognized is a 500 and is logged.
func writeError(w http.ResponseWriter, req *http.Request, err error) {
	status, code := http.StatusInternalServerError, "internal"
	switch {
	case errors.Is(err, db.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, library.ErrBadInput):
		status, code = http.StatusBadRequest, "bad_input"
	case errors.Is(err, library.ErrProviderUnavailable):
		status, code = http.StatusServiceUnavailable, "provider_unavailable"
	case errors.Is(err, context.Canceled):
		status, code = 499, "canceled"
	default:
		slog.Error("request failed", "method", req.Method, "path", req.URL.Path, "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": err.Error(),
		},
	})
}

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", library.ErrBadInput, fmt.Sprintf(format, args...))
}

func pathID(req *http.Request, name string) (int64, error) {
	s := req.PathValue(name)
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest("invalid %s '%s'", name, s)
	}
	return id, nil
}

func decode(req *http.Request, v any) error {
	dec := json.NewDecoder(req.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return badRequest("invalid request body: %s", err)
	}
	return nil
}

// list reads a query parameter that may be repeated or comma-separated.
func list(req *http.Request, name string) []string {
	var out []string
	for _, v := range req.URL.Query()[name] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func truthy(req *http.Request, name string) bool {
	v, _ := strconv.ParseBool(req.URL.Query().Get(name))
	return v
}

func (s *Server) listGames(w http.ResponseWriter, req *http.Request) {
	opts := library.ListOptions{
		Genres:            list(req, "genre"),
		Search:            req.URL.Query().Get("q"),
		IncludeDuplicates: truthy(req, "duplicates"),
		Sort:              req.URL.Query().Get("sort"),
		Desc:              req.URL.Query().Get("order") == "desc",
	}
	for _, store := range list(req, "store") {
		opts.Stores = append(opts.Stores, data.Store(store))
	}
	switch hidden := req.URL.Query().Get("hidden"); hidden {
	case "", "exclude":
	case "include":
		opts.IncludeHidden = true
	case "only":
		opts.OnlyHidden = true
	default:
		writeError(w, req, badRequest("hidden must be one of exclude, include, only; got '%s'", hidden))
		return
	}

	listing, err := s.lib.List(opts)
	if err != nil {
		writeError(w, req, err)
		return
	}
	writeData(w, http.StatusOK, newListingView(listing))
}

func (s *Server) getGame(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, "id")
	if err != nil {
		writeError(w, req, err)
		return
	}
	detail, err := s.lib.Detail(id)
	if err != nil {
		writeError(w, req, err)
		return
	}
	writeData(w, http.StatusOK, newDetailView(detail))
}

func (s *Server) getGameCollections(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, "id")
	if err != nil {
		writeError(w, req, err)
		return
	}
	collections, err := s.lib.GameCollections(id)
	if err != nil {
		writeError(w, req, err)
		return
	}
	writeData(w, http.StatusOK, newCollectionViews(collections))
}

func (s *Server) setMatch(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, "id")
	if err != nil {
		writeError(w, req, err)
		return
	}
	var body struct {
		Provider data.Provider `json:"provider"`
		Key      string        `json:"key"`
	}
	if err := decode(req, &body); err != nil {
		writeError(w, req, err)
		return
	}
	game, err := s.lib.SetManualMatch(req.Context(), id, body.Provider, body.Key)
	if err != nil {
		writeError(w, req, err)
		return
	}
	writeData(w, http.StatusOK, newGameView(game))
}

func (s *Server) clearMatch(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, "id")
	if err != nil {
		writeError(w, req, err)
		return
	}
	game, err := s.lib.ClearMatch(id, data.Provider(req.PathValue("provider")))
	if err != nil {
		writeError(w, req, err)
		return
	}
	writeData(w, http.StatusOK, newGameView(game))
}

func (s *Server) toggleFlag(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, "id")
	if err != nil {
		writeError(w, req, err)
		return
	}
	flag := data.Flag(req.PathValue("flag"))
	value, err := s.lib.ToggleFlag(id, flag)
	if err != nil {
		writeError(w, req, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"id": id, string(flag): value})
}

func (s *Server) setCover(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, "id")
	if err != nil {
		writeError(w, req, err)
		return
	}
	var body struct {
		URL string `json:"url"`
	}
	if err := decode(req, &body); err != nil {
		writeError(w, req, err)
		return
	}
	if err := s.lib.SetCoverOverride(id, body.URL); err != nil {
		writeError(w, req, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) setFlagBulk(w http.ResponseWriter, req *http.Request) {
	var body struct {
		IDs   []int64 `json:"ids"`
		Value *bool   `json:"value"`
	}
	if err := decode(req, &body); err != nil {
		writeError(w, req, err)
		return
	}
	value := true
	if body.Value != nil {
		value = *body.Value
	}
	n, err := s.lib.SetFlagBulk(body.IDs, data.Flag(req.PathValue("flag")), value)
	if err != nil {
		writeError(w, req, err)
		return
	}
	writeData(w, http.StatusOK, map[string]int{"updated": n})
}

func (s *Server) sync(w http.ResponseWriter, req *http.Request) {
	var stores []data.Store
	for _, name := range list(req, "store") {
		store, err := data.ParseStore(name)
		if err != nil {
			writeError(w, req, badRequest("%s", err))
			return
		}
		stores = append(stores, store)
	}
	reports, err := s.lib.Sync(req.Context(), stores...)
	if err != nil {
		writeError(w, req, err)
		return
	}
	writeData(w, http.StatusOK, newSyncViews(reports))
}

func (s *Server) match(w http.ResponseWriter, req *http.Request) {
	provider, err := data.ParseProvider(req.URL.Query().Get("provider"))
	if err != nil {
		writeError(w, req, badRequest("%s", err))
		return
	}
	mode := library.Missing
	if m := req.URL.Query().Get("mode"); m != "" {
		if mode, err = library.ParseMode(m); err != nil {
			writeError(w, req, err)
			return
		}
	}
	var limit int
	if l := req.URL.Query().Get("limit"); l != "" {
		if limit, err = strconv.Atoi(l); err != nil || limit < 0 {
			writeError(w, req, badRequest("invalid limit '%s'", l))
			return
		}
	}

	report, err := s.lib.Match(req.Context(), provider, mode, limit)
	if err != nil {
		writeError(w, req, err)
		return
	}
	writeData(w, http.StatusOK, newMatchView(report))
}

func (s *Server) listCollections(w http.ResponseWriter, req *http.Request) {
	collections, err := s.lib.ListCollections()
	if err != nil {
		writeError(w, req, err)
		return
	}
	writeData(w, http.StatusOK, newCollectionViews(collections))
}

func (s *Server) createCollection(w http.ResponseWriter, req *http.Request) {
	var body struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := decode(req, &body); err != nil {
		writeError(w, req, err)
		return
	}
	c, err := s.lib.CreateCollection(body.Name, body.Description)
	if err != nil {
		writeError(w, req, err)
		return
	}
	writeData(w, http.StatusCreated, newCollectionView(c))
}

func (s *Server) getCollection(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, "id")
	if err != nil {
		writeError(w, req, err)
		return
	}
	detail, err := s.lib.Collection(id)
	if err != nil {
		writeError(w, req, err)
		return
	}
	writeData(w, http.StatusOK, collectionDetailView{
		collectionView: newCollectionView(detail.Collection),
		Groups:         newGroupViews(detail.Groups),
	})
}

func (s *Server) updateCollection(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, "id")
	if err != nil {
		writeError(w, req, err)
		return
	}
	var body struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}
	if err := decode(req, &body); err != nil {
		writeError(w, req, err)
		return
	}
	c, err := s.lib.UpdateCollection(id, body.Name, body.Description)
	if err != nil {
		writeError(w, req, err)
		return
	}
	writeData(w, http.StatusOK, newCollectionView(c))
}

func (s *Server) deleteCollection(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, "id")
	if err != nil {
		writeError(w, req, err)
		return
	}
	if err := s.lib.DeleteCollection(id); err != nil {
		writeError(w, req, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) addToCollection(w http.ResponseWriter, req *http.Request) {
	s.membership(w, req, s.lib.AddToCollection)
}

func (s *Server) removeFromCollection(w http.ResponseWriter, req *http.Request) {
	s.membership(w, req, s.lib.RemoveFromCollection)
}

func (s *Server) membership(w http.ResponseWriter, req *http.Request, change func(collectionID, gameID int64) error) {
	id, err := pathID(req, "id")
	if err != nil {
		writeError(w, req, err)
		return
	}
	gameID, err := pathID(req, "gameID")
	if err != nil {
		writeError(w, req, err)
		return
	}
	if err := change(id, gameID); err != nil {
		writeError(w, req, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) stats(w http.ResponseWriter, req *http.Request) {
	stats, err := s.lib.Stats()
	if err != nil {
		writeError(w, req, err)
		return
	}
	writeData(w, http.StatusOK, newStatsView(stats))
}

func (s *Server) discover(w http.ResponseWriter, req *http.Request) {
	d, err := s.lib.Discover()
	if err != nil {
		writeError(w, req, err)
		return
	}
	writeData(w, http.StatusOK, map[string][]gameView{
		"highly_rated":     newGameViews(d.HighlyRated),
		"hidden_gems":      newGameViews(d.HiddenGems),
		"most_played":      newGameViews(d.MostPlayed),
		"critic_favorites": newGameViews(d.CriticFavorites),
	})
}

func (s *Server) listSettings(w http.ResponseWriter, req *http.Request) {
	values, err := s.lib.Settings(s.settings)
	if err != nil {
		writeError(w, req, err)
		return
	}
	out := make([]settingView, len(values))
	for i, v := range values {
		out[i] = settingView{Key: v.Key, Value: v.Value, Source: string(v.Source)}
	}
	writeData(w, http.StatusOK, out)
}

func (s *Server) setSetting(w http.ResponseWriter, req *http.Request) {
	var body struct {
		Value string `json:"value"`
	}
	if err := decode(req, &body); err != nil {
		writeError(w, req, err)
		return
	}
	if err := s.lib.SetSetting(req.PathValue("key"), body.Value); err != nil {
		writeError(w, req, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
