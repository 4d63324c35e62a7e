package library

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/amonks/backlog/config"
	"github.com/amonks/backlog/db"
)

// DiscoverLimit is how many games each discover shelf holds.
const DiscoverLimit = 10

// Stats summarizes the visible library.
type Stats struct {
	*db.Stats
	// Percent of games with a real IGDB match.
	IGDBMatchRate float64
	Genres        []db.Facet
}

func (l *Library) Stats() (*Stats, error) {
	f := l.filter(ListOptions{})
	s, err := l.db.GetStats(f)
	if err != nil {
		return nil, err
	}
	genres, err := l.db.GetGenreFacets(f)
	if err != nil {
		return nil, err
	}

	out := &Stats{Stats: s, Genres: genres}
	if s.Total > 0 {
		out.IGDBMatchRate = math.Round(1000*float64(s.IGDBMatched)/float64(s.Total)) / 10
	}
	return out, nil
}

// Discover fills the discover shelves from the visible library.
func (l *Library) Discover() (*db.Discovery, error) {
	return l.db.GetDiscovery(l.filter(ListOptions{}), DiscoverLimit)
}

// Settings lists every known setting with where its value comes from.
// Secrets are masked.
func (l *Library) Settings(settings *config.Settings) ([]config.Value, error) {
	values, err := settings.All()
	if err != nil {
		return nil, err
	}
	for i, v := range values {
		if v.Value != "" && config.Secret(v.Key) {
			values[i].Value = mask(v.Value)
		}
	}
	return values, nil
}

// SetSetting stores a setting. An empty value deletes it. Unknown keys are
// bad input.
func (l *Library) SetSetting(key, value string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	if !slices.Contains(config.SettingKeys, key) {
		return badInput("unknown setting '%s'; use one of %s", key, strings.Join(config.SettingKeys, ", "))
	}
	value = strings.TrimSpace(value)
	if value == "" {
		if err := l.db.DeleteSetting(key); err != nil && !db.IsNotFound(err) {
			return err
		}
		return nil
	}
	if err := l.db.SetSetting(key, value); err != nil {
		return fmt.Errorf("error saving setting '%s': %w", key, err)
	}
	return nil
}

// mask keeps the last four characters of long secrets.
func mask(s string) string {
	if len(s) <= 8 {
		return strings.Repeat("*", len(s))
	}
	return strings.Repeat("*", len(s)-4) + s[len(s)-4:]
}
