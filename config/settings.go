package config

import (
	"fmt"
	"strings"
)

// Setting keys. Each can be overridden by the environment variable of the
// same name in upper case, like IGDB_CLIENT_ID.
const (
	IGDBClientID           = "igdb_client_id"
	IGDBClientSecret       = "igdb_client_secret"
	SteamID                = "steam_id"
	SteamAPIKey            = "steam_api_key"
	ItchAPIKey             = "itch_api_key"
	HumbleSessionCookie    = "humble_session_cookie"
	BattlenetSessionCookie = "battlenet_session_cookie"
	GOGDBPath              = "gog_db_path"
	EABearerToken          = "ea_bearer_token"
)

// SettingKeys lists every known setting, in display order.
var SettingKeys = []string{
	IGDBClientID,
	IGDBClientSecret,
	SteamID,
	SteamAPIKey,
	ItchAPIKey,
	HumbleSessionCookie,
	BattlenetSessionCookie,
	GOGDBPath,
	EABearerToken,
}

// Secret reports whether a setting's value should be masked for display.
func Secret(key string) bool {
	return strings.HasSuffix(key, "_secret") ||
		strings.HasSuffix(key, "_key") ||
		strings.HasSuffix(key, "_cookie") ||
		strings.HasSuffix(key, "_token")
}

// SettingsStore is the persisted half of the settings. *db.DB implements it.
type SettingsStore interface {
	GetSetting(key string) (value string, ok bool, err error)
}

// Where a resolved setting came from.
type Source string

const (
	FromEnv     Source = "env"
	FromStore   Source = "db"
	FromDefault Source = ""
)

type Value struct {
	Key    string
	Value  string
	Source Source
}

// Settings resolves setting keys: the environment wins, then the store, then
// the empty default.
type Settings struct {
	cfg   *Config
	store SettingsStore
}

func (c *Config) Settings(store SettingsStore) *Settings {
	return &Settings{cfg: c, store: store}
}

func (s *Settings) Resolve(key string) (Value, error) {
	if v := strings.TrimSpace(s.cfg.v.GetString(strings.ToUpper(key))); v != "" {
		return Value{Key: key, Value: v, Source: FromEnv}, nil
	}
	v, ok, err := s.store.GetSetting(key)
	if err != nil {
		return Value{}, fmt.Errorf("error reading setting '%s': %w", key, err)
	}
	if ok && strings.TrimSpace(v) != "" {
		return Value{Key: key, Value: strings.TrimSpace(v), Source: FromStore}, nil
	}
	return Value{Key: key, Source: FromDefault}, nil
}

func (s *Settings) Get(key string) (string, error) {
	v, err := s.Resolve(key)
	return v.Value, err
}

// All resolves every known setting.
func (s *Settings) All() ([]Value, error) {
	out := make([]Value, 0, len(SettingKeys))
	for _, key := range SettingKeys {
		v, err := s.Resolve(key)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
