package normalize

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/amonks/backlog/data"
)

const steamCDN = "https://cdn.cloudflare.steamstatic.com/steam/apps"

// SteamGame is one entry of the Steam owned-games listing, with the review
// score filled in from the store's review summary.
type SteamGame struct {
	AppID int64  `json:"appid"`
	Name  string `json:"name"`
	Icon  string `json:"icon_url"`

	// Hours, if the client already converted them; otherwise minutes as
	// the Web API reports them.
	PlaytimeHours   *float64 `json:"playtime_hours"`
	PlaytimeForever *float64 `json:"playtime_forever"`

	// Percentage of positive user reviews.
	ReviewScore *float64 `json:"review_score"`
}

func (g *SteamGame) Record() data.ImportRecord {
	rec := data.ImportRecord{
		Name:        g.Name,
		Store:       data.Steam,
		IconURL:     optional(g.Icon),
		CriticScore: g.ReviewScore,
	}
	if g.AppID > 0 {
		rec.StoreNativeID = strconv.FormatInt(g.AppID, 10)
		rec.CoverURL = ptr(fmt.Sprintf("%s/%d/library_600x900_2x.jpg", steamCDN, g.AppID))
		rec.BackgroundURL = ptr(fmt.Sprintf("%s/%d/library_hero.jpg", steamCDN, g.AppID))
	}
	switch {
	case g.PlaytimeHours != nil:
		rec.PlaytimeHours = g.PlaytimeHours
	case g.PlaytimeForever != nil:
		rec.PlaytimeHours = ptr(*g.PlaytimeForever / 60)
	}
	return rec
}

// EpicGame is one game from the Epic library as legendary lists it.
type EpicGame struct {
	AppName            string   `json:"app_name"`
	Name               string   `json:"name"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Developer          string   `json:"developer"`
	SupportedPlatforms []string `json:"supported_platforms"`
	CoverImage         string   `json:"cover_image"`
	CreatedDate        string   `json:"created_date"`
	LastModified       string   `json:"last_modified"`
	CanRunOffline      *bool    `json:"can_run_offline"`
	DLCs               []string `json:"dlcs"`
}

func (g *EpicGame) Record() data.ImportRecord {
	return data.ImportRecord{
		Name:          firstOf(g.Name, g.Title),
		Store:         data.Epic,
		StoreNativeID: g.AppName,
		Description:   optional(g.Description),
		Developers:    single(g.Developer),
		Platforms:     g.SupportedPlatforms,
		CoverURL:      optional(g.CoverImage),
		// Epic doesn't report a release date; the entitlement's creation
		// date is the closest thing.
		ReleaseDate:   optional(g.CreatedDate),
		CreatedDate:   optional(g.CreatedDate),
		LastModified:  optional(g.LastModified),
		CanRunOffline: g.CanRunOffline,
		DLCs:          g.DLCs,
	}
}

// GOGGame is one game from the GOG Galaxy database, or from a scrape of the
// GOG library page, which only carries id and title.
type GOGGame struct {
	ReleaseKey string `json:"release_key"`
	ProductID  ID     `json:"product_id"`
	ID         ID     `json:"id"`

	Name  string `json:"name"`
	Title string `json:"title"`

	Summary    string   `json:"summary"`
	Developers []string `json:"developers"`
	Publishers []string `json:"publishers"`
	Genres     []string `json:"genres"`
	Themes     []string `json:"themes"`

	CoverImage      string `json:"cover_image"`
	BackgroundImage string `json:"background_image"`
	Icon            string `json:"icon"`

	// unix seconds
	ReleaseDate  *int64   `json:"release_date"`
	CriticsScore *float64 `json:"critics_score"`
}

func (g *GOGGame) Record() data.ImportRecord {
	rec := data.ImportRecord{
		Name:          firstOf(g.Name, g.Title),
		Store:         data.GOG,
		StoreNativeID: firstOf(string(g.ProductID), string(g.ID), strings.TrimPrefix(g.ReleaseKey, "gog_")),
		Description:   optional(g.Summary),
		Developers:    g.Developers,
		Publishers:    g.Publishers,
		Genres:        dedupe(append(append([]string{}, g.Genres...), g.Themes...)),
		CoverURL:      optional(g.CoverImage),
		BackgroundURL: optional(g.BackgroundImage),
		IconURL:       optional(g.Icon),
		CriticScore:   g.CriticsScore,
	}
	if g.ReleaseDate != nil && *g.ReleaseDate > 0 {
		rec.ReleaseDate = ptr(time.Unix(*g.ReleaseDate, 0).UTC().Format("2006-01-02T15:04:05"))
	}
	return rec
}

// ItchGame is one owned game from the itch.io API.
type ItchGame struct {
	ID          ID     `json:"id"`
	Title       string `json:"title"`
	ShortText   string `json:"short_text"`
	CoverURL    string `json:"cover_url"`
	PublishedAt string `json:"published_at"`
	URL         string `json:"url"`
	Platforms   struct {
		Windows bool `json:"windows"`
		Mac     bool `json:"mac"`
		Linux   bool `json:"linux"`
		Android bool `json:"android"`
	} `json:"platforms"`
}

func (g *ItchGame) Record() data.ImportRecord {
	var platforms []string
	for _, p := range []struct {
		ok   bool
		name string
	}{
		{g.Platforms.Windows, "Windows"},
		{g.Platforms.Mac, "Mac"},
		{g.Platforms.Linux, "Linux"},
		{g.Platforms.Android, "Android"},
	} {
		if p.ok {
			platforms = append(platforms, p.name)
		}
	}

	return data.ImportRecord{
		Name:          g.Title,
		Store:         data.Itch,
		StoreNativeID: string(g.ID),
		Description:   optional(g.ShortText),
		CoverURL:      optional(g.CoverURL),
		Platforms:     platforms,
		ReleaseDate:   optional(g.PublishedAt),
	}
}

// HumbleGame is one product from a Humble Bundle order.
type HumbleGame struct {
	HumanName   string   `json:"human_name"`
	MachineName string   `json:"machine_name"`
	Icon        string   `json:"icon"`
	Platforms   []string `json:"platforms"`
	Payee       string   `json:"payee"`
	Created     string   `json:"created"`
	GameKey     string   `json:"gamekey"`
}

func (g *HumbleGame) Record() data.ImportRecord {
	return data.ImportRecord{
		Name:          g.HumanName,
		Store:         data.Humble,
		StoreNativeID: g.MachineName,
		CoverURL:      optional(g.Icon),
		IconURL:       optional(g.Icon),
		Platforms:     g.Platforms,
		Publishers:    single(g.Payee),
		ReleaseDate:   optional(g.Created),
	}
}

// BattlenetGame is one game from the Battle.net account page.
type BattlenetGame struct {
	Name       string          `json:"name"`
	TitleID    ID              `json:"title_id"`
	CoverImage string          `json:"cover_image"`
	RawData    json.RawMessage `json:"raw_data"`
}

func (g *BattlenetGame) Record() data.ImportRecord {
	return data.ImportRecord{
		Name:          g.Name,
		Store:         data.Battlenet,
		StoreNativeID: string(g.TitleID),
		CoverURL:      optional(g.CoverImage),
		RawPayload:    raw(g.RawData),
	}
}

// EAGame is one entitlement from the EA app.
type EAGame struct {
	Name        string          `json:"name"`
	OfferID     string          `json:"offer_id"`
	CoverImage  string          `json:"cover_image"`
	Developer   string          `json:"developer"`
	Publisher   string          `json:"publisher"`
	ReleaseDate string          `json:"release_date"`
	RawData     json.RawMessage `json:"raw_data"`
}

func (g *EAGame) Record() data.ImportRecord {
	return data.ImportRecord{
		Name:          g.Name,
		Store:         data.EA,
		StoreNativeID: g.OfferID,
		CoverURL:      optional(g.CoverImage),
		Developers:    single(g.Developer),
		Publishers:    single(g.Publisher),
		ReleaseDate:   optional(g.ReleaseDate),
		RawPayload:    raw(g.RawData),
	}
}

// AmazonGame is one game from the Amazon Games library.
type AmazonGame struct {
	Name      string          `json:"name"`
	ProductID string          `json:"product_id"`
	IconURL   string          `json:"icon_url"`
	Developer string          `json:"developer"`
	Publisher string          `json:"publisher"`
	RawData   json.RawMessage `json:"raw_data"`
}

func (g *AmazonGame) Record() data.ImportRecord {
	return data.ImportRecord{
		Name:          g.Name,
		Store:         data.Amazon,
		StoreNativeID: g.ProductID,
		CoverURL:      optional(g.IconURL),
		IconURL:       optional(g.IconURL),
		Developers:    single(g.Developer),
		Publishers:    single(g.Publisher),
		RawPayload:    raw(g.RawData),
	}
}

// XboxGame is one title from Xbox title history or the Game Pass catalog.
// The whole payload is kept as extra data, so is_streaming survives for
// grouping.
type XboxGame struct {
	Name        string `json:"name"`
	StoreID     string `json:"store_id"`
	PFN         string `json:"pfn"`
	TitleID     ID     `json:"title_id"`
	CoverImage  string `json:"cover_image"`
	Developer   string `json:"developer"`
	Publisher   string `json:"publisher"`
	ReleaseDate string `json:"release_date"`

	// Game Pass titles are played by streaming rather than owned.
	IsStreaming     bool   `json:"is_streaming"`
	AcquisitionType string `json:"acquisition_type"`
}

func (g *XboxGame) Record() data.ImportRecord {
	return data.ImportRecord{
		Name:          g.Name,
		Store:         data.Xbox,
		StoreNativeID: firstOf(g.StoreID, g.PFN, string(g.TitleID)),
		CoverURL:      optional(g.CoverImage),
		Developers:    single(g.Developer),
		Publishers:    single(g.Publisher),
		ReleaseDate:   optional(g.ReleaseDate),
	}
}

// UbisoftGame is one row scraped from the Ubisoft account page, which has
// no ids.
type UbisoftGame struct {
	Title      string `json:"title"`
	Playtime   string `json:"playtime"`
	LastPlayed string `json:"lastPlayed"`
	Platform   string `json:"platform"`
}

var (
	ubisoftHours   = regexp.MustCompile(`(\d+)\s*hour`)
	ubisoftMinutes = regexp.MustCompile(`(\d+)\s*min`)
)

func (g *UbisoftGame) Record() data.ImportRecord {
	extra, _ := json.Marshal(map[string]*string{
		"playtime_raw": optional(g.Playtime),
		"last_played":  optional(g.LastPlayed),
		"platform":     optional(g.Platform),
	})
	return data.ImportRecord{
		Name:          g.Title,
		Store:         data.Ubisoft,
		StoreNativeID: UbisoftID(g.Title),
		PlaytimeHours: UbisoftPlaytime(g.Playtime),
		RawPayload:    extra,
	}
}

// UbisoftID derives a stable id from a title: lowercased, spaces to dashes,
// colons and apostrophes dropped.
func UbisoftID(title string) string {
	return strings.NewReplacer(" ", "-", ":", "", "'", "").Replace(strings.ToLower(strings.TrimSpace(title)))
}

// UbisoftPlaytime parses text like "10 hours 30 minutes" into hours. It
// returns nil when no time is found.
func UbisoftPlaytime(text string) *float64 {
	var hours, minutes int
	if m := ubisoftHours.FindStringSubmatch(text); m != nil {
		hours, _ = strconv.Atoi(m[1])
	}
	if m := ubisoftMinutes.FindStringSubmatch(text); m != nil {
		minutes, _ = strconv.Atoi(m[1])
	}
	if hours == 0 && minutes == 0 {
		return nil
	}
	return ptr(float64(hours) + float64(minutes)/60)
}

// LocalGame is one folder found by the local scanner, with any game.json
// override already applied.
type LocalGame struct {
	Name        string   `json:"name"`
	StoreID     string   `json:"store_id"`
	FolderPath  string   `json:"folder_path"`
	Description string   `json:"description,omitempty"`
	CoverImage  string   `json:"cover_image,omitempty"`
	Developers  []string `json:"developers,omitempty"`
	Genres      []string `json:"genres,omitempty"`
	ReleaseDate string   `json:"release_date,omitempty"`
	IGDBID      *int64   `json:"igdb_id,omitempty"`
}

func (g *LocalGame) Record() data.ImportRecord {
	return data.ImportRecord{
		Name:          g.Name,
		Store:         data.Local,
		StoreNativeID: g.StoreID,
		Description:   optional(g.Description),
		CoverURL:      optional(g.CoverImage),
		Developers:    g.Developers,
		Genres:        g.Genres,
		ReleaseDate:   optional(g.ReleaseDate),
		IGDBID:        g.IGDBID,
	}
}

func firstOf(ss ...string) string {
	for _, s := range ss {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

func dedupe(tags []string) []string {
	var out []string
	seen := map[string]bool{}
	for _, tag := range tags {
		key := strings.ToLower(strings.TrimSpace(tag))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, tag)
	}
	return out
}

func raw(m json.RawMessage) json.RawMessage {
	if len(m) == 0 || string(m) == "null" {
		return nil
	}
	return m
}
