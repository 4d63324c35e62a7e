// Package igdb is a client for the parts of the IGDB API we use: searching
// games by name and looking them up by id.
package igdb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/amonks/backlog/data"
	"github.com/amonks/backlog/limiter"
	"github.com/amonks/backlog/request"
	"golang.org/x/time/rate"
)

const (
	TokenURL = "https://id.twitch.tv/oauth2/token"
	APIURL   = "https://api.igdb.com/v4"

	// IGDB allows 4 requests per second.
	DefaultRate = 4

	// How many search results to score.
	SearchLimit = 5
)

// ErrNoCredentials is returned by New when the client id or secret is
// missing.
var ErrNoCredentials = errors.New("IGDB credentials not configured; set IGDB_CLIENT_ID and IGDB_CLIENT_SECRET in the environment or with `backlog settings -set key=value`")

const fields = `fields id, name, slug, rating, rating_count, aggregated_rating,
	aggregated_rating_count, total_rating, total_rating_count,
	summary, genres.name, themes.id, themes.name,
	cover.url, screenshots.url;`

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithURLs points the client somewhere other than Twitch and IGDB.
func WithURLs(tokenURL, apiURL string) Option {
	return func(c *Client) {
		c.tokenURL = tokenURL
		c.apiURL = strings.TrimSuffix(apiURL, "/")
	}
}

// WithRate sets the request rate, in requests per second.
func WithRate(perSecond float64) Option {
	return func(c *Client) { c.rate = rate.NewLimiter(rate.Limit(perSecond), 1) }
}

// WithLimiter makes the client honour and record Retry-After pauses through
// lim.
func WithLimiter(lim *limiter.Limiter) Option {
	return func(c *Client) { c.limiter = lim }
}

// New creates a new IGDB client with the given Twitch application
// credentials. Tokens are fetched lazily.
func New(clientID, clientSecret string, opts ...Option) (*Client, error) {
	if clientID == "" || clientSecret == "" {
		return nil, ErrNoCredentials
	}
	c := &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		http:         http.DefaultClient,
		tokenURL:     TokenURL,
		apiURL:       APIURL,
		rate:         rate.NewLimiter(DefaultRate, 1),
		limiter:      limiter.New("", 0),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type Client struct {
	mu sync.Mutex

	clientID     string
	clientSecret string

	http     *http.Client
	tokenURL string
	apiURL   string

	rate    *rate.Limiter
	limiter *limiter.Limiter

	accessToken string
	expiresAt   time.Time
}

// Search returns up to SearchLimit games matching name.
func (c *Client) Search(ctx context.Context, name string) ([]data.MetadataRecord, error) {
	body := fmt.Sprintf("search %s;\n%s\nlimit %d;", quote(name), fields, SearchLimit)
	games, err := c.games(ctx, body)
	if err != nil {
		return nil, fmt.Errorf("error searching igdb for '%s': %w", name, err)
	}
	return games, nil
}

// Game looks up one game by id. It returns nil, nil if there's no such
// game.
func (c *Client) Game(ctx context.Context, id int64) (*data.MetadataRecord, error) {
	body := fmt.Sprintf("where id = %d;\n%s", id, fields)
	games, err := c.games(ctx, body)
	if err != nil {
		return nil, fmt.Errorf("error getting igdb game %d: %w", id, err)
	}
	if len(games) == 0 {
		return nil, nil
	}
	return &games[0], nil
}

func (c *Client) games(ctx context.Context, body string) ([]data.MetadataRecord, error) {
	resp, err := c.post(ctx, "games", body)
	if err != nil {
		return nil, err
	}
	defer resp.Close()

	var results []game
	if err := json.NewDecoder(resp).Decode(&results); err != nil {
		return nil, fmt.Errorf("games decode error: %w", err)
	}

	records := make([]data.MetadataRecord, len(results))
	for i, g := range results {
		records[i] = g.record()
	}
	return records, nil
}

// quote makes name safe to use as an apicalypse string literal.
func quote(name string) string {
	name = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", " ").Replace(name)
	return `"` + name + `"`
}

func (c *Client) post(ctx context.Context, endpoint, body string) (io.ReadCloser, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	reauthed := false
retry:
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	if err := c.rate.Wait(ctx); err != nil {
		return nil, fmt.Errorf("canceled: %w", err)
	}

	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/"+endpoint, strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request error: %w", err)
	}
	req.Header.Set("Client-ID", c.clientID)
	req.Header.Set("Authorization", token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request error: %w", err)
	}
	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		resp.Body.Close()
		wait, err := c.limiter.Backoff(resp.Header.Get("Retry-After"))
		if err != nil {
			return nil, err
		}
		slog.Warn("igdb rate limited", "retry_in", wait)
		goto retry
	case http.StatusUnauthorized:
		// The token was revoked early; fetch another once.
		resp.Body.Close()
		if !reauthed {
			reauthed = true
			c.accessToken = ""
			goto retry
		}
		return nil, fmt.Errorf("igdb rejected credentials: %w", ErrNoCredentials)
	}
	if err := request.Error(resp); err != nil {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch error: %w", err)
	}

	return resp.Body, nil
}

type tokenResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

func (c *Client) token(ctx context.Context) (string, error) {
	if c.accessToken == "" || !time.Now().Before(c.expiresAt) {
		if err := c.fetchToken(ctx); err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("Bearer %s", c.accessToken), nil
}

func (c *Client) fetchToken(ctx context.Context) error {
	form := url.Values{}
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, bytes.NewBufferString(form.Encode()))
	if err != nil {
		return fmt.Errorf("token request error: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	requestAt := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("token request error: %w", err)
	}
	defer resp.Body.Close()
	if err := request.Error(resp); err != nil {
		if request.HasStatus(err, http.StatusBadRequest) || request.HasStatus(err, http.StatusUnauthorized) || request.HasStatus(err, http.StatusForbidden) {
			return fmt.Errorf("token fetch error: %w: %w", ErrNoCredentials, err)
		}
		return fmt.Errorf("token fetch error: %w", err)
	}

	var result tokenResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("token decode error: %w", err)
	}

	c.accessToken = result.AccessToken
	// Renew a minute early.
	c.expiresAt = requestAt.Add(time.Duration(result.ExpiresIn)*time.Second - time.Minute)
	slog.Debug("got igdb token", "expires_at", c.expiresAt)

	return nil
}
