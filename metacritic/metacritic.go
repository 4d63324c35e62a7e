// Package metacritic scrapes game scores from metacritic.com, which has no
// public API.
package metacritic

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/amonks/backlog/data"
	"github.com/amonks/backlog/limiter"
	"github.com/amonks/backlog/merge"
	"github.com/amonks/backlog/readthrough"
	"github.com/amonks/backlog/request"
	"golang.org/x/time/rate"
)

const (
	BaseURL = "https://www.metacritic.com"

	// Metacritic's search category for games.
	gamesCategory = "13"

	// How many search results to score.
	SearchLimit = 5

	DefaultInterval = 500 * time.Millisecond
)

var defaultHeader = http.Header{
	"User-Agent":      {"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"},
	"Accept":          {"text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8"},
	"Accept-Language": {"en-US,en;q=0.5"},
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithBaseURL(base string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(base, "/") }
}

// WithInterval sets the minimum time between requests.
func WithInterval(d time.Duration) Option {
	return func(c *Client) { c.rate = rate.NewLimiter(rate.Every(d), 1) }
}

// WithLimiter makes the client honour and record Retry-After pauses through
// lim.
func WithLimiter(lim *limiter.Limiter) Option {
	return func(c *Client) { c.limiter = lim }
}

// WithCache keeps fetched pages in rt.
func WithCache(rt *readthrough.ReadThrough) Option {
	return func(c *Client) { c.cache = rt }
}

func New(opts ...Option) *Client {
	c := &Client{
		http:    http.DefaultClient,
		baseURL: BaseURL,
		rate:    rate.NewLimiter(rate.Every(DefaultInterval), 1),
		limiter: limiter.New("", 0),
		cache:   readthrough.New("", ""),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Client is safe for concurrent use; requests are paced across all callers.
type Client struct {
	http    *http.Client
	baseURL string

	rate    *rate.Limiter
	limiter *limiter.Limiter
	cache   *readthrough.ReadThrough
}

// Search returns up to SearchLimit games matching name. Results carry a
// name, slug and url but no scores; see Game.
func (c *Client) Search(ctx context.Context, name string) ([]data.MetadataRecord, error) {
	query := merge.SearchNameWithoutEdition(name)
	if query == "" {
		return nil, nil
	}
	u := fmt.Sprintf("%s/search/%s/?page=1&category=%s", c.baseURL, url.PathEscape(query), gamesCategory)

	doc, err := c.fetch(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("error searching metacritic for '%s': %w", name, err)
	}

	var results []data.MetadataRecord
	for _, card := range searchResults(doc) {
		slug, ok := card.Slug()
		if !ok {
			continue
		}
		results = append(results, data.MetadataRecord{
			Provider: data.Metacritic,
			Slug:     slug,
			Name:     card.Title(),
			URL:      c.gameURL(slug),
		})
		if len(results) == SearchLimit {
			break
		}
	}
	return results, nil
}

// Game fetches the scores on a game's page. It returns nil, nil if there's
// no page for slug.
func (c *Client) Game(ctx context.Context, slug string) (*data.MetadataRecord, error) {
	slug = CleanSlug(slug)
	if slug == "" {
		return nil, nil
	}
	u := c.gameURL(slug)

	doc, err := c.fetch(ctx, u)
	if request.HasStatus(err, http.StatusNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("error getting metacritic game '%s': %w", slug, err)
	}

	page := gamePage{doc.Selection}
	return &data.MetadataRecord{
		Provider:    data.Metacritic,
		Slug:        slug,
		Name:        page.Title(),
		URL:         u,
		CriticScore: page.CriticScore(),
		UserScore:   page.UserScore(),
	}, nil
}

var slugJunk = regexp.MustCompile(`[^a-z0-9-]`)

// CleanSlug lowercases slug and drops everything but letters, digits and
// dashes.
func CleanSlug(slug string) string {
	return slugJunk.ReplaceAllString(strings.ToLower(strings.TrimSpace(slug)), "")
}

// GameURL is the page for slug on metacritic.com.
func GameURL(slug string) string {
	return fmt.Sprintf("%s/game/%s/", BaseURL, slug)
}

func (c *Client) gameURL(slug string) string {
	return fmt.Sprintf("%s/game/%s/", c.baseURL, slug)
}

func (c *Client) fetch(ctx context.Context, u string) (*goquery.Document, error) {
	body, err := c.cache.Fetch(u, func() (io.ReadCloser, error) {
		return c.get(ctx, u)
	})
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("error parsing html from '%s': %w", u, err)
	}
	return doc, nil
}

func (c *Client) get(ctx context.Context, u string) (io.ReadCloser, error) {
	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		if err := c.rate.Wait(ctx); err != nil {
			return nil, fmt.Errorf("canceled: %w", err)
		}

		body, err := request.Fetch(ctx, c.http, u, defaultHeader, "")
		var se *request.StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusTooManyRequests {
			wait, err := c.limiter.Backoff(se.RetryAfter)
			if err != nil {
				return nil, err
			}
			slog.Warn("metacritic rate limited", "retry_in", wait)
			continue
		}
		return body, err
	}
}
