package metacritic_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amonks/backlog/data"
	"github.com/amonks/backlog/metacritic"
	"github.com/amonks/backlog/readthrough"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchPage = `<html><body>
<div class="c-pageSiteSearch-results">
	<a class="c-pageSiteSearch-results-item" href="/game/hades/">
		<p class="g-text-medium c-pageSiteSearch-results-item_title"> Hades </p>
	</a>
	<a class="c-pageSiteSearch-results-item" href="/game/hades-ii/">
		<h3>Hades II</h3>
	</a>
	<a class="c-pageSiteSearch-results-item" href="/movie/hades/">
		<h3>Hades (film)</h3>
	</a>
	<a class="c-pageSiteSearch-results-item" href="/game/untitled-goose-game/"></a>
</div>
</body></html>`

const oldSearchPage = `<html><body>
<div class="c-pageSiteSearch-results">
	<div><a href="/game/celeste/"><span class="title">Celeste</span></a></div>
</div>
</body></html>`

const gamePage = `<html><body>
<div class="c-productHero_title"><h1> Hades </h1></div>
<div class="c-siteReviewScore"><span>93</span></div>
<div class="c-siteReviewScore_user"><span>8.7</span></div>
</body></html>`

const fallbackGamePage = `<html><body>
<h1 class="product_title">Celeste</h1>
<div data-testid="critic-score-value">tbd</div>
<div data-testid="critic-score-value">94</div>
<div data-testid="user-score-value">tbd</div>
</body></html>`

type site struct {
	hits atomic.Int32
}

func (s *site) serve(t *testing.T) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)
		assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla")
		w.Header().Set("Content-Type", "text/html")
		switch r.URL.Path {
		case "/search/Hades/":
			assert.Equal(t, "13", r.URL.Query().Get("category"))
			io.WriteString(w, searchPage)
		case "/search/Celeste/":
			io.WriteString(w, oldSearchPage)
		case "/game/hades/":
			io.WriteString(w, gamePage)
		case "/game/celeste/":
			io.WriteString(w, fallbackGamePage)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func client(srv *httptest.Server, opts ...metacritic.Option) *metacritic.Client {
	return metacritic.New(append([]metacritic.Option{
		metacritic.WithHTTPClient(srv.Client()),
		metacritic.WithBaseURL(srv.URL),
		metacritic.WithInterval(time.Millisecond),
	}, opts...)...)
}

func TestSearch(t *testing.T) {
	s := &site{}
	c := client(s.serve(t))

	results, err := c.Search(context.Background(), "Hades: Deluxe Edition")
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, data.Metacritic, results[0].Provider)
	assert.Equal(t, "hades", results[0].Slug)
	assert.Equal(t, "Hades", results[0].Name)
	assert.Contains(t, results[0].URL, "/game/hades/")
	assert.Equal(t, "Hades II", results[1].Name)
	assert.Equal(t, "untitled-goose-game", results[2].Slug)
	assert.Equal(t, "", results[2].Name)
}

func TestSearchFallbackLayout(t *testing.T) {
	s := &site{}
	c := client(s.serve(t))

	results, err := c.Search(context.Background(), "Celeste")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Celeste", results[0].Name)
}

func TestSearchNoResults(t *testing.T) {
	s := &site{}
	c := client(s.serve(t))

	results, err := c.Search(context.Background(), "Nothing")
	assert.Error(t, err)
	assert.Empty(t, results)
}

func TestGame(t *testing.T) {
	s := &site{}
	c := client(s.serve(t))

	md, err := c.Game(context.Background(), " Hades ")
	require.NoError(t, err)
	require.NotNil(t, md)
	assert.Equal(t, "Hades", md.Name)
	assert.Equal(t, "hades", md.Slug)
	assert.Equal(t, 93.0, *md.CriticScore)
	assert.Equal(t, 8.7, *md.UserScore)
}

func TestGameFallbackSelectors(t *testing.T) {
	s := &site{}
	c := client(s.serve(t))

	md, err := c.Game(context.Background(), "celeste")
	require.NoError(t, err)
	require.NotNil(t, md)
	assert.Equal(t, "Celeste", md.Name)
	assert.Equal(t, 94.0, *md.CriticScore)
	assert.Nil(t, md.UserScore)
}

func TestGameNotFound(t *testing.T) {
	s := &site{}
	c := client(s.serve(t))

	md, err := c.Game(context.Background(), "no-such-game")
	require.NoError(t, err)
	assert.Nil(t, md)

	md, err = c.Game(context.Background(), "!!!")
	require.NoError(t, err)
	assert.Nil(t, md)
}

func TestCleanSlug(t *testing.T) {
	assert.Equal(t, "the-witcher3", metacritic.CleanSlug(" The-Witcher_3! "))
	assert.Equal(t, "snakecase", metacritic.CleanSlug("snake_case"))
	assert.Equal(t, "https://www.metacritic.com/game/hades/", metacritic.GameURL("hades"))
}

func TestCache(t *testing.T) {
	s := &site{}
	c := client(s.serve(t), metacritic.WithCache(readthrough.New(t.TempDir(), "metacritic-")))

	for range 2 {
		md, err := c.Game(context.Background(), "hades")
		require.NoError(t, err)
		assert.Equal(t, 93.0, *md.CriticScore)
	}
	assert.Equal(t, int32(1), s.hits.Load())
}
