package metacritic

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Metacritic's markup changes every so often; each lookup tries the current
// layout first and falls back to older ones.
const (
	resultSelector         = `a[class*="c-pageSiteSearch-results-item"]`
	fallbackResultSelector = `div.c-pageSiteSearch-results a[href*="/game/"]`
	resultTitleSelector    = `p[class*="title"], h3, span[class*="title"]`

	titleSelector = `div[class*="c-productHero_title"] h1, h1[class*="product_title"]`

	criticScoreSelector         = `div[class*="c-siteReviewScore"] span, span[class*="metascore_w"], div[class*="metascore"] span`
	fallbackCriticScoreSelector = `[data-testid="critic-score-value"], [class*="metascore"]`

	userScoreSelector         = `div[class*="c-siteReviewScore_user"] span, span[class*="user"], div[class*="userscore"] span`
	fallbackUserScoreSelector = `[data-testid="user-score-value"], [class*="userscore"]`
)

// A resultElement is one card on a search results page.
type resultElement struct{ *goquery.Selection }

func searchResults(doc *goquery.Document) []resultElement {
	sel := doc.Find(resultSelector)
	if sel.Length() == 0 {
		sel = doc.Find(fallbackResultSelector)
	}

	var cards []resultElement
	sel.Each(func(_ int, s *goquery.Selection) {
		cards = append(cards, resultElement{s})
	})
	return cards
}

var slugRE = regexp.MustCompile(`/game/([^/]+)`)

func (el resultElement) Slug() (string, bool) {
	href, _ := el.Attr("href")
	match := slugRE.FindStringSubmatch(href)
	if match == nil {
		return "", false
	}
	return match[1], true
}

// Title is empty if the card has no title element; callers fall back to
// the slug.
func (el resultElement) Title() string {
	return text(el.Find(resultTitleSelector).First())
}

// A gamePage is a game's detail page.
type gamePage struct{ *goquery.Selection }

func (page gamePage) Title() string {
	return text(page.Find(titleSelector).First())
}

// CriticScore is the metascore, 0-100.
func (page gamePage) CriticScore() *float64 {
	if score, ok := criticScore(text(page.Find(criticScoreSelector).First())); ok {
		return &score
	}
	var found *float64
	page.Find(fallbackCriticScoreSelector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if score, ok := criticScore(text(s)); ok {
			found = &score
			return false
		}
		return true
	})
	return found
}

// UserScore is the user score, 0-10.
func (page gamePage) UserScore() *float64 {
	if score, ok := userScore(text(page.Find(userScoreSelector).First())); ok {
		return &score
	}
	var found *float64
	page.Find(fallbackUserScoreSelector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if score, ok := userScore(text(s)); ok {
			found = &score
			return false
		}
		return true
	})
	return found
}

func criticScore(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return float64(n), true
}

func userScore(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || !(f >= 0 && f <= 10) {
		return 0, false
	}
	return f, true
}

// text is the selection's text with the whitespace around each text node
// removed.
func text(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	var b strings.Builder
	sel.Contents().Each(func(_ int, s *goquery.Selection) {
		if goquery.NodeName(s) == "#text" {
			b.WriteString(strings.TrimSpace(s.Text()))
		} else {
			b.WriteString(text(s))
		}
	})
	return b.String()
}
