package merge

import "strings"

const (
	// MaxScreenshots is how many IGDB screenshots a game keeps.
	MaxScreenshots = 5

	thumbSize      = "t_thumb"
	coverSize      = "t_cover_big"
	screenshotSize = "t_screenshot_big"
)

// CoverURL rewrites an IGDB thumbnail URL to the large cover size and makes
// scheme-relative URLs absolute.
func CoverURL(url string) string {
	return imageURL(url, coverSize)
}

// ScreenshotURLs rewrites up to MaxScreenshots IGDB thumbnail URLs to the
// large screenshot size. Empty URLs are skipped.
func ScreenshotURLs(urls []string) []string {
	var out []string
	for _, url := range urls {
		if len(out) == MaxScreenshots {
			break
		}
		if url = imageURL(url, screenshotSize); url != "" {
			out = append(out, url)
		}
	}
	return out
}

func imageURL(url, size string) string {
	if url == "" {
		return ""
	}
	url = strings.ReplaceAll(url, thumbSize, size)
	if !strings.HasPrefix(url, "http") {
		url = "https:" + url
	}
	return url
}
