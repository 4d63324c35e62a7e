package merge

import (
	"regexp"
	"strings"
)

var searchNoise = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\s*\(.*?\)`),
	regexp.MustCompile(`(?i)\s*-\s*Demo$`),
	regexp.MustCompile(`(?i)\s*Demo$`),
	regexp.MustCompile(`(?i)\s*\[.*?\]`),
	regexp.MustCompile(`[™®©]`),
}

var editionNoise = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\s*:\s*[^:]+Edition$`),
	regexp.MustCompile(`(?i)\s*Deluxe\s*Edition$`),
	regexp.MustCompile(`(?i)\s*Gold\s*Edition$`),
	regexp.MustCompile(`(?i)\s*GOTY\s*Edition$`),
}

// SearchName strips the parts of a store's title that make provider
// searches miss: parenthesized and bracketed notes, a trailing "Demo", and
// trademark marks. Scoring still uses the stored name.
func SearchName(name string) string {
	return strip(name, searchNoise)
}

// SearchNameWithoutEdition is SearchName that also drops edition suffixes
// like ": Game of the Year Edition".
func SearchNameWithoutEdition(name string) string {
	return strip(strip(name, searchNoise), editionNoise)
}

func strip(name string, patterns []*regexp.Regexp) string {
	for _, re := range patterns {
		name = re.ReplaceAllString(name, "")
	}
	return strings.TrimSpace(name)
}
