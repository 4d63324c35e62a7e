package merge

import (
	"strings"

	"github.com/amonks/backlog/data"
)

// Genres unions tags into existing, ignoring case. Existing entries keep
// their position and casing; new tags are appended in the order given, with
// the first-seen casing winning among duplicates. Blank tags are dropped and
// surrounding whitespace is trimmed.
//
// The result is never shorter than the deduplicated existing set.
func Genres(existing []string, tags []string) []string {
	merged := make([]string, 0, len(existing)+len(tags))
	seen := make(map[string]struct{}, len(existing)+len(tags))
	for _, list := range [][]string{existing, tags} {
		for _, tag := range list {
			tag = strings.TrimSpace(tag)
			if tag == "" {
				continue
			}
			key := strings.ToLower(tag)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, tag)
		}
	}
	return merged
}

// Tags lists a metadata record's genres followed by its themes, without the
// erotic theme, which is carried by the nsfw flag instead.
func Tags(md *data.MetadataRecord) []string {
	var tags []string
	for _, genre := range md.Genres {
		if genre != "" {
			tags = append(tags, genre)
		}
	}
	for _, theme := range md.Themes {
		if theme.ID == data.EroticThemeID || theme.Name == "" {
			continue
		}
		tags = append(tags, theme.Name)
	}
	return tags
}
