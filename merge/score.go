package merge

import (
	"regexp"
	"strings"

	"github.com/amonks/backlog/data"
)

// AcceptScore is the lowest match score that is accepted automatically.
const AcceptScore = 50

var wordRE = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Score rates how well a candidate name matches ours, from 0 to 100:
//
//   - 100 when the names are equal ignoring case,
//   - 80 when either contains the other,
//   - otherwise the share of our words that appear in the candidate, scaled
//     to 0-70.
func Score(ours, candidate string) float64 {
	ours, candidate = strings.ToLower(ours), strings.ToLower(candidate)
	if ours == "" || candidate == "" {
		return 0
	}
	if ours == candidate {
		return 100
	}
	if strings.Contains(candidate, ours) || strings.Contains(ours, candidate) {
		return 80
	}

	ourWords := words(ours)
	if len(ourWords) == 0 {
		return 0
	}
	theirWords := words(candidate)
	overlap := 0
	for w := range ourWords {
		if _, ok := theirWords[w]; ok {
			overlap++
		}
	}
	return float64(overlap) / float64(len(ourWords)) * 70
}

func words(s string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, w := range wordRE.FindAllString(s, -1) {
		set[w] = struct{}{}
	}
	return set
}

// CandidateName is the name a candidate is scored by. Metacritic search
// results sometimes lack a title, in which case the slug stands in for it.
func CandidateName(md *data.MetadataRecord) string {
	if md.Name != "" {
		return md.Name
	}
	return strings.ReplaceAll(md.Slug, "-", " ")
}

// Best returns the highest-scoring candidate for name and its score. Ties go
// to the earlier candidate. It returns nil when there are no candidates or
// when nothing scores above zero.
func Best(name string, candidates []data.MetadataRecord) (*data.MetadataRecord, float64) {
	var best *data.MetadataRecord
	var bestScore float64
	for i := range candidates {
		score := Score(name, CandidateName(&candidates[i]))
		if score > bestScore {
			best, bestScore = &candidates[i], score
		}
	}
	return best, bestScore
}

// Accept reports whether a score is good enough to match automatically.
func Accept(score float64) bool {
	return score >= AcceptScore
}
