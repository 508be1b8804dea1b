package session

import "strings"

// The fixed genre vocabulary scanned for likes and dislikes.
var preferenceGenres = []string{
	"action", "romance", "comedy", "drama", "fantasy",
	"sci-fi", "thriller", "horror", "slice of life",
}

var (
	likeWords    = []string{"like", "love", "enjoy"}
	dislikeWords = []string{"hate", "dislike", "don't like"}
)

// extractPreferences scans one user message for durable preference
// signals and merges them into prefs. Matching is case-insensitive
// substring search; flags are only ever set, never cleared. For each
// genre a like signal wins over a dislike signal; short-series wins
// over long; subtitle wins over dub.
func extractPreferences(input string, prefs map[string]bool) {
	lower := strings.ToLower(input)

	for _, genre := range preferenceGenres {
		if !strings.Contains(lower, genre) {
			continue
		}
		if containsAny(lower, likeWords) {
			prefs["likes_"+genre] = true
		} else if containsAny(lower, dislikeWords) {
			prefs["dislikes_"+genre] = true
		}
	}

	if strings.Contains(lower, "short") || strings.Contains(lower, "few episodes") {
		prefs["prefers_short_series"] = true
	} else if strings.Contains(lower, "long") || strings.Contains(lower, "many episodes") {
		prefs["prefers_long_series"] = true
	}

	if strings.Contains(lower, "subtitles") || strings.Contains(lower, "sub") {
		prefs["prefers_subtitles"] = true
	} else if strings.Contains(lower, "dub") || strings.Contains(lower, "english") {
		prefs["prefers_dubbed"] = true
	}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
