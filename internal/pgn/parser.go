package pgn

import (
	"regexp"
	"strings"
)

var headerRe = regexp.MustCompile(`\[(\w+)\s+"([^"]*)"\]`)

// ParseHeaders extracts PGN header tags into a map
func ParseHeaders(pgn string) map[string]string {
	out := map[string]string{}
	for _, line := range strings.Split(pgn, "\n") {
		if !strings.HasPrefix(line, "[") {
			continue
		}
		m := headerRe.FindStringSubmatch(line)
		if len(m) == 3 {
			out[m[1]] = m[2]
		}
	}
	return out
}

var gameIDRe = regexp.MustCompile(`.*/game/[^/]+/([0-9]+)`)

// ExtractGameID extracts the game ID from a chess.com game URL
func ExtractGameID(url string) string {
	m := gameIDRe.FindStringSubmatch(url)
	if len(m) == 2 {
		return m[1]
	}
	return url
}

// OpeningFromECOUrl derives a readable opening name from a chess.com ECOUrl
// header value, e.g. ".../openings/Sicilian-Defense-Open" becomes
// "Sicilian Defense Open". Returns "" when the URL carries no name.
func OpeningFromECOUrl(url string) string {
	if url == "" {
		return ""
	}
	slug := url[strings.LastIndex(url, "/")+1:]
	if slug == "" || slug == "openings" {
		return ""
	}
	return strings.TrimSpace(strings.ReplaceAll(slug, "-", " "))
}
