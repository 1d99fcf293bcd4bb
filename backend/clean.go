package backend

import (
	"regexp"
	"strings"
)

var tagPattern = regexp.MustCompile(`<[^>]+>`)

// navKeywords mark lines that are UI chrome or prompt echo rather than
// actual answer content, carried over from the markup the raw HTML-ish
// backend output sometimes leaks.
var navKeywords = []string{
	"home", "menu", "sign in", "sign up", "log in", "navigation",
	"skip to content", "cookie", "subscribe", "advertisement",
}

var promptEchoPrefixes = []string{
	"user:", "system:", "assistant:", "prompt:",
}

// CleanOutput strips HTML-like tags and filters the result down to the
// lines that actually look like an answer: it prefers a line containing
// both " is " and "source:" (the backend's citation convention), falls
// back to any line containing " is ", and finally falls back to the full
// cleaned text if nothing matches either heuristic.
func CleanOutput(raw string) string {
	stripped := tagPattern.ReplaceAllString(raw, "")

	var kept []string
	for _, line := range strings.Split(stripped, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		lower := strings.ToLower(trimmed)

		isNav := false
		for _, kw := range navKeywords {
			if strings.Contains(lower, kw) {
				isNav = true
				break
			}
		}
		if isNav {
			continue
		}

		isEcho := false
		for _, p := range promptEchoPrefixes {
			if strings.HasPrefix(lower, p) {
				isEcho = true
				break
			}
		}
		if isEcho {
			continue
		}

		kept = append(kept, trimmed)
	}

	if len(kept) == 0 {
		return strings.TrimSpace(stripped)
	}

	var withSource []string
	var withIs []string
	for _, line := range kept {
		lower := strings.ToLower(line)
		hasIs := strings.Contains(lower, " is ")
		hasSource := strings.Contains(lower, "source:")
		if hasIs && hasSource {
			withSource = append(withSource, line)
		} else if hasIs {
			withIs = append(withIs, line)
		}
	}

	if len(withSource) > 0 {
		return strings.Join(withSource, "\n")
	}
	if len(withIs) > 0 {
		return strings.Join(withIs, "\n")
	}
	return strings.Join(kept, "\n")
}
