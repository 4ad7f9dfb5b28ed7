package parser

import (
	"strconv"
	"strings"
)

func normaliseInput(raw string) string {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" {
		return ""
	}
	var b strings.Builder
	lastSpace := false
	for _, r := range raw {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastSpace = false
			continue
		}
		if r == ' ' || r == '\t' || r == '-' || r == '_' || r == '/' || r == '\'' {
			if !lastSpace {
				b.WriteByte(' ')
			}
			lastSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}

func tokenise(normalised string) []string {
	return strings.Fields(normalised)
}

// splitCount pulls the first non-negative integer token out of tokens.
func splitCount(tokens []string) ([]string, int) {
	out := make([]string, 0, len(tokens))
	count := 0
	found := false
	for _, token := range tokens {
		if !found {
			if n, err := strconv.Atoi(token); err == nil && n >= 0 {
				count = n
				found = true
				continue
			}
		}
		out = append(out, token)
	}
	return out, count
}

func levenshteinLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}
