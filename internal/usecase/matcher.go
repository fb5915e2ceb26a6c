package usecase

import "strings"

// Matches reports whether a product display name satisfies a free-text
// query: every whitespace-delimited query token must appear as a substring
// of the name, case-insensitively. No stemming, no fuzzy matching.
//
// An empty query matches every name. That mirrors the behavior the sources
// have always had; changing it would silently alter adapter result counts.
func Matches(productName, query string) bool {
	name := strings.ToLower(productName)
	for _, word := range strings.Fields(strings.ToLower(query)) {
		if !strings.Contains(name, word) {
			return false
		}
	}
	return true
}
