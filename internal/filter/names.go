package filter

import (
	"strings"
)

// NormalizeCommonNames cleans a submitted common-name list before it is
// stored: entries are trimmed, blanks dropped, duplicates collapsed
// case-insensitively (first spelling wins), and any entry that merely
// repeats the scientific name is removed.
func NormalizeCommonNames(scientificName string, names []string) []string {
	sci := strings.ToLower(strings.TrimSpace(scientificName))

	seen := make(map[string]bool)
	out := make([]string, 0, len(names))
	for _, name := range names {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if key == sci || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, trimmed)
	}
	return out
}

// NormalizeNames trims, drops blanks and collapses case-insensitive
// duplicates. Used for attribute name lists.
func NormalizeNames(names []string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, len(names))
	for _, name := range names {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, trimmed)
	}
	return out
}
