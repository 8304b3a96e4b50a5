package normalization

import (
	"sort"
	"strings"
)

// NormalizeLabel canonicalizes a single struggle label: trimmed and
// lowercased. Empty input normalizes to the empty string.
func NormalizeLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

// NormalizeSet normalizes every candidate, drops empties, dedupes and
// returns the result sorted. The output is always non-nil.
func NormalizeSet(labels []string) []string {
	out := make([]string, 0, len(labels))
	seen := make(map[string]struct{}, len(labels))
	for _, label := range labels {
		normalized := NormalizeLabel(label)
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	sort.Strings(out)
	return out
}
