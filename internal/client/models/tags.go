package models

import "strings"

// NormalizeTags trims tags, drops empty ones and removes duplicates. The
// first occurrence wins, so insertion order is kept.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// ParseTags splits a comma separated list, e.g. "rl, agents,rl".
func ParseTags(s string) []string {
	return NormalizeTags(strings.Split(s, ","))
}
