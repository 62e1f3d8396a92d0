// Package interest provides interest-set normalization and similarity
// scoring for matchmaking. Compatibility between two users is the Jaccard
// similarity of their normalized interest sets: intersection size divided
// by union size.
package interest

import (
	"sort"
	"strings"
)

// Normalize lower-cases, trims and deduplicates an interest list, dropping
// entries that are empty after trimming. The result is sorted so equal
// sets always produce identical slices regardless of input order.
func Normalize(interests []string) []string {
	seen := make(map[string]struct{}, len(interests))
	out := make([]string, 0, len(interests))
	for _, raw := range interests {
		tag := strings.ToLower(strings.TrimSpace(raw))
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// Score computes the Jaccard similarity of two normalized interest sets.
// The result is always in [0,1]. If either set is empty the score is 0:
// the union of two empty sets is treated as empty by convention, so there
// is no division by zero. Score is pure and commutative.
func Score(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	set := make(map[string]struct{}, len(a))
	for _, tag := range a {
		set[tag] = struct{}{}
	}

	intersection := 0
	union := len(set)
	counted := make(map[string]struct{}, len(b))
	for _, tag := range b {
		if _, dup := counted[tag]; dup {
			continue
		}
		counted[tag] = struct{}{}
		if _, shared := set[tag]; shared {
			intersection++
		} else {
			union++
		}
	}

	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// Shared returns the sorted intersection of two normalized interest sets,
// or nil when nothing is shared.
func Shared(a, b []string) []string {
	set := make(map[string]struct{}, len(a))
	for _, tag := range a {
		set[tag] = struct{}{}
	}

	var shared []string
	for _, tag := range b {
		if _, ok := set[tag]; ok {
			shared = append(shared, tag)
			delete(set, tag)
		}
	}
	sort.Strings(shared)
	return shared
}
