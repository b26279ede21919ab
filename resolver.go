package glossai

import "strings"

// ResolveCandidates filters extraction candidates down to the ones that
// are genuinely new for the glossary. A candidate survives when its
// original does not already appear among the existing terms under
// case-insensitive comparison. Duplicates within the batch collapse to
// their first occurrence (first occurrence wins for category), input
// order is preserved, and candidates with an empty original are dropped.
//
// This is a pure set difference: no I/O, no errors.
func ResolveCandidates(candidates []Candidate, existing []Term) []Candidate {
	known := make(map[string]bool, len(existing))
	for _, t := range existing {
		key := strings.ToLower(strings.TrimSpace(t.Original))
		if key != "" {
			known[key] = true
		}
	}

	resolved := make([]Candidate, 0, len(candidates))
	seen := make(map[string]bool, len(candidates))

	for _, c := range candidates {
		original := strings.TrimSpace(c.Original)
		if original == "" {
			continue
		}
		key := strings.ToLower(original)
		if known[key] || seen[key] {
			continue
		}
		seen[key] = true
		resolved = append(resolved, Candidate{Original: original, Category: c.Category})
	}

	return resolved
}
