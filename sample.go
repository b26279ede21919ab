package glossai

import (
	"sort"
	"strings"
)

// SampleSeparator joins document texts inside a sample.
const SampleSeparator = "\n\n---\n\n"

// SampleShape controls which documents of a corpus enter the extraction
// sample. Full-corpus extraction is cost-prohibitive against a provider
// with context limits; head/middle/tail sampling catches recurring named
// entities without scanning everything.
type SampleShape struct {
	Head   int  // leading documents by order
	Tail   int  // trailing documents by order
	Middle bool // include the middle document
}

// DefaultSampleShape is the shape used by NewScanner.
func DefaultSampleShape() SampleShape {
	return SampleShape{Head: 3, Tail: 3, Middle: true}
}

// BuildSample concatenates a representative slice of the corpus into one
// extraction sample, capped at budget runes. Documents are considered in
// ascending order; picks that overlap on a small corpus are deduplicated.
// A budget of zero or less means no cap. Truncation never errors.
func BuildSample(docs []Document, shape SampleShape, budget int) string {
	if len(docs) == 0 {
		return ""
	}

	ordered := make([]Document, len(docs))
	copy(ordered, docs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Order < ordered[j].Order
	})

	picked := make([]int, 0, shape.Head+shape.Tail+1)
	take := func(idx int) {
		for _, p := range picked {
			if p == idx {
				return
			}
		}
		picked = append(picked, idx)
	}

	for i := 0; i < shape.Head && i < len(ordered); i++ {
		take(i)
	}
	if shape.Middle {
		take(len(ordered) / 2)
	}
	for i := len(ordered) - shape.Tail; i < len(ordered); i++ {
		if i >= 0 {
			take(i)
		}
	}
	sort.Ints(picked)

	parts := make([]string, 0, len(picked))
	for _, idx := range picked {
		text := strings.TrimSpace(ordered[idx].SourceText)
		if text != "" {
			parts = append(parts, text)
		}
	}

	sample := strings.Join(parts, SampleSeparator)
	return truncateRunes(sample, budget)
}

// ContextWindow returns up to radius runes of text on each side of the
// first occurrence of term within sample. If the term does not occur,
// the window is empty; the caller is expected to proceed without context
// rather than fail. Only the first occurrence informs the window, so a
// term that recurs with different senses is disambiguated by its first
// use only.
func ContextWindow(sample, term string, radius int) string {
	if term == "" || radius <= 0 {
		return ""
	}
	byteIdx := strings.Index(sample, term)
	if byteIdx < 0 {
		return ""
	}

	runes := []rune(sample)
	start := len([]rune(sample[:byteIdx]))
	end := start + len([]rune(term))

	lo := start - radius
	if lo < 0 {
		lo = 0
	}
	hi := end + radius
	if hi > len(runes) {
		hi = len(runes)
	}

	return string(runes[lo:hi])
}

// truncateRunes caps s at n runes. Non-positive n leaves s unchanged.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
