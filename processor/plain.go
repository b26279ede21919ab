package processor

import "strings"

// PlainNormalizer cleans up plain-text chapter sources: line endings,
// trailing whitespace and runs of blank lines.
type PlainNormalizer struct{}

// NewPlainNormalizer creates a plain-text normalizer.
func NewPlainNormalizer() *PlainNormalizer {
	return &PlainNormalizer{}
}

// Normalize returns the cleaned text. It never fails.
func (p *PlainNormalizer) Normalize(content string) (string, error) {
	text := strings.ReplaceAll(content, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	text = strings.Join(lines, "\n")

	return collapseBlankLines(strings.TrimSpace(text)), nil
}

// ContentType returns "text".
func (p *PlainNormalizer) ContentType() string {
	return "text"
}

// collapseBlankLines reduces runs of blank lines to a single blank line.
func collapseBlankLines(text string) string {
	for strings.Contains(text, "\n\n\n") {
		text = strings.ReplaceAll(text, "\n\n\n", "\n\n")
	}
	return text
}

// Verify PlainNormalizer implements Normalizer
var _ Normalizer = (*PlainNormalizer)(nil)
