// Package processor normalizes raw chapter sources into the plain text
// the engine samples and translates.
package processor

// Normalizer converts one raw chapter source into plain text.
type Normalizer interface {
	// Normalize returns the plain-text body of the content.
	Normalize(content string) (string, error)

	// ContentType identifies the input format, e.g. "html" or "text".
	ContentType() string
}
