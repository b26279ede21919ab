package glossai

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// HashText computes the SHA-256 hash of the trimmed text.
func HashText(text string) string {
	trimmed := strings.TrimSpace(text)
	hash := sha256.Sum256([]byte(trimmed))
	return hex.EncodeToString(hash[:])
}

// GlossaryFingerprint computes a stable hash over a glossary's mappings.
// The fingerprint is order-insensitive: two glossaries with the same
// original->translation pairs fingerprint identically regardless of how
// the store returned them.
func GlossaryFingerprint(terms []Term) string {
	lines := make([]string, 0, len(terms))
	for _, t := range terms {
		if t.Original == "" || t.Translation == "" {
			continue
		}
		lines = append(lines, t.Original+"\x00"+t.Translation)
	}
	sort.Strings(lines)
	hash := sha256.Sum256([]byte(strings.Join(lines, "\n")))
	return hex.EncodeToString(hash[:])
}

// DocKey generates a result-cache key for a document translation. A key
// is only valid for one (source text, glossary state, target language)
// combination; any of the three changing invalidates the entry.
func DocKey(sourceHash, glossaryFingerprint, targetLang string) string {
	return sourceHash + ":" + glossaryFingerprint + ":" + targetLang
}
