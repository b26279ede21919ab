// Package cache provides translation result caching implementations.
// Keys are produced by glossai.DocKey and bind a result to one
// (source text, glossary state, target language) combination.
package cache

// ResultCache is the interface for translation result caching.
type ResultCache interface {
	// Get retrieves a cached translation. Returns empty string and false if not found or expired.
	Get(key string) (string, bool)

	// Set stores a translation in the cache.
	Set(key string, value string) error
}
