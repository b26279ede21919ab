package glossai

import "sync"

// ParallelCacheProbe checks the result cache for every document
// concurrently and returns the hits (document ID to cached translation)
// plus the misses in their original order. Cache reads are local and
// carry no rate-limit cost, so unlike provider calls they may fan out.
//
// This is a planning aid: a dry run can report how much of a batch the
// cache would serve before any provider call is made.
func ParallelCacheProbe(cache ResultCache, docs []Document, glossary []Term, targetLang string) (map[string]string, []Document) {
	if cache == nil || len(docs) == 0 {
		return make(map[string]string), docs
	}

	fingerprint := GlossaryFingerprint(glossary)

	type probeResult struct {
		docID string
		value string
		found bool
	}

	results := make(chan probeResult, len(docs))
	var wg sync.WaitGroup

	for _, doc := range docs {
		wg.Add(1)
		go func(d Document) {
			defer wg.Done()
			key := DocKey(HashText(d.SourceText), fingerprint, targetLang)
			if val, ok := cache.Get(key); ok {
				results <- probeResult{docID: d.ID, value: val, found: true}
			} else {
				results <- probeResult{docID: d.ID, found: false}
			}
		}(doc)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	hits := make(map[string]string)
	for result := range results {
		if result.found {
			hits[result.docID] = result.value
		}
	}

	var misses []Document
	for _, doc := range docs {
		if _, ok := hits[doc.ID]; !ok {
			misses = append(misses, doc)
		}
	}

	return hits, misses
}
