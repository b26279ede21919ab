package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ZaguanLabs/glossai"
)

// MemoryStore is a thread-safe in-memory store backing both the
// glossary and document contracts. Use Glossary() and Documents() to
// obtain the interface facets.
type MemoryStore struct {
	mu        sync.RWMutex
	terms     map[string]glossai.Term
	termOrder []string
	docs      map[string]glossai.Document
	nextTerm  int
	nextDoc   int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		terms: make(map[string]glossai.Term),
		docs:  make(map[string]glossai.Document),
	}
}

// Glossary returns the GlossaryStore facet.
func (s *MemoryStore) Glossary() GlossaryStore {
	return (*memoryGlossary)(s)
}

// Documents returns the DocumentStore facet.
func (s *MemoryStore) Documents() DocumentStore {
	return (*memoryDocuments)(s)
}

// UpsertDocument stores a document, assigning an ID if absent, and
// returns the ID.
func (s *MemoryStore) UpsertDocument(ctx context.Context, d glossai.Document) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d.ID == "" {
		s.nextDoc++
		d.ID = fmt.Sprintf("d%04d", s.nextDoc)
	}
	s.docs[d.ID] = d
	return d.ID, nil
}

// GetDocument returns a stored document by ID.
func (s *MemoryStore) GetDocument(ctx context.Context, id string) (glossai.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.docs[id]
	return d, ok
}

// memoryGlossary adapts MemoryStore to the GlossaryStore contract.
type memoryGlossary MemoryStore

// ListByProject returns a project's terms in insertion order.
func (g *memoryGlossary) ListByProject(ctx context.Context, projectID string) ([]glossai.Term, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var out []glossai.Term
	for _, id := range g.termOrder {
		if t, ok := g.terms[id]; ok && t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	return out, nil
}

// Insert stores a new term and returns its assigned ID.
func (g *memoryGlossary) Insert(ctx context.Context, t glossai.Term) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if t.ID == "" {
		g.nextTerm++
		t.ID = fmt.Sprintf("t%04d", g.nextTerm)
	}
	g.terms[t.ID] = t
	g.termOrder = append(g.termOrder, t.ID)
	return t.ID, nil
}

// Update applies a partial update to a stored term.
func (g *memoryGlossary) Update(ctx context.Context, id string, patch glossai.TermPatch) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	t, ok := g.terms[id]
	if !ok {
		return &glossai.StoreError{Op: "update term", Message: "term not found: " + id}
	}
	if patch.Original != nil {
		t.Original = *patch.Original
	}
	if patch.Translation != nil {
		t.Translation = *patch.Translation
	}
	if patch.Category != nil {
		t.Category = *patch.Category
	}
	if patch.Locked != nil {
		t.Locked = *patch.Locked
	}
	g.terms[id] = t
	return nil
}

// Delete removes a term. Deleting an unknown ID is a no-op.
func (g *memoryGlossary) Delete(ctx context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.terms, id)
	for i, tid := range g.termOrder {
		if tid == id {
			g.termOrder = append(g.termOrder[:i], g.termOrder[i+1:]...)
			break
		}
	}
	return nil
}

// memoryDocuments adapts MemoryStore to the DocumentStore contract.
type memoryDocuments MemoryStore

// ListByProject returns a project's documents in ascending order.
func (d *memoryDocuments) ListByProject(ctx context.Context, projectID string) ([]glossai.Document, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []glossai.Document
	for _, doc := range d.docs {
		if doc.ProjectID == projectID {
			out = append(out, doc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

// SaveTranslation overwrites a document's translation fields.
func (d *memoryDocuments) SaveTranslation(ctx context.Context, id, translatedText, sourceHash string, at time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	doc, ok := d.docs[id]
	if !ok {
		return &glossai.StoreError{Op: "save translation", Message: "document not found: " + id}
	}
	doc.TranslatedText = translatedText
	doc.SourceHash = sourceHash
	doc.LastTranslatedAt = at
	d.docs[id] = doc
	return nil
}

// Verify the facets implement the store contracts
var (
	_ GlossaryStore = (*memoryGlossary)(nil)
	_ DocumentStore = (*memoryDocuments)(nil)
)
