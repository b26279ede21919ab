package glossai

import (
	"context"
	"time"
)

// GlossaryStore owns Term records. The engine holds only transient
// copies for the duration of one operation; all durable state lives
// behind this interface.
type GlossaryStore interface {
	// ListByProject returns all terms for a project.
	ListByProject(ctx context.Context, projectID string) ([]Term, error)

	// Insert stores a new term and returns its assigned ID.
	Insert(ctx context.Context, t Term) (string, error)

	// Update applies a partial update to a stored term.
	Update(ctx context.Context, id string, patch TermPatch) error

	// Delete removes a term.
	Delete(ctx context.Context, id string) error
}

// DocumentStore owns Document records. The engine never deletes
// documents; it only reads them and writes back translations.
type DocumentStore interface {
	// ListByProject returns a project's documents in ascending order.
	ListByProject(ctx context.Context, projectID string) ([]Document, error)

	// SaveTranslation overwrites a document's translated text, the
	// source hash it was produced from, and the translation timestamp.
	SaveTranslation(ctx context.Context, id, translatedText, sourceHash string, at time.Time) error
}
