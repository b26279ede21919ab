package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ZaguanLabs/glossai"
)

// SnapshotFormat represents the JSON structure for glossary export/import.
type SnapshotFormat struct {
	Version    string            `json:"version"`
	ExportedAt string            `json:"exported_at"`
	ProjectID  string            `json:"project_id"`
	Terms      []SnapshotTerm    `json:"terms"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// SnapshotTerm represents a single exported glossary entry.
type SnapshotTerm struct {
	Original    string `json:"original"`
	Translation string `json:"translation"`
	Category    string `json:"category"`
	Locked      bool   `json:"locked"`
}

// Exporter writes a project glossary as a JSON snapshot, e.g. to share
// a terminology set between projects or back it up before a re-scan.
type Exporter struct {
	glossary GlossaryStore
}

// NewExporter creates a new glossary exporter.
func NewExporter(glossary GlossaryStore) *Exporter {
	return &Exporter{glossary: glossary}
}

// Export writes the project's glossary to a writer in JSON format.
func (e *Exporter) Export(ctx context.Context, projectID string, w io.Writer, metadata map[string]string) error {
	terms, err := e.glossary.ListByProject(ctx, projectID)
	if err != nil {
		return fmt.Errorf("listing terms: %w", err)
	}

	snapshot := SnapshotFormat{
		Version:    "1.0",
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		ProjectID:  projectID,
		Terms:      make([]SnapshotTerm, 0, len(terms)),
		Metadata:   metadata,
	}
	for _, t := range terms {
		snapshot.Terms = append(snapshot.Terms, SnapshotTerm{
			Original:    t.Original,
			Translation: t.Translation,
			Category:    string(t.Category),
			Locked:      t.Locked,
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(snapshot); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}

	return nil
}

// ExportToFile exports the project's glossary to a file.
// The path is provided by the caller and is intentionally user-controlled.
func (e *Exporter) ExportToFile(ctx context.Context, projectID, path string, metadata map[string]string) error {
	f, err := os.Create(path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	return e.Export(ctx, projectID, f, metadata)
}

// Importer loads glossary snapshots into a store.
type Importer struct {
	glossary GlossaryStore
}

// NewImporter creates a new glossary importer.
func NewImporter(glossary GlossaryStore) *Importer {
	return &Importer{glossary: glossary}
}

// ImportResult contains statistics about the import operation.
type ImportResult struct {
	Version  string
	Metadata map[string]string
	Imported int
	Skipped  int // originals already present, or entries with no original
	Failed   int
}

// Import reads a snapshot and inserts its terms into the project's
// glossary. Terms whose original already exists (case-insensitively)
// are skipped; existing entries are never overwritten.
func (i *Importer) Import(ctx context.Context, projectID string, r io.Reader) (*ImportResult, error) {
	var snapshot SnapshotFormat
	if err := json.NewDecoder(r).Decode(&snapshot); err != nil {
		return nil, fmt.Errorf("decoding JSON: %w", err)
	}

	existing, err := i.glossary.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing terms: %w", err)
	}

	candidates := make([]glossai.Candidate, 0, len(snapshot.Terms))
	byOriginal := make(map[string]SnapshotTerm, len(snapshot.Terms))
	for _, t := range snapshot.Terms {
		candidates = append(candidates, glossai.Candidate{
			Original: t.Original,
			Category: glossai.ParseCategory(t.Category),
		})
		key := strings.ToLower(strings.TrimSpace(t.Original))
		if _, ok := byOriginal[key]; !ok {
			byOriginal[key] = t
		}
	}

	fresh := glossai.ResolveCandidates(candidates, existing)

	result := &ImportResult{
		Version:  snapshot.Version,
		Metadata: snapshot.Metadata,
		Skipped:  len(snapshot.Terms) - len(fresh),
	}

	for _, c := range fresh {
		entry := byOriginal[strings.ToLower(c.Original)]
		_, err := i.glossary.Insert(ctx, glossai.Term{
			ProjectID:   projectID,
			Original:    c.Original,
			Translation: entry.Translation,
			Category:    c.Category,
			Locked:      entry.Locked,
		})
		if err != nil {
			result.Failed++
			continue
		}
		result.Imported++
	}

	return result, nil
}

// ImportFromFile imports a glossary snapshot from a file.
// The path is provided by the caller and is intentionally user-controlled.
func (i *Importer) ImportFromFile(ctx context.Context, projectID, path string) (*ImportResult, error) {
	f, err := os.Open(path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return i.Import(ctx, projectID, f)
}
