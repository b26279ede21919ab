package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"sync"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/ZaguanLabs/glossai"
)

// SQLiteStore is a durable store backing both the glossary and document
// contracts on a single SQLite file. Use Glossary() and Documents() to
// obtain the interface facets.
type SQLiteStore struct {
	db      *sql.DB
	mu      sync.Mutex // guards entropy
	entropy *ulid.MonotonicEntropy
}

// OpenSQLite opens (creating if needed) a SQLite database with WAL mode
// enabled and the schema initialized. Initialization is idempotent.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{
		db:      db,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Glossary returns the GlossaryStore facet.
func (s *SQLiteStore) Glossary() GlossaryStore {
	return &sqliteGlossary{s}
}

// Documents returns the DocumentStore facet.
func (s *SQLiteStore) Documents() DocumentStore {
	return &sqliteDocuments{s}
}

// initSchema creates tables if they don't exist.
func initSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS terms (
			id TEXT PRIMARY KEY,
			project_id TEXT NOT NULL,
			original TEXT NOT NULL,
			translation TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT 'other',
			locked INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_terms_project ON terms(project_id)`,
		`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			project_id TEXT NOT NULL,
			ord INTEGER NOT NULL,
			source_text TEXT NOT NULL,
			translated_text TEXT NOT NULL DEFAULT '',
			source_hash TEXT NOT NULL DEFAULT '',
			last_translated_at TEXT NOT NULL DEFAULT '',
			UNIQUE(project_id, ord)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_project ON documents(project_id)`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) newID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Now(), s.entropy).String()
}

// UpsertDocument inserts a document or, on an order collision within
// the project, refreshes its source text. Returns the document's ID.
func (s *SQLiteStore) UpsertDocument(ctx context.Context, d glossai.Document) (string, error) {
	if d.ID == "" {
		d.ID = s.newID()
	}

	query, args, err := sq.Insert("documents").
		Columns("id", "project_id", "ord", "source_text", "translated_text", "source_hash", "last_translated_at").
		Values(d.ID, d.ProjectID, d.Order, d.SourceText, d.TranslatedText, d.SourceHash, formatTime(d.LastTranslatedAt)).
		Suffix("ON CONFLICT(project_id, ord) DO UPDATE SET source_text = excluded.source_text").
		ToSql()
	if err != nil {
		return "", err
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return "", &glossai.StoreError{Op: "upsert document", Message: "exec failed", Cause: err}
	}
	return d.ID, nil
}

// GetDocument returns a stored document by ID.
func (s *SQLiteStore) GetDocument(ctx context.Context, id string) (glossai.Document, error) {
	query, args, err := sq.Select("id", "project_id", "ord", "source_text", "translated_text", "source_hash", "last_translated_at").
		From("documents").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return glossai.Document{}, err
	}

	var d glossai.Document
	var at string
	row := s.db.QueryRowContext(ctx, query, args...)
	if err := row.Scan(&d.ID, &d.ProjectID, &d.Order, &d.SourceText, &d.TranslatedText, &d.SourceHash, &at); err != nil {
		return glossai.Document{}, &glossai.StoreError{Op: "get document", Message: "scan failed", Cause: err}
	}
	d.LastTranslatedAt = parseTime(at)
	return d, nil
}

// sqliteGlossary adapts SQLiteStore to the GlossaryStore contract.
type sqliteGlossary struct {
	s *SQLiteStore
}

// ListByProject returns a project's terms in insertion order.
func (g *sqliteGlossary) ListByProject(ctx context.Context, projectID string) ([]glossai.Term, error) {
	query, args, err := sq.Select("id", "project_id", "original", "translation", "category", "locked").
		From("terms").
		Where(sq.Eq{"project_id": projectID}).
		OrderBy("rowid").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := g.s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &glossai.StoreError{Op: "list terms", Message: "query failed", Cause: err}
	}
	defer rows.Close()

	var out []glossai.Term
	for rows.Next() {
		var t glossai.Term
		var category string
		var locked int
		if err := rows.Scan(&t.ID, &t.ProjectID, &t.Original, &t.Translation, &category, &locked); err != nil {
			return nil, &glossai.StoreError{Op: "list terms", Message: "scan failed", Cause: err}
		}
		t.Category = glossai.Category(category)
		t.Locked = locked != 0
		out = append(out, t)
	}
	return out, rows.Err()
}

// Insert stores a new term and returns its assigned ID.
func (g *sqliteGlossary) Insert(ctx context.Context, t glossai.Term) (string, error) {
	if t.ID == "" {
		t.ID = g.s.newID()
	}

	query, args, err := sq.Insert("terms").
		Columns("id", "project_id", "original", "translation", "category", "locked").
		Values(t.ID, t.ProjectID, t.Original, t.Translation, string(t.Category), boolToInt(t.Locked)).
		ToSql()
	if err != nil {
		return "", err
	}

	if _, err := g.s.db.ExecContext(ctx, query, args...); err != nil {
		return "", &glossai.StoreError{Op: "insert term", Message: "exec failed", Cause: err}
	}
	return t.ID, nil
}

// Update applies a partial update to a stored term.
func (g *sqliteGlossary) Update(ctx context.Context, id string, patch glossai.TermPatch) error {
	update := sq.Update("terms").Where(sq.Eq{"id": id})
	changed := false

	if patch.Original != nil {
		update = update.Set("original", *patch.Original)
		changed = true
	}
	if patch.Translation != nil {
		update = update.Set("translation", *patch.Translation)
		changed = true
	}
	if patch.Category != nil {
		update = update.Set("category", string(*patch.Category))
		changed = true
	}
	if patch.Locked != nil {
		update = update.Set("locked", boolToInt(*patch.Locked))
		changed = true
	}
	if !changed {
		return nil
	}

	query, args, err := update.ToSql()
	if err != nil {
		return err
	}

	res, err := g.s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return &glossai.StoreError{Op: "update term", Message: "exec failed", Cause: err}
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return &glossai.StoreError{Op: "update term", Message: "term not found: " + id}
	}
	return nil
}

// Delete removes a term.
func (g *sqliteGlossary) Delete(ctx context.Context, id string) error {
	query, args, err := sq.Delete("terms").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	if _, err := g.s.db.ExecContext(ctx, query, args...); err != nil {
		return &glossai.StoreError{Op: "delete term", Message: "exec failed", Cause: err}
	}
	return nil
}

// sqliteDocuments adapts SQLiteStore to the DocumentStore contract.
type sqliteDocuments struct {
	s *SQLiteStore
}

// ListByProject returns a project's documents in ascending order.
func (d *sqliteDocuments) ListByProject(ctx context.Context, projectID string) ([]glossai.Document, error) {
	query, args, err := sq.Select("id", "project_id", "ord", "source_text", "translated_text", "source_hash", "last_translated_at").
		From("documents").
		Where(sq.Eq{"project_id": projectID}).
		OrderBy("ord").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := d.s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &glossai.StoreError{Op: "list documents", Message: "query failed", Cause: err}
	}
	defer rows.Close()

	var out []glossai.Document
	for rows.Next() {
		var doc glossai.Document
		var at string
		if err := rows.Scan(&doc.ID, &doc.ProjectID, &doc.Order, &doc.SourceText, &doc.TranslatedText, &doc.SourceHash, &at); err != nil {
			return nil, &glossai.StoreError{Op: "list documents", Message: "scan failed", Cause: err}
		}
		doc.LastTranslatedAt = parseTime(at)
		out = append(out, doc)
	}
	return out, rows.Err()
}

// SaveTranslation overwrites a document's translation fields.
func (d *sqliteDocuments) SaveTranslation(ctx context.Context, id, translatedText, sourceHash string, at time.Time) error {
	query, args, err := sq.Update("documents").
		Set("translated_text", translatedText).
		Set("source_hash", sourceHash).
		Set("last_translated_at", formatTime(at)).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}

	res, err := d.s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return &glossai.StoreError{Op: "save translation", Message: "exec failed", Cause: err}
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return &glossai.StoreError{Op: "save translation", Message: "document not found: " + id}
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Verify the facets implement the store contracts
var (
	_ GlossaryStore = (*sqliteGlossary)(nil)
	_ DocumentStore = (*sqliteDocuments)(nil)
)
