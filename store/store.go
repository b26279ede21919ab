// Package store provides glossary and document store implementations:
// an in-memory store for tests and embedding, and a SQLite store for
// durable CLI use.
package store

import "github.com/ZaguanLabs/glossai"

// GlossaryStore is an alias to the main package interface for convenience.
type GlossaryStore = glossai.GlossaryStore

// DocumentStore is an alias to the main package interface for convenience.
type DocumentStore = glossai.DocumentStore

// Term is an alias to the main package type.
type Term = glossai.Term

// Document is an alias to the main package type.
type Document = glossai.Document
