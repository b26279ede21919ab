// Package provider implements the external AI capabilities: candidate
// term extraction, single-term translation and glossary-constrained
// document translation.
package provider

import "github.com/ZaguanLabs/glossai"

// TermExtractor is an alias to the main package interface for convenience.
type TermExtractor = glossai.TermExtractor

// TermTranslator is an alias to the main package interface for convenience.
type TermTranslator = glossai.TermTranslator

// DocumentTranslator is an alias to the main package interface for convenience.
type DocumentTranslator = glossai.DocumentTranslator

// TranslateRequest is an alias to the main package type.
type TranslateRequest = glossai.TranslateRequest

// TermRequest is an alias to the main package type.
type TermRequest = glossai.TermRequest
