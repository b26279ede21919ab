package glossai

import (
	"context"
	"fmt"
	"strings"
)

// Scanner is the one-shot extraction pipeline: it samples a document
// corpus, extracts candidate terms, resolves them against the existing
// glossary and inserts a rendering for each genuinely new term.
type Scanner struct {
	extractor  TermExtractor
	terms      TermTranslator
	glossary   GlossaryStore
	targetLang string
	sourceLang string

	shape         SampleShape
	sampleBudget  int
	contextRadius int
	maxTerms      int
	onProgress    func(Progress)
}

// ScannerOption is a functional option for configuring the Scanner.
type ScannerOption func(*Scanner)

// WithSampleShape overrides the head/middle/tail sampling shape.
func WithSampleShape(shape SampleShape) ScannerOption {
	return func(s *Scanner) {
		s.shape = shape
	}
}

// WithSampleBudget caps the sample at n runes; excess is truncated,
// never an error. Zero or negative disables the cap.
func WithSampleBudget(n int) ScannerOption {
	return func(s *Scanner) {
		s.sampleBudget = n
	}
}

// WithContextRadius sets the size of the context window taken around a
// term's first occurrence when translating it.
func WithContextRadius(n int) ScannerOption {
	return func(s *Scanner) {
		s.contextRadius = n
	}
}

// WithMaxTerms caps how many candidates the extractor is asked for.
func WithMaxTerms(n int) ScannerOption {
	return func(s *Scanner) {
		s.maxTerms = n
	}
}

// WithScanProgress registers a progress observer. Labels advance
// monotonically: "extracting", then "translating i/M" per new term.
func WithScanProgress(fn func(Progress)) ScannerOption {
	return func(s *Scanner) {
		s.onProgress = fn
	}
}

// WithScanSourceLang sets the source language passed to term requests.
func WithScanSourceLang(lang string) ScannerOption {
	return func(s *Scanner) {
		s.sourceLang = lang
	}
}

// NewScanner creates a Scanner targeting the given language.
func NewScanner(targetLang string, extractor TermExtractor, terms TermTranslator, glossary GlossaryStore, opts ...ScannerOption) *Scanner {
	s := &Scanner{
		extractor:     extractor,
		terms:         terms,
		glossary:      glossary,
		targetLang:    targetLang,
		sourceLang:    "zh_CN",
		shape:         DefaultSampleShape(),
		sampleBudget:  12000,
		contextRadius: 100,
		maxTerms:      50,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// DeepScan runs one extraction pass over the corpus. Partial progress
// is never rolled back: terms inserted before a failure stay inserted,
// and the report accounts for both. Existing glossary entries are never
// modified; resolution excludes every known original regardless of its
// lock state, so locked terms are safe by construction.
func (s *Scanner) DeepScan(ctx context.Context, projectID string, docs []Document) (*ScanReport, error) {
	report := &ScanReport{}

	sample := BuildSample(docs, s.shape, s.sampleBudget)
	report.SampleSize = len([]rune(sample))
	if sample == "" {
		return report, nil
	}

	s.emit(Progress{Current: 0, Total: 0, Label: "extracting"})

	candidates, err := s.extractor.ExtractTerms(ctx, sample, s.maxTerms)
	if err != nil {
		// Extraction failure is "zero candidates found", never fatal.
		candidates = nil
	}
	report.Extracted = len(candidates)

	existing, err := s.glossary.ListByProject(ctx, projectID)
	if err != nil {
		return report, &StoreError{Op: "list terms", Message: "cannot resolve candidates", Cause: err}
	}

	resolved := ResolveCandidates(candidates, existing)
	report.New = len(resolved)

	for i, c := range resolved {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		s.emit(Progress{
			Current: i + 1,
			Total:   len(resolved),
			Label:   fmt.Sprintf("translating %d/%d", i+1, len(resolved)),
		})

		snippet := ContextWindow(sample, c.Original, s.contextRadius)

		rendering, err := s.terms.TranslateTerm(ctx, TermRequest{
			Term:       c.Original,
			Context:    snippet,
			TargetLang: s.targetLang,
			SourceLang: s.sourceLang,
		})
		if err != nil || strings.TrimSpace(rendering) == "" {
			// Visible, correctable placeholder beats an aborted scan.
			rendering = c.Original
			report.FellBack++
		}

		_, err = s.glossary.Insert(ctx, Term{
			ProjectID:   projectID,
			Original:    c.Original,
			Translation: strings.TrimSpace(rendering),
			Category:    c.Category,
			Locked:      false,
		})
		if err != nil {
			report.Failed++
			continue
		}
		report.Inserted++
	}

	s.emit(Progress{Current: len(resolved), Total: len(resolved), Label: "complete"})

	return report, nil
}

func (s *Scanner) emit(p Progress) {
	if s.onProgress != nil {
		s.onProgress(p)
	}
}
