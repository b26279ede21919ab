package glossai

import (
	"context"
	"strings"
)

// TermExtractor is the capability that proposes candidate terms from a
// text sample. Implementations should fail closed: a malformed model
// response is an error, and the extraction pipeline treats any error as
// zero candidates found.
type TermExtractor interface {
	ExtractTerms(ctx context.Context, sample string, maxTerms int) ([]Candidate, error)
}

// TermRequest asks for a target-language rendering of a single term,
// given a snippet of surrounding source text for disambiguation.
type TermRequest struct {
	Term       string
	Context    string // may be empty when the term was not found in the sample
	TargetLang string
	SourceLang string
}

// TermTranslator is the capability that renders one term into the target
// language. On failure the caller falls back to the term itself.
type TermTranslator interface {
	TranslateTerm(ctx context.Context, req TermRequest) (string, error)
}

// TranslateRequest carries one document translation to a provider. The
// glossary is an ordered mandatory mapping: every covered term must be
// rendered exactly as mapped.
type TranslateRequest struct {
	Text       string
	Glossary   []Term
	TargetLang string
	SourceLang string
	Context    string // global hint, e.g. "xianxia web novel"
	Style      TranslationStyle
}

// DocumentTranslator is the capability that translates a full document.
// Failure is signaled through the error return, never through sentinel
// text in the result.
type DocumentTranslator interface {
	TranslateDocument(ctx context.Context, req TranslateRequest) (string, error)
}

// ResultCache caches finished document translations keyed by DocKey.
type ResultCache interface {
	Get(key string) (string, bool)
	Set(key string, value string) error
}

// FormatGlossary renders glossary terms as mapping instruction lines,
// one "original -> translation" per line, preserving input order.
// Entries with an empty side are skipped.
func FormatGlossary(terms []Term) string {
	var b strings.Builder
	for _, t := range terms {
		if t.Original == "" || t.Translation == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(t.Original)
		b.WriteString(" -> ")
		b.WriteString(t.Translation)
	}
	return b.String()
}

// Translator translates single documents under a glossary constraint.
// It holds no state beyond configuration; persistence of results is the
// caller's responsibility.
//
// The glossary constraint is best-effort on the provider side: the
// mapping is issued as a mandatory instruction, but the returned text is
// not verified or repaired afterwards. That fidelity gap is deliberate
// and documented rather than masked.
type Translator struct {
	targetLang string
	sourceLang string
	provider   DocumentTranslator
	cache      ResultCache
	context    string
	style      TranslationStyle
}

// TranslatorOption is a functional option for configuring the Translator.
type TranslatorOption func(*Translator)

// WithSourceLang sets the source language.
func WithSourceLang(lang string) TranslatorOption {
	return func(t *Translator) {
		t.sourceLang = lang
	}
}

// WithCache sets the translation result cache.
func WithCache(cache ResultCache) TranslatorOption {
	return func(t *Translator) {
		t.cache = cache
	}
}

// WithContext sets the global translation context hint.
func WithContext(ctx string) TranslatorOption {
	return func(t *Translator) {
		t.context = ctx
	}
}

// WithStyle sets the translation style.
func WithStyle(style TranslationStyle) TranslatorOption {
	return func(t *Translator) {
		t.style = style
	}
}

// NewTranslator creates a Translator for the given target language and
// document translation provider.
func NewTranslator(targetLang string, provider DocumentTranslator, opts ...TranslatorOption) *Translator {
	t := &Translator{
		targetLang: targetLang,
		sourceLang: "zh_CN",
		provider:   provider,
		style:      StyleFaithful,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// DocumentResult is the outcome of one successful document translation.
type DocumentResult struct {
	Text   string
	Cached bool // satisfied from the result cache, no provider call made
}

// TranslateDocument translates one document under the given glossary.
// The glossary mapping is fixed for the call; terms with an empty side
// are dropped before the provider sees them. An error return means the
// document was not translated; the returned text is never an error
// message in disguise.
func (t *Translator) TranslateDocument(ctx context.Context, doc Document, glossary []Term) (*DocumentResult, error) {
	if strings.TrimSpace(doc.SourceText) == "" {
		return &DocumentResult{Text: ""}, nil
	}

	mapping := usableTerms(glossary)

	var key string
	if t.cache != nil {
		key = DocKey(HashText(doc.SourceText), GlossaryFingerprint(mapping), t.targetLang)
		if cached, ok := t.cache.Get(key); ok {
			return &DocumentResult{Text: cached, Cached: true}, nil
		}
	}

	if t.provider == nil {
		return nil, &TranslationError{Message: "no document translation provider configured"}
	}

	text, err := t.provider.TranslateDocument(ctx, TranslateRequest{
		Text:       doc.SourceText,
		Glossary:   mapping,
		TargetLang: t.targetLang,
		SourceLang: t.sourceLang,
		Context:    t.context,
		Style:      t.style,
	})
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, &ProviderError{Message: "empty translation returned", Retryable: true}
	}

	if t.cache != nil {
		_ = t.cache.Set(key, text) // Ignore cache set errors
	}

	return &DocumentResult{Text: text}, nil
}

// TargetLang returns the target language.
func (t *Translator) TargetLang() string {
	return t.targetLang
}

// SourceLang returns the source language.
func (t *Translator) SourceLang() string {
	return t.sourceLang
}

// Cache returns the configured result cache, which may be nil.
func (t *Translator) Cache() ResultCache {
	return t.cache
}

// usableTerms drops glossary entries that cannot be rendered as a
// mapping line, preserving order.
func usableTerms(terms []Term) []Term {
	out := make([]Term, 0, len(terms))
	for _, t := range terms {
		if t.Original == "" || t.Translation == "" {
			continue
		}
		out = append(out, t)
	}
	return out
}
