package provider

import (
	"context"
	"fmt"

	"github.com/ZaguanLabs/glossai"
)

// MockProvider is a scripted provider for testing and examples. It
// implements all three capabilities.
type MockProvider struct {
	Candidates []glossai.Candidate // returned by every ExtractTerms call
	Renderings map[string]string   // term original -> rendering
	Documents  map[string]string   // source text -> translation

	ExtractErr  error // injected extraction failure
	TermErr     error // injected term translation failure
	DocumentErr error // injected document translation failure

	ExtractCalls  int
	TermCalls     int
	DocumentCalls int
	LastRequest   *TranslateRequest // last document request received
}

// NewMockProvider creates a mock with a small default script.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Candidates: []glossai.Candidate{
			{Original: "灵气", Category: glossai.CategoryOther},
			{Original: "张三", Category: glossai.CategoryPerson},
		},
		Renderings: map[string]string{
			"灵气": "spiritual energy",
			"张三": "Zhang San",
		},
		Documents: map[string]string{},
	}
}

// ExtractTerms returns the scripted candidates.
func (m *MockProvider) ExtractTerms(ctx context.Context, sample string, maxTerms int) ([]glossai.Candidate, error) {
	m.ExtractCalls++
	if m.ExtractErr != nil {
		return nil, m.ExtractErr
	}
	if maxTerms > 0 && len(m.Candidates) > maxTerms {
		return m.Candidates[:maxTerms], nil
	}
	return m.Candidates, nil
}

// TranslateTerm returns the scripted rendering, or a bracketed echo for
// unknown terms.
func (m *MockProvider) TranslateTerm(ctx context.Context, req TermRequest) (string, error) {
	m.TermCalls++
	if m.TermErr != nil {
		return "", m.TermErr
	}
	if r, ok := m.Renderings[req.Term]; ok {
		return r, nil
	}
	return fmt.Sprintf("[%s]", req.Term), nil
}

// TranslateDocument returns the scripted translation, or a bracketed
// echo of the source for unknown documents.
func (m *MockProvider) TranslateDocument(ctx context.Context, req TranslateRequest) (string, error) {
	m.DocumentCalls++
	m.LastRequest = &req
	if m.DocumentErr != nil {
		return "", m.DocumentErr
	}
	if t, ok := m.Documents[req.Text]; ok {
		return t, nil
	}
	return fmt.Sprintf("[%s->%s] %s", req.SourceLang, req.TargetLang, req.Text), nil
}

// Reset clears call counters and the recorded request.
func (m *MockProvider) Reset() {
	m.ExtractCalls = 0
	m.TermCalls = 0
	m.DocumentCalls = 0
	m.LastRequest = nil
}

// Verify MockProvider implements all three capabilities
var (
	_ TermExtractor      = (*MockProvider)(nil)
	_ TermTranslator     = (*MockProvider)(nil)
	_ DocumentTranslator = (*MockProvider)(nil)
)
