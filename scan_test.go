package glossai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
)

// mockExtractor is a term extraction mock for testing
type mockExtractor struct {
	candidates []Candidate
	err        error
	callCount  int
	lastSample string
}

func (m *mockExtractor) ExtractTerms(ctx context.Context, sample string, maxTerms int) ([]Candidate, error) {
	m.callCount++
	m.lastSample = sample
	if m.err != nil {
		return nil, m.err
	}
	return m.candidates, nil
}

// mockTermProvider is a term translation mock for testing
type mockTermProvider struct {
	renderings map[string]string
	err        error
	callCount  int
	lastReq    TermRequest
}

func (m *mockTermProvider) TranslateTerm(ctx context.Context, req TermRequest) (string, error) {
	m.callCount++
	m.lastReq = req
	if m.err != nil {
		return "", m.err
	}
	if r, ok := m.renderings[req.Term]; ok {
		return r, nil
	}
	return "", nil
}

// fakeGlossary is an in-memory GlossaryStore for testing
type fakeGlossary struct {
	mu        sync.Mutex
	terms     []Term
	nextID    int
	insertErr error
	listErr   error
	updates   int
	deletes   int
}

func (g *fakeGlossary) ListByProject(ctx context.Context, projectID string) ([]Term, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.listErr != nil {
		return nil, g.listErr
	}
	var out []Term
	for _, t := range g.terms {
		if t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (g *fakeGlossary) Insert(ctx context.Context, t Term) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.insertErr != nil {
		return "", g.insertErr
	}
	g.nextID++
	t.ID = fmt.Sprintf("t%d", g.nextID)
	g.terms = append(g.terms, t)
	return t.ID, nil
}

func (g *fakeGlossary) Update(ctx context.Context, id string, patch TermPatch) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.updates++
	return nil
}

func (g *fakeGlossary) Delete(ctx context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.deletes++
	return nil
}

func scanCorpus() []Document {
	return []Document{
		{ID: "d1", ProjectID: "novel", Order: 0, SourceText: "张三凝视远方，灵气环绕。"},
		{ID: "d2", ProjectID: "novel", Order: 1, SourceText: "张三迈入山门。"},
		{ID: "d3", ProjectID: "novel", Order: 2, SourceText: "灵气如潮，张三闭目。"},
	}
}

func TestScanner_DeepScan(t *testing.T) {
	extractor := &mockExtractor{
		candidates: []Candidate{
			{Original: "张三", Category: CategoryPerson},
			{Original: "灵气", Category: CategoryOther},
		},
	}
	terms := &mockTermProvider{
		renderings: map[string]string{
			"张三": "Zhang San",
			"灵气": "spiritual energy",
		},
	}
	glossary := &fakeGlossary{}
	scanner := NewScanner("en_US", extractor, terms, glossary)

	report, err := scanner.DeepScan(context.Background(), "novel", scanCorpus())
	if err != nil {
		t.Fatalf("DeepScan failed: %v", err)
	}

	if report.Extracted != 2 || report.New != 2 || report.Inserted != 2 {
		t.Errorf("unexpected report: %+v", report)
	}
	if report.FellBack != 0 || report.Failed != 0 {
		t.Errorf("expected clean scan, got %+v", report)
	}

	stored, _ := glossary.ListByProject(context.Background(), "novel")
	if len(stored) != 2 {
		t.Fatalf("expected 2 stored terms, got %d", len(stored))
	}
	if stored[0].Original != "张三" || stored[0].Translation != "Zhang San" {
		t.Errorf("unexpected first term: %+v", stored[0])
	}
	if stored[0].Locked {
		t.Error("scan-inserted terms must not be locked")
	}
}

func TestScanner_RepeatedMentionResolvesOnce(t *testing.T) {
	// The extractor proposes the same name three times, as a model
	// reading three chapters might.
	extractor := &mockExtractor{
		candidates: []Candidate{
			{Original: "张三", Category: CategoryPerson},
			{Original: "张三", Category: CategoryPerson},
			{Original: "张三", Category: CategoryPerson},
		},
	}
	terms := &mockTermProvider{renderings: map[string]string{"张三": "Zhang San"}}
	glossary := &fakeGlossary{}
	scanner := NewScanner("en_US", extractor, terms, glossary)

	report, err := scanner.DeepScan(context.Background(), "novel", scanCorpus())
	if err != nil {
		t.Fatalf("DeepScan failed: %v", err)
	}

	if report.New != 1 || report.Inserted != 1 {
		t.Errorf("repeated mentions must collapse to one term, got %+v", report)
	}
	if terms.callCount != 1 {
		t.Errorf("expected 1 term translation call, got %d", terms.callCount)
	}
}

func TestScanner_ExistingTermsUntouched(t *testing.T) {
	extractor := &mockExtractor{
		candidates: []Candidate{
			{Original: "张三", Category: CategoryPerson},
			{Original: "灵气", Category: CategoryOther},
		},
	}
	terms := &mockTermProvider{renderings: map[string]string{"灵气": "spiritual energy"}}
	glossary := &fakeGlossary{}
	id, _ := glossary.Insert(context.Background(), Term{
		ProjectID: "novel", Original: "张三", Translation: "Cheung Sam", Locked: true,
	})
	scanner := NewScanner("en_US", extractor, terms, glossary)

	report, err := scanner.DeepScan(context.Background(), "novel", scanCorpus())
	if err != nil {
		t.Fatalf("DeepScan failed: %v", err)
	}

	if report.New != 1 || report.Inserted != 1 {
		t.Errorf("known term must not re-resolve, got %+v", report)
	}
	if glossary.updates != 0 || glossary.deletes != 0 {
		t.Error("a scan must never modify existing terms")
	}

	stored, _ := glossary.ListByProject(context.Background(), "novel")
	for _, term := range stored {
		if term.ID == id && term.Translation != "Cheung Sam" {
			t.Errorf("locked rendering was changed: %+v", term)
		}
	}
}

func TestScanner_FallbackOnTermFailure(t *testing.T) {
	extractor := &mockExtractor{
		candidates: []Candidate{{Original: "灵气", Category: CategoryOther}},
	}
	terms := &mockTermProvider{err: errors.New("model offline")}
	glossary := &fakeGlossary{}
	scanner := NewScanner("en_US", extractor, terms, glossary)

	report, err := scanner.DeepScan(context.Background(), "novel", scanCorpus())
	if err != nil {
		t.Fatalf("DeepScan failed: %v", err)
	}

	if report.FellBack != 1 || report.Inserted != 1 {
		t.Errorf("term failure should fall back, not abort: %+v", report)
	}

	stored, _ := glossary.ListByProject(context.Background(), "novel")
	if len(stored) != 1 || stored[0].Translation != "灵气" {
		t.Errorf("fallback must keep the original as rendering, got %+v", stored)
	}
}

func TestScanner_ExtractionFailureIsEmpty(t *testing.T) {
	extractor := &mockExtractor{err: errors.New("malformed response")}
	terms := &mockTermProvider{}
	glossary := &fakeGlossary{}
	scanner := NewScanner("en_US", extractor, terms, glossary)

	report, err := scanner.DeepScan(context.Background(), "novel", scanCorpus())
	if err != nil {
		t.Fatalf("extraction failure must not fail the scan: %v", err)
	}

	if report.Extracted != 0 || report.Inserted != 0 {
		t.Errorf("expected zero candidates, got %+v", report)
	}
	if terms.callCount != 0 {
		t.Error("no candidates means no term translation calls")
	}
}

func TestScanner_InsertFailureIsolated(t *testing.T) {
	extractor := &mockExtractor{
		candidates: []Candidate{
			{Original: "张三", Category: CategoryPerson},
			{Original: "灵气", Category: CategoryOther},
		},
	}
	terms := &mockTermProvider{
		renderings: map[string]string{"张三": "Zhang San", "灵气": "spiritual energy"},
	}
	glossary := &fakeGlossary{insertErr: errors.New("disk full")}
	scanner := NewScanner("en_US", extractor, terms, glossary)

	report, err := scanner.DeepScan(context.Background(), "novel", scanCorpus())
	if err != nil {
		t.Fatalf("insert failures must not fail the scan: %v", err)
	}

	if report.Failed != 2 || report.Inserted != 0 {
		t.Errorf("expected both inserts to fail, got %+v", report)
	}
}

func TestScanner_EmptyCorpus(t *testing.T) {
	extractor := &mockExtractor{}
	scanner := NewScanner("en_US", extractor, &mockTermProvider{}, &fakeGlossary{})

	report, err := scanner.DeepScan(context.Background(), "novel", nil)
	if err != nil {
		t.Fatalf("DeepScan failed: %v", err)
	}

	if report.SampleSize != 0 || report.Extracted != 0 {
		t.Errorf("expected empty report, got %+v", report)
	}
	if extractor.callCount != 0 {
		t.Error("empty corpus must not call the extractor")
	}
}

func TestScanner_ContextWindowInTermRequest(t *testing.T) {
	extractor := &mockExtractor{
		candidates: []Candidate{{Original: "张三", Category: CategoryPerson}},
	}
	terms := &mockTermProvider{renderings: map[string]string{"张三": "Zhang San"}}
	scanner := NewScanner("en_US", extractor, terms, &fakeGlossary{})

	if _, err := scanner.DeepScan(context.Background(), "novel", scanCorpus()); err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(terms.lastReq.Context, "张三") {
		t.Errorf("term request should carry surrounding context, got %q", terms.lastReq.Context)
	}
	if terms.lastReq.TargetLang != "en_US" {
		t.Errorf("expected target en_US, got %q", terms.lastReq.TargetLang)
	}
}

func TestScanner_Progress(t *testing.T) {
	extractor := &mockExtractor{
		candidates: []Candidate{
			{Original: "张三", Category: CategoryPerson},
			{Original: "灵气", Category: CategoryOther},
		},
	}
	terms := &mockTermProvider{
		renderings: map[string]string{"张三": "Zhang San", "灵气": "spiritual energy"},
	}

	var labels []string
	scanner := NewScanner("en_US", extractor, terms, &fakeGlossary{},
		WithScanProgress(func(p Progress) { labels = append(labels, p.Label) }),
	)

	if _, err := scanner.DeepScan(context.Background(), "novel", scanCorpus()); err != nil {
		t.Fatal(err)
	}

	want := []string{"extracting", "translating 1/2", "translating 2/2", "complete"}
	if len(labels) != len(want) {
		t.Fatalf("expected %d progress events, got %v", len(want), labels)
	}
	for i, w := range want {
		if labels[i] != w {
			t.Errorf("event %d: expected %q, got %q", i, w, labels[i])
		}
	}
}

func TestScanner_StoreListError(t *testing.T) {
	extractor := &mockExtractor{
		candidates: []Candidate{{Original: "张三", Category: CategoryPerson}},
	}
	glossary := &fakeGlossary{listErr: errors.New("connection reset")}
	scanner := NewScanner("en_US", extractor, &mockTermProvider{}, glossary)

	_, err := scanner.DeepScan(context.Background(), "novel", scanCorpus())
	if err == nil {
		t.Fatal("expected error when the glossary cannot be listed")
	}

	var se *StoreError
	if !errors.As(err, &se) {
		t.Errorf("expected *StoreError, got %T", err)
	}
}
