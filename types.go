// Package glossai provides a glossary-consistent AI batch translation engine.
package glossai

import (
	"strconv"
	"strings"
	"time"
)

// Category classifies a glossary term.
type Category string

const (
	// CategoryPerson marks personal names.
	CategoryPerson Category = "person"
	// CategoryLocation marks place names.
	CategoryLocation Category = "location"
	// CategorySkill marks techniques, spells and abilities.
	CategorySkill Category = "skill"
	// CategoryItem marks artifacts, weapons and other objects.
	CategoryItem Category = "item"
	// CategoryOrganization marks sects, clans, guilds and factions.
	CategoryOrganization Category = "organization"
	// CategoryOther marks anything that does not fit the above.
	CategoryOther Category = "other"
)

// ParseCategory normalizes a free-form category label from a provider.
// Unknown labels map to CategoryOther.
func ParseCategory(s string) Category {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	switch c {
	case CategoryPerson, CategoryLocation, CategorySkill, CategoryItem, CategoryOrganization, CategoryOther:
		return c
	default:
		return CategoryOther
	}
}

// Term is one glossary entry: a source-language original pinned to a
// fixed target-language rendering.
type Term struct {
	ID          string
	ProjectID   string
	Original    string
	Translation string
	Category    Category
	Locked      bool // never touched by automated passes; user edits only
}

// TermPatch carries partial updates for a stored term. Nil fields are
// left unchanged.
type TermPatch struct {
	Original    *string
	Translation *string
	Category    *Category
	Locked      *bool
}

// Document is one translatable unit of source text, typically a chapter.
type Document struct {
	ID               string
	ProjectID        string
	Order            int // dense ordering key, not required contiguous
	SourceText       string
	TranslatedText   string
	SourceHash       string // hash of SourceText at translation time
	LastTranslatedAt time.Time
}

// Translated reports whether the document holds a cached translation.
func (d Document) Translated() bool {
	return d.TranslatedText != ""
}

// Label returns a short identifier for progress reporting.
func (d Document) Label() string {
	if d.ID != "" {
		return d.ID
	}
	return "#" + strconv.Itoa(d.Order)
}

// Candidate is a term proposed by automated extraction, not yet resolved
// into the glossary.
type Candidate struct {
	Original string
	Category Category
}

// TranslationStyle controls how closely a translation follows the source.
type TranslationStyle string

const (
	// StyleFaithful balances accuracy with natural target-language flow.
	StyleFaithful TranslationStyle = "faithful"
	// StyleLiteral stays as close to the source structure as possible.
	StyleLiteral TranslationStyle = "literal"
	// StyleLiberal favors fluency and may rephrase freely.
	StyleLiberal TranslationStyle = "liberal"
)

var styleDescriptions = map[TranslationStyle]string{
	StyleFaithful: "Stay faithful to the source meaning while producing natural, fluent prose.",
	StyleLiteral:  "Follow the source sentence structure closely, even at some cost to fluency.",
	StyleLiberal:  "Prioritize fluent, idiomatic prose; rephrasing is acceptable as long as meaning survives.",
}

// GetStyleDescription returns the prompt description for a style,
// defaulting to faithful.
func GetStyleDescription(style TranslationStyle) string {
	if desc, ok := styleDescriptions[style]; ok {
		return desc
	}
	return styleDescriptions[StyleFaithful]
}

// RunState is the lifecycle state of a batch run.
type RunState int32

const (
	// StateRunning means the run is actively working through its queue.
	StateRunning RunState = iota
	// StatePaused means the run is idle but resumable.
	StatePaused
	// StateStopped means the run was cancelled; remaining items are untouched.
	StateStopped
	// StateCompleted means the queue was exhausted.
	StateCompleted
)

// String returns the lowercase state name.
func (s RunState) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateStopped:
		return "stopped"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state admits no further transitions.
func (s RunState) Terminal() bool {
	return s == StateStopped || s == StateCompleted
}

// Progress is emitted to observers before each item begins, and by the
// extraction pipeline as it advances through its phases.
type Progress struct {
	Current int // 1-based position in the queue
	Total   int
	Label   string
}

// BatchReport summarizes a finished run. It is valid once the run has
// reached a terminal state.
type BatchReport struct {
	State     RunState
	Succeeded int
	Failed    int
	Cached    int // items served from the result cache without a provider call
	Skipped   int // items left untouched by a stop request
}

// Total returns the number of items the run started with.
func (r BatchReport) Total() int {
	return r.Succeeded + r.Failed + r.Skipped
}

// ScanReport summarizes one deep scan over a document corpus.
type ScanReport struct {
	Extracted  int // raw candidates returned by the extractor
	New        int // candidates that survived resolution against the glossary
	Inserted   int // terms actually written to the glossary
	FellBack   int // terms whose rendering fell back to the original text
	Failed     int // terms that could not be inserted
	SampleSize int // characters of sample text sent to the extractor
}
