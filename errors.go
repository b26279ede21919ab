package glossai

import "fmt"

// TranslationError is the base error type for translation failures.
type TranslationError struct {
	Message string
	Cause   error
}

func (e *TranslationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *TranslationError) Unwrap() error {
	return e.Cause
}

// ProviderError indicates an AI provider failure (API error, rate limit,
// malformed response, etc.).
type ProviderError struct {
	Message   string
	Cause     error
	Retryable bool // Whether the operation can be retried
}

func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("provider error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("provider error: %s", e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// StoreError indicates a glossary or document store failure.
type StoreError struct {
	Op      string // the store operation that failed, e.g. "insert term"
	Message string
	Cause   error
}

func (e *StoreError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("store error (%s): %s: %v", e.Op, e.Message, e.Cause)
	}
	return fmt.Sprintf("store error (%s): %s", e.Op, e.Message)
}

func (e *StoreError) Unwrap() error {
	return e.Cause
}

// ProcessorError indicates a content normalization failure (parse error, etc.).
type ProcessorError struct {
	Message     string
	Cause       error
	ContentType string // The type of content that failed to process
}

func (e *ProcessorError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("processor error (%s): %s: %v", e.ContentType, e.Message, e.Cause)
	}
	return fmt.Sprintf("processor error (%s): %s", e.ContentType, e.Message)
}

func (e *ProcessorError) Unwrap() error {
	return e.Cause
}

// RunActiveError indicates that a batch run is already live for the
// project; at most one run per project may be active at a time.
type RunActiveError struct {
	ProjectID string
}

func (e *RunActiveError) Error() string {
	return fmt.Sprintf("batch run already active for project %q", e.ProjectID)
}
