package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ZaguanLabs/glossai"
	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements all three capabilities using OpenAI's API:
// term extraction (JSON mode), term translation and document translation.
type OpenAIProvider struct {
	client      *openai.Client
	model       string
	temperature float32
}

// OpenAIConfig holds configuration for the OpenAI provider.
type OpenAIConfig struct {
	APIKey      string  // OpenAI API key (uses OPENAI_API_KEY env var if empty)
	Model       string  // Model to use (default: "gpt-4o-mini")
	Temperature float32 // Temperature for generation (default: 0.3)
	BaseURL     string  // Custom base URL (optional)
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.3
	}

	return &OpenAIProvider{
		client:      openai.NewClientWithConfig(config),
		model:       model,
		temperature: temperature,
	}
}

// ExtractTerms asks the model for recurring proper nouns and named
// terminology in the sample, as structured JSON.
func (p *OpenAIProvider) ExtractTerms(ctx context.Context, sample string, maxTerms int) ([]glossai.Candidate, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: buildExtractionPrompt(maxTerms)},
			{Role: openai.ChatMessageRoleUser, Content: sample},
		},
		Temperature: p.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, &glossai.ProviderError{
			Message:   "OpenAI extraction call failed",
			Cause:     err,
			Retryable: isRetryableError(err),
		}
	}

	if len(resp.Choices) == 0 {
		return nil, &glossai.ProviderError{
			Message:   "no response from OpenAI",
			Retryable: true,
		}
	}

	return parseExtractionResponse(resp.Choices[0].Message.Content)
}

// TranslateTerm renders one term into the target language, using the
// context snippet for disambiguation. The model is instructed to return
// the rendering only.
func (p *OpenAIProvider) TranslateTerm(ctx context.Context, req TermRequest) (string, error) {
	user := req.Term
	if req.Context != "" {
		user = fmt.Sprintf("Term: %s\n\nContext where it appears:\n%s", req.Term, req.Context)
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: buildTermPrompt(req)},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: p.temperature,
	})
	if err != nil {
		return "", &glossai.ProviderError{
			Message:   "OpenAI term translation call failed",
			Cause:     err,
			Retryable: isRetryableError(err),
		}
	}

	if len(resp.Choices) == 0 {
		return "", &glossai.ProviderError{
			Message:   "no response from OpenAI",
			Retryable: true,
		}
	}

	return cleanTermRendering(resp.Choices[0].Message.Content), nil
}

// TranslateDocument translates a full document under the glossary
// mapping, which the model must treat as mandatory.
func (p *OpenAIProvider) TranslateDocument(ctx context.Context, req TranslateRequest) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: buildDocumentPrompt(req)},
			{Role: openai.ChatMessageRoleUser, Content: req.Text},
		},
		Temperature: p.temperature,
	})
	if err != nil {
		return "", &glossai.ProviderError{
			Message:   "OpenAI translation call failed",
			Cause:     err,
			Retryable: isRetryableError(err),
		}
	}

	if len(resp.Choices) == 0 {
		return "", &glossai.ProviderError{
			Message:   "no response from OpenAI",
			Retryable: true,
		}
	}

	return resp.Choices[0].Message.Content, nil
}

func buildExtractionPrompt(maxTerms int) string {
	if maxTerms <= 0 {
		maxTerms = 50
	}
	return fmt.Sprintf(`# Role
You are a terminology analyst for long-form fiction translation.

# Task
Identify up to %d recurring proper nouns and named terminology in the provided text: character names, place names, techniques/skills, items/artifacts, and organizations/sects/factions.

# Rules
- Return each term exactly as it appears in the source text.
- Skip common nouns, pronouns and generic descriptions.
- One entry per distinct term; do not repeat a term you already listed.

# Format
Return a valid JSON object:
{ "terms": [ { "original": "...", "category": "person|location|skill|item|organization|other" } ] }
Do NOT wrap in Markdown code blocks.`, maxTerms)
}

func buildTermPrompt(req TermRequest) string {
	targetName := glossai.GetLanguageName(req.TargetLang)
	return fmt.Sprintf(`You are an expert literary translator. Translate the given term into %s.
The term comes from long-form fiction; the surrounding context, when provided, shows how it is used.
Choose a rendering that works when repeated consistently across an entire book.
Return ONLY the translated term: no quotes, no explanation, no punctuation around it.`, targetName)
}

func buildDocumentPrompt(req TranslateRequest) string {
	targetName := glossai.GetLanguageName(req.TargetLang)
	styleDesc := glossai.GetStyleDescription(req.Style)

	contextText := "The text is long-form fiction."
	if req.Context != "" {
		contextText = fmt.Sprintf("The text is from: %s.", req.Context)
	}

	prompt := fmt.Sprintf(`# Role
You are an expert literary translator. You translate long-form fiction into %s with the fluency of a highly educated native speaker.

# Context
%s

# Register
%s

# Task
Translate the provided chapter into idiomatic %s.`, targetName, contextText, styleDesc, targetName)

	mapping := glossai.FormatGlossary(req.Glossary)
	if mapping != "" {
		prompt += fmt.Sprintf(`

# Glossary (MANDATORY)
The following terminology mapping is mandatory. Every occurrence of a source term below MUST be rendered exactly as mapped, with no variation between occurrences:
%s`, mapping)
	}

	prompt += `

# Format
Return ONLY the translated body text. No preamble, no notes, no Markdown fences.`

	return prompt
}

// parseExtractionResponse parses the JSON terms payload. A response
// that cannot be parsed into the expected shape is an error; the
// extraction pipeline treats it as zero candidates.
func parseExtractionResponse(content string) ([]glossai.Candidate, error) {
	var payload struct {
		Terms []struct {
			Original string `json:"original"`
			Category string `json:"category"`
		} `json:"terms"`
	}
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, &glossai.ProviderError{
			Message:   "invalid extraction response format from OpenAI",
			Cause:     err,
			Retryable: false,
		}
	}

	candidates := make([]glossai.Candidate, 0, len(payload.Terms))
	for _, t := range payload.Terms {
		candidates = append(candidates, glossai.Candidate{
			Original: t.Original,
			Category: glossai.ParseCategory(t.Category),
		})
	}
	return candidates, nil
}

// cleanTermRendering strips the wrapping the model sometimes adds around
// a single-term answer.
func cleanTermRendering(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "\"'`")
	// Keep only the first line if the model rambled.
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	return s
}

func isRetryableError(err error) bool {
	// Check for common retryable conditions
	errStr := err.Error()
	retryablePatterns := []string{
		"rate limit",
		"timeout",
		"connection refused",
		"temporary",
		"503",
		"502",
		"429",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(strings.ToLower(errStr), pattern) {
			return true
		}
	}
	return false
}

// Verify OpenAIProvider implements all three capabilities
var (
	_ TermExtractor      = (*OpenAIProvider)(nil)
	_ TermTranslator     = (*OpenAIProvider)(nil)
	_ DocumentTranslator = (*OpenAIProvider)(nil)
)
