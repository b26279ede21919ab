package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ZaguanLabs/glossai"
	"github.com/go-resty/resty/v2"
)

// OllamaProvider implements the capabilities against a local Ollama
// server. Document and term translation use plain generation; term
// extraction uses Ollama's JSON format mode.
type OllamaProvider struct {
	baseURL string
	model   string
	http    *resty.Client
}

// OllamaConfig holds configuration for the Ollama provider.
type OllamaConfig struct {
	BaseURL string        // Server URL (default: "http://localhost:11434")
	Model   string        // Model to use (default: "qwen2.5:14b")
	Timeout time.Duration // Per-request timeout (default: 120s)
}

// NewOllamaProvider creates a new Ollama provider.
func NewOllamaProvider(cfg OllamaConfig) *OllamaProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	model := cfg.Model
	if model == "" {
		model = "qwen2.5:14b"
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 120 * time.Second
	}

	return &OllamaProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		http:    resty.New().SetTimeout(timeout).SetHeader("User-Agent", glossai.UserAgent()),
	}
}

type ollamaGenerateRequest struct {
	Model  string `json:"model"`
	System string `json:"system,omitempty"`
	Prompt string `json:"prompt"`
	Format string `json:"format,omitempty"`
	Stream bool   `json:"stream"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

// ExtractTerms implements TermExtractor via format=json generation.
func (p *OllamaProvider) ExtractTerms(ctx context.Context, sample string, maxTerms int) ([]glossai.Candidate, error) {
	out, err := p.generate(ctx, ollamaGenerateRequest{
		Model:  p.model,
		System: buildExtractionPrompt(maxTerms),
		Prompt: sample,
		Format: "json",
		Stream: false,
	})
	if err != nil {
		return nil, err
	}
	return parseExtractionResponse(out)
}

// TranslateTerm implements TermTranslator.
func (p *OllamaProvider) TranslateTerm(ctx context.Context, req TermRequest) (string, error) {
	user := req.Term
	if req.Context != "" {
		user = fmt.Sprintf("Term: %s\n\nContext where it appears:\n%s", req.Term, req.Context)
	}

	out, err := p.generate(ctx, ollamaGenerateRequest{
		Model:  p.model,
		System: buildTermPrompt(req),
		Prompt: user,
		Stream: false,
	})
	if err != nil {
		return "", err
	}
	return cleanTermRendering(out), nil
}

// TranslateDocument implements DocumentTranslator.
func (p *OllamaProvider) TranslateDocument(ctx context.Context, req TranslateRequest) (string, error) {
	return p.generate(ctx, ollamaGenerateRequest{
		Model:  p.model,
		System: buildDocumentPrompt(req),
		Prompt: req.Text,
		Stream: false,
	})
}

func (p *OllamaProvider) generate(ctx context.Context, body ollamaGenerateRequest) (string, error) {
	var out ollamaGenerateResponse

	resp, err := p.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&out).
		Post(p.baseURL + "/api/generate")
	if err != nil {
		return "", &glossai.ProviderError{
			Message:   "ollama request failed",
			Cause:     err,
			Retryable: true,
		}
	}
	if resp.IsError() {
		return "", &glossai.ProviderError{
			Message:   fmt.Sprintf("ollama returned %s", resp.Status()),
			Retryable: resp.StatusCode() >= 500,
		}
	}
	if out.Error != "" {
		return "", &glossai.ProviderError{
			Message:   "ollama error: " + out.Error,
			Retryable: false,
		}
	}
	if out.Response == "" {
		// Some proxies return a bare string body without the wrapper.
		var s string
		if err := json.Unmarshal(resp.Body(), &s); err == nil && s != "" {
			return s, nil
		}
		return "", &glossai.ProviderError{
			Message:   "empty response from ollama",
			Retryable: true,
		}
	}

	return out.Response, nil
}

// Verify OllamaProvider implements all three capabilities
var (
	_ TermExtractor      = (*OllamaProvider)(nil)
	_ TermTranslator     = (*OllamaProvider)(nil)
	_ DocumentTranslator = (*OllamaProvider)(nil)
)
