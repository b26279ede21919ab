package processor

import (
	"errors"
	"strings"
	"testing"

	"github.com/ZaguanLabs/glossai"
)

func TestHTMLNormalizer_Basic(t *testing.T) {
	p := NewHTMLNormalizer()

	html := `<div><h1>Chapter 1</h1><p>The wind rose over the peaks.</p></div>`
	text, err := p.Normalize(html)

	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	if !strings.Contains(text, "Chapter 1") {
		t.Errorf("Expected heading text, got %q", text)
	}
	if !strings.Contains(text, "The wind rose over the peaks.") {
		t.Errorf("Expected paragraph text, got %q", text)
	}
	if strings.Contains(text, "<") {
		t.Errorf("Markup should be stripped, got %q", text)
	}
}

func TestHTMLNormalizer_SkippedTags(t *testing.T) {
	p := NewHTMLNormalizer()

	html := `<div>
		<p>Keep this line</p>
		<script>doNotKeep();</script>
		<style>.class { color: red; }</style>
		<nav>Prev | Next</nav>
		<footer>Copyright</footer>
	</div>`

	text, err := p.Normalize(html)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	if !strings.Contains(text, "Keep this line") {
		t.Errorf("Expected paragraph text, got %q", text)
	}
	for _, dropped := range []string{"doNotKeep", "color: red", "Prev | Next", "Copyright"} {
		if strings.Contains(text, dropped) {
			t.Errorf("Expected %q to be dropped, got %q", dropped, text)
		}
	}
}

func TestHTMLNormalizer_ParagraphBreaks(t *testing.T) {
	p := NewHTMLNormalizer()

	html := `<p>First paragraph.</p><p>Second paragraph.</p>`
	text, err := p.Normalize(html)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	want := "First paragraph.\n\nSecond paragraph."
	if text != want {
		t.Errorf("Expected %q, got %q", want, text)
	}
}

func TestHTMLNormalizer_CustomSkippedTags(t *testing.T) {
	p := NewHTMLNormalizerWithSkippedTags([]string{"blockquote"})

	html := `<p>Story text</p><blockquote>Author note</blockquote>`
	text, err := p.Normalize(html)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	if !strings.Contains(text, "Story text") {
		t.Errorf("Expected body text, got %q", text)
	}
	if strings.Contains(text, "Author note") {
		t.Errorf("Expected blockquote to be dropped, got %q", text)
	}
}

func TestHTMLNormalizer_InlineText(t *testing.T) {
	p := NewHTMLNormalizer()

	html := `<p>He drew the <b>Azure</b> sword.</p>`
	text, err := p.Normalize(html)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	if !strings.Contains(text, "Azure") {
		t.Errorf("Inline markup text should survive, got %q", text)
	}
	if strings.Contains(text, "<b>") {
		t.Errorf("Markup should be stripped, got %q", text)
	}
}

func TestHTMLNormalizer_EmptyInput(t *testing.T) {
	p := NewHTMLNormalizer()

	text, err := p.Normalize("")
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if text != "" {
		t.Errorf("Expected empty output, got %q", text)
	}
}

func TestHTMLNormalizer_ContentType(t *testing.T) {
	p := NewHTMLNormalizer()
	if p.ContentType() != "html" {
		t.Errorf("Expected content type 'html', got %q", p.ContentType())
	}
}

func TestProcessorError_Type(t *testing.T) {
	err := &glossai.ProcessorError{Message: "bad input", ContentType: "html"}

	var pe *glossai.ProcessorError
	if !errors.As(err, &pe) {
		t.Fatal("errors.As should match ProcessorError")
	}
	if pe.ContentType != "html" {
		t.Errorf("Expected content type 'html', got %q", pe.ContentType)
	}
}
