package processor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/ZaguanLabs/glossai"
)

// skippedTags contains HTML tags whose content is never chapter prose.
var skippedTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"head":     true,
	"nav":      true,
	"footer":   true,
	"aside":    true,
}

// blockTags contains tags that imply a paragraph break around their text.
var blockTags = map[string]bool{
	"p":          true,
	"div":        true,
	"br":         true,
	"h1":         true,
	"h2":         true,
	"h3":         true,
	"h4":         true,
	"li":         true,
	"blockquote": true,
	"section":    true,
	"article":    true,
}

// HTMLNormalizer extracts chapter prose from scraped HTML pages,
// dropping markup, scripts and navigation chrome.
type HTMLNormalizer struct {
	skipped map[string]bool
}

// NewHTMLNormalizer creates an HTML normalizer with the default skip set.
func NewHTMLNormalizer() *HTMLNormalizer {
	return &HTMLNormalizer{skipped: skippedTags}
}

// NewHTMLNormalizerWithSkippedTags creates an HTML normalizer that drops
// the content of the given tags.
func NewHTMLNormalizerWithSkippedTags(tags []string) *HTMLNormalizer {
	skipped := make(map[string]bool)
	for _, tag := range tags {
		skipped[strings.ToLower(tag)] = true
	}
	return &HTMLNormalizer{skipped: skipped}
}

// Normalize returns the plain-text body of an HTML page, with paragraph
// structure preserved as blank lines.
func (p *HTMLNormalizer) Normalize(content string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return "", &glossai.ProcessorError{
			Message:     "failed to parse HTML",
			Cause:       err,
			ContentType: "html",
		}
	}

	var b strings.Builder

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			tag := strings.ToLower(n.Data)
			if p.skipped[tag] {
				return
			}
			if blockTags[tag] {
				b.WriteString("\n\n")
			}
		}

		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
					b.WriteByte(' ')
				}
				b.WriteString(text)
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	for _, root := range doc.Nodes {
		walk(root)
	}

	return collapseBlankLines(strings.TrimSpace(b.String())), nil
}

// ContentType returns "html".
func (p *HTMLNormalizer) ContentType() string {
	return "html"
}

// Verify HTMLNormalizer implements Normalizer
var _ Normalizer = (*HTMLNormalizer)(nil)
