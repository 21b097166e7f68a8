// Package normalize implements the Normalizer interface.
// It turns an extracted article fragment into the Markdown stored in a
// note. Order matters:
//  1. Sanitize the fragment (scripts, event handlers, javascript: URLs)
//  2. Add a line break after every paragraph so converted paragraphs stay apart
//  3. Convert to Markdown
//  4. Escape "$" so note renderers do not start math mode
package normalize

import (
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/microcosm-cc/bluemonday"

	"github.com/gaurav-prasanna/webclipper/core"
)

var paragraphEnd = regexp.MustCompile(`(?i)</p\s*>`)

// MarkdownNormalizer converts HTML to Markdown using html-to-markdown.
// Safe for concurrent use.
type MarkdownNormalizer struct {
	policy *bluemonday.Policy
}

// New creates a MarkdownNormalizer with a user-generated-content policy.
func New() *MarkdownNormalizer {
	policy := bluemonday.UGCPolicy()
	policy.AllowDataURIImages()
	return &MarkdownNormalizer{policy: policy}
}

// Normalize converts an article HTML fragment into note Markdown.
func (n *MarkdownNormalizer) Normalize(html string) (string, error) {
	sanitized := n.policy.Sanitize(html)
	spaced := SpaceParagraphs(sanitized)

	markdown, err := htmltomarkdown.ConvertString(spaced)
	if err != nil {
		return "", &core.ConversionError{Err: err}
	}
	return EscapeDollars(markdown), nil
}

// SpaceParagraphs inserts <br> after each closing </p>.
func SpaceParagraphs(html string) string {
	return paragraphEnd.ReplaceAllString(html, "$0<br>")
}

// EscapeDollars escapes every literal "$". It is not idempotent: it must run
// once per conversion.
func EscapeDollars(markdown string) string {
	return strings.ReplaceAll(markdown, "$", `\$`)
}
