// Package render provides output renderers for clipped notes.
// This file implements the note renderer, which produces the final note body
// (an attribution block followed by the article Markdown), and the Markdown
// export passthrough.
package render

import (
	"fmt"
	"strings"

	"github.com/gaurav-prasanna/webclipper/core"
)

// dateLayout matches a short US locale date, e.g. 10/16/2026.
const dateLayout = "1/2/2006"

// NoteRenderer prepends the source/date attribution and the title heading.
type NoteRenderer struct{}

// NewNoteRenderer creates a NoteRenderer.
func NewNoteRenderer() *NoteRenderer {
	return &NoteRenderer{}
}

// Render returns the note body. Nothing mutates the body after this stage.
func (r *NoteRenderer) Render(markdown string, meta core.PageMetadata) ([]byte, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Clipped from [%s](%s) on %s\n\n", meta.Domain, meta.URL, meta.ClippedAt.Format(dateLayout))
	b.WriteString("----\n\n")
	fmt.Fprintf(&b, "# %s\n\n", meta.Title)
	b.WriteString(markdown)
	b.WriteString("\n")
	return []byte(b.String()), nil
}

// Extension returns the file extension for Markdown output.
func (r *NoteRenderer) Extension() string {
	return ".md"
}

// MarkdownRenderer writes a stored note body as-is for export; the body
// already carries its attribution block.
type MarkdownRenderer struct{}

// NewMarkdownRenderer creates a MarkdownRenderer.
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{}
}

// Render returns the Markdown as bytes (passthrough).
func (r *MarkdownRenderer) Render(markdown string, meta core.PageMetadata) ([]byte, error) {
	return []byte(markdown), nil
}

// Extension returns the file extension for Markdown output.
func (r *MarkdownRenderer) Extension() string {
	return ".md"
}
