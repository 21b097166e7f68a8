// Package render: JSON export renderer.
// Wraps a stored note body with its page metadata and the outline parsed
// from the Markdown (headings and links), for tools that index clipped notes.
package render

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/gaurav-prasanna/webclipper/core"
	"github.com/gaurav-prasanna/webclipper/core/chunk"
)

// Heading is a single heading found in the note.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// Link is a hyperlink found in the note.
type Link struct {
	Text string `json:"text"`
	Href string `json:"href"`
}

// NoteJSON is the complete JSON export of a note.
type NoteJSON struct {
	Metadata  core.PageMetadata `json:"metadata"`
	Markdown  string            `json:"markdown"`
	Text      string            `json:"text"`
	WordCount int               `json:"word_count"`
	Headings  []Heading         `json:"headings"`
	Links     []Link            `json:"links"`
	Chunks    []string          `json:"chunks,omitempty"`
}

// JSONRenderer produces structured JSON output from a note body.
type JSONRenderer struct {
	chunker *chunk.Chunker
}

// JSONOption configures a JSONRenderer.
type JSONOption func(*JSONRenderer)

// WithChunks adds the note text split into passages of at most size words.
func WithChunks(size int) JSONOption {
	return func(r *JSONRenderer) { r.chunker = chunk.New(size) }
}

// NewJSONRenderer creates a JSONRenderer.
func NewJSONRenderer(opts ...JSONOption) *JSONRenderer {
	r := &JSONRenderer{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render converts Markdown and metadata into NoteJSON.
func (r *JSONRenderer) Render(markdown string, meta core.PageMetadata) ([]byte, error) {
	text := stripMarkdown(markdown)
	note := NoteJSON{
		Metadata:  meta,
		Markdown:  markdown,
		Text:      text,
		WordCount: len(strings.Fields(text)),
		Headings:  extractHeadings(markdown),
		Links:     extractLinks(markdown),
	}
	if r.chunker != nil {
		note.Chunks = r.chunker.Chunk(text)
	}

	data, err := json.MarshalIndent(note, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling JSON: %w", err)
	}
	return data, nil
}

// Extension returns the file extension for JSON output.
func (r *JSONRenderer) Extension() string {
	return ".json"
}

var (
	headingRegex = regexp.MustCompile(`(?m)^(#{1,6})\s+(.+)$`)
	// linkRegex matches Markdown links [text](url).
	linkRegex       = regexp.MustCompile(`\[([^\]]*)\]\(([^)]+)\)`)
	emphasisRegex   = regexp.MustCompile(`\*{1,3}([^*]+)\*{1,3}`)
	inlineCodeRegex = regexp.MustCompile("`([^`]+)`")
	blankRunRegex   = regexp.MustCompile(`\n{3,}`)
)

func extractHeadings(md string) []Heading {
	matches := headingRegex.FindAllStringSubmatch(md, -1)
	headings := make([]Heading, 0, len(matches))
	for _, m := range matches {
		headings = append(headings, Heading{Level: len(m[1]), Text: strings.TrimSpace(m[2])})
	}
	return headings
}

func extractLinks(md string) []Link {
	matches := linkRegex.FindAllStringSubmatch(md, -1)
	links := make([]Link, 0, len(matches))
	for _, m := range matches {
		links = append(links, Link{Text: m[1], Href: m[2]})
	}
	return links
}

// stripMarkdown removes common Markdown formatting to produce plain text.
// Escaped dollars are turned back into plain "$".
func stripMarkdown(md string) string {
	text := headingRegex.ReplaceAllString(md, "$2")
	text = emphasisRegex.ReplaceAllString(text, "$1")
	text = linkRegex.ReplaceAllString(text, "$1")
	text = strings.ReplaceAll(text, "```", "")
	text = inlineCodeRegex.ReplaceAllString(text, "$1")
	text = strings.ReplaceAll(text, `\$`, "$")
	text = blankRunRegex.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
