// Package core defines the clip pipeline types and interfaces for webclipper.
// Each stage of the pipeline is a small, testable interface; the host
// collaborators (note store, preferences) are interfaces too so the pipeline
// never depends on a concrete UI or database.
package core

import (
	"context"
	"net/url"
	"time"
)

// FetchResult holds the raw HTML and response metadata from a fetch.
type FetchResult struct {
	URL        string
	StatusCode int
	HTML       string
}

// ClipRequest is what the user asked for: a page and where to file it.
// An empty DestinationID means no notebook has been chosen yet.
type ClipRequest struct {
	URL           string
	DestinationID string
}

// Article is the readable part of a page.
type Article struct {
	Title       string
	ContentHTML string
	Byline      string
	SiteName    string
	Excerpt     string
}

// ClipNote is a note ready to be handed to the store. The store assigns its id.
type ClipNote struct {
	Title         string
	Body          string
	DestinationID string
	SourceURL     string
}

// PageMetadata describes the clipped page for renderers.
type PageMetadata struct {
	URL       string    `json:"url"`
	Domain    string    `json:"domain"`
	Title     string    `json:"title"`
	ClippedAt time.Time `json:"clipped_at"`
}

// Fetcher retrieves raw HTML from a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*FetchResult, error)
}

// Extractor pulls the main article out of raw HTML. Relative links in the
// result are resolved against sourceURL.
type Extractor interface {
	Extract(html string, sourceURL *url.URL) (*Article, error)
}

// Normalizer converts an article HTML fragment into Markdown.
type Normalizer interface {
	Normalize(html string) (string, error)
}

// Renderer converts Markdown (and metadata) into a final output format.
type Renderer interface {
	Render(markdown string, meta PageMetadata) ([]byte, error)
	// Extension returns the file extension for this renderer (e.g. ".md", ".pdf").
	Extension() string
}

// NoteStore persists notes and returns the identifier it assigned.
type NoteStore interface {
	CreateNote(ctx context.Context, note ClipNote) (string, error)
}

// Preferences is persistent key/value configuration owned by the host.
type Preferences interface {
	Get(key string) (string, bool)
	Set(key, value string) error
}
