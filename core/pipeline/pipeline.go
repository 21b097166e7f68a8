// Package pipeline sequences the clip stages:
// fetch → extract → normalize → render → persist.
//
// Every stage returns its own typed error (see core/errors.go), so callers
// have exactly one place to collapse failures. Build stops before persisting
// so a caller can drop an abandoned attempt without ever writing a note.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gaurav-prasanna/webclipper/core"
	"github.com/gaurav-prasanna/webclipper/core/validate"
)

// Pipeline runs one clip end to end.
type Pipeline struct {
	fetcher    core.Fetcher
	extractor  core.Extractor
	normalizer core.Normalizer
	renderer   core.Renderer
	store      core.NoteStore
	now        func() time.Time
	log        logrus.FieldLogger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithClock overrides the clock used for the attribution date.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithLogger sets the logger for stage diagnostics.
func WithLogger(log logrus.FieldLogger) Option {
	return func(p *Pipeline) { p.log = log }
}

// New creates a Pipeline from its stages.
func New(
	fetcher core.Fetcher,
	extractor core.Extractor,
	normalizer core.Normalizer,
	renderer core.Renderer,
	store core.NoteStore,
	opts ...Option,
) *Pipeline {
	p := &Pipeline{
		fetcher:    fetcher,
		extractor:  extractor,
		normalizer: normalizer,
		renderer:   renderer,
		store:      store,
		now:        time.Now,
		log:        logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Build fetches the page and turns it into a note without saving it.
func (p *Pipeline) Build(ctx context.Context, req core.ClipRequest) (core.ClipNote, error) {
	log := p.log.WithField("url", req.URL)

	sourceURL, err := validate.ParseURL(req.URL)
	if err != nil {
		return core.ClipNote{}, &core.ValidationError{Field: "url", Message: validate.MsgInvalidURL}
	}

	// 1. Fetch
	result, err := p.fetcher.Fetch(ctx, sourceURL.String())
	if err != nil {
		return core.ClipNote{}, err
	}
	log.WithField("stage", "fetch").WithField("bytes", len(result.HTML)).Debug("page fetched")

	// 2. Extract main content
	article, err := p.extractor.Extract(result.HTML, sourceURL)
	if err != nil {
		return core.ClipNote{}, err
	}
	log.WithField("stage", "extract").WithField("title", article.Title).Debug("article extracted")

	// 3. Normalize to Markdown
	markdown, err := p.normalizer.Normalize(article.ContentHTML)
	if err != nil {
		return core.ClipNote{}, err
	}

	// 4. Attribution
	meta := core.PageMetadata{
		URL:       sourceURL.String(),
		Domain:    sourceURL.Host,
		Title:     article.Title,
		ClippedAt: p.now(),
	}
	body, err := p.renderer.Render(markdown, meta)
	if err != nil {
		return core.ClipNote{}, &core.ConversionError{Err: fmt.Errorf("render: %w", err)}
	}
	log.WithField("stage", "convert").Debug("note body rendered")

	return core.ClipNote{
		Title:         article.Title,
		Body:          string(body),
		DestinationID: req.DestinationID,
		SourceURL:     sourceURL.String(),
	}, nil
}

// Persist hands the note to the store and returns the id it assigned.
func (p *Pipeline) Persist(ctx context.Context, note core.ClipNote) (string, error) {
	id, err := p.store.CreateNote(ctx, note)
	if err != nil {
		return "", &core.PersistError{Err: err}
	}
	p.log.WithFields(logrus.Fields{
		"stage":       "persist",
		"note_id":     id,
		"notebook_id": note.DestinationID,
	}).Info("note saved")
	return id, nil
}

// Run builds and persists a note in one call.
func (p *Pipeline) Run(ctx context.Context, req core.ClipRequest) (string, error) {
	note, err := p.Build(ctx, req)
	if err != nil {
		return "", err
	}
	return p.Persist(ctx, note)
}
