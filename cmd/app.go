package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/gaurav-prasanna/webclipper/core/extract"
	"github.com/gaurav-prasanna/webclipper/core/fetch"
	"github.com/gaurav-prasanna/webclipper/core/normalize"
	"github.com/gaurav-prasanna/webclipper/core/pipeline"
	"github.com/gaurav-prasanna/webclipper/core/render"
	"github.com/gaurav-prasanna/webclipper/host/store"
)

func openStore() (*store.Store, error) {
	s, err := store.Open(env.cfg.Storage.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}
	return s, nil
}

// newPipeline wires the clip stages from config.
func newPipeline(s *store.Store) *pipeline.Pipeline {
	fetcher := fetch.New(
		fetch.WithTimeout(env.cfg.Fetch.Timeout),
		fetch.WithMaxBytes(int64(env.cfg.Fetch.MaxBytes)),
	)
	return pipeline.New(
		fetcher,
		extract.New(),
		normalize.New(),
		render.NewNoteRenderer(),
		s,
		pipeline.WithLogger(env.log),
	)
}

// resolveNotebook accepts a notebook id or name.
func resolveNotebook(ctx context.Context, s *store.Store, ref string) (store.Notebook, error) {
	nb, err := s.FindNotebook(ctx, ref)
	if errors.Is(err, store.ErrNotFound) {
		return store.Notebook{}, fmt.Errorf("no notebook named or with id %q (see `webclipper notebooks list`)", ref)
	}
	return nb, err
}
