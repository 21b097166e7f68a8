// Package cmd: clip command.
// Without --url it opens the interactive dialog; with --url the same
// controller runs against a headless dialog so scripts get identical
// validation and error messages.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/webclipper/clipper"
	"github.com/gaurav-prasanna/webclipper/host/command"
	"github.com/gaurav-prasanna/webclipper/host/config"
	"github.com/gaurav-prasanna/webclipper/host/headless"
	"github.com/gaurav-prasanna/webclipper/host/store"
	"github.com/gaurav-prasanna/webclipper/host/tui"
)

var (
	flagClipURL      string
	flagClipNotebook string
	flagClipPrint    bool
)

var clipCmd = &cobra.Command{
	Use:   "clip",
	Short: "Clip a web page into a notebook",
	Long: `Clip fetches a page, extracts the main article and saves it as a Markdown note.

Examples:
  webclipper clip
  webclipper clip --url https://example.com/a --notebook Reading
  webclipper clip --url https://example.com/a --print`,
	Args: cobra.NoArgs,
	RunE: runClip,
}

func init() {
	rootCmd.AddCommand(clipCmd)

	clipCmd.Flags().StringVar(&flagClipURL, "url", "", "URL to clip (skips the interactive dialog)")
	clipCmd.Flags().StringVar(&flagClipNotebook, "notebook", "", "Destination notebook id or name (default: last used)")
	clipCmd.Flags().BoolVar(&flagClipPrint, "print", false, "Print the saved note body to stdout")
}

func runClip(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	registry := command.NewRegistry()
	var openedID string
	registry.Add(command.OpenNote, func(payload any) error {
		p, ok := payload.(command.OpenNotePayload)
		if !ok {
			return fmt.Errorf("unexpected payload %T", payload)
		}
		openedID = p.NoteID
		return nil
	})

	if flagClipURL != "" {
		err = clipHeadless(ctx, s, registry)
	} else {
		err = clipInteractive(ctx, s, registry)
	}
	if err != nil {
		return err
	}
	if openedID == "" {
		return nil
	}
	return reportClip(ctx, cmd, s, openedID)
}

func clipHeadless(ctx context.Context, s *store.Store, registry *command.Registry) error {
	dialog := &headless.Dialog{}
	picker := headless.NewPicker(tui.Placeholder)
	ctrl := clipper.New(clipper.Deps{
		Dialog:      dialog,
		Picker:      picker,
		Preferences: config.NewPreferences(env.backend),
		Commands:    registry,
		Pipeline:    newPipeline(s),
		Logger:      env.log,
	})
	defer ctrl.Activate(registry).Dispose()

	if err := registry.Dispatch(command.ClipPage, nil); err != nil {
		return err
	}
	if flagClipNotebook != "" {
		nb, err := resolveNotebook(ctx, s, flagClipNotebook)
		if err != nil {
			ctrl.Cancel()
			return err
		}
		picker.Select(nb.ID)
	}
	ctrl.SetURL(flagClipURL)

	if err := ctrl.Confirm(ctx); err != nil {
		return err
	}
	if form := ctrl.Snapshot(); form.State == clipper.StateError {
		return errors.New(form.ErrorMessage)
	}
	return nil
}

func clipInteractive(ctx context.Context, s *store.Store, registry *command.Registry) error {
	notebooks, err := s.ListNotebooks(ctx)
	if err != nil {
		return err
	}
	options := make([]tui.Option, len(notebooks))
	for i, nb := range notebooks {
		options[i] = tui.Option{ID: nb.ID, Name: nb.Name}
	}

	// The dialog owns the terminal; logs go to a file next to the database.
	logFile, err := openLogFile()
	if err != nil {
		return err
	}
	defer logFile.Close()
	env.log.SetOutput(logFile)
	defer env.log.SetOutput(os.Stderr)

	shell := tui.NewShell()
	ctrl := clipper.New(clipper.Deps{
		Dialog:      shell,
		Picker:      shell,
		Preferences: config.NewPreferences(env.backend),
		Commands:    registry,
		Pipeline:    newPipeline(s),
		Logger:      env.log,
	})
	defer ctrl.Subscribe(shell.Observe).Dispose()
	defer ctrl.Activate(registry).Dispose()

	model := tui.New(ctrl, shell, options, func() error {
		return registry.Dispatch(command.ClipPage, nil)
	})
	final, err := tea.NewProgram(model).Run()
	if err != nil {
		return fmt.Errorf("running dialog: %w", err)
	}
	if m, ok := final.(tui.Model); ok && m.Err() != nil {
		return m.Err()
	}
	return nil
}

func openLogFile() (*os.File, error) {
	if err := os.MkdirAll(env.cfg.Storage.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	path := filepath.Join(env.cfg.Storage.DataDir, "webclipper.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	return f, nil
}

func reportClip(ctx context.Context, cmd *cobra.Command, s *store.Store, noteID string) error {
	note, err := s.GetNote(ctx, noteID)
	if err != nil {
		return fmt.Errorf("reading saved note: %w", err)
	}
	nb, err := s.GetNotebook(ctx, note.NotebookID)
	if err != nil {
		return fmt.Errorf("reading notebook: %w", err)
	}

	env.log.WithFields(logrus.Fields{"note_id": note.ID, "notebook_id": nb.ID}).Debug("clip complete")
	if flagClipPrint {
		fmt.Fprint(cmd.OutOrStdout(), note.Body)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Clipped %q into %s (note %s)\n", note.Title, nb.Name, note.ID)
	return nil
}
