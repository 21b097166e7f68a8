// Package cmd: notes commands.
// export renders a stored note through one of the export renderers:
// lookup → render → write.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/webclipper/core"
	"github.com/gaurav-prasanna/webclipper/core/output"
	"github.com/gaurav-prasanna/webclipper/core/render"
	"github.com/gaurav-prasanna/webclipper/core/validate"
)

// Flag variables.
var (
	flagNotesNotebook string
	flagPDF           bool
	flagMarkdown      bool
	flagJSON          bool
	flagChunkSize     int
	flagOutputDir     string
)

var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "Browse and export clipped notes",
}

var notesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes, newest first",
	Args:  cobra.NoArgs,
	RunE:  runNotesList,
}

var notesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a note's Markdown body",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		note, err := s.GetNote(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("note %s: %w", args[0], err)
		}
		fmt.Fprint(cmd.OutOrStdout(), note.Body)
		return nil
	},
}

var notesExportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Export a note as Markdown, JSON or PDF",
	Long: `Export renders a stored note to a file.

Examples:
  webclipper notes export 3f2a9c1d-... --markdown
  webclipper notes export 3f2a9c1d-... --json --output_dir ./out
  webclipper notes export 3f2a9c1d-... --pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runNotesExport,
}

func init() {
	rootCmd.AddCommand(notesCmd)
	notesCmd.AddCommand(notesListCmd, notesShowCmd, notesExportCmd)

	notesListCmd.Flags().StringVar(&flagNotesNotebook, "notebook", "", "Only notes in this notebook (id or name)")

	// Output format flags (mutually exclusive).
	notesExportCmd.Flags().BoolVar(&flagPDF, "pdf", false, "Output PDF")
	notesExportCmd.Flags().BoolVar(&flagMarkdown, "markdown", false, "Output Markdown")
	notesExportCmd.Flags().BoolVar(&flagJSON, "json", false, "Output structured JSON")
	notesExportCmd.Flags().IntVar(&flagChunkSize, "chunk_size", 0, "With --json, also split the text into passages of this many words")
	notesExportCmd.Flags().StringVar(&flagOutputDir, "output_dir", "", "Output directory (default: current directory)")
}

func runNotesList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	var notebookID string
	if flagNotesNotebook != "" {
		nb, err := resolveNotebook(ctx, s, flagNotesNotebook)
		if err != nil {
			return err
		}
		notebookID = nb.ID
	}

	notes, err := s.ListNotes(ctx, notebookID)
	if err != nil {
		return err
	}
	if len(notes) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No notes yet.")
		return nil
	}

	names := map[string]string{}
	nbs, err := s.ListNotebooks(ctx)
	if err != nil {
		return err
	}
	for _, nb := range nbs {
		names[nb.ID] = nb.Name
	}

	rows := make([][]string, len(notes))
	for i, n := range notes {
		rows[i] = []string{n.ID, truncate(n.Title, 48), names[n.NotebookID], validate.Host(n.SourceURL), n.CreatedAt.Local().Format(listTimeLayout)}
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ID", "TITLE", "NOTEBOOK", "SOURCE", "CLIPPED"}, rows))
	return nil
}

func runNotesExport(cmd *cobra.Command, args []string) error {
	if err := validateFlags(); err != nil {
		return err
	}
	renderer, err := selectRenderer()
	if err != nil {
		return err
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	note, err := s.GetNote(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("note %s: %w", args[0], err)
	}

	meta := core.PageMetadata{
		URL:       note.SourceURL,
		Domain:    validate.Host(note.SourceURL),
		Title:     note.Title,
		ClippedAt: note.CreatedAt,
	}
	data, err := renderer.Render(note.Body, meta)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	writer, err := output.New(flagOutputDir)
	if err != nil {
		return fmt.Errorf("initializing output writer: %w", err)
	}
	path, err := writer.WriteNote(note.Title, note.ID, data, renderer.Extension())
	if err != nil {
		return err
	}
	env.log.WithField("note_id", note.ID).WithField("path", path).Debug("note exported")
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Written: %s\n", path)
	return nil
}

// validateFlags checks that exactly one output format is chosen.
func validateFlags() error {
	formatCount := 0
	for _, set := range []bool{flagPDF, flagMarkdown, flagJSON} {
		if set {
			formatCount++
		}
	}
	if formatCount == 0 {
		return fmt.Errorf("exactly one output format is required: --pdf, --markdown, or --json")
	}
	if formatCount > 1 {
		return fmt.Errorf("only one output format allowed per run (got %d)", formatCount)
	}
	if flagChunkSize < 0 {
		return fmt.Errorf("--chunk_size must not be negative")
	}
	if flagChunkSize > 0 && !flagJSON {
		return fmt.Errorf("--chunk_size is only valid with --json")
	}
	return nil
}

// selectRenderer creates the appropriate Renderer based on flags.
func selectRenderer() (core.Renderer, error) {
	switch {
	case flagMarkdown:
		return render.NewMarkdownRenderer(), nil
	case flagJSON:
		if flagChunkSize > 0 {
			return render.NewJSONRenderer(render.WithChunks(flagChunkSize)), nil
		}
		return render.NewJSONRenderer(), nil
	case flagPDF:
		return render.NewPDFRenderer(), nil
	default:
		return nil, fmt.Errorf("no output format selected")
	}
}
