// Package output handles file naming and writing for note exports.
// Filenames are derived from the note title plus a short id suffix so two
// notes with the same title never overwrite each other
// (e.g. "Example" with id 3f2a... → example-3f2a9c1d.md).
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

const maxSlugLen = 60

// Writer writes rendered output to disk.
type Writer struct {
	OutputDir string
}

// New creates a Writer targeting the given output directory.
// If outputDir is empty, it defaults to the current working directory.
func New(outputDir string) (*Writer, error) {
	if outputDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		outputDir = wd
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	return &Writer{OutputDir: outputDir}, nil
}

// WriteNote writes an exported note and returns the file path.
func (w *Writer) WriteNote(title, id string, data []byte, ext string) (string, error) {
	path := filepath.Join(w.OutputDir, Filename(title, id)+ext)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing file %s: %w", path, err)
	}
	return path, nil
}

// Filename builds a filesystem-safe base name from a note title and id.
func Filename(title, id string) string {
	slug := slugify(title)
	if len(slug) > maxSlugLen {
		slug = strings.TrimRight(slug[:maxSlugLen], "-")
	}
	short := sanitize(id)
	if len(short) > 8 {
		short = short[:8]
	}
	switch {
	case slug == "" && short == "":
		return "note"
	case slug == "":
		return short
	case short == "":
		return slug
	}
	return slug + "-" + short
}

// slugify lowercases letters and digits and joins runs of anything else with "-".
func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, ch := range strings.ToLower(s) {
		if unicode.IsLetter(ch) || unicode.IsDigit(ch) {
			b.WriteRune(ch)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteRune('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// sanitize drops everything but ASCII letters and digits.
func sanitize(s string) string {
	var b strings.Builder
	for _, ch := range s {
		if (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') {
			b.WriteRune(ch)
		}
	}
	return b.String()
}
