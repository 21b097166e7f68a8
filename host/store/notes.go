package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/gaurav-prasanna/webclipper/core"
)

const noteColumns = `id, notebook_id, title, body, source_url, created_at, updated_at`

// CreateNote saves a clipped note into its destination notebook and returns
// the new note id. It fails with ErrNotFound if the notebook does not exist.
func (s *Store) CreateNote(ctx context.Context, note core.ClipNote) (string, error) {
	if _, err := s.GetNotebook(ctx, note.DestinationID); err != nil {
		return "", fmt.Errorf("notebook %q: %w", note.DestinationID, err)
	}

	id := uuid.NewString()
	now := formatTime(s.now())
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notes (`+noteColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, note.DestinationID, note.Title, note.Body, note.SourceURL, now, now,
	)
	if err != nil {
		return "", fmt.Errorf("inserting note: %w", err)
	}
	return id, nil
}

// GetNote returns the note with the given id.
func (s *Store) GetNote(ctx context.Context, id string) (Note, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+noteColumns+` FROM notes WHERE id = ?`, id)
	n, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Note{}, ErrNotFound
	}
	return n, err
}

// ListNotes returns notes newest first. An empty notebookID lists every notebook.
func (s *Store) ListNotes(ctx context.Context, notebookID string) ([]Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes`
	var args []any
	if notebookID != "" {
		query += ` WHERE notebook_id = ?`
		args = append(args, notebookID)
	}
	query += ` ORDER BY created_at DESC, rowid DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func scanNote(row scanner) (Note, error) {
	var n Note
	var createdAt, updatedAt string
	if err := row.Scan(&n.ID, &n.NotebookID, &n.Title, &n.Body, &n.SourceURL, &createdAt, &updatedAt); err != nil {
		return Note{}, err
	}
	var err error
	if n.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return Note{}, err
	}
	if n.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return Note{}, err
	}
	return n, nil
}
