package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// CreateNotebook adds a notebook. Names are unique, ignoring case.
func (s *Store) CreateNotebook(ctx context.Context, name string) (Notebook, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Notebook{}, errors.New("notebook name must not be empty")
	}

	if _, err := s.notebookByName(ctx, name); err == nil {
		return Notebook{}, fmt.Errorf("notebook %q: %w", name, ErrDuplicate)
	} else if !errors.Is(err, ErrNotFound) {
		return Notebook{}, err
	}

	nb := Notebook{ID: uuid.NewString(), Name: name, CreatedAt: s.now().UTC()}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notebooks (id, name, created_at) VALUES (?, ?, ?)`,
		nb.ID, nb.Name, formatTime(nb.CreatedAt),
	)
	if err != nil {
		return Notebook{}, fmt.Errorf("inserting notebook: %w", err)
	}
	return nb, nil
}

// ListNotebooks returns all notebooks sorted by name.
func (s *Store) ListNotebooks(ctx context.Context) ([]Notebook, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, created_at FROM notebooks ORDER BY name COLLATE NOCASE`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Notebook
	for rows.Next() {
		nb, err := scanNotebook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, nb)
	}
	return out, rows.Err()
}

// GetNotebook returns the notebook with the given id.
func (s *Store) GetNotebook(ctx context.Context, id string) (Notebook, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, name, created_at FROM notebooks WHERE id = ?`, id)
	nb, err := scanNotebook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Notebook{}, ErrNotFound
	}
	return nb, err
}

// FindNotebook resolves ref as an id first, then as a name.
func (s *Store) FindNotebook(ctx context.Context, ref string) (Notebook, error) {
	nb, err := s.GetNotebook(ctx, ref)
	if !errors.Is(err, ErrNotFound) {
		return nb, err
	}
	return s.notebookByName(ctx, strings.TrimSpace(ref))
}

func (s *Store) notebookByName(ctx context.Context, name string) (Notebook, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, name, created_at FROM notebooks WHERE name = ? COLLATE NOCASE`, name)
	nb, err := scanNotebook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Notebook{}, ErrNotFound
	}
	return nb, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNotebook(row scanner) (Notebook, error) {
	var nb Notebook
	var createdAt string
	if err := row.Scan(&nb.ID, &nb.Name, &createdAt); err != nil {
		return Notebook{}, err
	}
	t, err := parseTime("created_at", createdAt)
	if err != nil {
		return Notebook{}, err
	}
	nb.CreatedAt = t
	return nb, nil
}
