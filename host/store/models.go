package store

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a notebook name is already taken.
var ErrDuplicate = errors.New("already exists")

// Notebook is a destination collection for clipped notes.
type Notebook struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Note is a stored note.
type Note struct {
	ID         string
	NotebookID string
	Title      string
	Body       string
	SourceURL  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
