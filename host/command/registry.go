// Package command is an in-process command bus. Handlers are registered by
// name and every registration returns a Disposable that removes it again.
package command

import (
	"errors"
	"fmt"
	"sync"
)

// Command names used by the clipper.
const (
	ClipPage = "web-clipper:clip-page"
	OpenNote = "core:open-note"
)

// OpenNotePayload is dispatched with OpenNote after a note is saved.
type OpenNotePayload struct {
	NoteID string
}

// ErrUnknownCommand is returned by Dispatch when no handler is registered.
var ErrUnknownCommand = errors.New("unknown command")

// Handler runs a command. payload is nil for parameterless commands.
type Handler func(payload any) error

type entry struct {
	id      uint64
	handler Handler
}

// Registry maps command names to handlers. Several handlers may share a name;
// Dispatch runs them in registration order.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string][]entry
	nextID   uint64
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string][]entry)}
}

// Add registers handler under name.
func (r *Registry) Add(name string, handler Handler) Disposable {
	r.mu.Lock()
	r.nextID++
	id := r.nextID
	r.handlers[name] = append(r.handlers[name], entry{id: id, handler: handler})
	r.mu.Unlock()

	return DisposableFunc(func() { r.remove(name, id) })
}

func (r *Registry) remove(name string, id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.handlers[name]
	for i, e := range entries {
		if e.id == id {
			r.handlers[name] = append(entries[:i:i], entries[i+1:]...)
			break
		}
	}
	if len(r.handlers[name]) == 0 {
		delete(r.handlers, name)
	}
}

// Has reports whether at least one handler is registered for name.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers[name]) > 0
}

// Dispatch runs every handler registered for name. Handlers run outside the
// registry lock, so they may add or dispose registrations themselves.
func (r *Registry) Dispatch(name string, payload any) error {
	r.mu.RLock()
	entries := append([]entry(nil), r.handlers[name]...)
	r.mu.RUnlock()

	if len(entries) == 0 {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}

	var errs []error
	for _, e := range entries {
		if err := e.handler(payload); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}
