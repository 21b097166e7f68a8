package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gaurav-prasanna/webclipper/clipper"
	"github.com/gaurav-prasanna/webclipper/host/command"
)

// Shell is the dialog and picker the controller talks to. It never calls
// into the running program: form changes are parked here and picked up by
// the model through WaitForChange, so controller calls made from inside
// Update cannot deadlock.
type Shell struct {
	mu       sync.Mutex
	shown    bool
	focus    bool
	selected string
	handlers map[uint64]func(string)
	nextID   uint64
	latest   clipper.FormState

	changed chan struct{}
	done    chan struct{}
	once    sync.Once
}

// NewShell creates a hidden Shell.
func NewShell() *Shell {
	return &Shell{
		handlers: make(map[uint64]func(string)),
		changed:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

func (s *Shell) Show() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shown = true
}

func (s *Shell) Dismiss() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shown = false
}

func (s *Shell) IsShown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shown
}

// FocusURL asks the model to focus the URL input on its next update.
func (s *Shell) FocusURL() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.focus = true
}

func (s *Shell) takeFocus() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.focus
	s.focus = false
	return f
}

func (s *Shell) SelectedID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

func (s *Shell) SetSelectedID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = id
}

func (s *Shell) OnChange(fn func(id string)) command.Disposable {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.handlers[id] = fn
	s.mu.Unlock()

	return command.DisposableFunc(func() {
		s.mu.Lock()
		delete(s.handlers, id)
		s.mu.Unlock()
	})
}

// Select is the user moving the notebook cursor.
func (s *Shell) Select(id string) {
	s.mu.Lock()
	s.selected = id
	fns := make([]func(string), 0, len(s.handlers))
	for _, fn := range s.handlers {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(id)
	}
}

// Observe records a form snapshot. Pass it to Controller.Subscribe.
func (s *Shell) Observe(form clipper.FormState) {
	s.mu.Lock()
	s.latest = form
	s.mu.Unlock()

	select {
	case s.changed <- struct{}{}:
	default:
	}
}

// WaitForChange delivers the latest snapshot once something changed.
// Bursts of changes coalesce into one message carrying the newest state.
func (s *Shell) WaitForChange() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-s.changed:
		case <-s.done:
			return nil
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		return formMsg(s.latest)
	}
}

// Close releases a pending WaitForChange.
func (s *Shell) Close() {
	s.once.Do(func() { close(s.done) })
}
