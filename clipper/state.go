// Package clipper implements the clip dialog: a small state machine that
// collects a URL and a destination notebook, runs the clip pipeline and tells
// the host to open the new note.
//
//	Closed → Idle → Submitting → Error | Closed
//
// The dialog and picker widgets, configuration, command bus and pipeline are
// injected through Deps, so the controller can be driven from a terminal UI,
// a CLI flag set or a test without change.
package clipper

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/gaurav-prasanna/webclipper/core"
	"github.com/gaurav-prasanna/webclipper/host/command"
)

// MsgClipFailed is shown for every failure after validation.
const MsgClipFailed = "Couldn't clip this URL."

var (
	// ErrBusy is returned by Confirm while an attempt is running.
	ErrBusy = errors.New("clipper: a clip is already in progress")
	// ErrClosed is returned by Confirm when the dialog is not open.
	ErrClosed = errors.New("clipper: dialog is closed")
	// ErrAbandoned is returned by Confirm when the dialog was cancelled or
	// reopened while the attempt was running. Its result is discarded.
	ErrAbandoned = errors.New("clipper: attempt abandoned")
)

// State is the dialog state.
type State int

const (
	StateClosed State = iota
	StateIdle
	StateSubmitting
	StateError
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Open reports whether the dialog is shown in this state.
func (s State) Open() bool {
	return s != StateClosed
}

// FormState is a snapshot of the dialog form.
type FormState struct {
	State         State
	URL           string
	DestinationID string
	ErrorMessage  string
}

// Dialog is the window chrome around the form.
type Dialog interface {
	Show()
	Dismiss()
	IsShown() bool
}

// URLFocuser is implemented by dialogs that can move input focus to the URL field.
type URLFocuser interface {
	FocusURL()
}

// Picker is the destination notebook selector.
type Picker interface {
	SelectedID() string
	// SetSelectedID changes the selection without firing change callbacks.
	SetSelectedID(id string)
	OnChange(fn func(id string)) command.Disposable
}

// Registry registers command handlers.
type Registry interface {
	Add(name string, handler command.Handler) command.Disposable
}

// Dispatcher sends commands to the host.
type Dispatcher interface {
	Dispatch(name string, payload any) error
}

// Pipeline turns a request into a note and saves it. Build never persists,
// which lets the controller drop abandoned attempts before anything is written.
type Pipeline interface {
	Build(ctx context.Context, req core.ClipRequest) (core.ClipNote, error)
	Persist(ctx context.Context, note core.ClipNote) (string, error)
}

// Deps are the host services the controller needs.
type Deps struct {
	Dialog      Dialog
	Picker      Picker
	Preferences core.Preferences
	Commands    Dispatcher
	Pipeline    Pipeline
	Logger      logrus.FieldLogger
}
