package clipper

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/gaurav-prasanna/webclipper/core"
	"github.com/gaurav-prasanna/webclipper/core/validate"
	"github.com/gaurav-prasanna/webclipper/host/command"
	"github.com/gaurav-prasanna/webclipper/host/config"
)

// Controller drives the clip dialog. All methods are safe for concurrent use;
// host collaborators are always called without the controller lock held.
type Controller struct {
	deps Deps
	log  logrus.FieldLogger

	mu    sync.Mutex
	form  FormState
	gen   uint64
	subs  map[uint64]func(FormState)
	subID uint64
}

// New creates a Controller in the Closed state.
func New(deps Deps) *Controller {
	log := deps.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Controller{
		deps: deps,
		log:  log.WithField("component", "clipper"),
		subs: make(map[uint64]func(FormState)),
	}
}

// Activate registers the clip-page command and the picker subscription.
// Disposing the returned handle removes both.
func (c *Controller) Activate(registry Registry) command.Disposable {
	return command.NewCompositeDisposable(
		registry.Add(command.ClipPage, func(any) error {
			c.HandleClipPage()
			return nil
		}),
		c.deps.Picker.OnChange(c.ChangeDestination),
	)
}

// Subscribe calls fn with a snapshot after every form change.
func (c *Controller) Subscribe(fn func(FormState)) command.Disposable {
	c.mu.Lock()
	c.subID++
	id := c.subID
	c.subs[id] = fn
	c.mu.Unlock()

	return command.DisposableFunc(func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	})
}

// Snapshot returns the current form.
func (c *Controller) Snapshot() FormState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

// HandleClipPage opens the dialog with the remembered destination. It does
// nothing if the dialog is already open.
func (c *Controller) HandleClipPage() {
	shown := c.deps.Dialog.IsShown()

	c.mu.Lock()
	if shown || c.form.State.Open() {
		c.mu.Unlock()
		return
	}
	dest, _ := c.deps.Preferences.Get(config.DefaultDestinationKey)
	c.gen++
	c.form = FormState{State: StateIdle, DestinationID: dest}
	snap := c.form
	c.mu.Unlock()

	c.deps.Picker.SetSelectedID(dest)
	c.deps.Dialog.Show()
	if f, ok := c.deps.Dialog.(URLFocuser); ok {
		f.FocusURL()
	}
	c.publish(snap)
}

// SetURL updates the URL field.
func (c *Controller) SetURL(s string) {
	c.mu.Lock()
	if !c.form.State.Open() {
		c.mu.Unlock()
		return
	}
	c.form.URL = s
	snap := c.form
	c.mu.Unlock()

	c.publish(snap)
}

// ChangeDestination updates the destination and remembers it as the default
// for the next session.
func (c *Controller) ChangeDestination(id string) {
	if err := c.deps.Preferences.Set(config.DefaultDestinationKey, id); err != nil {
		c.log.WithError(err).WithField("notebook_id", id).Warn("could not remember destination")
	}

	c.mu.Lock()
	if !c.form.State.Open() {
		c.mu.Unlock()
		return
	}
	c.form.DestinationID = id
	snap := c.form
	c.mu.Unlock()

	c.publish(snap)
}

// Confirm validates the form and runs one clip attempt. It blocks until the
// attempt settles. Failures are reported through the form state, not the
// return value: a nil error means the dialog reached Closed or Error.
func (c *Controller) Confirm(ctx context.Context) error {
	c.mu.Lock()
	switch c.form.State {
	case StateClosed:
		c.mu.Unlock()
		return ErrClosed
	case StateSubmitting:
		c.mu.Unlock()
		return ErrBusy
	}

	c.form.ErrorMessage = ""
	req := core.ClipRequest{URL: c.form.URL, DestinationID: c.form.DestinationID}
	if err := validate.ClipRequest(req); err != nil {
		c.form.State = StateError
		c.form.ErrorMessage = validationMessage(err)
		snap := c.form
		c.mu.Unlock()

		c.log.WithField("kind", core.Kind(err)).Debug(snap.ErrorMessage)
		c.publish(snap)
		return nil
	}

	c.form.State = StateSubmitting
	gen := c.gen
	snap := c.form
	c.mu.Unlock()
	c.publish(snap)

	log := c.log.WithFields(logrus.Fields{"url": req.URL, "notebook_id": req.DestinationID})

	note, err := c.deps.Pipeline.Build(ctx, req)
	if err != nil {
		return c.fail(gen, log, err)
	}
	if !c.current(gen) {
		log.WithField("stage", "build").Info("clip abandoned, result discarded")
		return ErrAbandoned
	}

	id, err := c.deps.Pipeline.Persist(ctx, note)
	if err != nil {
		return c.fail(gen, log, err)
	}
	return c.succeed(gen, log.WithField("note_id", id), id)
}

// Cancel closes the dialog without validating or clipping. A running attempt
// is abandoned.
func (c *Controller) Cancel() {
	c.mu.Lock()
	if !c.form.State.Open() {
		c.mu.Unlock()
		return
	}
	c.gen++
	c.form = FormState{State: StateClosed}
	snap := c.form
	c.mu.Unlock()

	c.deps.Dialog.Dismiss()
	c.publish(snap)
}

func (c *Controller) current(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen == gen && c.form.State == StateSubmitting
}

func (c *Controller) fail(gen uint64, log logrus.FieldLogger, err error) error {
	log = log.WithError(err).WithField("kind", core.Kind(err))

	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		log.Info("abandoned clip failed, result discarded")
		return ErrAbandoned
	}
	c.form.State = StateError
	c.form.ErrorMessage = MsgClipFailed
	snap := c.form
	c.mu.Unlock()

	log.Warn("clip failed")
	c.publish(snap)
	return nil
}

func (c *Controller) succeed(gen uint64, log logrus.FieldLogger, noteID string) error {
	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		// The note is already in the store; only the hand-off is skipped.
		log.Warn("dialog closed while saving, not opening note")
		return ErrAbandoned
	}
	c.gen++
	c.form = FormState{State: StateClosed}
	snap := c.form
	c.mu.Unlock()

	if err := c.deps.Commands.Dispatch(command.OpenNote, command.OpenNotePayload{NoteID: noteID}); err != nil {
		log.WithError(err).Warn("open-note dispatch failed")
	}
	c.deps.Dialog.Dismiss()
	log.Info("note clipped")
	c.publish(snap)
	return nil
}

func (c *Controller) publish(snap FormState) {
	c.mu.Lock()
	subs := make([]func(FormState), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

func validationMessage(err error) string {
	var ve *core.ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	return MsgClipFailed
}
