package clipper

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/webclipper/core"
	"github.com/gaurav-prasanna/webclipper/core/extract"
	"github.com/gaurav-prasanna/webclipper/core/normalize"
	"github.com/gaurav-prasanna/webclipper/core/pipeline"
	"github.com/gaurav-prasanna/webclipper/core/render"
	"github.com/gaurav-prasanna/webclipper/host/command"
	"github.com/gaurav-prasanna/webclipper/host/config"
)

// --- fakes ---

type fakeDialog struct {
	mu        sync.Mutex
	shown     bool
	shows     int
	dismisses int
	focused   int
}

func (d *fakeDialog) Show()    { d.mu.Lock(); d.shown = true; d.shows++; d.mu.Unlock() }
func (d *fakeDialog) Dismiss() { d.mu.Lock(); d.shown = false; d.dismisses++; d.mu.Unlock() }
func (d *fakeDialog) FocusURL() {
	d.mu.Lock()
	d.focused++
	d.mu.Unlock()
}
func (d *fakeDialog) IsShown() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.shown
}

type fakePicker struct {
	selected string
	handlers map[int]func(string)
	next     int
}

func newFakePicker() *fakePicker { return &fakePicker{handlers: map[int]func(string){}} }

func (p *fakePicker) SelectedID() string      { return p.selected }
func (p *fakePicker) SetSelectedID(id string) { p.selected = id }
func (p *fakePicker) OnChange(fn func(string)) command.Disposable {
	p.next++
	id := p.next
	p.handlers[id] = fn
	return command.DisposableFunc(func() { delete(p.handlers, id) })
}

// choose simulates the user picking a notebook.
func (p *fakePicker) choose(id string) {
	p.selected = id
	for _, fn := range p.handlers {
		fn(id)
	}
}

type memPrefs struct {
	values map[string]string
	sets   int
}

func newMemPrefs() *memPrefs { return &memPrefs{values: map[string]string{}} }

func (p *memPrefs) Get(key string) (string, bool) {
	v, ok := p.values[key]
	return v, ok
}

func (p *memPrefs) Set(key, value string) error {
	p.sets++
	p.values[key] = value
	return nil
}

// fakePipeline records calls; each stage is a swappable function.
type fakePipeline struct {
	mu        sync.Mutex
	builds    int
	persisted []core.ClipNote

	buildFn   func(ctx context.Context, req core.ClipRequest) (core.ClipNote, error)
	persistFn func(ctx context.Context, note core.ClipNote) (string, error)
}

func (p *fakePipeline) Build(ctx context.Context, req core.ClipRequest) (core.ClipNote, error) {
	p.mu.Lock()
	p.builds++
	p.mu.Unlock()
	if p.buildFn != nil {
		return p.buildFn(ctx, req)
	}
	return core.ClipNote{Title: "Example", Body: "body", DestinationID: req.DestinationID, SourceURL: req.URL}, nil
}

func (p *fakePipeline) Persist(ctx context.Context, note core.ClipNote) (string, error) {
	if p.persistFn != nil {
		return p.persistFn(ctx, note)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.persisted = append(p.persisted, note)
	return "note-42", nil
}

func (p *fakePipeline) buildCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.builds
}

type harness struct {
	ctrl     *Controller
	dialog   *fakeDialog
	picker   *fakePicker
	prefs    *memPrefs
	registry *command.Registry
	pipeline *fakePipeline
	opened   []string
	hook     *logtest.Hook
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger, hook := logtest.NewNullLogger()
	h := &harness{
		dialog:   &fakeDialog{},
		picker:   newFakePicker(),
		prefs:    newMemPrefs(),
		registry: command.NewRegistry(),
		pipeline: &fakePipeline{},
		hook:     hook,
	}
	h.registry.Add(command.OpenNote, func(p any) error {
		h.opened = append(h.opened, p.(command.OpenNotePayload).NoteID)
		return nil
	})
	h.ctrl = New(Deps{
		Dialog:      h.dialog,
		Picker:      h.picker,
		Preferences: h.prefs,
		Commands:    h.registry,
		Pipeline:    h.pipeline,
		Logger:      logger,
	})
	d := h.ctrl.Activate(h.registry)
	t.Cleanup(d.Dispose)
	return h
}

func (h *harness) open(t *testing.T) {
	t.Helper()
	require.NoError(t, h.registry.Dispatch(command.ClipPage, nil))
	require.Equal(t, StateIdle, h.ctrl.Snapshot().State)
}

// --- opening ---

func TestClipPage_OpensWithRememberedDestination(t *testing.T) {
	h := newHarness(t)
	h.prefs.values[config.DefaultDestinationKey] = "nb1"

	h.open(t)

	snap := h.ctrl.Snapshot()
	assert.Equal(t, FormState{State: StateIdle, DestinationID: "nb1"}, snap)
	assert.Equal(t, "nb1", h.picker.selected)
	assert.True(t, h.dialog.IsShown())
	assert.Equal(t, 1, h.dialog.focused)
}

func TestClipPage_IgnoredWhileOpen(t *testing.T) {
	h := newHarness(t)
	h.open(t)
	h.ctrl.SetURL("https://example.com/a")

	h.ctrl.HandleClipPage()

	assert.Equal(t, 1, h.dialog.shows)
	assert.Equal(t, "https://example.com/a", h.ctrl.Snapshot().URL)
}

func TestReopen_PrepopulatesLastChosenDestination(t *testing.T) {
	h := newHarness(t)
	h.open(t)
	h.picker.choose("nb1")
	h.ctrl.Cancel()

	h.open(t)
	assert.Equal(t, "nb1", h.ctrl.Snapshot().DestinationID)
	assert.Equal(t, "nb1", h.picker.selected)
}

// --- field changes ---

func TestChangeDestination_PersistsImmediately(t *testing.T) {
	h := newHarness(t)
	h.open(t)

	h.picker.choose("nb2")
	v, ok := h.prefs.Get(config.DefaultDestinationKey)
	require.True(t, ok)
	assert.Equal(t, "nb2", v)
	assert.Equal(t, "nb2", h.ctrl.Snapshot().DestinationID)

	h.picker.choose("nb2")
	v, _ = h.prefs.Get(config.DefaultDestinationKey)
	assert.Equal(t, "nb2", v)
	assert.Equal(t, 2, h.prefs.sets)
}

func TestLastDestinationSurvivesRestart(t *testing.T) {
	t.Setenv("WEBCLIPPER_DEFAULT_DESTINATION", "nb-env")
	path := filepath.Join(t.TempDir(), "config.yaml")

	newCtrl := func() (*Controller, *fakePicker, *command.Registry) {
		picker := newFakePicker()
		registry := command.NewRegistry()
		logger, _ := logtest.NewNullLogger()
		ctrl := New(Deps{
			Dialog:      &fakeDialog{},
			Picker:      picker,
			Preferences: config.NewPreferences(config.NewFileBackend(path)),
			Commands:    registry,
			Pipeline:    &fakePipeline{},
			Logger:      logger,
		})
		t.Cleanup(ctrl.Activate(registry).Dispose)
		return ctrl, picker, registry
	}

	ctrl, picker, registry := newCtrl()
	require.NoError(t, registry.Dispatch(command.ClipPage, nil))
	assert.Equal(t, "nb-env", ctrl.Snapshot().DestinationID)
	picker.choose("nb1")
	ctrl.Cancel()

	ctrl, picker, registry = newCtrl()
	require.NoError(t, registry.Dispatch(command.ClipPage, nil))
	assert.Equal(t, "nb1", ctrl.Snapshot().DestinationID)
	assert.Equal(t, "nb1", picker.selected)
}

func TestSetURL_IgnoredWhenClosed(t *testing.T) {
	h := newHarness(t)
	h.ctrl.SetURL("https://example.com")
	assert.Equal(t, FormState{}, h.ctrl.Snapshot())
}

// --- validation ---

func TestConfirm_InvalidURL(t *testing.T) {
	for _, bad := range []string{"", "   ", "not a url", "example.com/a", "/relative/path", "http://", "https:///nohost", "://x"} {
		t.Run(bad, func(t *testing.T) {
			h := newHarness(t)
			h.prefs.values[config.DefaultDestinationKey] = "nb1"
			h.open(t)
			h.ctrl.SetURL(bad)

			require.NoError(t, h.ctrl.Confirm(context.Background()))

			snap := h.ctrl.Snapshot()
			assert.Equal(t, StateError, snap.State)
			assert.Equal(t, "Please provide a valid URL.", snap.ErrorMessage)
			assert.Zero(t, h.pipeline.buildCount(), "no network access on validation failure")
			assert.True(t, h.dialog.IsShown())
		})
	}
}

func TestConfirm_MissingDestinationWins(t *testing.T) {
	for _, u := range []string{"https://example.com/a", "not a url", ""} {
		t.Run(u, func(t *testing.T) {
			h := newHarness(t)
			h.open(t)
			h.ctrl.SetURL(u)

			require.NoError(t, h.ctrl.Confirm(context.Background()))

			snap := h.ctrl.Snapshot()
			assert.Equal(t, StateError, snap.State)
			assert.Equal(t, "Please select the destination notebook.", snap.ErrorMessage)
			assert.Zero(t, h.pipeline.buildCount())
		})
	}
}

// --- pipeline outcomes ---

func TestConfirm_Success(t *testing.T) {
	h := newHarness(t)
	h.prefs.values[config.DefaultDestinationKey] = "nb1"
	h.open(t)
	h.ctrl.SetURL("https://example.com/a")

	require.NoError(t, h.ctrl.Confirm(context.Background()))

	assert.Equal(t, []string{"note-42"}, h.opened)
	assert.Equal(t, FormState{State: StateClosed}, h.ctrl.Snapshot())
	assert.False(t, h.dialog.IsShown())
	require.Len(t, h.pipeline.persisted, 1)
	assert.Equal(t, "nb1", h.pipeline.persisted[0].DestinationID)
}

func TestConfirm_FetchFailureKeepsForm(t *testing.T) {
	h := newHarness(t)
	h.pipeline.buildFn = func(context.Context, core.ClipRequest) (core.ClipNote, error) {
		return core.ClipNote{}, &core.FetchError{URL: "https://example.com/a", StatusCode: 500}
	}
	h.prefs.values[config.DefaultDestinationKey] = "nb1"
	h.open(t)
	h.ctrl.SetURL("https://example.com/a")

	require.NoError(t, h.ctrl.Confirm(context.Background()))

	snap := h.ctrl.Snapshot()
	assert.Equal(t, FormState{
		State:         StateError,
		URL:           "https://example.com/a",
		DestinationID: "nb1",
		ErrorMessage:  "Couldn't clip this URL.",
	}, snap)
	assert.Empty(t, h.pipeline.persisted)
	assert.Empty(t, h.opened)
	assert.True(t, h.dialog.IsShown())

	entry := h.hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "fetch", entry.Data["kind"])
	assert.Equal(t, "https://example.com/a", entry.Data["url"])
}

func TestConfirm_StageErrorsCollapseToOneMessage(t *testing.T) {
	errs := []error{
		&core.ExtractionError{URL: "u", Err: core.ErrNoContent},
		&core.ConversionError{Err: errors.New("x")},
	}
	for _, stageErr := range errs {
		h := newHarness(t)
		h.pipeline.buildFn = func(context.Context, core.ClipRequest) (core.ClipNote, error) {
			return core.ClipNote{}, stageErr
		}
		h.prefs.values[config.DefaultDestinationKey] = "nb1"
		h.open(t)
		h.ctrl.SetURL("https://example.com/a")

		require.NoError(t, h.ctrl.Confirm(context.Background()))
		assert.Equal(t, MsgClipFailed, h.ctrl.Snapshot().ErrorMessage, core.Kind(stageErr))
	}
}

func TestConfirm_PersistFailure(t *testing.T) {
	h := newHarness(t)
	h.pipeline.persistFn = func(context.Context, core.ClipNote) (string, error) {
		return "", &core.PersistError{Err: errors.New("readonly")}
	}
	h.prefs.values[config.DefaultDestinationKey] = "nb1"
	h.open(t)
	h.ctrl.SetURL("https://example.com/a")

	require.NoError(t, h.ctrl.Confirm(context.Background()))
	assert.Equal(t, StateError, h.ctrl.Snapshot().State)
	assert.Equal(t, MsgClipFailed, h.ctrl.Snapshot().ErrorMessage)
	assert.Empty(t, h.opened)
}

func TestConfirm_RetryFromErrorClearsMessage(t *testing.T) {
	h := newHarness(t)
	h.open(t)
	h.ctrl.SetURL("https://example.com/a")
	require.NoError(t, h.ctrl.Confirm(context.Background()))
	require.Equal(t, StateError, h.ctrl.Snapshot().State)

	var seen []FormState
	h.ctrl.Subscribe(func(s FormState) { seen = append(seen, s) })
	h.picker.choose("nb1")
	require.NoError(t, h.ctrl.Confirm(context.Background()))

	require.GreaterOrEqual(t, len(seen), 2)
	submitting := seen[1]
	assert.Equal(t, StateSubmitting, submitting.State)
	assert.Empty(t, submitting.ErrorMessage)
	assert.Equal(t, StateClosed, h.ctrl.Snapshot().State)
	assert.Equal(t, []string{"note-42"}, h.opened)
}

func TestConfirm_WhenClosed(t *testing.T) {
	h := newHarness(t)
	assert.ErrorIs(t, h.ctrl.Confirm(context.Background()), ErrClosed)
}

func TestConfirm_BusyWhileSubmitting(t *testing.T) {
	h := newHarness(t)
	started := make(chan struct{})
	release := make(chan struct{})
	h.pipeline.buildFn = func(_ context.Context, req core.ClipRequest) (core.ClipNote, error) {
		close(started)
		<-release
		return core.ClipNote{Title: "t", DestinationID: req.DestinationID}, nil
	}
	h.prefs.values[config.DefaultDestinationKey] = "nb1"
	h.open(t)
	h.ctrl.SetURL("https://example.com/a")

	done := make(chan error, 1)
	go func() { done <- h.ctrl.Confirm(context.Background()) }()
	<-started

	assert.Equal(t, StateSubmitting, h.ctrl.Snapshot().State)
	assert.ErrorIs(t, h.ctrl.Confirm(context.Background()), ErrBusy)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, h.pipeline.buildCount())
	assert.Len(t, h.pipeline.persisted, 1)
}

func TestCancel_AbandonsRunningAttempt(t *testing.T) {
	h := newHarness(t)
	started := make(chan struct{})
	release := make(chan struct{})
	h.pipeline.buildFn = func(_ context.Context, req core.ClipRequest) (core.ClipNote, error) {
		close(started)
		<-release
		return core.ClipNote{Title: "t", DestinationID: req.DestinationID}, nil
	}
	h.prefs.values[config.DefaultDestinationKey] = "nb1"
	h.open(t)
	h.ctrl.SetURL("https://example.com/a")

	done := make(chan error, 1)
	go func() { done <- h.ctrl.Confirm(context.Background()) }()
	<-started

	h.ctrl.Cancel()
	assert.Equal(t, StateClosed, h.ctrl.Snapshot().State)

	close(release)
	assert.ErrorIs(t, <-done, ErrAbandoned)
	assert.Empty(t, h.pipeline.persisted)
	assert.Empty(t, h.opened)
	assert.Equal(t, StateClosed, h.ctrl.Snapshot().State)
}

func TestCancel_SkipsValidation(t *testing.T) {
	h := newHarness(t)
	h.open(t)
	h.ctrl.SetURL("not a url")

	h.ctrl.Cancel()

	assert.Equal(t, FormState{State: StateClosed}, h.ctrl.Snapshot())
	assert.Equal(t, 1, h.dialog.dismisses)
	assert.Zero(t, h.pipeline.buildCount())
}

func TestActivate_DisposeRemovesRegistrations(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	registry := command.NewRegistry()
	picker := newFakePicker()
	ctrl := New(Deps{
		Dialog:      &fakeDialog{},
		Picker:      picker,
		Preferences: newMemPrefs(),
		Commands:    registry,
		Pipeline:    &fakePipeline{},
		Logger:      logger,
	})

	d := ctrl.Activate(registry)
	assert.True(t, registry.Has(command.ClipPage))
	assert.Len(t, picker.handlers, 1)

	d.Dispose()
	assert.False(t, registry.Has(command.ClipPage))
	assert.Empty(t, picker.handlers)
}

// --- end to end with the real conversion stages ---

type stubFetcher struct{ html string }

func (f stubFetcher) Fetch(_ context.Context, rawURL string) (*core.FetchResult, error) {
	return &core.FetchResult{URL: rawURL, StatusCode: 200, HTML: f.html}, nil
}

type memStore struct{ notes []core.ClipNote }

func (s *memStore) CreateNote(_ context.Context, note core.ClipNote) (string, error) {
	s.notes = append(s.notes, note)
	return "stored-1", nil
}

func examplePage() string {
	para := strings.Repeat("A long paragraph about the topic that keeps the reader engaged for a while. ", 6)
	var sb strings.Builder
	sb.WriteString("<html><head><title>Example</title></head><body><article><h1>Example</h1>")
	for i := 0; i < 4; i++ {
		sb.WriteString("<p>" + para + "</p>")
	}
	sb.WriteString("<p>The ticket costs $5 and the upgrade costs $10. " + para + "</p>")
	sb.WriteString("</article></body></html>")
	return sb.String()
}

func TestConfirm_EndToEndBody(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	store := &memStore{}
	p := pipeline.New(
		stubFetcher{html: examplePage()},
		extract.New(),
		normalize.New(),
		render.NewNoteRenderer(),
		store,
		pipeline.WithLogger(logger),
	)

	registry := command.NewRegistry()
	var opened []string
	registry.Add(command.OpenNote, func(p any) error {
		opened = append(opened, p.(command.OpenNotePayload).NoteID)
		return nil
	})
	prefs := newMemPrefs()
	prefs.values[config.DefaultDestinationKey] = "nb1"
	ctrl := New(Deps{
		Dialog:      &fakeDialog{},
		Picker:      newFakePicker(),
		Preferences: prefs,
		Commands:    registry,
		Pipeline:    p,
		Logger:      logger,
	})
	defer ctrl.Activate(registry).Dispose()

	require.NoError(t, registry.Dispatch(command.ClipPage, nil))
	ctrl.SetURL("https://example.com/a")
	require.NoError(t, ctrl.Confirm(context.Background()))

	assert.Equal(t, []string{"stored-1"}, opened)
	assert.Equal(t, StateClosed, ctrl.Snapshot().State)
	require.Len(t, store.notes, 1)

	lines := strings.Split(store.notes[0].Body, "\n")
	require.GreaterOrEqual(t, len(lines), 5)
	assert.Contains(t, lines[0], "[example.com](https://example.com/a)")
	assert.Regexp(t, `\d{1,2}/\d{1,2}/\d{4}$`, lines[0])
	assert.Equal(t, "----", lines[2])
	assert.Equal(t, "# Example", lines[4])

	body := store.notes[0].Body
	assert.Equal(t, 1, strings.Count(body, `\$5`))
	assert.Equal(t, 1, strings.Count(body, `\$10`))
	assert.NotContains(t, body, `\\$`)
}
