// Package headless provides a dialog and picker with no user interface, for
// driving the clipper from flags and scripts.
package headless

import (
	"sort"
	"sync"

	"github.com/gaurav-prasanna/webclipper/host/command"
)

// Dialog records whether the clip dialog is shown.
type Dialog struct {
	mu      sync.Mutex
	shown   bool
	focused bool
}

func (d *Dialog) Show() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.shown = true
	d.focused = false
}

func (d *Dialog) Dismiss() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.shown = false
	d.focused = false
}

func (d *Dialog) IsShown() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.shown
}

// FocusURL marks the URL field as focused.
func (d *Dialog) FocusURL() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.focused = d.shown
}

// URLFocused reports whether FocusURL ran since the dialog was last shown.
func (d *Dialog) URLFocused() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.focused
}

// Picker holds the selected destination id and notifies subscribers when
// Select is called.
type Picker struct {
	Placeholder string

	mu       sync.Mutex
	selected string
	handlers map[uint64]func(string)
	nextID   uint64
}

// NewPicker creates a Picker showing placeholder when nothing is selected.
func NewPicker(placeholder string) *Picker {
	return &Picker{Placeholder: placeholder, handlers: make(map[uint64]func(string))}
}

func (p *Picker) SelectedID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selected
}

// SetSelectedID changes the selection silently.
func (p *Picker) SetSelectedID(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.selected = id
}

// OnChange subscribes fn to user selections.
func (p *Picker) OnChange(fn func(id string)) command.Disposable {
	p.mu.Lock()
	if p.handlers == nil {
		p.handlers = make(map[uint64]func(string))
	}
	p.nextID++
	id := p.nextID
	p.handlers[id] = fn
	p.mu.Unlock()

	return command.DisposableFunc(func() {
		p.mu.Lock()
		delete(p.handlers, id)
		p.mu.Unlock()
	})
}

// Select is a user choosing id: the selection changes and subscribers are
// notified in subscription order.
func (p *Picker) Select(id string) {
	p.mu.Lock()
	p.selected = id
	ids := make([]uint64, 0, len(p.handlers))
	for k := range p.handlers {
		ids = append(ids, k)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	fns := make([]func(string), len(ids))
	for i, k := range ids {
		fns[i] = p.handlers[k]
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(id)
	}
}

// Label returns the text a picker would display for the current selection.
func (p *Picker) Label(names map[string]string) string {
	sel := p.SelectedID()
	if name, ok := names[sel]; ok && sel != "" {
		return name
	}
	return p.Placeholder
}
