// Package tui is the interactive clip dialog, built on bubbletea. The model
// only renders the controller's form and forwards keys; all state changes go
// through the clipper.Controller.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/gaurav-prasanna/webclipper/clipper"
)

// Placeholder is shown when no notebook is selected.
const Placeholder = "Select notebook..."

// Controller is the part of clipper.Controller the dialog drives.
type Controller interface {
	SetURL(s string)
	Confirm(ctx context.Context) error
	Cancel()
}

// Option is one entry of the notebook picker.
type Option struct {
	ID   string
	Name string
}

// Messages
type (
	formMsg        clipper.FormState
	confirmDoneMsg struct{ err error }
	openFailedMsg  struct{ err error }
)

// Model is the clip dialog.
type Model struct {
	ctrl      Controller
	shell     *Shell
	open      func() error
	notebooks []Option

	form    clipper.FormState
	opened  bool
	cursor  int
	err     error
	input   textinput.Model
	spinner spinner.Model
	styles  Styles
	keys    KeyMap
	width   int
}

// New creates the dialog model. open is called once from Init and should
// dispatch the clip-page command.
func New(ctrl Controller, shell *Shell, notebooks []Option, open func() error) Model {
	styles := DefaultStyles()

	in := textinput.New()
	in.Placeholder = "https://"
	in.Prompt = "› "
	in.CharLimit = 2048
	in.Width = 60

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Spinner

	return Model{
		ctrl:      ctrl,
		shell:     shell,
		open:      open,
		notebooks: notebooks,
		cursor:    -1,
		input:     in,
		spinner:   s,
		styles:    styles,
		keys:      DefaultKeyMap(),
	}
}

// Form returns the last form state the dialog rendered.
func (m Model) Form() clipper.FormState {
	return m.form
}

// Err returns an error that ended the dialog abnormally, if any.
func (m Model) Err() error {
	return m.err
}

// Init starts listening for form changes and opens the dialog.
func (m Model) Init() tea.Cmd {
	open := m.open
	return tea.Batch(
		m.shell.WaitForChange(),
		func() tea.Msg {
			if err := open(); err != nil {
				return openFailedMsg{err}
			}
			return nil
		},
	)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		if msg.Width > 10 {
			m.input.Width = min(msg.Width-10, 80)
		}
		return m, nil

	case formMsg:
		return m.applyForm(clipper.FormState(msg))

	case confirmDoneMsg:
		if msg.err != nil && !errors.Is(msg.err, clipper.ErrBusy) && !errors.Is(msg.err, clipper.ErrAbandoned) {
			m.err = msg.err
		}
		return m, nil

	case openFailedMsg:
		m.err = msg.err
		return m, tea.Quit

	case spinner.TickMsg:
		if m.form.State == clipper.StateSubmitting {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) applyForm(form clipper.FormState) (tea.Model, tea.Cmd) {
	wasSubmitting := m.form.State == clipper.StateSubmitting
	m.form = form
	cmds := []tea.Cmd{m.shell.WaitForChange()}

	if !form.State.Open() {
		if m.opened {
			m.shell.Close()
			return m, tea.Quit
		}
		return m, cmds[0]
	}

	if !m.opened {
		m.opened = true
		m.input.SetValue(form.URL)
	}
	if m.shell.takeFocus() {
		cmds = append(cmds, m.input.Focus())
	}
	m.cursor = m.indexOf(form.DestinationID)
	if form.State == clipper.StateSubmitting && !wasSubmitting {
		cmds = append(cmds, m.spinner.Tick)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Cancel) {
		m.ctrl.Cancel()
		m.shell.Close()
		return m, tea.Quit
	}
	if !m.opened || m.form.State == clipper.StateSubmitting {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Submit):
		ctrl := m.ctrl
		return m, func() tea.Msg {
			return confirmDoneMsg{err: ctrl.Confirm(context.Background())}
		}
	case key.Matches(msg, m.keys.Up):
		return m.moveCursor(-1), nil
	case key.Matches(msg, m.keys.Down):
		return m.moveCursor(1), nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if v := m.input.Value(); v != before {
		m.ctrl.SetURL(v)
	}
	return m, cmd
}

func (m Model) moveCursor(delta int) Model {
	if len(m.notebooks) == 0 {
		return m
	}
	next := m.cursor + delta
	if m.cursor < 0 {
		next = 0
	}
	next = (next + len(m.notebooks)) % len(m.notebooks)
	m.cursor = next
	m.shell.Select(m.notebooks[next].ID)
	return m
}

func (m Model) indexOf(id string) int {
	for i, nb := range m.notebooks {
		if nb.ID == id {
			return i
		}
	}
	return -1
}

// View renders the dialog.
func (m Model) View() string {
	if !m.opened {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(m.styles.Title.Render("Clip Web Page"))
	sb.WriteString("\n\n")

	sb.WriteString(m.styles.Label.Render("URL"))
	sb.WriteString("\n")
	sb.WriteString(m.input.View())
	sb.WriteString("\n\n")

	sb.WriteString(m.styles.Label.Render("Notebook"))
	sb.WriteString("\n")
	if len(m.notebooks) == 0 {
		sb.WriteString(m.styles.Muted.Render("No notebooks yet. Create one with `webclipper notebooks create <name>`."))
		sb.WriteString("\n")
	}
	if m.cursor < 0 && len(m.notebooks) > 0 {
		sb.WriteString(m.styles.Muted.Render("  " + Placeholder))
		sb.WriteString("\n")
	}
	for i, nb := range m.notebooks {
		if i == m.cursor {
			sb.WriteString(m.styles.Selected.Render("› " + nb.Name))
		} else {
			sb.WriteString("  " + nb.Name)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	switch {
	case m.form.State == clipper.StateSubmitting:
		sb.WriteString(m.spinner.View())
		sb.WriteString(" Clipping...")
	case m.form.ErrorMessage != "":
		sb.WriteString(m.styles.Error.Render(m.form.ErrorMessage))
	default:
		sb.WriteString(m.styles.Muted.Render(fmt.Sprintf("%s clip · %s cancel · %s/%s notebook",
			m.keys.Submit.Help().Key, m.keys.Cancel.Help().Key,
			m.keys.Up.Help().Key, m.keys.Down.Help().Key)))
	}
	return m.styles.Frame.Render(sb.String()) + "\n"
}
