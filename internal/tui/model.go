package tui

import (
	"errors"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Makepad-fr/tada/internal/app"
	"github.com/Makepad-fr/tada/internal/ui"
)

var errNoSurface = errors.New("tui: controller and list view are required")

// Model is the Bubble Tea program: a list, an inline add form and a status
// line. Intents go to the controller; row controls go to the ListView.
type Model struct {
	ctrl *app.Controller
	view *ListView
	keys keyMap

	// Inline add
	adding bool
	input  textinput.Model

	status string // last error, cleared on the next key press

	width, height int
}

// NewModel wires view (which must be the controller's view) into a program
// model. Missing pieces are a startup error, not something to recover from.
func NewModel(ctrl *app.Controller, view *ListView) (Model, error) {
	if ctrl == nil || view == nil {
		return Model{}, errNoSurface
	}
	keys := defaultKeys()
	view.setExtraHelp(keys.listHelp)

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "New item..."
	ti.CharLimit = 200

	m := Model{
		ctrl:   ctrl,
		view:   view,
		keys:   keys,
		input:  ti,
		width:  80,
		height: 24,
	}
	m.resize()
	return m, nil
}

// Run restores the list, draws it and hands the terminal to Bubble Tea until
// the user quits.
func Run(ctrl *app.Controller, view *ListView) error {
	m, err := NewModel(ctrl, view)
	if err != nil {
		return err
	}
	if err := ctrl.Start(); err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		m.width, m.height = ws.Width, ws.Height
		m.resize()
		return m, nil
	}

	if m.adding {
		return m.updateAdding(msg)
	}

	// While the filter prompt is open every key belongs to it.
	if k, ok := msg.(tea.KeyMsg); ok && !m.view.Filtering() {
		m.status = ""
		switch {
		case key.Matches(k, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(k, m.keys.Add):
			m.adding = true
			m.input.SetValue("")
			m.resize()
			return m, m.input.Focus()
		case key.Matches(k, m.keys.Toggle):
			cmd, err := m.view.ToggleSelected()
			m.report(err)
			return m, cmd
		case key.Matches(k, m.keys.Delete):
			m.report(m.view.DeleteSelected())
			return m, nil
		case key.Matches(k, m.keys.ClearAll):
			m.report(m.ctrl.ClearAll())
			return m, nil
		}
	}

	return m, m.view.Update(msg)
}

func (m Model) updateAdding(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(k, m.keys.Submit):
			m.status = ""
			if err := m.ctrl.Submit(m.input.Value()); err != nil {
				m.report(err)
			} else {
				m.view.SelectNewest()
			}
			m.stopAdding()
			return m, nil
		case key.Matches(k, m.keys.Cancel):
			m.stopAdding()
			return m, nil
		case k.Type == tea.KeyCtrlC:
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	t := ui.Current()

	items := m.ctrl.Store().Items()
	done := 0
	for _, it := range items {
		if it.Completed {
			done++
		}
	}

	parts := []string{
		t.Muted.Render(ui.ProgressBar(done, len(items), 28)),
		m.view.View(),
	}
	if m.adding {
		form := lipgloss.NewStyle().
			Border(t.Border).
			BorderForeground(t.BorderColor).
			Padding(0, 1)
		parts = append(parts, form.Render("Add new item\n"+m.input.View()))
	}
	if m.status != "" {
		parts = append(parts, t.Error.Render("✖ "+m.status))
	}
	return ui.Panel(parts)
}

// Adding reports whether the inline form is open.
func (m Model) Adding() bool { return m.adding }

// Status is the error line currently shown, if any.
func (m Model) Status() string { return m.status }

func (m *Model) stopAdding() {
	m.adding = false
	m.input.SetValue("")
	m.input.Blur()
	m.resize()
}

func (m *Model) report(err error) {
	if err != nil {
		m.status = err.Error()
	}
}

// resize gives the list whatever the panel, progress line, form and status
// line leave over.
func (m *Model) resize() {
	chrome := 2 + 1 + 1 // panel border, progress bar, status line
	if m.adding {
		chrome += 4
	}
	h := m.height - chrome
	if h < 3 {
		h = 3
	}
	w := m.width - 4
	if w < 10 {
		w = 10
	}
	m.view.SetSize(w, h)
}
