package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/tileexpo/internal/grid"
	"github.com/1broseidon/tileexpo/internal/ipc"
)

const pollInterval = 500 * time.Millisecond

// Daemon is the subset of the IPC client the picker uses.
type Daemon interface {
	Toggle() error
	Select(x, y int) error
	GetStatus() (*ipc.StatusData, error)
}

type statusMsg struct {
	data *ipc.StatusData
	err  error
}

type actionMsg struct {
	err error
}

// model is the root bubbletea model: a grid of viewports with a cursor.
type model struct {
	daemon Daemon
	keys   keyMap
	help   help.Model

	status  *ipc.StatusData
	lastErr error
	cursor  grid.Coord
	placed  bool

	width  int
	height int
}

func newModel(d Daemon) model {
	return model{
		daemon: d,
		keys:   defaultKeyMap(),
		help:   help.New(),
	}
}

func fetchStatus(d Daemon) tea.Cmd {
	return func() tea.Msg {
		data, err := d.GetStatus()
		return statusMsg{data: data, err: err}
	}
}

func pollStatus(d Daemon) tea.Cmd {
	return tea.Tick(pollInterval, func(time.Time) tea.Msg {
		data, err := d.GetStatus()
		return statusMsg{data: data, err: err}
	})
}

func toggle(d Daemon) tea.Cmd {
	return func() tea.Msg {
		return actionMsg{err: d.Toggle()}
	}
}

func selectCell(d Daemon, c grid.Coord) tea.Cmd {
	return func() tea.Msg {
		return actionMsg{err: d.Select(c.X, c.Y)}
	}
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return fetchStatus(m.daemon)
}

func (m model) size() grid.Size {
	if m.status == nil {
		return grid.Size{}
	}
	return m.status.Grid
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case statusMsg:
		if msg.err != nil {
			m.lastErr = msg.err
			m.status = nil
			m.placed = false
			return m, pollStatus(m.daemon)
		}
		m.lastErr = nil
		m.status = msg.data
		if !m.placed || !m.size().Contains(m.cursor) {
			m.cursor = msg.data.Active
			m.placed = true
		}
		return m, pollStatus(m.daemon)

	case actionMsg:
		m.lastErr = msg.err
		return m, fetchStatus(m.daemon)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	size := m.size()
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Refresh):
		return m, fetchStatus(m.daemon)
	case key.Matches(msg, m.keys.Toggle):
		return m, toggle(m.daemon)
	case key.Matches(msg, m.keys.Select):
		if m.status == nil || !size.Contains(m.cursor) {
			return m, nil
		}
		return m, selectCell(m.daemon, m.cursor)
	case key.Matches(msg, m.keys.Up):
		m.move(0, -1)
	case key.Matches(msg, m.keys.Down):
		m.move(0, 1)
	case key.Matches(msg, m.keys.Left):
		m.move(-1, 0)
	case key.Matches(msg, m.keys.Right):
		m.move(1, 0)
	}
	return m, nil
}

// move shifts the cursor, clamped to the grid.
func (m *model) move(dx, dy int) {
	size := m.size()
	if size.Columns <= 0 || size.Rows <= 0 {
		return
	}
	next := grid.Coord{X: m.cursor.X + dx, Y: m.cursor.Y + dy}
	if size.Contains(next) {
		m.cursor = next
	}
}

// View implements tea.Model.
func (m model) View() string {
	statusBar := renderStatusBar(m.status, m.lastErr, m.width)
	body := renderGrid(m.status, m.cursor)
	helpBar := lipgloss.NewStyle().Padding(0, 1).Render(m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, statusBar, body, helpBar)
}
