package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/tileexpo/internal/grid"
	"github.com/1broseidon/tileexpo/internal/ipc"
)

var (
	cellStyle = lipgloss.NewStyle().
			Width(10).
			Height(3).
			Align(lipgloss.Center, lipgloss.Center).
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			Foreground(lipgloss.Color("250"))

	cursorCellStyle = cellStyle.
			Border(lipgloss.ThickBorder()).
			BorderForeground(lipgloss.Color("62")).
			Bold(true)

	activeMark  = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("●")
	returnMark  = lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Render("◆")
	emptyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Padding(1, 2)
	gridPadding = lipgloss.NewStyle().Padding(1, 1)
)

// renderGrid draws one box per viewport, marking the active and return
// viewports and the cursor.
func renderGrid(st *ipc.StatusData, cursor grid.Coord) string {
	if st == nil {
		return emptyStyle.Render("no daemon status")
	}
	size := st.Grid
	if size.Columns <= 0 || size.Rows <= 0 {
		return emptyStyle.Render("empty grid")
	}

	rows := make([]string, 0, size.Rows)
	for y := 0; y < size.Rows; y++ {
		cells := make([]string, 0, size.Columns)
		for x := 0; x < size.Columns; x++ {
			c := grid.Coord{X: x, Y: y}
			cells = append(cells, renderCell(st, c, c == cursor))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return gridPadding.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func renderCell(st *ipc.StatusData, c grid.Coord, selected bool) string {
	label := c.String()
	var marks []string
	if c == st.Active {
		marks = append(marks, activeMark)
	}
	if st.StateName != "normal" && c == st.Return {
		marks = append(marks, returnMark)
	}
	if len(marks) > 0 {
		label += "\n" + strings.Join(marks, " ")
	}
	if selected {
		return cursorCellStyle.Render(label)
	}
	return cellStyle.Render(label)
}

func renderStatusBar(st *ipc.StatusData, err error, width int) string {
	var status string
	switch {
	case err != nil:
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("●")
		status = dot + " " + err.Error()
	case st == nil:
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("●")
		status = dot + " connecting"
	default:
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("●")
		parts := []string{
			dot + " " + st.StateName,
			"grid:" + st.Grid.String(),
			"active:" + st.Active.String(),
		}
		if st.Animating {
			parts = append(parts, fmt.Sprintf("step %d/%d", st.Step, st.MaxSteps))
		}
		status = strings.Join(parts, "  ")
	}

	style := lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("250")).
		Padding(0, 1)
	if width > 0 {
		style = style.Width(width)
	}
	return style.Render(status)
}
