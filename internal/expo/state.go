package expo

import (
	"github.com/1broseidon/tileexpo/internal/grid"
	"github.com/1broseidon/tileexpo/internal/transition"
)

// State is the overview animation state.
type State int

const (
	// StateNormal shows a single viewport; the overview owns nothing.
	StateNormal State = iota
	// StateEntering is zooming out to the grid.
	StateEntering
	// StateOverview shows the whole grid.
	StateOverview
	// StateExiting is zooming into the return viewport.
	StateExiting
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateNormal:
		return "normal"
	case StateEntering:
		return "entering"
	case StateOverview:
		return "overview"
	case StateExiting:
		return "exiting"
	default:
		return "unknown"
	}
}

// Shown reports whether the grid is on screen or moving towards it.
func (s State) Shown() bool {
	return s == StateEntering || s == StateOverview
}

// Status is a snapshot of the controller for status queries.
type Status struct {
	State     State             `json:"-"`
	StateName string            `json:"state"`
	Grid      grid.Size         `json:"grid"`
	Active    grid.Coord        `json:"active"`
	Return    grid.Coord        `json:"return"`
	Params    transition.Params `json:"params"`
	Step      int               `json:"step"`
	MaxSteps  int               `json:"max_steps"`
	Animating bool              `json:"animating"`
}
