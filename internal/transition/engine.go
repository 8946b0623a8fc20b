package transition

import (
	"fmt"

	"github.com/1broseidon/tileexpo/internal/grid"
)

// Direction is the way a transition zooms.
type Direction int

const (
	// ToOverview zooms out from a single viewport to the whole grid.
	ToOverview Direction = iota
	// ToNormal zooms back into the return viewport.
	ToNormal
)

// String returns the string representation of the direction
func (d Direction) String() string {
	switch d {
	case ToOverview:
		return "to-overview"
	case ToNormal:
		return "to-normal"
	default:
		return "unknown"
	}
}

// Interval holds the endpoints of one animated scalar.
type Interval struct {
	Begin float64
	End   float64
}

// Params is the scale and offset applied to every tile in a frame.
type Params struct {
	ScaleX float64 `json:"scale_x"`
	ScaleY float64 `json:"scale_y"`
	OffX   float64 `json:"off_x"`
	OffY   float64 `json:"off_y"`
}

// Identity shows the active viewport at full size.
var Identity = Params{ScaleX: 1, ScaleY: 1}

// Target describes the transition in flight.
type Target struct {
	Steps  int
	ScaleX Interval
	ScaleY Interval
	OffX   Interval
	OffY   Interval
}

func (t Target) end() Params {
	return Params{ScaleX: t.ScaleX.End, ScaleY: t.ScaleY.End, OffX: t.OffX.End, OffY: t.OffY.End}
}

func between(begin, end Params) Target {
	return Target{
		ScaleX: Interval{Begin: begin.ScaleX, End: end.ScaleX},
		ScaleY: Interval{Begin: begin.ScaleY, End: end.ScaleY},
		OffX:   Interval{Begin: begin.OffX, End: end.OffX},
		OffY:   Interval{Begin: begin.OffY, End: end.OffY},
	}
}

// AlignedOffsets returns the offsets that place the grid on screen while
// anchor is the host's active viewport. The y axis carries the opposite sign
// of x because tile textures are sampled with an inverted y axis.
func AlignedOffsets(size grid.Size, anchor grid.Coord) (offX, offY float64) {
	cols, rows := float64(size.Columns), float64(size.Rows)
	centerW, centerH := cols/2, rows/2
	offX = ((float64(anchor.X)-centerW)*2 + 1) / cols
	offY = ((centerH-float64(anchor.Y))*2 - 1) / rows
	return offX, offY
}

// OverviewParams returns the stationary overview transform for anchor.
func OverviewParams(size grid.Size, anchor grid.Coord) Params {
	offX, offY := AlignedOffsets(size, anchor)
	return Params{
		ScaleX: 1 / float64(size.Columns),
		ScaleY: 1 / float64(size.Rows),
		OffX:   offX,
		OffY:   offY,
	}
}

// Rebase keeps the picture produced by p in place when the active viewport
// changes from one anchor to another.
func Rebase(p Params, from, to grid.Coord) Params {
	p.OffX += 2 * p.ScaleX * float64(to.X-from.X)
	p.OffY -= 2 * p.ScaleY * float64(to.Y-from.Y)
	return p
}

func progress(begin, end float64, step, steps int) float64 {
	return (end*float64(step) + begin*float64(steps-step)) / float64(steps)
}

// Engine interpolates Params over a fixed number of frames. It is not safe
// for concurrent use; the frame loop owns it.
type Engine struct {
	maxSteps int
	pending  int

	target    Target
	params    Params
	direction Direction
	anchor    grid.Coord
	running   bool

	// OnComplete fires once when a transition reaches its last step.
	OnComplete func(Direction)
}

// NewEngine creates an engine that runs each transition over maxSteps frames.
func NewEngine(maxSteps int) *Engine {
	if maxSteps < 0 {
		maxSteps = 0
	}
	return &Engine{
		maxSteps: maxSteps,
		pending:  maxSteps,
		params:   Identity,
	}
}

// MaxSteps returns the step count of the current transition.
func (e *Engine) MaxSteps() int {
	return e.maxSteps
}

// SetMaxSteps changes the step count. A transition in flight keeps its
// count; the new one applies from the next Start.
func (e *Engine) SetMaxSteps(steps int) {
	if steps < 0 {
		steps = 0
	}
	e.pending = steps
	if !e.Animating() {
		e.maxSteps = steps
	}
}

// Params returns the current interpolated snapshot.
func (e *Engine) Params() Params {
	return e.params
}

// Target returns the transition in flight, or the last completed one.
func (e *Engine) Target() Target {
	return e.target
}

// Direction returns the direction of the current or last transition.
func (e *Engine) Direction() Direction {
	return e.direction
}

// Anchor returns the viewport the current params are laid out around.
func (e *Engine) Anchor() grid.Coord {
	return e.anchor
}

// Animating reports whether a transition is in flight.
func (e *Engine) Animating() bool {
	return e.running
}

// Start begins a transition. ToOverview is laid out around active and
// ToNormal around ret. A transition that interrupts one in flight begins from
// the live params instead of the formula endpoint.
func (e *Engine) Start(dir Direction, active, ret grid.Coord, size grid.Size) error {
	if err := size.Validate(); err != nil {
		return fmt.Errorf("start %s: %w", dir, err)
	}
	if err := size.Check(active); err != nil {
		return fmt.Errorf("start %s: active viewport: %w", dir, err)
	}
	if err := size.Check(ret); err != nil {
		return fmt.Errorf("start %s: return viewport: %w", dir, err)
	}

	anchor := active
	if dir == ToNormal {
		anchor = ret
	}

	overview := OverviewParams(size, anchor)
	var begin, end Params
	switch dir {
	case ToOverview:
		begin, end = Identity, overview
	case ToNormal:
		begin, end = overview, Identity
	default:
		return fmt.Errorf("start: unknown direction %d", dir)
	}
	if e.Animating() {
		begin = Rebase(e.params, e.anchor, anchor)
	}

	e.maxSteps = e.pending
	e.target = between(begin, end)
	e.target.Steps = 0
	e.direction = dir
	e.anchor = anchor
	e.running = true
	e.params = begin

	if e.maxSteps == 0 {
		e.finish()
	}
	return nil
}

// Step advances one frame and returns the params to render. Once a
// transition has finished, Step returns its end params and does nothing else.
func (e *Engine) Step() Params {
	if !e.Animating() {
		return e.params
	}

	t := &e.target
	e.params = Params{
		ScaleX: progress(t.ScaleX.Begin, t.ScaleX.End, t.Steps, e.maxSteps),
		ScaleY: progress(t.ScaleY.Begin, t.ScaleY.End, t.Steps, e.maxSteps),
		OffX:   progress(t.OffX.Begin, t.OffX.End, t.Steps, e.maxSteps),
		OffY:   progress(t.OffY.Begin, t.OffY.End, t.Steps, e.maxSteps),
	}
	t.Steps++

	if t.Steps == e.maxSteps {
		e.finish()
	}
	return e.params
}

// Align moves the grid so anchor sits under the screen without animating.
// Scale is left unchanged.
func (e *Engine) Align(size grid.Size, anchor grid.Coord) error {
	if err := size.Validate(); err != nil {
		return fmt.Errorf("align: %w", err)
	}
	if err := size.Check(anchor); err != nil {
		return fmt.Errorf("align: %w", err)
	}
	e.params.OffX, e.params.OffY = AlignedOffsets(size, anchor)
	e.anchor = anchor
	return nil
}

func (e *Engine) finish() {
	e.running = false
	e.target.Steps = e.maxSteps
	e.params = e.target.end()
	if e.OnComplete != nil {
		e.OnComplete(e.direction)
	}
}
