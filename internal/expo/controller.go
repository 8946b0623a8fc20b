package expo

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/1broseidon/tileexpo/internal/grid"
	"github.com/1broseidon/tileexpo/internal/texcache"
	"github.com/1broseidon/tileexpo/internal/transition"
)

// ErrNotShown is returned when selecting a viewport while the grid is not
// on screen.
var ErrNotShown = errors.New("overview is not shown")

// Options wires a Controller to its host.
type Options struct {
	Host     Host
	Lookup   WindowLookup
	Mover    MoveRequester
	Capturer texcache.Capturer
	Renderer Renderer
	// Steps is the number of frames per transition.
	Steps  int
	Logger *slog.Logger
}

// Controller runs the overview state machine. All methods must be called
// from the frame-loop goroutine.
type Controller struct {
	host     Host
	lookup   WindowLookup
	mover    MoveRequester
	renderer Renderer
	cache    *texcache.Cache
	engine   *transition.Engine
	logger   *slog.Logger

	state State
	size  grid.Size
	ret   grid.Coord

	renderEnabled bool
	pressEnabled  bool
	dragEnabled   bool

	listeners []func(ScaleChanged)
}

// New creates a controller in the normal state.
func New(opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	c := &Controller{
		host:     opts.Host,
		lookup:   opts.Lookup,
		mover:    opts.Mover,
		renderer: opts.Renderer,
		cache:    texcache.New(opts.Capturer),
		engine:   transition.NewEngine(opts.Steps),
		logger:   logger,
		state:    StateNormal,
	}
	c.engine.OnComplete = c.handleComplete
	return c
}

// OnScaleChanged registers fn to receive scale notifications.
func (c *Controller) OnScaleChanged(fn func(ScaleChanged)) {
	c.listeners = append(c.listeners, fn)
}

// State returns the current state.
func (c *Controller) State() State {
	return c.state
}

// Params returns the current render params.
func (c *Controller) Params() transition.Params {
	return c.engine.Params()
}

// ReturnViewport returns the viewport the overview will zoom back into.
func (c *Controller) ReturnViewport() grid.Coord {
	return c.ret
}

// Status returns a snapshot for status queries.
func (c *Controller) Status() Status {
	size := c.size
	if c.state == StateNormal {
		size = c.host.GridSize()
	}
	return Status{
		State:     c.state,
		StateName: c.state.String(),
		Grid:      size,
		Active:    c.host.ActiveViewport(),
		Return:    c.ret,
		Params:    c.engine.Params(),
		Step:      c.engine.Target().Steps,
		MaxSteps:  c.engine.MaxSteps(),
		Animating: c.engine.Animating(),
	}
}

// SetDuration changes the number of frames per transition. A transition in
// flight finishes with its original count.
func (c *Controller) SetDuration(steps int) {
	c.engine.SetMaxSteps(steps)
}

// Toggle zooms out from Normal, zooms back in from Entering or Overview, and
// reverses an exit that is still animating.
func (c *Controller) Toggle() error {
	switch c.state {
	case StateNormal:
		return c.enter()
	case StateEntering, StateOverview:
		return c.exit()
	case StateExiting:
		return c.reenter()
	default:
		return fmt.Errorf("toggle: unknown state %d", c.state)
	}
}

func (c *Controller) enter() error {
	size := c.host.GridSize()
	if err := size.Validate(); err != nil {
		return fmt.Errorf("enter overview: %w", err)
	}
	active := c.host.ActiveViewport()
	if err := size.Check(active); err != nil {
		return fmt.Errorf("enter overview: active viewport: %w", err)
	}

	if !c.host.AcquireOwnership() {
		c.logger.Debug("overview: ownership denied")
		return nil
	}

	c.size = size
	c.ret = active
	c.state = StateEntering
	c.renderEnabled = true
	c.pressEnabled = true
	c.dragEnabled = true

	c.logger.Info("overview: entering", "grid", size.String(), "active", active.String(), "steps", c.engine.MaxSteps())
	if err := c.engine.Start(transition.ToOverview, active, active, size); err != nil {
		c.state = StateNormal
		c.renderEnabled, c.pressEnabled, c.dragEnabled = false, false, false
		c.host.ReleaseOwnership()
		return fmt.Errorf("enter overview: %w", err)
	}
	return nil
}

func (c *Controller) exit() error {
	c.dragEnabled = false
	if err := c.host.SwitchViewport(c.ret); err != nil {
		c.logger.Warn("overview: failed to switch viewport", "viewport", c.ret.String(), "error", err)
	}

	anchor := c.engine.Anchor()
	c.state = StateExiting
	c.logger.Info("overview: exiting", "return", c.ret.String())
	if err := c.engine.Start(transition.ToNormal, anchor, c.ret, c.size); err != nil {
		return fmt.Errorf("exit overview: %w", err)
	}
	return nil
}

func (c *Controller) reenter() error {
	c.state = StateEntering
	c.dragEnabled = true
	c.logger.Info("overview: reversing exit", "active", c.ret.String())
	if err := c.engine.Start(transition.ToOverview, c.ret, c.ret, c.size); err != nil {
		return fmt.Errorf("re-enter overview: %w", err)
	}
	return nil
}

func (c *Controller) handleComplete(dir transition.Direction) {
	switch dir {
	case transition.ToOverview:
		c.state = StateOverview
		c.logger.Debug("overview: shown", "grid", c.size.String())
		c.notify(ScaleChanged{Columns: c.size.Columns, Rows: c.size.Rows})
	case transition.ToNormal:
		c.state = StateNormal
		c.renderEnabled = false
		c.pressEnabled = false
		c.dragEnabled = false
		c.cache.Invalidate()
		c.host.ReleaseOwnership()
		c.logger.Debug("overview: closed", "viewport", c.ret.String())
		c.notify(ScaleChanged{Columns: 1, Rows: 1})
	}
}

func (c *Controller) notify(ev ScaleChanged) {
	for _, fn := range c.listeners {
		fn(ev)
	}
}

// Select makes cell the return viewport and zooms into it.
func (c *Controller) Select(cell grid.Coord) error {
	if !c.state.Shown() {
		return ErrNotShown
	}
	if err := c.size.Check(cell); err != nil {
		return fmt.Errorf("select: %w", err)
	}
	c.ret = cell
	return c.Toggle()
}

// PressAt selects the tile under a screen point.
func (c *Controller) PressAt(px, py int) error {
	if !c.pressEnabled || !c.state.Shown() {
		return nil
	}
	cell, _, _ := grid.ScreenToViewport(px, py, c.host.ScreenSize(), c.size)
	if !c.size.Contains(cell) {
		c.logger.Debug("overview: press outside grid", "x", px, "y", py)
		return nil
	}
	return c.Select(cell)
}

// DragAt asks the window manager to move the window under a screen point.
func (c *Controller) DragAt(px, py int) error {
	if !c.dragEnabled || c.state != StateOverview || c.lookup == nil || c.mover == nil {
		return nil
	}
	active := c.host.ActiveViewport()
	if !c.size.Contains(active) {
		return nil
	}
	// The lookup resolves points against the host's current viewport.
	x, y := grid.ActiveSpacePoint(px, py, c.host.ScreenSize(), c.size, active)
	win, ok := c.lookup.WindowAt(x, y)
	if !ok {
		return nil
	}
	c.logger.Debug("overview: move request", "window", win, "x", px, "y", py)
	if err := c.mover.RequestMove(win, Point{X: px, Y: py}); err != nil {
		return fmt.Errorf("move request for window %d: %w", win, err)
	}
	return nil
}

// OnViewportChanged keeps a stationary overview aligned with a viewport the
// host switched to on its own.
func (c *Controller) OnViewportChanged(cell grid.Coord) error {
	if c.state != StateOverview || c.engine.Animating() {
		return nil
	}
	if err := c.engine.Align(c.size, cell); err != nil {
		return fmt.Errorf("viewport changed: %w", err)
	}
	c.ret = cell
	return nil
}

// OnFrameTick advances the transition and draws the frame.
func (c *Controller) OnFrameTick() error {
	if c.state == StateNormal {
		return nil
	}
	params := c.engine.Step()
	if !c.renderEnabled || c.renderer == nil {
		return nil
	}
	return c.render(params)
}

func (c *Controller) render(params transition.Params) error {
	screen := c.host.ScreenSize()
	anchor := c.engine.Anchor()
	t := NewTransform(params)

	c.cache.BeginFrame()
	if err := c.renderer.BeginFrame(); err != nil {
		return fmt.Errorf("begin frame: %w", err)
	}
	for x := 0; x < c.size.Columns; x++ {
		for y := 0; y < c.size.Rows; y++ {
			cell := grid.Coord{X: x, Y: y}
			slot, err := c.cache.Refresh(cell)
			if err != nil {
				c.logger.Warn("overview: capture failed", "viewport", cell.String(), "error", err)
				continue
			}
			geom := grid.CellRect(cell, anchor, screen)
			if err := c.renderer.DrawTexture(slot, geom, t, true); err != nil {
				c.logger.Warn("overview: draw failed", "viewport", cell.String(), "error", err)
			}
		}
	}
	if err := c.renderer.EndFrame(); err != nil {
		return fmt.Errorf("end frame: %w", err)
	}
	return nil
}
