package texcache

import (
	"errors"
	"fmt"

	"github.com/1broseidon/tileexpo/internal/grid"
)

// Capacity is the number of slots per axis.
const Capacity = grid.MaxDimension

// unsetHandle marks a handle the host has never allocated.
const unsetHandle = ^uint32(0)

var (
	// ErrOutOfRange is returned for a cell outside the 32x32 table.
	ErrOutOfRange = errors.New("texture slot out of range")
	// ErrStale is returned when reading a slot not captured this frame.
	ErrStale = errors.New("texture slot not captured in the current frame")
	// ErrNoCapturer is returned when the cache has no capture backend.
	ErrNoCapturer = errors.New("no viewport capturer configured")
)

// Slot holds the offscreen target and the texture a viewport was captured
// into. Handles are host-defined.
type Slot struct {
	Framebuffer uint32
	Texture     uint32
}

// Unset is the slot value before any capture and after Invalidate.
var Unset = Slot{Framebuffer: unsetHandle, Texture: unsetHandle}

// IsUnset reports whether the slot has never been captured into.
func (s Slot) IsUnset() bool {
	return s == Unset
}

// Capturer renders one viewport's scene into an offscreen target. prev is the
// slot from the last capture of the same cell (possibly Unset) so the host
// can reuse its buffers.
type Capturer interface {
	CaptureViewport(cell grid.Coord, prev Slot) (Slot, error)
}

// Releaser is implemented by capturers that hold host resources per slot.
type Releaser interface {
	ReleaseSlot(s Slot)
}

// Cache stores at most one captured frame per viewport cell. Contents are
// valid only during the frame they were captured in.
type Cache struct {
	capturer Capturer
	frame    uint64
	slots    [Capacity][Capacity]Slot
	captured [Capacity][Capacity]uint64
}

// New creates a cache with every slot unset.
func New(capturer Capturer) *Cache {
	c := &Cache{capturer: capturer, frame: 1}
	c.reset()
	return c
}

func (c *Cache) reset() {
	for x := range c.slots {
		for y := range c.slots[x] {
			c.slots[x][y] = Unset
			c.captured[x][y] = 0
		}
	}
}

func check(cell grid.Coord) error {
	if cell.X < 0 || cell.X >= Capacity || cell.Y < 0 || cell.Y >= Capacity {
		return fmt.Errorf("%w: %s", ErrOutOfRange, cell)
	}
	return nil
}

// BeginFrame starts a new frame. Slots captured earlier become unreadable.
func (c *Cache) BeginFrame() {
	c.frame++
}

// Frame returns the current frame number.
func (c *Cache) Frame() uint64 {
	return c.frame
}

// Refresh captures cell for the current frame and returns its slot. A cell
// already captured this frame is returned without capturing again.
func (c *Cache) Refresh(cell grid.Coord) (Slot, error) {
	if err := check(cell); err != nil {
		return Unset, err
	}
	if c.captured[cell.X][cell.Y] == c.frame {
		return c.slots[cell.X][cell.Y], nil
	}
	if c.capturer == nil {
		return Unset, ErrNoCapturer
	}

	slot, err := c.capturer.CaptureViewport(cell, c.slots[cell.X][cell.Y])
	if err != nil {
		return Unset, fmt.Errorf("capture viewport %s: %w", cell, err)
	}
	c.slots[cell.X][cell.Y] = slot
	c.captured[cell.X][cell.Y] = c.frame
	return slot, nil
}

// Get returns the slot captured for cell during the current frame.
func (c *Cache) Get(cell grid.Coord) (Slot, error) {
	if err := check(cell); err != nil {
		return Unset, err
	}
	if c.captured[cell.X][cell.Y] != c.frame {
		return Unset, fmt.Errorf("%w: %s", ErrStale, cell)
	}
	return c.slots[cell.X][cell.Y], nil
}

// Invalidate resets every slot to Unset, releasing host resources when the
// capturer supports it.
func (c *Cache) Invalidate() {
	rel, _ := c.capturer.(Releaser)
	for x := range c.slots {
		for y := range c.slots[x] {
			if rel != nil && !c.slots[x][y].IsUnset() {
				rel.ReleaseSlot(c.slots[x][y])
			}
		}
	}
	c.reset()
}
