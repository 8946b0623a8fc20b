package transition

import (
	"errors"
	"math"
	"testing"

	"github.com/1broseidon/tileexpo/internal/grid"
)

const epsilon = 1e-9

func near(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func paramsNear(a, b Params) bool {
	return near(a.ScaleX, b.ScaleX) && near(a.ScaleY, b.ScaleY) && near(a.OffX, b.OffX) && near(a.OffY, b.OffY)
}

type completions struct {
	got []Direction
}

func (c *completions) record(d Direction) {
	c.got = append(c.got, d)
}

func newTestEngine(steps int) (*Engine, *completions) {
	e := NewEngine(steps)
	c := &completions{}
	e.OnComplete = c.record
	return e, c
}

func TestToOverviewReachesFormulaForAllGrids(t *testing.T) {
	const steps = 4
	for cols := 1; cols <= grid.MaxDimension; cols++ {
		for rows := 1; rows <= grid.MaxDimension; rows += 3 {
			size := grid.Size{Columns: cols, Rows: rows}
			for _, active := range []grid.Coord{{}, {X: cols - 1, Y: rows - 1}, {X: cols / 2, Y: rows / 2}} {
				e, done := newTestEngine(steps)
				if err := e.Start(ToOverview, active, active, size); err != nil {
					t.Fatalf("Start(%s, %s): %v", size, active, err)
				}
				for i := 0; i < steps; i++ {
					e.Step()
				}

				got := e.Params()
				wantX := ((float64(active.X)-float64(cols)/2)*2 + 1) / float64(cols)
				wantY := ((float64(rows)/2-float64(active.Y))*2 - 1) / float64(rows)
				if got.ScaleX != 1/float64(cols) || got.ScaleY != 1/float64(rows) {
					t.Fatalf("grid %s: scale = (%v,%v)", size, got.ScaleX, got.ScaleY)
				}
				if got.OffX != wantX || got.OffY != wantY {
					t.Fatalf("grid %s active %s: offsets = (%v,%v), want (%v,%v)",
						size, active, got.OffX, got.OffY, wantX, wantY)
				}
				if len(done.got) != 1 || done.got[0] != ToOverview {
					t.Fatalf("expected one ToOverview completion, got %v", done.got)
				}
			}
		}
	}
}

func TestStepInterpolatesLinearly(t *testing.T) {
	e, _ := newTestEngine(4)
	size := grid.Size{Columns: 2, Rows: 2}
	if err := e.Start(ToOverview, grid.Coord{}, grid.Coord{}, size); err != nil {
		t.Fatalf("Start: %v", err)
	}

	first := e.Step()
	if !paramsNear(first, Identity) {
		t.Fatalf("first frame = %+v, want identity", first)
	}
	second := e.Step()
	if !near(second.ScaleX, 0.875) {
		t.Fatalf("second frame scale_x = %v, want 0.875", second.ScaleX)
	}
	third := e.Step()
	if !near(third.ScaleX, 0.75) {
		t.Fatalf("third frame scale_x = %v, want 0.75", third.ScaleX)
	}
	if !e.Animating() {
		t.Fatalf("expected transition still in flight after 3 of 4 steps")
	}
	final := e.Step()
	if final.ScaleX != 0.5 || e.Animating() {
		t.Fatalf("final frame scale_x = %v animating=%v", final.ScaleX, e.Animating())
	}
}

func TestRoundTripRestoresIdentity(t *testing.T) {
	size := grid.Size{Columns: 4, Rows: 3}
	active := grid.Coord{X: 2, Y: 1}
	e, done := newTestEngine(7)

	if err := e.Start(ToOverview, active, active, size); err != nil {
		t.Fatalf("Start: %v", err)
	}
	for i := 0; i < 7; i++ {
		e.Step()
	}
	if err := e.Start(ToNormal, active, active, size); err != nil {
		t.Fatalf("Start: %v", err)
	}
	for i := 0; i < 7; i++ {
		e.Step()
	}

	if got := e.Params(); got != Identity {
		t.Fatalf("params = %+v, want identity", got)
	}
	if len(done.got) != 2 || done.got[1] != ToNormal {
		t.Fatalf("completions = %v", done.got)
	}
}

func TestStepAfterCompletionIsIdempotent(t *testing.T) {
	size := grid.Size{Columns: 3, Rows: 3}
	e, done := newTestEngine(2)
	if err := e.Start(ToOverview, grid.Coord{X: 1, Y: 1}, grid.Coord{X: 1, Y: 1}, size); err != nil {
		t.Fatalf("Start: %v", err)
	}
	e.Step()
	e.Step()
	want := e.Params()

	for i := 0; i < 5; i++ {
		if got := e.Step(); got != want {
			t.Fatalf("Step() after completion = %+v, want %+v", got, want)
		}
	}
	if len(done.got) != 1 {
		t.Fatalf("completion fired %d times, want 1", len(done.got))
	}
	if e.Target().Steps != 2 {
		t.Fatalf("steps = %d, want 2", e.Target().Steps)
	}
}

func TestZeroStepsCompletesInStart(t *testing.T) {
	size := grid.Size{Columns: 2, Rows: 2}
	e, done := newTestEngine(0)
	if err := e.Start(ToOverview, grid.Coord{}, grid.Coord{}, size); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if len(done.got) != 1 {
		t.Fatalf("completion fired %d times inside Start, want 1", len(done.got))
	}
	if got := e.Params(); got != OverviewParams(size, grid.Coord{}) {
		t.Fatalf("params = %+v", got)
	}
	e.Step()
	if len(done.got) != 1 {
		t.Fatalf("Step re-fired completion")
	}
}

func TestStartRejectsInvalidInput(t *testing.T) {
	e, done := newTestEngine(3)
	tests := []struct {
		name   string
		size   grid.Size
		active grid.Coord
		ret    grid.Coord
		want   error
	}{
		{name: "too large", size: grid.Size{Columns: 33, Rows: 2}, want: grid.ErrGridTooLarge},
		{name: "empty", size: grid.Size{Columns: 0, Rows: 2}, want: grid.ErrGridEmpty},
		{name: "active out of range", size: grid.Size{Columns: 2, Rows: 2}, active: grid.Coord{X: 2}, want: grid.ErrOutOfRange},
		{name: "return out of range", size: grid.Size{Columns: 2, Rows: 2}, ret: grid.Coord{Y: -1}, want: grid.ErrOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := e.Start(ToOverview, tt.active, tt.ret, tt.size)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Start() = %v, want %v", err, tt.want)
			}
		})
	}
	if e.Animating() || len(done.got) != 0 {
		t.Fatalf("rejected starts must not change engine state")
	}
	if e.Params() != Identity {
		t.Fatalf("params changed after rejected start: %+v", e.Params())
	}
}

func TestReverseMidFlightStartsFromLiveParams(t *testing.T) {
	size := grid.Size{Columns: 3, Rows: 3}
	active := grid.Coord{X: 1, Y: 1}
	e, done := newTestEngine(10)
	if err := e.Start(ToOverview, active, active, size); err != nil {
		t.Fatalf("Start: %v", err)
	}
	for i := 0; i < 4; i++ {
		e.Step()
	}
	live := e.Params()

	if err := e.Start(ToNormal, active, active, size); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if got := e.Target(); got.ScaleX.Begin != live.ScaleX || got.OffY.Begin != live.OffY {
		t.Fatalf("reversal began at %+v, want live %+v", got, live)
	}
	if len(done.got) != 0 {
		t.Fatalf("interrupted transition must not complete, got %v", done.got)
	}
	if got := e.Step(); !paramsNear(got, live) {
		t.Fatalf("first reversed frame = %+v, want %+v", got, live)
	}
}

func TestReverseMidFlightRebasesOnNewAnchor(t *testing.T) {
	size := grid.Size{Columns: 3, Rows: 3}
	active := grid.Coord{X: 1, Y: 1}
	ret := grid.Coord{X: 0, Y: 2}
	e, _ := newTestEngine(10)
	if err := e.Start(ToOverview, active, active, size); err != nil {
		t.Fatalf("Start: %v", err)
	}
	for i := 0; i < 10; i++ {
		e.Step()
	}

	// Once stationary, the ToNormal formula and a rebase of the overview agree.
	rebased := Rebase(e.Params(), active, ret)
	if !paramsNear(rebased, OverviewParams(size, ret)) {
		t.Fatalf("rebased = %+v, want %+v", rebased, OverviewParams(size, ret))
	}

	if err := e.Start(ToNormal, active, ret, size); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := e.Start(ToOverview, ret, ret, size); err != nil {
		t.Fatalf("Start: %v", err)
	}
	e.Step()
	e.Step()
	live := e.Params()
	if err := e.Start(ToNormal, ret, active, size); err != nil {
		t.Fatalf("Start: %v", err)
	}
	begin := e.Target()
	if begin.ScaleX.Begin != live.ScaleX {
		t.Fatalf("scale began at %v, want live %v", begin.ScaleX.Begin, live.ScaleX)
	}
	want := Rebase(live, ret, active)
	if begin.OffX.Begin != want.OffX || begin.OffY.Begin != want.OffY {
		t.Fatalf("offsets began at (%v,%v), want (%v,%v)", begin.OffX.Begin, begin.OffY.Begin, want.OffX, want.OffY)
	}
	if e.Anchor() != active {
		t.Fatalf("anchor = %s, want %s", e.Anchor(), active)
	}
}

func TestAlignKeepsScale(t *testing.T) {
	size := grid.Size{Columns: 4, Rows: 2}
	e, _ := newTestEngine(1)
	if err := e.Start(ToOverview, grid.Coord{}, grid.Coord{}, size); err != nil {
		t.Fatalf("Start: %v", err)
	}
	e.Step()

	if err := e.Align(size, grid.Coord{X: 3, Y: 1}); err != nil {
		t.Fatalf("Align: %v", err)
	}
	want := OverviewParams(size, grid.Coord{X: 3, Y: 1})
	if got := e.Params(); got != want {
		t.Fatalf("params = %+v, want %+v", got, want)
	}
	if err := e.Align(size, grid.Coord{X: 4, Y: 0}); !errors.Is(err, grid.ErrOutOfRange) {
		t.Fatalf("Align out of range = %v", err)
	}
}

func TestSetMaxStepsAppliesToNextTransition(t *testing.T) {
	size := grid.Size{Columns: 2, Rows: 1}
	e, _ := newTestEngine(3)
	if err := e.Start(ToOverview, grid.Coord{}, grid.Coord{}, size); err != nil {
		t.Fatalf("Start: %v", err)
	}
	e.Step()
	e.SetMaxSteps(9)
	if e.MaxSteps() != 3 {
		t.Fatalf("in-flight max steps changed to %d", e.MaxSteps())
	}
	e.Step()
	e.Step()
	if e.Animating() {
		t.Fatalf("expected completion after original step count")
	}
	if err := e.Start(ToNormal, grid.Coord{}, grid.Coord{}, size); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if e.MaxSteps() != 9 {
		t.Fatalf("max steps = %d, want 9", e.MaxSteps())
	}
}

func TestSetMaxStepsAfterCompletionDoesNotRestart(t *testing.T) {
	size := grid.Size{Columns: 3, Rows: 3}
	e, done := newTestEngine(10)
	if err := e.Start(ToOverview, grid.Coord{X: 1, Y: 1}, grid.Coord{X: 1, Y: 1}, size); err != nil {
		t.Fatalf("Start: %v", err)
	}
	for i := 0; i < 10; i++ {
		e.Step()
	}
	want := e.Params()

	e.SetMaxSteps(20)
	if e.Animating() {
		t.Fatalf("raising max steps while idle restarted the transition")
	}
	for i := 0; i < 21; i++ {
		if got := e.Step(); got != want {
			t.Fatalf("Step() after reload = %+v, want %+v", got, want)
		}
	}
	if len(done.got) != 1 {
		t.Fatalf("completion fired %d times, want 1", len(done.got))
	}

	// Back to normal, then a longer duration: the next zoom-out starts at identity.
	if err := e.Start(ToNormal, grid.Coord{}, grid.Coord{}, size); err != nil {
		t.Fatalf("Start: %v", err)
	}
	for i := 0; i < 20; i++ {
		e.Step()
	}
	e.SetMaxSteps(28)
	if err := e.Start(ToOverview, grid.Coord{X: 2, Y: 2}, grid.Coord{X: 2, Y: 2}, size); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if got := e.Params(); got != Identity {
		t.Fatalf("begin params = %+v, want identity", got)
	}
}
