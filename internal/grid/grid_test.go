package grid

import (
	"errors"
	"testing"
)

func TestSizeValidate(t *testing.T) {
	tests := []struct {
		name string
		size Size
		want error
	}{
		{name: "single", size: Size{Columns: 1, Rows: 1}},
		{name: "max", size: Size{Columns: 32, Rows: 32}},
		{name: "empty columns", size: Size{Columns: 0, Rows: 3}, want: ErrGridEmpty},
		{name: "negative rows", size: Size{Columns: 2, Rows: -1}, want: ErrGridEmpty},
		{name: "too wide", size: Size{Columns: 33, Rows: 1}, want: ErrGridTooLarge},
		{name: "too tall", size: Size{Columns: 4, Rows: 40}, want: ErrGridTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.size.Validate()
			if tt.want == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSizeCheck(t *testing.T) {
	size := Size{Columns: 3, Rows: 2}
	if err := size.Check(Coord{X: 2, Y: 1}); err != nil {
		t.Fatalf("expected (2,1) in range, got %v", err)
	}
	for _, c := range []Coord{{X: 3, Y: 0}, {X: 0, Y: 2}, {X: -1, Y: 0}} {
		if err := size.Check(c); !errors.Is(err, ErrOutOfRange) {
			t.Fatalf("Check(%s) = %v, want ErrOutOfRange", c, err)
		}
	}
}

func TestIndexRoundTrip(t *testing.T) {
	size := Size{Columns: 4, Rows: 3}
	for i := 0; i < size.Cells(); i++ {
		c := size.CoordAt(i)
		if !size.Contains(c) {
			t.Fatalf("CoordAt(%d) = %s outside grid", i, c)
		}
		if got := size.IndexOf(c); got != i {
			t.Fatalf("IndexOf(CoordAt(%d)) = %d", i, got)
		}
	}
}

func TestSizeForCount(t *testing.T) {
	tests := []struct {
		count, columns int
		want           Size
	}{
		{count: 4, columns: 2, want: Size{Columns: 2, Rows: 2}},
		{count: 5, columns: 2, want: Size{Columns: 2, Rows: 3}},
		{count: 3, columns: 0, want: Size{Columns: 3, Rows: 1}},
		{count: 2, columns: 8, want: Size{Columns: 2, Rows: 1}},
		{count: 0, columns: 2, want: Size{}},
	}
	for _, tt := range tests {
		if got := SizeForCount(tt.count, tt.columns); got != tt.want {
			t.Fatalf("SizeForCount(%d, %d) = %s, want %s", tt.count, tt.columns, got, tt.want)
		}
	}
}

func TestScreenToViewport(t *testing.T) {
	screen := Screen{Width: 1920, Height: 1080}
	size := Size{Columns: 3, Rows: 3}

	cell, lx, ly := ScreenToViewport(50, 50, screen, size)
	if cell != (Coord{X: 0, Y: 0}) || lx != 50 || ly != 50 {
		t.Fatalf("got %s local (%d,%d)", cell, lx, ly)
	}

	cell, lx, ly = ScreenToViewport(1300, 800, screen, size)
	if cell != (Coord{X: 2, Y: 2}) || lx != 20 || ly != 80 {
		t.Fatalf("got %s local (%d,%d)", cell, lx, ly)
	}

	// Out-of-bounds pixels are not clamped.
	cell, _, _ = ScreenToViewport(1920, 0, screen, size)
	if cell.X != 3 {
		t.Fatalf("expected unclamped column 3, got %d", cell.X)
	}
}

func TestCellScreenOrigin(t *testing.T) {
	screen := Screen{Width: 1920, Height: 1080}
	ox, oy := CellScreenOrigin(Coord{X: 0, Y: 2}, Coord{X: 1, Y: 1}, screen)
	if ox != -1920 || oy != 1080 {
		t.Fatalf("CellScreenOrigin = (%d,%d), want (-1920,1080)", ox, oy)
	}
}

func TestScreenToViewportRecoversCellFromOrigin(t *testing.T) {
	screens := []Screen{{Width: 1920, Height: 1080}, {Width: 1366, Height: 768}, {Width: 1000, Height: 999}}
	active := Coord{X: 1, Y: 2}
	for _, screen := range screens {
		for cols := 2; cols <= MaxDimension; cols += 5 {
			for rows := 3; rows <= MaxDimension; rows += 7 {
				size := Size{Columns: cols, Rows: rows}
				cw, ch := CellSize(screen, size)
				for y := 0; y < rows; y++ {
					for x := 0; x < cols; x++ {
						cell := Coord{X: x, Y: y}
						px := x*cw + cw/2
						py := y*ch + ch - 1

						got, lx, ly := ScreenToViewport(px, py, screen, size)
						if got != cell {
							t.Fatalf("screen %v grid %s: point (%d,%d) mapped to %s, want %s",
								screen, size, px, py, got, cell)
						}

						ox, oy := CellScreenOrigin(got, active, screen)
						rx := ox + lx*cols
						ry := oy + ly*rows
						back := Coord{
							X: floorDiv(rx, screen.Width) + active.X,
							Y: floorDiv(ry, screen.Height) + active.Y,
						}
						if back != cell {
							t.Fatalf("screen %v grid %s: origin composition gave %s, want %s",
								screen, size, back, cell)
						}
					}
				}
			}
		}
	}
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func TestActiveSpacePoint(t *testing.T) {
	screen := Screen{Width: 1920, Height: 1080}
	size := Size{Columns: 3, Rows: 3}
	active := Coord{X: 1, Y: 1}

	// Tile (0,0) local (10,20) sits one viewport left and up of the active one.
	x, y := ActiveSpacePoint(10, 20, screen, size, active)
	if x != -1920+30 || y != -1080+60 {
		t.Fatalf("ActiveSpacePoint = (%d,%d)", x, y)
	}

	// The active tile maps onto the live screen.
	x, y = ActiveSpacePoint(640+100, 360+50, screen, size, active)
	if x != 300 || y != 150 {
		t.Fatalf("ActiveSpacePoint = (%d,%d), want (300,150)", x, y)
	}
}
