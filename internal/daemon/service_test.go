package daemon

import (
	"context"
	"errors"
	"testing"

	"github.com/1broseidon/tileexpo/internal/config"
	"github.com/1broseidon/tileexpo/internal/expo"
	"github.com/1broseidon/tileexpo/internal/grid"
)

type stubHost struct {
	size   grid.Size
	active grid.Coord
	owned  bool
}

func (h *stubHost) GridSize() grid.Size               { return h.size }
func (h *stubHost) ActiveViewport() grid.Coord        { return h.active }
func (h *stubHost) ScreenSize() grid.Screen           { return grid.Screen{Width: 1920, Height: 1080} }
func (h *stubHost) AcquireOwnership() bool            { h.owned = true; return true }
func (h *stubHost) ReleaseOwnership()                 { h.owned = false }
func (h *stubHost) SwitchViewport(c grid.Coord) error { h.active = c; return nil }

func newTestService(t *testing.T, load ConfigLoader) (*Service, *stubHost) {
	t.Helper()
	host := &stubHost{size: grid.Size{Columns: 3, Rows: 3}, active: grid.Coord{X: 1, Y: 1}}
	ctrl := expo.New(expo.Options{Host: host, Steps: 0})
	loop, _ := startLoop(t, ctrl, 120)
	return NewService(loop, ctrl, load, discardLogger()), host
}

func TestService_ToggleAndSelect(t *testing.T) {
	svc, host := newTestService(t, nil)
	ctx := context.Background()

	if err := svc.Toggle(ctx); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	st, err := svc.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if st.State != expo.StateOverview {
		t.Fatalf("state = %s, want overview", st.StateName)
	}

	if err := svc.Select(ctx, grid.Coord{X: 2, Y: 0}); err != nil {
		t.Fatalf("Select: %v", err)
	}
	st, _ = svc.Status(ctx)
	if st.State != expo.StateNormal {
		t.Fatalf("state = %s, want normal", st.StateName)
	}
	if host.active != (grid.Coord{X: 2, Y: 0}) || host.owned {
		t.Fatalf("host active=%v owned=%v", host.active, host.owned)
	}
}

func TestService_SelectWhileNormal(t *testing.T) {
	svc, _ := newTestService(t, nil)
	if err := svc.Select(context.Background(), grid.Coord{}); !errors.Is(err, expo.ErrNotShown) {
		t.Fatalf("Select error = %v", err)
	}
}

func TestService_ReloadAppliesSteps(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DurationMs = 500
	svc, _ := newTestService(t, func() (*config.Config, error) { return cfg, nil })

	var seen *config.Config
	svc.OnReload(func(c *config.Config) { seen = c })

	ctx := context.Background()
	if err := svc.Reload(ctx); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	st, _ := svc.Status(ctx)
	if st.MaxSteps != 30 {
		t.Fatalf("MaxSteps = %d, want 30", st.MaxSteps)
	}
	if seen != cfg {
		t.Fatalf("reload hook not called")
	}
}

func TestService_ReloadError(t *testing.T) {
	want := errors.New("bad yaml")
	svc, _ := newTestService(t, func() (*config.Config, error) { return nil, want })
	if err := svc.Reload(context.Background()); !errors.Is(err, want) {
		t.Fatalf("Reload error = %v", err)
	}
}
