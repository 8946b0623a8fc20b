package ipc

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/1broseidon/tileexpo/internal/expo"
	"github.com/1broseidon/tileexpo/internal/grid"
)

type fakeHandler struct {
	mu       sync.Mutex
	toggles  int
	reloads  int
	selected []grid.Coord
	err      error
}

func (h *fakeHandler) Toggle(context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.toggles++
	return h.err
}

func (h *fakeHandler) Select(_ context.Context, cell grid.Coord) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.selected = append(h.selected, cell)
	return h.err
}

func (h *fakeHandler) Status(context.Context) (expo.Status, error) {
	return expo.Status{
		State:     expo.StateOverview,
		StateName: expo.StateOverview.String(),
		Grid:      grid.Size{Columns: 3, Rows: 2},
		Active:    grid.Coord{X: 1, Y: 1},
		MaxSteps:  60,
	}, h.err
}

func (h *fakeHandler) Reload(context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.reloads++
	return h.err
}

func startServer(t *testing.T, h Handler) *Client {
	t.Helper()
	// Unix socket paths are length limited, keep it short.
	dir, err := os.MkdirTemp("", "tex")
	if err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	path := filepath.Join(dir, "s.sock")
	srv := NewServer(path, h)
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(srv.Stop)
	return NewClientAt(path)
}

func TestServer_ToggleSelectReload(t *testing.T) {
	h := &fakeHandler{}
	c := startServer(t, h)

	if err := c.Ping(); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if err := c.Toggle(); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if err := c.Select(2, 1); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if err := c.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.toggles != 1 || h.reloads != 1 {
		t.Fatalf("toggles=%d reloads=%d", h.toggles, h.reloads)
	}
	if len(h.selected) != 1 || h.selected[0] != (grid.Coord{X: 2, Y: 1}) {
		t.Fatalf("selected = %v", h.selected)
	}
}

func TestServer_Status(t *testing.T) {
	c := startServer(t, &fakeHandler{})

	st, err := c.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if !st.DaemonRunning {
		t.Fatalf("expected daemon_running")
	}
	if st.StateName != "overview" || st.Grid.Columns != 3 || st.Active.X != 1 || st.MaxSteps != 60 {
		t.Fatalf("unexpected status %+v", st)
	}
}

func TestServer_HandlerErrorIsReported(t *testing.T) {
	c := startServer(t, &fakeHandler{err: errors.New("grid too large")})

	err := c.Toggle()
	if err == nil || !strings.Contains(err.Error(), "grid too large") {
		t.Fatalf("Toggle error = %v", err)
	}
}

func TestHandleCommand_Unknown(t *testing.T) {
	s := &Server{handler: &fakeHandler{}}
	resp := s.handleCommand(context.Background(), &Request{Command: "NOPE"})
	if resp.Status != "ERROR" || !strings.Contains(resp.Error, "NOPE") {
		t.Fatalf("unexpected response %+v", resp)
	}

	resp = s.handleCommand(context.Background(), &Request{Command: CommandSelect, Payload: []byte("{")})
	if resp.Status != "ERROR" {
		t.Fatalf("expected invalid payload error, got %+v", resp)
	}
}

func TestClient_NoDaemon(t *testing.T) {
	c := NewClientAt(filepath.Join(t.TempDir(), "missing.sock"))
	if err := c.Ping(); err == nil || !strings.Contains(err.Error(), "is the daemon running") {
		t.Fatalf("Ping error = %v", err)
	}
}
