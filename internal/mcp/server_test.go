package mcp

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/1broseidon/tileexpo/internal/expo"
	"github.com/1broseidon/tileexpo/internal/grid"
	"github.com/1broseidon/tileexpo/internal/ipc"
	"github.com/1broseidon/tileexpo/internal/transition"
)

type fakeDaemon struct {
	shown    bool
	selected []grid.Coord
	err      error
}

func (d *fakeDaemon) Toggle() error {
	if d.err != nil {
		return d.err
	}
	d.shown = !d.shown
	return nil
}

func (d *fakeDaemon) Select(x, y int) error {
	if d.err != nil {
		return d.err
	}
	d.selected = append(d.selected, grid.Coord{X: x, Y: y})
	d.shown = false
	return nil
}

func (d *fakeDaemon) GetStatus() (*ipc.StatusData, error) {
	if d.err != nil {
		return nil, d.err
	}
	state := expo.StateNormal
	params := transition.Identity
	if d.shown {
		state = expo.StateOverview
		params = transition.OverviewParams(grid.Size{Columns: 3, Rows: 2}, grid.Coord{X: 1})
	}
	return &ipc.StatusData{
		Status: expo.Status{
			State:     state,
			StateName: state.String(),
			Grid:      grid.Size{Columns: 3, Rows: 2},
			Active:    grid.Coord{X: 1},
			Params:    params,
			MaxSteps:  60,
		},
		UptimeSeconds: 42,
		DaemonRunning: true,
	}, nil
}

func TestHandleToggle(t *testing.T) {
	d := &fakeDaemon{}
	s := NewServer(d)

	_, out, err := s.handleToggle(context.Background(), nil, ToggleInput{})
	if err != nil {
		t.Fatalf("handleToggle: %v", err)
	}
	if out.State != "overview" {
		t.Fatalf("state = %q, want overview", out.State)
	}
}

func TestHandleSelect(t *testing.T) {
	d := &fakeDaemon{shown: true}
	s := NewServer(d)

	_, out, err := s.handleSelect(context.Background(), nil, SelectInput{X: 2, Y: 1})
	if err != nil {
		t.Fatalf("handleSelect: %v", err)
	}
	if out.X != 2 || out.Y != 1 || out.State != "normal" {
		t.Fatalf("unexpected output %+v", out)
	}
	if len(d.selected) != 1 || d.selected[0] != (grid.Coord{X: 2, Y: 1}) {
		t.Fatalf("selected = %v", d.selected)
	}

	if _, _, err := s.handleSelect(context.Background(), nil, SelectInput{X: -1}); err == nil {
		t.Fatalf("expected negative coordinate to fail")
	}
}

func TestHandleStatus(t *testing.T) {
	s := NewServer(&fakeDaemon{shown: true})

	_, out, err := s.handleStatus(context.Background(), nil, StatusInput{})
	if err != nil {
		t.Fatalf("handleStatus: %v", err)
	}
	if out.Columns != 3 || out.Rows != 2 || out.ActiveX != 1 || out.UptimeSeconds != 42 {
		t.Fatalf("unexpected status %+v", out)
	}
	if out.ScaleX != 1.0/3 || out.ScaleY != 0.5 {
		t.Fatalf("scale = %v,%v", out.ScaleX, out.ScaleY)
	}
}

func TestHandlersWrapDaemonErrors(t *testing.T) {
	s := NewServer(&fakeDaemon{err: errors.New("failed to connect to daemon")})

	if _, _, err := s.handleToggle(context.Background(), nil, ToggleInput{}); err == nil || !strings.Contains(err.Error(), "overview_toggle") {
		t.Fatalf("toggle error = %v", err)
	}
	if _, _, err := s.handleStatus(context.Background(), nil, StatusInput{}); err == nil || !strings.Contains(err.Error(), "connect") {
		t.Fatalf("status error = %v", err)
	}
}
