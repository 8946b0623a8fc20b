package daemon

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/1broseidon/tileexpo/internal/config"
	"github.com/1broseidon/tileexpo/internal/expo"
	"github.com/1broseidon/tileexpo/internal/grid"
)

// ConfigLoader returns a freshly loaded config.
type ConfigLoader func() (*config.Config, error)

// Service exposes the controller to other goroutines by running every call on
// the frame loop.
type Service struct {
	loop       *Loop
	ctrl       *expo.Controller
	loadConfig ConfigLoader
	logger     *slog.Logger
	onReload   []func(*config.Config)
}

// NewService wraps ctrl, which must only be driven by loop.
func NewService(loop *Loop, ctrl *expo.Controller, load ConfigLoader, logger *slog.Logger) *Service {
	return &Service{
		loop:       loop,
		ctrl:       ctrl,
		loadConfig: load,
		logger:     logger,
	}
}

// OnReload registers fn to run on the loop after a successful reload.
func (s *Service) OnReload(fn func(*config.Config)) {
	s.onReload = append(s.onReload, fn)
}

// Toggle toggles the overview.
func (s *Service) Toggle(ctx context.Context) error {
	return s.loop.Call(ctx, s.ctrl.Toggle)
}

// Select zooms into cell.
func (s *Service) Select(ctx context.Context, cell grid.Coord) error {
	return s.loop.Call(ctx, func() error {
		return s.ctrl.Select(cell)
	})
}

// Status returns a controller snapshot.
func (s *Service) Status(ctx context.Context) (expo.Status, error) {
	var st expo.Status
	err := s.loop.Call(ctx, func() error {
		st = s.ctrl.Status()
		return nil
	})
	return st, err
}

// Reload re-reads the config and applies the new transition length.
func (s *Service) Reload(ctx context.Context) error {
	cfg, err := s.loadConfig()
	if err != nil {
		return fmt.Errorf("reload config: %w", err)
	}
	return s.loop.Call(ctx, func() error {
		s.ctrl.SetDuration(cfg.Steps())
		for _, fn := range s.onReload {
			fn(cfg)
		}
		s.logger.Info("config applied", "duration_ms", cfg.DurationMs, "steps", cfg.Steps())
		return nil
	})
}

// PressAt forwards a pointer press from the event goroutine.
func (s *Service) PressAt(x, y int) {
	s.loop.Post(func() {
		if err := s.ctrl.PressAt(x, y); err != nil {
			s.logger.Warn("press failed", "x", x, "y", y, "error", err)
		}
	})
}

// DragAt forwards a drag start from the event goroutine.
func (s *Service) DragAt(x, y int) {
	s.loop.Post(func() {
		if err := s.ctrl.DragAt(x, y); err != nil {
			s.logger.Warn("drag failed", "x", x, "y", y, "error", err)
		}
	})
}

// ToggleAsync toggles without waiting, for hotkey callbacks.
func (s *Service) ToggleAsync() {
	s.loop.Post(func() {
		if err := s.ctrl.Toggle(); err != nil {
			s.logger.Warn("toggle failed", "error", err)
		}
	})
}

// ViewportChanged forwards a viewport switch made outside the overview.
func (s *Service) ViewportChanged(cell grid.Coord) {
	s.loop.Post(func() {
		if err := s.ctrl.OnViewportChanged(cell); err != nil {
			s.logger.Debug("viewport change ignored", "viewport", cell.String(), "error", err)
		}
	})
}
