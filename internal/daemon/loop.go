package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrLoopStopped is returned by Call once the loop has exited.
var ErrLoopStopped = errors.New("frame loop stopped")

// Ticker is driven once per frame.
type Ticker interface {
	OnFrameTick() error
}

// LoopConfig holds configuration for the frame loop.
type LoopConfig struct {
	FrameRate int
	Logger    *slog.Logger
}

// Loop serializes all overview work onto a single goroutine and drives the
// frame tick.
type Loop struct {
	interval time.Duration
	ticker   Ticker
	logger   *slog.Logger
	tasks    chan func()
	done     chan struct{}
}

// NewLoop creates a loop ticking t at the configured frame rate.
func NewLoop(cfg LoopConfig, t Ticker) *Loop {
	rate := cfg.FrameRate
	if rate <= 0 {
		rate = 60
	}
	return &Loop{
		interval: time.Second / time.Duration(rate),
		ticker:   t,
		logger:   cfg.Logger,
		tasks:    make(chan func(), 64),
		done:     make(chan struct{}),
	}
}

// Interval returns the time between frames.
func (l *Loop) Interval() time.Duration {
	return l.interval
}

// Run processes tasks and frames. Blocks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.done)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.logger.Info("frame loop started", "interval", l.interval)

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("frame loop stopped")
			return nil
		case fn := <-l.tasks:
			l.run(fn)
		case <-ticker.C:
			l.run(l.tick)
		}
	}
}

func (l *Loop) tick() {
	if err := l.ticker.OnFrameTick(); err != nil {
		l.logger.Warn("frame tick failed", "error", err)
	}
}

func (l *Loop) run(fn func()) {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			l.logger.Error("frame loop panic recovered", "error", err)
		}
	}()
	fn()
}

// Post queues fn for the loop goroutine without waiting.
func (l *Loop) Post(fn func()) {
	select {
	case l.tasks <- fn:
	case <-l.done:
	}
}

// Call runs fn on the loop goroutine and waits for its result. If ctx is done
// before the loop reaches the task, fn is skipped. Once fn has started it
// runs to completion even if Call has already returned ctx.Err().
func (l *Loop) Call(ctx context.Context, fn func() error) error {
	result := make(chan error, 1)
	task := func() {
		var err error
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
			result <- err
		}()
		if err = ctx.Err(); err != nil {
			return
		}
		err = fn()
	}

	select {
	case l.tasks <- task:
	case <-l.done:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-result:
		return err
	case <-l.done:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}
