package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/1broseidon/tileexpo/internal/config"
	"github.com/1broseidon/tileexpo/internal/daemon"
	"github.com/1broseidon/tileexpo/internal/expo"
	"github.com/1broseidon/tileexpo/internal/hotkeys"
	"github.com/1broseidon/tileexpo/internal/ipc"
	"github.com/1broseidon/tileexpo/internal/platform"
	"github.com/1broseidon/tileexpo/internal/runtimepath"
)

const configDebounce = 250 * time.Millisecond

func runDaemon() int {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Failed to load configuration: %v", err)
		return 1
	}

	level := new(slog.LevelVar)
	if lvl, err := config.ParseLogLevel(cfg.LogLevel); err == nil {
		level.Set(lvl)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	log.Printf("Configuration loaded (activate: %s, duration: %dms, steps: %d)", cfg.Activate, cfg.DurationMs, cfg.Steps())

	opts, err := backendOptions(cfg, logger)
	if err != nil {
		log.Printf("Invalid configuration: %v", err)
		return 1
	}
	backend, err := platform.NewLinuxBackendFromDisplay(opts)
	if err != nil {
		log.Printf("Failed to connect to display: %v", err)
		return 1
	}
	defer backend.Disconnect()

	ctrl := expo.New(expo.Options{
		Host:     backend,
		Lookup:   backend,
		Mover:    backend,
		Capturer: backend,
		Renderer: backend,
		Steps:    cfg.Steps(),
		Logger:   logger,
	})
	ctrl.OnScaleChanged(func(ev expo.ScaleChanged) {
		logger.Debug("overview scale changed", "columns", ev.Columns, "rows", ev.Rows)
	})

	loop := daemon.NewLoop(daemon.LoopConfig{FrameRate: cfg.FrameRate, Logger: logger}, ctrl)
	svc := daemon.NewService(loop, ctrl, config.Load, logger)
	svc.OnReload(func(next *config.Config) {
		if lvl, err := config.ParseLogLevel(next.LogLevel); err == nil {
			level.Set(lvl)
		}
		o, err := backendOptions(next, logger)
		if err != nil {
			logger.Warn("reload: keeping previous colors", "error", err)
			return
		}
		backend.Configure(o)
	})

	conn := backend.Connection()
	hk := hotkeys.NewHandler(conn.XUtil, conn.Root)
	if err := hk.RegisterToggle(cfg.Activate, svc); err != nil {
		log.Printf("Failed to register hotkey: %v", err)
		return 1
	}
	if cfg.ActivateButton != "" {
		if err := hk.RegisterButtonFunc(cfg.ActivateButton, svc.ToggleAsync); err != nil {
			log.Printf("Warning: Failed to register activate button: %v", err)
		}
	}
	bindings := hotkeys.OverlayBindings{Toggle: cfg.Activate, Select: cfg.SelectButton, Move: cfg.MoveButton}
	toOverlay := func(rootX, rootY int) (int, int) {
		p := backend.ScreenPoint(rootX, rootY)
		return p.X, p.Y
	}
	if err := hk.AttachOverlay(backend.OverlayWindow(), bindings, svc, backend, toOverlay); err != nil {
		log.Printf("Failed to bind overlay input: %v", err)
		return 1
	}
	if err := conn.WatchCurrentDesktop(func(desktop int) {
		svc.ViewportChanged(backend.CoordForDesktop(desktop))
	}); err != nil {
		log.Printf("Warning: desktop changes will not be tracked: %v", err)
	}

	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		log.Printf("Failed to resolve socket path: %v", err)
		return 1
	}
	server := ipc.NewServer(socketPath, svc)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reload := func() {
		rctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := svc.Reload(rctx); err != nil {
			logger.Warn("config reload failed", "error", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return loop.Run(gctx) })
	g.Go(func() error { return server.Serve(gctx) })
	g.Go(func() error {
		path, err := config.DefaultConfigPath()
		if err != nil {
			logger.Warn("config watcher disabled", "error", err)
			return nil
		}
		if err := daemon.NewConfigWatcher(path, configDebounce, reload, logger).Run(gctx); err != nil {
			logger.Warn("config watcher disabled", "error", err)
		}
		return nil
	})
	g.Go(func() error {
		hup := make(chan os.Signal, 1)
		signal.Notify(hup, syscall.SIGHUP)
		defer signal.Stop(hup)
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-hup:
				log.Println("Received SIGHUP, reloading config...")
				reload()
			}
		}
	})
	g.Go(func() error {
		<-gctx.Done()
		conn.Quit()
		return nil
	})
	g.Go(func() error {
		log.Println("Entering event loop...")
		conn.EventLoop()
		if gctx.Err() == nil {
			return errors.New("x11 event loop exited")
		}
		return nil
	})

	log.Println("tileexpo daemon started successfully")
	if err := g.Wait(); err != nil {
		log.Printf("Daemon stopped: %v", err)
		return 1
	}
	hk.DetachOverlay(backend.OverlayWindow())
	hk.Unregister()
	log.Println("Shutting down tileexpo daemon...")
	return 0
}

// backendOptions converts config colors for the X11 backend.
func backendOptions(cfg *config.Config, logger *slog.Logger) (platform.Options, error) {
	bg, err := config.ParseColor(cfg.Background)
	if err != nil {
		return platform.Options{}, err
	}
	win, err := config.ParseColor(cfg.WindowColor)
	if err != nil {
		return platform.Options{}, err
	}
	active, err := config.ParseColor(cfg.ActiveColor)
	if err != nil {
		return platform.Options{}, err
	}
	return platform.Options{
		FallbackColumns: cfg.FallbackColumns,
		Background:      bg,
		WindowColor:     win,
		ActiveColor:     active,
		Logger:          logger,
	}, nil
}
