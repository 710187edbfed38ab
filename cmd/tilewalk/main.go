package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Versifine/tilewalk/internal/config"
	"github.com/Versifine/tilewalk/internal/debug"
	"github.com/Versifine/tilewalk/internal/event"
	"github.com/Versifine/tilewalk/internal/footstep"
	"github.com/Versifine/tilewalk/internal/gui"
	"github.com/Versifine/tilewalk/internal/logger"
	"github.com/Versifine/tilewalk/internal/session"
	"github.com/Versifine/tilewalk/internal/tui"
)

const headlessMaxFrames = 100000

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the YAML config")
	frontend := flag.String("frontend", "", "override render.frontend (tui, console, gui, headless)")
	goals := flag.Int("goals", 10, "number of random goals walked in headless mode")
	seed := flag.Int64("seed", time.Now().UnixNano(), "seed for headless goals")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	if *frontend != "" {
		cfg.Render.Frontend = *frontend
	}

	if err := run(cfg, *goals, *seed); err != nil {
		slog.Error("tilewalk failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, goals int, seed int64) error {
	// Interactive frontends own the terminal, so their logs go to a file.
	logPath := cfg.Logging.File
	if cfg.Render.Frontend == config.FrontendHeadless {
		logPath = "-"
	}
	out, err := logger.OpenOutput(logPath)
	if err != nil {
		return fmt.Errorf("open log output: %w", err)
	}
	defer out.Close()
	logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: out,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bus := event.NewBus()
	bus.SubscribeAll(event.LogHandler, event.All...)

	sess, err := session.Build(cfg, nil, bus)
	if err != nil {
		return err
	}
	slog.Info("Session ready",
		"frontend", cfg.Render.Frontend,
		"world", fmt.Sprintf("%dx%d", sess.Grid().Width(), sess.Grid().Height()),
		"spawn", sess.Grid().Spawn().String(),
		"tick", cfg.Loop.TickDuration(),
	)

	if cfg.Render.Sound && cfg.Render.Frontend != config.FrontendHeadless {
		player, err := footstep.OpenSpeaker()
		if err != nil {
			slog.Warn("Audio initialization failed, running without sound", "error", err)
		} else {
			defer player.Close()
			footstep.New(player).Attach(bus)
		}
	}

	switch cfg.Render.Frontend {
	case config.FrontendTUI:
		screen, err := tui.OpenScreen()
		if err != nil {
			return err
		}
		defer screen.Fini()
		app, err := tui.New(sess, screen)
		if err != nil {
			return err
		}
		return app.Run(ctx)
	case config.FrontendConsole:
		return debug.NewConsole(sess).Start(ctx)
	case config.FrontendGUI:
		game, err := gui.New(ctx, sess)
		if err != nil {
			return err
		}
		return game.Run()
	case config.FrontendHeadless:
		return runHeadless(sess, goals, seed)
	default:
		return fmt.Errorf("unknown frontend %q", cfg.Render.Frontend)
	}
}

func runHeadless(sess *session.Session, goals int, seed int64) error {
	targets := session.RandomGoals(sess.Grid(), goals, seed)
	res, err := sess.RunScript(targets, 0, headlessMaxFrames)
	if err != nil {
		return fmt.Errorf("headless script: %w", err)
	}
	slog.Info("Headless run finished",
		"goals", res.Goals,
		"reached", len(res.Reached),
		"rejected", res.Rejected,
		"ticks", res.Ticks,
		"frames", res.Frames,
		"simulated", res.Elapsed,
		"seed", seed,
	)
	return nil
}
