// Package main is the entry point for the swaydisplayd display daemon.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmylchreest/swaydisplayd/internal/compositor"
	"github.com/jmylchreest/swaydisplayd/internal/config"
	"github.com/jmylchreest/swaydisplayd/internal/daemon"
	"github.com/jmylchreest/swaydisplayd/internal/dbus"
	"github.com/jmylchreest/swaydisplayd/internal/kanshi"
	"github.com/jmylchreest/swaydisplayd/internal/state"
)

var (
	// Build-time variables
	version = "dev"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (default: $XDG_CONFIG_HOME/swaydisplayd/config.toml)")
	debug := flag.Bool("debug", false, "Enable debug logging regardless of config")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("swaydisplayd version", version)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	level := logLevel(cfg.Log.Level)
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	logger.Info("starting swaydisplayd", "version", version)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	comp, err := compositor.Connect(ctx)
	if err != nil {
		logger.Error("failed to connect to sway", "error", err)
		os.Exit(1)
	}

	paths := kanshi.ResolvePaths(cfg.Kanshi.Dir)
	writer := kanshi.NewWriter(paths.Profiles, logger)
	var reloader kanshi.Reloader = kanshi.NopReloader{}
	if cfg.Kanshi.Reload {
		reloader = kanshi.NewProcessReloader(paths.Config, logger)
	}
	logger.Info("kanshi paths resolved", "profiles", paths.Profiles, "config", paths.Config, "reload", cfg.Kanshi.Reload)

	store := state.NewStore()
	manager := daemon.NewManager(store, comp, writer, reloader, logger)
	if err := manager.Refresh(ctx); err != nil {
		// The watcher will populate the snapshot once sway responds.
		logger.Warn("initial output query failed", "error", err)
	}

	server := dbus.NewServer(manager, logger)
	manager.SetNotifier(server)
	if err := server.Start(); err != nil {
		logger.Error("failed to start D-Bus server", "error", err)
		os.Exit(1)
	}

	watcher := daemon.NewChangeWatcher(manager, logger)
	watcher.SetInterval(cfg.Watcher.PollInterval.Duration())
	if err := watcher.Start(ctx); err != nil {
		logger.Error("failed to start change watcher", "error", err)
		_ = server.Stop()
		os.Exit(1)
	}

	// Hot-reload the poll interval; kanshi paths and the bus claim need a
	// restart and are logged when they diverge.
	watchedPath := *configPath
	if watchedPath == "" {
		watchedPath = config.Path()
	}
	configWatcher, err := config.NewFileWatcher(watchedPath, func(newCfg *config.Config) {
		if newCfg.Watcher.PollInterval != cfg.Watcher.PollInterval {
			logger.Info("poll interval updated", "interval", newCfg.Watcher.PollInterval.Duration())
			watcher.SetInterval(newCfg.Watcher.PollInterval.Duration())
		}
		if newCfg.Kanshi != cfg.Kanshi {
			logger.Warn("kanshi settings changed; restart swaydisplayd to apply them")
		}
		cfg = newCfg
	}, logger)
	if err != nil {
		logger.Warn("failed to create config watcher", "error", err)
	} else if err := configWatcher.Start(); err != nil {
		logger.Warn("failed to start config watcher", "error", err)
	}

	logger.Info("swaydisplayd ready", "bus_name", dbus.DBusBusName)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("received signal, shutting down", "signal", sig)

	cancel()
	if configWatcher != nil {
		_ = configWatcher.Stop()
	}
	watcher.Stop()
	if err := server.Stop(); err != nil {
		logger.Warn("error stopping D-Bus server", "error", err)
	}

	logger.Info("swaydisplayd stopped")
}

func logLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
