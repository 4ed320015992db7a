package kanshi

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
)

// Reloader makes a running kanshi instance pick up freshly written
// profiles. Reload failures are never fatal to an apply: the profile is
// already durably on disk.
type Reloader interface {
	Reload(ctx context.Context) error
}

// ProcessReloader restarts kanshi: kill any running instance, then
// respawn it against our config file.
type ProcessReloader struct {
	configPath string
	logger     *slog.Logger
}

// NewProcessReloader creates a reloader for the given kanshi config.
func NewProcessReloader(configPath string, logger *slog.Logger) *ProcessReloader {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProcessReloader{configPath: configPath, logger: logger}
}

// Reload restarts kanshi. A failed kill is ignored (kanshi may simply
// not be running); a failed respawn is reported.
func (r *ProcessReloader) Reload(ctx context.Context) error {
	if err := exec.CommandContext(ctx, "killall", "kanshi").Run(); err != nil {
		r.logger.Debug("no running kanshi to kill", "error", err)
	}

	// The respawned kanshi must outlive the apply call, so it is not
	// bound to ctx.
	cmd := exec.Command("kanshi", "-c", r.configPath)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start kanshi: %w", err)
	}
	// Reap the child when it eventually exits.
	go func() { _ = cmd.Wait() }()

	r.logger.Info("kanshi restarted", "config", r.configPath)
	return nil
}

// NopReloader is used when profile reloading is disabled in config.
type NopReloader struct{}

func (NopReloader) Reload(context.Context) error { return nil }
