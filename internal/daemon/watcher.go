package daemon

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jmylchreest/swaydisplayd/internal/display"
	"github.com/jmylchreest/swaydisplayd/internal/state"
)

// DefaultPollInterval bounds how long a hardware change can go
// unnoticed. Changes must surface within about a second.
const DefaultPollInterval = 650 * time.Millisecond

// ChangeWatcher detects hardware and compositor-state changes
// independent of client activity. Each cycle queries the compositor,
// diffs the result against the previous cycle, and on any difference
// replaces the store snapshot and emits one change notification.
type ChangeWatcher struct {
	mu      sync.Mutex
	logger  *slog.Logger
	manager *Manager

	interval time.Duration

	prevMonitors map[string]struct{}
	prevLogical  map[string]struct{}

	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// NewChangeWatcher creates a watcher over the manager's store and
// compositor client.
func NewChangeWatcher(manager *Manager, logger *slog.Logger) *ChangeWatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChangeWatcher{
		logger:       logger,
		manager:      manager,
		interval:     DefaultPollInterval,
		prevMonitors: make(map[string]struct{}),
		prevLogical:  make(map[string]struct{}),
	}
}

// SetInterval adjusts the polling interval; takes effect on the next
// cycle.
func (w *ChangeWatcher) SetInterval(interval time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if interval > 0 {
		w.interval = interval
	}
}

// Start begins the polling loop. The loop runs until Stop is called or
// ctx is cancelled; both are honored at every sleep boundary.
func (w *ChangeWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.mu.Unlock()

	go w.watchLoop(ctx)

	w.logger.Debug("change watcher started", "interval", w.interval)
	return nil
}

// Stop terminates the polling loop and waits for it to exit.
func (w *ChangeWatcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.stopCh)
	doneCh := w.doneCh
	w.mu.Unlock()

	<-doneCh
	w.logger.Debug("change watcher stopped")
}

func (w *ChangeWatcher) watchLoop(ctx context.Context) {
	defer close(w.doneCh)

	for {
		w.mu.Lock()
		interval := w.interval
		w.mu.Unlock()

		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-time.After(interval):
		}

		// A query failure keeps the previous snapshot; the loop never
		// propagates errors.
		if err := w.cycle(ctx); err != nil {
			w.logger.Warn("compositor query failed, keeping previous state", "error", err)
		}
	}
}

// cycle runs one poll iteration under the store's exclusive lock, so
// change detection never races an in-flight apply.
func (w *ChangeWatcher) cycle(ctx context.Context) error {
	return w.manager.store.Update(func(st *state.State) error {
		outputs, err := w.manager.comp.Outputs(ctx)
		if err != nil {
			return err
		}
		monitors, logical := display.FromOutputs(outputs)

		monSet := make(map[string]struct{}, len(monitors))
		for _, m := range monitors {
			monSet[m.IdentityKey()] = struct{}{}
		}
		logSet := make(map[string]struct{}, len(logical))
		for _, l := range logical {
			logSet[l.IdentityKey()] = struct{}{}
		}

		if !changed(monSet, w.prevMonitors) && !changed(logSet, w.prevLogical) {
			return nil
		}

		w.prevMonitors = monSet
		w.prevLogical = logSet
		st.Replace(monitors, logical)
		w.logger.Info("display state changed",
			"monitors", len(monitors), "logical_monitors", len(logical), "serial", st.Serial())
		w.manager.notifyChanged()
		return nil
	})
}

// changed reports whether the current set contains any member the
// previous set did not.
func changed(current, previous map[string]struct{}) bool {
	for key := range current {
		if _, ok := previous[key]; !ok {
			return true
		}
	}
	return false
}
