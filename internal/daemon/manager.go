package daemon

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmylchreest/swaydisplayd/internal/compositor"
	"github.com/jmylchreest/swaydisplayd/internal/display"
	"github.com/jmylchreest/swaydisplayd/internal/kanshi"
	"github.com/jmylchreest/swaydisplayd/internal/state"
)

// ApplyMethod selects how a configuration request is executed.
type ApplyMethod uint32

const (
	// MethodVerify validates the request without applying or persisting
	// anything.
	MethodVerify ApplyMethod = iota
	// MethodTemporary persists the profile and pushes the layout to the
	// compositor directly, without restarting kanshi.
	MethodTemporary
	// MethodPersistent persists the profile and restarts kanshi so the
	// arrangement is reapplied automatically from now on.
	MethodPersistent
)

// Notifier emits the MonitorsChanged signal. It is injected into every
// component that needs to announce a state change; there is no global
// connection handle.
type Notifier interface {
	MonitorsChanged()
}

// Manager owns the request flow: it is the only path through which a
// client mutates the display state store.
type Manager struct {
	logger   *slog.Logger
	store    *state.Store
	comp     compositor.Client
	writer   *kanshi.Writer
	reloader kanshi.Reloader
	notifier Notifier
}

// NewManager wires the manager. notifier may be nil until SetNotifier
// is called (the D-Bus server is constructed after the manager).
func NewManager(store *state.Store, comp compositor.Client, writer *kanshi.Writer, reloader kanshi.Reloader, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if reloader == nil {
		reloader = kanshi.NopReloader{}
	}
	return &Manager{
		logger:   logger,
		store:    store,
		comp:     comp,
		writer:   writer,
		reloader: reloader,
	}
}

// SetNotifier installs the change-signal sink.
func (m *Manager) SetNotifier(n Notifier) {
	m.notifier = n
}

// Snapshot returns a read-only copy of the current display state. It
// never touches the compositor.
func (m *Manager) Snapshot() state.Snapshot {
	return m.store.Snapshot()
}

// Refresh queries the compositor and replaces the store's snapshot.
// Used once at startup to populate the initially empty store.
func (m *Manager) Refresh(ctx context.Context) error {
	return m.store.Update(func(st *state.State) error {
		outputs, err := m.comp.Outputs(ctx)
		if err != nil {
			return fmt.Errorf("failed to query compositor: %w", err)
		}
		monitors, logical := display.FromOutputs(outputs)
		st.Replace(monitors, logical)
		return nil
	})
}

// Apply executes one ApplyMonitorsConfig request. The entire flow runs
// under the store's exclusive lock; nothing is written before the whole
// request has validated, and a validation or serial failure leaves both
// the store and the profile directory untouched.
func (m *Manager) Apply(ctx context.Context, serial uint32, method ApplyMethod, entries []display.ApplyEntry, props display.Properties) error {
	return m.store.Update(func(st *state.State) error {
		if serial != st.Serial() {
			m.logger.Warn("rejected configuration with stale serial",
				"got", serial, "current", st.Serial())
			return fmt.Errorf("%w: got %d, current %d", display.ErrStaleSerial, serial, st.Serial())
		}
		if len(entries) == 0 {
			return fmt.Errorf("configuration contains no logical monitors")
		}

		// Resolve and validate every entry before touching anything.
		// Verify and apply share this exact rule set.
		resolved := make([]display.Monitor, len(entries))
		for i, e := range entries {
			monitor, err := e.Resolve(st.Monitors())
			if err != nil {
				return err
			}
			if err := e.Validate(monitor); err != nil {
				return err
			}
			resolved[i] = monitor
		}

		if method == MethodVerify {
			m.logger.Debug("configuration verified", "monitors", len(entries))
			return nil
		}

		profile, commands := m.buildProfile(st, entries, resolved)

		data := profile.Render()
		name := profile.FileName()
		if err := m.writer.Write(name, data); err != nil {
			m.logger.Error("failed to persist profile", "name", name, "error", err)
			return fmt.Errorf("%w: %v", display.ErrPersistence, err)
		}
		m.logger.Info("profile persisted", "name", name, "monitors", len(entries))

		st.SetProperties(props)

		switch method {
		case MethodTemporary:
			// Push the layout straight to the compositor; kanshi keeps
			// the profile for the next time this hardware shows up.
			if err := m.comp.RunCommands(ctx, commands); err != nil {
				m.logger.Error("failed to apply layout via compositor", "error", err)
			}
		case MethodPersistent:
			if err := m.reloader.Reload(ctx); err != nil {
				m.logger.Error("failed to reload kanshi", "error", err)
			}
		}

		// Refresh the snapshot so the next GetCurrentState reflects the
		// applied layout. The profile is already committed, so a failed
		// refresh keeps the previous snapshot and the request still
		// succeeds.
		if outputs, err := m.comp.Outputs(ctx); err != nil {
			m.logger.Error("failed to refresh state after apply", "error", err)
		} else {
			monitors, logical := display.FromOutputs(outputs)
			st.Replace(monitors, logical)
		}

		m.notifyChanged()
		return nil
	})
}

// buildProfile turns the accepted entries into a kanshi profile plus
// the compositor command set. Monitors present in the store but not in
// the request get explicit disable directives.
func (m *Manager) buildProfile(st *state.State, entries []display.ApplyEntry, resolved []display.Monitor) (kanshi.Profile, []string) {
	var profile kanshi.Profile
	var commands []string

	accepted := make(map[string]bool, len(entries))
	for i, e := range entries {
		monitor := resolved[i]
		accepted[monitor.ID.Connector] = true
		profile.Enabled = append(profile.Enabled, kanshi.EnabledOutput{
			Name:      monitor.DisplayName(),
			Mode:      e.ModeID,
			X:         e.X,
			Y:         e.Y,
			Transform: e.Transform().CompositorName(),
			Scale:     display.FormatScale(e.Scale),
		})
		commands = append(commands, e.Commands(monitor)...)
	}
	for _, monitor := range st.Monitors() {
		if !accepted[monitor.ID.Connector] {
			profile.Disabled = append(profile.Disabled, monitor.DisplayName())
			commands = append(commands, fmt.Sprintf("output '%s' disable", monitor.DisplayName()))
		}
	}
	return profile, commands
}

func (m *Manager) notifyChanged() {
	if m.notifier == nil {
		return
	}
	m.notifier.MonitorsChanged()
}
