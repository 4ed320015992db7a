package daemon

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/joshuarubin/go-sway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/swaydisplayd/internal/display"
	"github.com/jmylchreest/swaydisplayd/internal/kanshi"
	"github.com/jmylchreest/swaydisplayd/internal/state"
)

// fakeCompositor is an in-memory compositor.Client.
type fakeCompositor struct {
	mu       sync.Mutex
	outputs  []sway.Output
	queryErr error
	commands []string
}

func (f *fakeCompositor) Outputs(context.Context) ([]sway.Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	out := make([]sway.Output, len(f.outputs))
	copy(out, f.outputs)
	return out, nil
}

func (f *fakeCompositor) RunCommands(_ context.Context, cmds []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commands = append(f.commands, cmds...)
	return nil
}

func (f *fakeCompositor) setOutputs(outputs []sway.Output) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outputs = outputs
}

func (f *fakeCompositor) setQueryErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queryErr = err
}

// countingNotifier counts MonitorsChanged emissions.
type countingNotifier struct {
	mu    sync.Mutex
	count int
}

func (n *countingNotifier) MonitorsChanged() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.count++
}

func (n *countingNotifier) Count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.count
}

type recordingReloader struct {
	mu    sync.Mutex
	calls int
}

func (r *recordingReloader) Reload(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return nil
}

func (r *recordingReloader) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func swayOutput(connector, make_, model, serial string, active bool) sway.Output {
	return sway.Output{
		Name:        connector,
		Make:        make_,
		Model:       model,
		Serial:      serial,
		Active:      active,
		Scale:       1.0,
		Transform:   "normal",
		CurrentMode: sway.OutputMode{Width: 1920, Height: 1080, Refresh: 60000},
		Modes: []sway.OutputMode{
			{Width: 1920, Height: 1080, Refresh: 60000},
		},
		Rect: sway.Rect{X: 0, Y: 0, Width: 1920, Height: 1080},
	}
}

type fixture struct {
	manager  *Manager
	store    *state.Store
	comp     *fakeCompositor
	notifier *countingNotifier
	reloader *recordingReloader
	dir      string
}

func newFixture(t *testing.T, outputs ...sway.Output) *fixture {
	t.Helper()

	comp := &fakeCompositor{outputs: outputs}
	store := state.NewStore()
	dir := t.TempDir()
	reloader := &recordingReloader{}
	notifier := &countingNotifier{}

	manager := NewManager(store, comp, kanshi.NewWriter(dir, nil), reloader, nil)
	manager.SetNotifier(notifier)
	require.NoError(t, manager.Refresh(context.Background()))

	return &fixture{
		manager:  manager,
		store:    store,
		comp:     comp,
		notifier: notifier,
		reloader: reloader,
		dir:      dir,
	}
}

func (f *fixture) profileFiles(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(f.dir)
	require.NoError(t, err)
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names
}

func validEntry() display.ApplyEntry {
	return display.ApplyEntry{
		X:             0,
		Y:             0,
		Scale:         1.0,
		TransformCode: 0,
		Connector:     "DP-1",
		ModeID:        "1920x1080@60Hz",
	}
}

func TestApplyStaleSerial(t *testing.T) {
	f := newFixture(t, swayOutput("DP-1", "A", "B", "C", true))
	ctx := context.Background()

	before := f.manager.Snapshot()
	err := f.manager.Apply(ctx, before.Serial+1, MethodPersistent, []display.ApplyEntry{validEntry()}, display.DefaultProperties())
	assert.ErrorIs(t, err, display.ErrStaleSerial)

	// Store and profile directory are untouched.
	assert.Equal(t, before.Serial, f.manager.Snapshot().Serial)
	assert.Empty(t, f.profileFiles(t))
	assert.Equal(t, 0, f.notifier.Count())
}

func TestApplyVerifyWritesNothing(t *testing.T) {
	f := newFixture(t, swayOutput("DP-1", "A", "B", "C", true))
	ctx := context.Background()

	before := f.manager.Snapshot()
	err := f.manager.Apply(ctx, before.Serial, MethodVerify, []display.ApplyEntry{validEntry()}, display.DefaultProperties())
	require.NoError(t, err)

	assert.Equal(t, before.Serial, f.manager.Snapshot().Serial)
	assert.Equal(t, before.Properties, f.manager.Snapshot().Properties)
	assert.Empty(t, f.profileFiles(t))
	assert.Equal(t, 0, f.notifier.Count())
	assert.Equal(t, 0, f.reloader.Calls())
}

func TestApplyVerifyReportsValidationFailure(t *testing.T) {
	f := newFixture(t, swayOutput("DP-1", "A", "B", "C", true))

	bad := validEntry()
	bad.Scale = 3.0
	err := f.manager.Apply(context.Background(), f.manager.Snapshot().Serial, MethodVerify,
		[]display.ApplyEntry{bad}, display.DefaultProperties())
	assert.ErrorIs(t, err, display.ErrInvalidScale)
}

func TestApplyPersistent(t *testing.T) {
	f := newFixture(t, swayOutput("DP-1", "A", "B", "C", true))
	ctx := context.Background()

	props := display.Properties{LayoutMode: 2, SupportsChangingLayoutMode: true, LegacyUIScalingFactor: 1}
	serial := f.manager.Snapshot().Serial
	err := f.manager.Apply(ctx, serial, MethodPersistent, []display.ApplyEntry{validEntry()}, props)
	require.NoError(t, err)

	files := f.profileFiles(t)
	require.Len(t, files, 1)
	assert.Equal(t, "A_B_C", files[0])

	data, err := os.ReadFile(filepath.Join(f.dir, files[0]))
	require.NoError(t, err)
	assert.Equal(t, "profile {\n\toutput \"A B C\" mode 1920x1080@60Hz position 0,0 transform normal scale 1 enable\n}\n", string(data))

	after := f.manager.Snapshot()
	assert.Equal(t, props, after.Properties)
	assert.Greater(t, after.Serial, serial)
	assert.Equal(t, 1, f.notifier.Count())
	assert.Equal(t, 1, f.reloader.Calls())
	// Persistent applies go through kanshi, not direct commands.
	assert.Empty(t, f.comp.commands)
}

func TestApplyTemporaryRunsCommands(t *testing.T) {
	f := newFixture(t, swayOutput("DP-1", "A", "B", "C", true))
	ctx := context.Background()

	serial := f.manager.Snapshot().Serial
	err := f.manager.Apply(ctx, serial, MethodTemporary, []display.ApplyEntry{validEntry()}, display.DefaultProperties())
	require.NoError(t, err)

	assert.Equal(t, 0, f.reloader.Calls())
	require.NotEmpty(t, f.comp.commands)
	assert.Contains(t, f.comp.commands, "output 'A B C' mode 1920x1080@60Hz")
	assert.Contains(t, f.comp.commands, "output 'A B C' enable")
	// The profile is still written so kanshi knows the arrangement.
	assert.Len(t, f.profileFiles(t), 1)
}

func TestApplyDisablesUnlistedMonitors(t *testing.T) {
	f := newFixture(t,
		swayOutput("DP-1", "A", "B", "C", true),
		swayOutput("HDMI-A-1", "X", "Y", "Z", true),
	)
	ctx := context.Background()

	serial := f.manager.Snapshot().Serial
	err := f.manager.Apply(ctx, serial, MethodPersistent, []display.ApplyEntry{validEntry()}, display.DefaultProperties())
	require.NoError(t, err)

	files := f.profileFiles(t)
	require.Len(t, files, 1)
	data, err := os.ReadFile(filepath.Join(f.dir, files[0]))
	require.NoError(t, err)

	assert.Contains(t, string(data), "output \"A B C\" mode 1920x1080@60Hz position 0,0 transform normal scale 1 enable\n")
	assert.Contains(t, string(data), "output \"X Y Z\" disable\n")
	assert.NotContains(t, string(data), "output \"A B C\" disable")
}

func TestApplyIdempotentProfile(t *testing.T) {
	f := newFixture(t, swayOutput("DP-1", "A", "B", "C", true))
	ctx := context.Background()

	apply := func() []byte {
		serial := f.manager.Snapshot().Serial
		err := f.manager.Apply(ctx, serial, MethodPersistent, []display.ApplyEntry{validEntry()}, display.DefaultProperties())
		require.NoError(t, err)
		data, err := os.ReadFile(filepath.Join(f.dir, "A_B_C"))
		require.NoError(t, err)
		return data
	}

	first := apply()
	second := apply()
	assert.Equal(t, first, second)
}

func TestApplyValidationLeavesStoreUntouched(t *testing.T) {
	f := newFixture(t, swayOutput("DP-1", "A", "B", "C", true))
	ctx := context.Background()

	before := f.manager.Snapshot()

	bad := validEntry()
	bad.Scale = 3.0
	err := f.manager.Apply(ctx, before.Serial, MethodPersistent, []display.ApplyEntry{bad}, display.DefaultProperties())
	assert.ErrorIs(t, err, display.ErrInvalidScale)

	assert.Equal(t, before.Serial, f.manager.Snapshot().Serial)
	assert.Empty(t, f.profileFiles(t))
	assert.Equal(t, 0, f.notifier.Count())
}

func TestApplyUnknownConnector(t *testing.T) {
	f := newFixture(t, swayOutput("DP-1", "A", "B", "C", true))

	e := validEntry()
	e.Connector = "DP-9"
	err := f.manager.Apply(context.Background(), f.manager.Snapshot().Serial, MethodPersistent,
		[]display.ApplyEntry{e}, display.DefaultProperties())
	assert.ErrorIs(t, err, display.ErrMonitorNotFound)
}

func TestApplyEmptyConfigurationRejected(t *testing.T) {
	f := newFixture(t, swayOutput("DP-1", "A", "B", "C", true))

	err := f.manager.Apply(context.Background(), f.manager.Snapshot().Serial, MethodPersistent,
		nil, display.DefaultProperties())
	assert.Error(t, err)
	assert.Empty(t, f.profileFiles(t))
}

func TestApplyRefreshFailureStillSucceeds(t *testing.T) {
	f := newFixture(t, swayOutput("DP-1", "A", "B", "C", true))
	ctx := context.Background()

	serial := f.manager.Snapshot().Serial

	// Fail the post-apply refresh; the profile write already happened
	// so the request must still succeed.
	f.comp.setQueryErr(errors.New("compositor gone"))
	err := f.manager.Apply(ctx, serial, MethodPersistent, []display.ApplyEntry{validEntry()}, display.DefaultProperties())
	require.NoError(t, err)

	assert.Len(t, f.profileFiles(t), 1)
	assert.Equal(t, 1, f.notifier.Count())
	// Snapshot kept from before the failed refresh.
	assert.Equal(t, serial, f.manager.Snapshot().Serial)
}

func TestRefreshPopulatesStore(t *testing.T) {
	f := newFixture(t, swayOutput("DP-1", "A", "B", "C", true))

	snap := f.manager.Snapshot()
	require.Len(t, snap.Monitors, 1)
	require.Len(t, snap.LogicalMonitors, 1)
	assert.Equal(t, "DP-1", snap.Monitors[0].ID.Connector)
	assert.Equal(t, uint32(1), snap.Serial)
}
