// Package state holds the authoritative in-memory display snapshot and
// the single exclusive lock that serializes every writer: the protocol
// server's apply flow and the change watcher's poll cycle.
package state

import (
	"sync"

	"github.com/jmylchreest/swaydisplayd/internal/display"
)

// State is the display snapshot as seen by one lock holder. Mutation is
// whole-list only: monitors and logical monitors are always replaced
// together so every logical monitor references an identity present in
// the same snapshot version.
type State struct {
	serial   uint32
	monitors []display.Monitor
	logical  []display.LogicalMonitor
	props    display.Properties
}

// Serial returns the optimistic-concurrency token for the snapshot.
func (s *State) Serial() uint32 { return s.serial }

// Monitors returns the current physical monitor list.
func (s *State) Monitors() []display.Monitor { return s.monitors }

// LogicalMonitors returns the current logical monitor list.
func (s *State) LogicalMonitors() []display.LogicalMonitor { return s.logical }

// Properties returns the advertised display properties.
func (s *State) Properties() display.Properties { return s.props }

// Replace swaps in a fresh snapshot and bumps the serial. Every
// replacement invalidates outstanding client serials, whether it came
// from a watcher-detected hardware change or a post-apply refresh.
func (s *State) Replace(monitors []display.Monitor, logical []display.LogicalMonitor) {
	s.monitors = monitors
	s.logical = logical
	s.serial++
}

// SetProperties replaces the advertised properties with the
// client-supplied value set.
func (s *State) SetProperties(p display.Properties) {
	s.props = p
}

// Snapshot is a read-only copy of the store handed to request handlers.
// The slices are copies; the Monitor values they carry are immutable by
// construction.
type Snapshot struct {
	Serial          uint32
	Monitors        []display.Monitor
	LogicalMonitors []display.LogicalMonitor
	Properties      display.Properties
}

// Store guards the State behind one mutex. At most one goroutine may
// read-modify-write at a time; holders run complete request flows,
// including compositor I/O, without releasing the lock.
type Store struct {
	mu    sync.Mutex
	state State
}

// NewStore creates a store with serial 0, empty lists and default
// properties, matching the daemon's pre-query startup state.
func NewStore() *Store {
	return &Store{state: State{props: display.DefaultProperties()}}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	monitors := make([]display.Monitor, len(s.state.monitors))
	copy(monitors, s.state.monitors)
	logical := make([]display.LogicalMonitor, len(s.state.logical))
	copy(logical, s.state.logical)

	return Snapshot{
		Serial:          s.state.serial,
		Monitors:        monitors,
		LogicalMonitors: logical,
		Properties:      s.state.props,
	}
}

// Update runs fn as the exclusive owner of the state. The whole apply
// flow and the whole watcher cycle run inside one Update call each, so
// the two writers can never interleave.
func (s *Store) Update(fn func(*State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&s.state)
}
