package display

import "errors"

// Client-visible failure taxonomy. Every rejected request wraps exactly
// one of these so the caller can tell which rule failed and retry with a
// corrected configuration. None of them may bring the daemon down.
var (
	// ErrStaleSerial means the request echoed a serial that no longer
	// matches the store; the client must re-fetch state first.
	ErrStaleSerial = errors.New("stale configuration serial")
	// ErrMonitorNotFound means the request referenced a connector that
	// is not present in the current snapshot.
	ErrMonitorNotFound = errors.New("monitor not found")
	// ErrInvalidMode means the referenced mode ID does not exist on the
	// resolved monitor.
	ErrInvalidMode = errors.New("invalid mode")
	// ErrInvalidScale means the requested scale is not supported by the
	// referenced mode.
	ErrInvalidScale = errors.New("invalid scale")
	// ErrInvalidTransform means the transform code does not decode to a
	// defined rotation/flip variant.
	ErrInvalidTransform = errors.New("invalid transform")
	// ErrPersistence means the accepted layout could not be written to
	// the profile directory. The previous profile file is left intact.
	ErrPersistence = errors.New("profile persistence failed")
)
