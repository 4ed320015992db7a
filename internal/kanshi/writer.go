package kanshi

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Writer persists profile documents into the profiles directory. Writes
// are staged through a temp file and renamed into place, so a failure
// mid-write leaves any previous profile untouched.
type Writer struct {
	dir    string
	logger *slog.Logger
}

// NewWriter creates a Writer for the given profiles directory.
func NewWriter(dir string, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{dir: dir, logger: logger}
}

// Dir returns the profiles directory.
func (w *Writer) Dir() string { return w.dir }

// Write commits a profile document under the given file name.
func (w *Writer) Write(name string, data []byte) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create profiles directory: %w", err)
	}

	path := filepath.Join(w.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to commit profile: %w", err)
	}

	w.logger.Debug("profile written", "path", path, "bytes", len(data))
	return nil
}
