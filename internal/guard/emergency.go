package guard

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// EmergencySwitch is a persistent sentinel file. While it exists, every
// destructive run is refused.
type EmergencySwitch struct {
	path string
}

// NewEmergencySwitch creates a switch backed by the file at path.
func NewEmergencySwitch(path string) *EmergencySwitch {
	return &EmergencySwitch{path: path}
}

// Path returns the sentinel location.
func (s *EmergencySwitch) Path() string {
	return s.path
}

// Engaged reports whether the sentinel is present. Any error other than the
// file not existing counts as engaged.
func (s *EmergencySwitch) Engaged() (bool, error) {
	_, err := os.Stat(s.path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return true, fmt.Errorf("failed to check emergency switch: %w", err)
	}
}

// Engage creates the sentinel, recording who engaged it and why.
func (s *EmergencySwitch) Engage(actor, reason string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("failed to create emergency switch directory: %w", err)
	}
	body := fmt.Sprintf("engaged_at=%s\nactor=%s\nreason=%s\n", time.Now().UTC().Format(time.RFC3339), actor, reason)
	if err := os.WriteFile(s.path, []byte(body), 0o640); err != nil {
		return fmt.Errorf("failed to engage emergency switch: %w", err)
	}
	return nil
}

// Disengage removes the sentinel. Removing an absent sentinel is not an error.
func (s *EmergencySwitch) Disengage() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to disengage emergency switch: %w", err)
	}
	return nil
}
