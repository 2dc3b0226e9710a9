// Package storage provides atomic JSON file operations for cleanart's state
// directory.
package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// StateDir returns cleanart's state directory: $XDG_STATE_HOME/cleanart, or
// ~/.local/state/cleanart. The directory is not created.
func StateDir() (string, error) {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "cleanart"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "state", "cleanart"), nil
}

// SaveJSON atomically writes data as indented JSON to path.
// The parent directory is created if needed. Data goes to a temp file in the
// same directory first, which is then renamed over path, so concurrent
// writers never leave a torn file behind.
func SaveJSON(path string, data any) error {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := tmp.Write(jsonData); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// LoadJSON reads JSON from path into dest.
// Returns an error satisfying errors.Is(err, os.ErrNotExist) if the file
// doesn't exist.
func LoadJSON(path string, dest any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}
