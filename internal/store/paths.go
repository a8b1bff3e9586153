package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// DataDir returns the codeclock-specific XDG data directory.
// Path: $XDG_DATA_HOME/codeclock or ~/.local/share/codeclock
func DataDir() (string, error) {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, "codeclock"), nil
}

// OpenDefault opens the entry database in its standard location under the
// data directory, creating the directory if needed.
func OpenDefault() (EntryStore, error) {
	dir, err := DataDir()
	if err != nil {
		return nil, fmt.Errorf("resolving data directory: %w", err)
	}
	dbDir := filepath.Join(dir, "db")
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return Open(dbDir)
}

// SocketPath returns the path of the tracker's unix socket. The socket lives
// next to the database so editor plugins and query commands find it without
// configuration.
func SocketPath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", fmt.Errorf("resolving data directory: %w", err)
	}
	return filepath.Join(dir, "tracker.sock"), nil
}
