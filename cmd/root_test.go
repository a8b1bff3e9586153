package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/codeclock/internal/entry"
	"github.com/fakeyudi/codeclock/internal/store"
)

// executeCommand runs a cobra command with the given args and captures combined output.
func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	_, err = root.ExecuteC()
	return buf.String(), err
}

// isolateHome points HOME and XDG_DATA_HOME at temp dirs so commands never
// touch real state.
func isolateHome(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)
	t.Setenv("XDG_DATA_HOME", filepath.Join(tmp, "data"))
	return tmp
}

// seedEntries writes entries into the default store and closes it again so
// the command under test can take the store lock.
func seedEntries(t *testing.T, entries ...entry.TimeEntry) {
	t.Helper()
	st, err := store.OpenDefault()
	if err != nil {
		t.Fatalf("OpenDefault: %v", err)
	}
	for _, e := range entries {
		if err := st.MergeEntry(e); err != nil {
			t.Fatalf("MergeEntry: %v", err)
		}
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestInvalidConfigRejected(t *testing.T) {
	tmp := isolateHome(t)

	dir := filepath.Join(tmp, ".config", "codeclock")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	bad := []byte(`{"inactivity_timeout_seconds": 5}`)
	if err := os.WriteFile(filepath.Join(dir, "config.json"), bad, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, err := executeCommand(rootCmd, "status")
	if err == nil {
		t.Fatal("expected an error for an out-of-bounds timeout, got nil")
	}
	if !strings.Contains(err.Error(), "invalid configuration") {
		t.Errorf("expected error to mention invalid configuration, got: %v", err)
	}
}

func TestMalformedGlobalConfigRejected(t *testing.T) {
	tmp := isolateHome(t)

	dir := filepath.Join(tmp, ".config", "codeclock")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte("{nope"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, err := executeCommand(rootCmd, "status")
	if err == nil {
		t.Fatal("expected an error for malformed config, got nil")
	}
	if !strings.Contains(err.Error(), "loading global config") {
		t.Errorf("expected error to mention global config, got: %v", err)
	}
}
