package editor

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInstallWritesPlugin(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	for _, ed := range []string{"vim", "nvim"} {
		if IsInstalled(ed) {
			t.Fatalf("%s reported installed before Install", ed)
		}
		if err := Install(ed); err != nil {
			t.Fatalf("Install(%s): %v", ed, err)
		}
		if !IsInstalled(ed) {
			t.Errorf("%s not reported installed after Install", ed)
		}
	}

	vim, err := os.ReadFile(filepath.Join(home, ".config", "codeclock", "codeclock.vim"))
	if err != nil {
		t.Fatalf("reading vim plugin: %v", err)
	}
	if !strings.Contains(string(vim), "tracker.sock") {
		t.Error("vim plugin does not reference the tracker socket")
	}

	lua, err := os.ReadFile(filepath.Join(home, ".config", "codeclock", "codeclock.lua"))
	if err != nil {
		t.Fatalf("reading nvim plugin: %v", err)
	}
	for _, want := range []string{"tracker.sock", "FocusLost", "CursorMoved"} {
		if !strings.Contains(string(lua), want) {
			t.Errorf("nvim plugin missing %q", want)
		}
	}
}

func TestInstallRejectsUnknownEditor(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	if err := Install("emacs"); err == nil {
		t.Fatal("expected error for unsupported editor")
	}
}
