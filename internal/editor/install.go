// Package editor handles editor plugin installation. The plugins feed
// activity signals to the tracker socket.
package editor

import (
	"fmt"
	"os"
	"path/filepath"
)

// PluginPath returns the path where the plugin file for editor should be
// written.
func PluginPath(editor string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	name := "codeclock." + pluginExt(editor)
	return filepath.Join(home, ".config", "codeclock", name), nil
}

func pluginExt(editor string) string {
	if editor == "nvim" {
		return "lua"
	}
	return "vim"
}

// Install writes the plugin file for the given editor and prints the load
// instruction the user needs to add to their editor config.
func Install(editor string) error {
	path, err := PluginPath(editor)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	var content string
	switch editor {
	case "vim":
		content = VimPlugin
	case "nvim":
		content = NvimPlugin
	default:
		return fmt.Errorf("unsupported editor for plugin: %s (supported: vim, nvim)", editor)
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing plugin file: %w", err)
	}

	fmt.Printf("\n  ✓ Plugin written to %s\n", path)
	switch editor {
	case "nvim":
		fmt.Printf("\n  Add this line to your init.lua:\n")
		fmt.Printf("    dofile(vim.fn.expand('%s'))\n", path)
	default:
		fmt.Printf("\n  Add this line to your ~/.vimrc:\n")
		fmt.Printf("    source %s\n", path)
	}
	fmt.Printf("\n  The plugin talks to `codeclock track` over its socket; start\n")
	fmt.Printf("  the tracker in your project directory and edit away.\n\n")
	return nil
}

// IsInstalled reports whether the plugin file exists on disk.
func IsInstalled(editor string) bool {
	path, err := PluginPath(editor)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}
