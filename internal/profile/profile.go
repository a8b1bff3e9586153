// Package profile manages the user's persistent codeclock profile.
// The profile is stored at ~/.config/codeclock/profile.json and is created
// once via the interactive setup flow, then referenced on every command.
package profile

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Profile holds user-level preferences set during first-run setup.
type Profile struct {
	Name          string `json:"name"`
	Editor        string `json:"editor"`         // "vim" | "nvim" | ""
	InstallPlugin bool   `json:"install_plugin"` // install the editor plugin
	DefaultPeriod string `json:"default_period"` // report default: day|week|month|year|all
}

// profilePath returns the path to the profile file.
func profilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "codeclock", "profile.json"), nil
}

// ConfigDir returns the codeclock config directory.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "codeclock"), nil
}

// Exists reports whether a profile file is present on disk.
func Exists() bool {
	p, err := profilePath()
	if err != nil {
		return false
	}
	_, err = os.Stat(p)
	return err == nil
}

// Load reads the profile from disk. Returns an error if the file is missing or malformed.
func Load() (*Profile, error) {
	p, err := profilePath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("profile not found — run 'codeclock setup' to configure: %w", err)
	}
	var prof Profile
	if err := json.Unmarshal(data, &prof); err != nil {
		return nil, fmt.Errorf("malformed profile at %s: %w", p, err)
	}
	return &prof, nil
}

// Save writes the profile to disk, creating the config directory if needed.
func Save(prof *Profile) error {
	p, err := profilePath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(prof, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, data, 0o644)
}

// RunSetup runs the interactive setup wizard and saves the resulting profile.
// If existing is non-nil, it is used as the default for each prompt (edit mode).
func RunSetup(existing *Profile) (*Profile, error) {
	r := bufio.NewReader(os.Stdin)

	ask := func(prompt, defaultVal string) (string, error) {
		if defaultVal != "" {
			fmt.Printf("%s [%s]: ", prompt, defaultVal)
		} else {
			fmt.Printf("%s: ", prompt)
		}
		line, err := r.ReadString('\n')
		if err != nil {
			return "", err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			return defaultVal, nil
		}
		return line, nil
	}

	askBool := func(prompt string, defaultVal bool) (bool, error) {
		def := "n"
		if defaultVal {
			def = "y"
		}
		ans, err := ask(prompt+" (y/n)", def)
		if err != nil {
			return false, err
		}
		return strings.ToLower(ans) == "y" || strings.ToLower(ans) == "yes", nil
	}

	prof := &Profile{
		Editor:        detectEditor(),
		InstallPlugin: true,
		DefaultPeriod: "week",
	}
	if existing != nil {
		*prof = *existing
	}

	fmt.Println()
	fmt.Println("  ┌─────────────────────────────────┐")
	fmt.Println("  │  codeclock — first-time setup   │")
	fmt.Println("  └─────────────────────────────────┘")
	fmt.Println()

	var err error

	prof.Name, err = ask("  Your name (shown in reports)", prof.Name)
	if err != nil {
		return nil, err
	}

	editor, err := ask("  Editor (vim/nvim)", prof.Editor)
	if err != nil {
		return nil, err
	}
	if editor == "nvim" {
		prof.Editor = "nvim"
	} else {
		prof.Editor = "vim"
	}

	prof.InstallPlugin, err = askBool("  Install the editor plugin now", prof.InstallPlugin)
	if err != nil {
		return nil, err
	}

	period, err := ask("  Default report period (day/week/month/year/all)", prof.DefaultPeriod)
	if err != nil {
		return nil, err
	}
	switch period {
	case "day", "week", "month", "year", "all":
		prof.DefaultPeriod = period
	default:
		prof.DefaultPeriod = "week"
	}

	fmt.Println()
	return prof, nil
}

// detectEditor returns the base name of $EDITOR when it is a supported
// editor, defaulting to vim.
func detectEditor() string {
	editor := filepath.Base(os.Getenv("EDITOR"))
	if editor == "vim" || editor == "nvim" {
		return editor
	}
	return "vim"
}
