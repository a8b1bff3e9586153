package collector

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/fakeyudi/codeclock/internal/monitor"
)

// Watch starts a recursive fsnotify watcher on workDir and records every
// Write/Create event as an edit signal until ctx is cancelled. Paths
// matching the ignore patterns (configured ones plus .gitignore and
// .codeclockignore in workDir) are skipped, as is anything under .git:
// index churn from git commands must not count as activity.
func Watch(ctx context.Context, workDir string, mon *monitor.Monitor, ignorePatterns []string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Walk the directory tree and add a watcher for every subdirectory.
	if err := filepath.WalkDir(workDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return watcher.Add(path)
		}
		return nil
	}); err != nil {
		return err
	}

	patterns, _ := loadIgnorePatterns(workDir, ignorePatterns)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				if underGitDir(event.Name, workDir) || isIgnored(event.Name, workDir, patterns) {
					continue
				}
				mon.Record(monitor.Signal{Kind: monitor.KindEdit, Path: event.Name})

				// If a new directory was created, watch it too.
				if event.Has(fsnotify.Create) {
					if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
						_ = watcher.Add(event.Name)
					}
				}
			}

		case _, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			// Watcher errors are non-fatal; continue watching.
		}
	}
}

// underGitDir reports whether path has a .git component below workDir.
func underGitDir(path, workDir string) bool {
	rel, err := filepath.Rel(workDir, path)
	if err != nil {
		rel = path
	}
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if part == ".git" {
			return true
		}
	}
	return false
}

// isIgnored reports whether path matches any of the given glob patterns.
func isIgnored(path, workDir string, patterns []string) bool {
	// Normalise to a relative path for matching when possible.
	rel := path
	if workDir != "" {
		if r, err := filepath.Rel(workDir, path); err == nil {
			rel = r
		}
	}
	base := filepath.Base(path)

	for _, pattern := range patterns {
		// Match against the base name.
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
		// Match against the relative path.
		if matched, _ := filepath.Match(pattern, rel); matched {
			return true
		}
		// Match against the full path.
		if matched, _ := filepath.Match(pattern, path); matched {
			return true
		}
	}
	return false
}

// loadIgnorePatterns merges the configured patterns with those from
// .gitignore and .codeclockignore files found in the working directory.
func loadIgnorePatterns(workDir string, configured []string) ([]string, error) {
	patterns := make([]string, len(configured))
	copy(patterns, configured)

	for _, name := range []string{".gitignore", ".codeclockignore"} {
		p := filepath.Join(workDir, name)
		extra, err := readPatternFile(p)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return patterns, err
		}
		patterns = append(patterns, extra...)
	}
	return patterns, nil
}

// readPatternFile reads a gitignore-style file and returns non-empty,
// non-comment lines.
func readPatternFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns, scanner.Err()
}
