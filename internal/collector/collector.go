// Package collector supplies the tracking context (project, git branch and
// language) and turns filesystem events into activity signals.
package collector

import (
	"path/filepath"

	"github.com/fakeyudi/codeclock/internal/entry"
)

// Context identifies what the currently accruing time is attributed to.
// Fields that cannot be detected hold entry.Unknown, never an empty string,
// so attribution never blocks on a failing provider.
type Context struct {
	Project  string `json:"project"`
	Branch   string `json:"branch"`
	Language string `json:"language"`
}

// Normalized returns a copy with empty fields replaced by entry.Unknown.
func (c Context) Normalized() Context {
	if c.Project == "" {
		c.Project = entry.Unknown
	}
	if c.Branch == "" {
		c.Branch = entry.Unknown
	}
	if c.Language == "" {
		c.Language = entry.Unknown
	}
	return c
}

// ProjectName returns the project attribution for a work dir: its absolute
// base name, or entry.Unknown when the path cannot be resolved.
func ProjectName(workDir string) string {
	abs, err := filepath.Abs(workDir)
	if err != nil {
		return entry.Unknown
	}
	name := filepath.Base(abs)
	if name == "." || name == string(filepath.Separator) {
		return entry.Unknown
	}
	return name
}
