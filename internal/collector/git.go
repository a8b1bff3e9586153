package collector

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"github.com/fakeyudi/codeclock/internal/entry"
)

// GitRunner executes a git command and returns its output.
// This abstraction allows mocking in tests.
type GitRunner func(workDir string, args ...string) (string, error)

// defaultGitRunner runs git as a real subprocess.
func defaultGitRunner(workDir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = workDir
	out, err := cmd.Output()
	return string(out), err
}

// ErrNotRepo reports that a directory is not inside a git work tree.
var ErrNotRepo = errors.New("not a git repository")

// Branch returns the current branch of workDir. A nil runner uses the real
// git subprocess. Directories outside a work tree (git exits with code 128)
// return ErrNotRepo.
func Branch(workDir string, runner GitRunner) (string, error) {
	if runner == nil {
		runner = defaultGitRunner
	}
	out, err := runner(workDir, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		if isExitCode128(err) {
			return "", ErrNotRepo
		}
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// isExitCode128 reports whether err is an *exec.ExitError with exit code 128.
func isExitCode128(err error) bool {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode() == 128
	}
	return false
}

// BranchPoller periodically checks the work dir's git branch and publishes
// the observed value. Checks are single-flight by construction: each one
// runs synchronously inside Run's goroutine, so a slow git subprocess delays
// the next check instead of piling up concurrent ones.
type BranchPoller struct {
	workDir  string
	interval time.Duration
	runner   GitRunner
	updates  chan string
}

// NewBranchPoller returns a poller for workDir checking every interval.
// A nil runner uses the real git subprocess.
func NewBranchPoller(workDir string, interval time.Duration, runner GitRunner) *BranchPoller {
	return &BranchPoller{
		workDir:  workDir,
		interval: interval,
		runner:   runner,
		updates:  make(chan string, 1),
	}
}

// Updates delivers the branch observed by each completed check. Failed
// detection publishes entry.Unknown. An unread stale result is replaced by
// the newest one.
func (p *BranchPoller) Updates() <-chan string {
	return p.updates
}

// Run polls until ctx is cancelled. The first check fires immediately so the
// tracker does not attribute a full interval to an unknown branch.
func (p *BranchPoller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.poll()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll()
		}
	}
}

// poll runs one branch check and publishes the result.
func (p *BranchPoller) poll() {
	branch, err := Branch(p.workDir, p.runner)
	if err != nil || branch == "" {
		branch = entry.Unknown
	}

	// Replace any unread previous result with the fresh one.
	select {
	case <-p.updates:
	default:
	}
	p.updates <- branch
}
