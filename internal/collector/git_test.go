package collector

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fakeyudi/codeclock/internal/entry"
)

// exitCode128Error returns a real *exec.ExitError with exit code 128
// by running a shell command that exits with that code.
func exitCode128Error() error {
	cmd := exec.Command("sh", "-c", "exit 128")
	return cmd.Run()
}

func TestBranchTrimsRunnerOutput(t *testing.T) {
	var gotDir string
	var gotArgs []string
	runner := func(workDir string, args ...string) (string, error) {
		gotDir = workDir
		gotArgs = args
		return "feature/login\n", nil
	}

	branch, err := Branch("/work", runner)
	if err != nil {
		t.Fatalf("Branch: %v", err)
	}
	if branch != "feature/login" {
		t.Errorf("branch = %q, want feature/login", branch)
	}
	if gotDir != "/work" {
		t.Errorf("runner workDir = %q, want /work", gotDir)
	}
	if strings.Join(gotArgs, " ") != "rev-parse --abbrev-ref HEAD" {
		t.Errorf("runner args = %v", gotArgs)
	}
}

func TestBranchNotRepo(t *testing.T) {
	exitErr := exitCode128Error()
	if exitErr == nil {
		t.Fatal("expected exit code 128 error, got nil")
	}
	runner := func(workDir string, args ...string) (string, error) {
		return "", exitErr
	}

	_, err := Branch("/some/dir", runner)
	if !errors.Is(err, ErrNotRepo) {
		t.Errorf("expected ErrNotRepo, got %v", err)
	}
}

func TestBranchPassesThroughOtherErrors(t *testing.T) {
	boom := errors.New("git exploded")
	runner := func(workDir string, args ...string) (string, error) {
		return "", boom
	}

	_, err := Branch("/some/dir", runner)
	if !errors.Is(err, boom) {
		t.Errorf("expected the runner error, got %v", err)
	}
	if errors.Is(err, ErrNotRepo) {
		t.Error("a non-128 failure must not map to ErrNotRepo")
	}
}

func TestPollerFirstCheckIsImmediate(t *testing.T) {
	runner := func(workDir string, args ...string) (string, error) {
		return "main\n", nil
	}
	// Interval far beyond the test's lifetime: only the immediate check runs.
	p := NewBranchPoller("/work", time.Hour, runner)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	select {
	case got := <-p.Updates():
		if got != "main" {
			t.Errorf("first update = %q, want main", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no immediate branch update")
	}
}

func TestPollerPublishesUnknownOnFailure(t *testing.T) {
	runner := func(workDir string, args ...string) (string, error) {
		return "", errors.New("git exploded")
	}
	p := NewBranchPoller("/work", time.Hour, runner)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	select {
	case got := <-p.Updates():
		if got != entry.Unknown {
			t.Errorf("update = %q, want %q", got, entry.Unknown)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no branch update")
	}
}

func TestPollerTracksBranchSwitches(t *testing.T) {
	var mu sync.Mutex
	current := "main"
	runner := func(workDir string, args ...string) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		return current + "\n", nil
	}

	p := NewBranchPoller("/work", 5*time.Millisecond, runner)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	mu.Lock()
	current = "feature"
	mu.Unlock()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case got := <-p.Updates():
			if got == "feature" {
				return
			}
		case <-deadline:
			t.Fatal("poller never observed the branch switch")
		}
	}
}

func TestPollReplacesStaleResult(t *testing.T) {
	var mu sync.Mutex
	current := "first"
	runner := func(workDir string, args ...string) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		return current, nil
	}
	p := NewBranchPoller("/work", time.Hour, runner)

	// Two checks with nobody reading: the buffer must hold only the newest.
	p.poll()
	mu.Lock()
	current = "second"
	mu.Unlock()
	p.poll()

	if got := <-p.Updates(); got != "second" {
		t.Errorf("update = %q, want the fresh second result", got)
	}
	select {
	case extra := <-p.Updates():
		t.Errorf("unexpected extra update %q", extra)
	default:
	}
}
