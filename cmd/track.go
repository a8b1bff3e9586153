package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/codeclock/internal/clock"
	"github.com/fakeyudi/codeclock/internal/collector"
	"github.com/fakeyudi/codeclock/internal/entry"
	"github.com/fakeyudi/codeclock/internal/ipc"
	"github.com/fakeyudi/codeclock/internal/logging"
	"github.com/fakeyudi/codeclock/internal/monitor"
	"github.com/fakeyudi/codeclock/internal/store"
	"github.com/fakeyudi/codeclock/internal/tracker"
)

var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Run the tracker for a project directory",
	Long: `Track runs the time tracker in the foreground for a project directory
(default: the current directory, override with --dir).

File edits are picked up by a filesystem watcher; finer-grained activity
(cursor movement, focus changes) arrives from the editor plugin over the
tracker socket. Accrued time is flushed to the local store as it crosses
the flush threshold. Stop with Ctrl-C; remaining time is flushed on exit.`,
	Args: cobra.NoArgs,
	RunE: runTrack,
}

var trackDir string

func init() {
	trackCmd.Flags().StringVar(&trackDir, "dir", ".", "project directory to track")
	rootCmd.AddCommand(trackCmd)
}

func runTrack(cmd *cobra.Command, args []string) error {
	dir, err := filepath.Abs(trackDir)
	if err != nil {
		return fmt.Errorf("resolving project directory: %w", err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return fmt.Errorf("not a directory: %s", dir)
	}

	logger := logging.New(os.Stderr, cfg.LogLevel)

	st, err := store.OpenDefault()
	if err != nil {
		return fmt.Errorf("opening entry store: %w", err)
	}
	defer st.Close()

	clk := clock.System()
	mon := monitor.New(clk)

	branch, err := collector.Branch(dir, nil)
	if err != nil {
		if !errors.Is(err, collector.ErrNotRepo) {
			logger.Warn("branch detection failed", "error", err)
		}
		branch = entry.Unknown
	}
	poller := collector.NewBranchPoller(dir, cfg.BranchPollInterval(), nil)

	trk, err := tracker.New(tracker.Options{
		Config: tracker.Config{
			InactivityTimeout: cfg.InactivityTimeout(),
			FocusTimeout:      cfg.FocusTimeout(),
			FlushInterval:     cfg.FlushInterval(),
			FlushThreshold:    cfg.FlushThreshold(),
		},
		Clock:    clk,
		Store:    st,
		Signals:  mon.Signals(),
		Branches: poller.Updates(),
		Context: collector.Context{
			Project: collector.ProjectName(dir),
			Branch:  branch,
		},
		Logger: logger,
	})
	if err != nil {
		return err
	}

	sock, err := store.SocketPath()
	if err != nil {
		return fmt.Errorf("resolving socket path: %w", err)
	}
	srv := ipc.NewServer(sock, mon, trk, logger)
	if err := srv.Listen(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		logger.Info("shutting down")
		cancel()
	}()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		poller.Run(ctx)
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := collector.Watch(ctx, dir, mon, cfg.IgnorePatterns); err != nil {
			// Plugin signals still flow without the watcher.
			logger.Warn("file watcher unavailable", "error", err)
		}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := srv.Serve(ctx); err != nil {
			logger.Error("socket server failed", "error", err)
		}
	}()

	cmd.Printf("tracking %s (press Ctrl-C to stop)\n", collector.ProjectName(dir))

	err = trk.Run(ctx)
	wg.Wait()
	return err
}
