package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fakeyudi/codeclock/internal/monitor"
	"github.com/fakeyudi/codeclock/internal/stats"
	"github.com/fakeyudi/codeclock/internal/tracker"
)

// Server answers plugin signals and status queries on a unix socket.
// Signals go to the monitor; queries read tracker snapshots and the store,
// so the server never touches loop-owned state.
type Server struct {
	path   string
	mon    *monitor.Monitor
	trk    *tracker.Tracker
	logger *slog.Logger
	ln     net.Listener
}

// NewServer returns a Server for the socket at path.
func NewServer(path string, mon *monitor.Monitor, trk *tracker.Tracker, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{path: path, mon: mon, trk: trk, logger: logger}
}

// Listen binds the socket. A leftover socket file is probed first: a live
// tracker on the other end means ErrAlreadyRunning, a dead one is replaced.
func (s *Server) Listen() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating socket directory: %w", err)
	}
	if _, err := os.Stat(s.path); err == nil {
		if conn, err := net.DialTimeout("unix", s.path, dialTimeout); err == nil {
			conn.Close()
			return fmt.Errorf("socket %s: %w", s.path, ErrAlreadyRunning)
		}
		if err := os.Remove(s.path); err != nil {
			return fmt.Errorf("removing stale socket: %w", err)
		}
		s.logger.Info("replaced stale socket", "path", s.path)
	}

	ln, err := net.Listen("unix", s.path)
	if err != nil {
		return fmt.Errorf("binding socket %s: %w", s.path, err)
	}
	s.ln = ln
	return nil
}

// Serve accepts connections until ctx is cancelled, then unlinks the
// socket. Serve binds the socket itself when Listen has not run yet.
func (s *Server) Serve(ctx context.Context) error {
	if s.ln == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}
	go func() {
		<-ctx.Done()
		s.ln.Close()
	}()
	defer os.Remove(s.path)

	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.logger.Warn("accept failed", "error", err)
			continue
		}
		go s.handle(conn)
	}
}

// handle serves one connection: a sequence of request lines, each answered
// with one JSON line.
func (s *Server) handle(conn net.Conn) {
	defer conn.Close()
	scanner := bufio.NewScanner(conn)
	enc := json.NewEncoder(conn)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" {
			continue
		}
		// A client that stops reading must not wedge this goroutine.
		if err := conn.SetWriteDeadline(time.Now().Add(requestTimeout)); err != nil {
			return
		}
		if err := s.dispatch(enc, line); err != nil {
			s.logger.Warn("request failed", "request", line, "error", err)
			if err := enc.Encode(Ack{Error: err.Error()}); err != nil {
				return
			}
		}
	}
}

func (s *Server) dispatch(enc *json.Encoder, line string) error {
	fields := strings.Split(line, "\t")
	arg := func(i int) string {
		if i < len(fields) {
			return fields[i]
		}
		return ""
	}

	switch fields[0] {
	case verbEdit:
		s.mon.Record(monitor.Signal{Kind: monitor.KindEdit, Path: arg(1)})
		return enc.Encode(Ack{OK: true})

	case verbCursor:
		s.mon.Record(monitor.Signal{Kind: monitor.KindCursor, Path: arg(1)})
		return enc.Encode(Ack{OK: true})

	case verbFocus:
		switch arg(1) {
		case "gained":
			s.mon.Record(monitor.Signal{Kind: monitor.KindFocusGained})
		case "lost":
			s.mon.Record(monitor.Signal{Kind: monitor.KindFocusLost})
		default:
			return fmt.Errorf("focus: unknown direction %q", arg(1))
		}
		return enc.Encode(Ack{OK: true})

	case verbStatus:
		reply, err := s.status()
		if err != nil {
			return err
		}
		return enc.Encode(reply)

	case verbSummary:
		ov, err := s.trk.Overview()
		if err != nil {
			return err
		}
		return enc.Encode(SummaryReply{Rollup: ov.Rollup, Streak: ov.Streak, Summary: ov.Summary})

	case verbEntries:
		entries, err := s.trk.SearchEntries(arg(1), arg(2), stats.Filter{
			Project:  arg(3),
			Branch:   arg(4),
			Language: arg(5),
		})
		if err != nil {
			return err
		}
		return enc.Encode(EntriesReply{Entries: entries})
	}
	return fmt.Errorf("unknown request %q", fields[0])
}

func (s *Server) status() (StatusReply, error) {
	snap := s.trk.Snapshot()
	today, err := s.trk.TodayTotal()
	if err != nil {
		return StatusReply{}, err
	}
	project, err := s.trk.CurrentProjectTime()
	if err != nil {
		return StatusReply{}, err
	}
	return StatusReply{
		State:          snap.State.String(),
		Project:        snap.Context.Project,
		Branch:         snap.Context.Branch,
		Language:       snap.Context.Language,
		Date:           snap.Date,
		StartedAt:      snap.StartedAt,
		LastActivityAt: snap.LastActivityAt,
		PendingSeconds: snap.PendingSeconds,
		TodayMinutes:   today,
		ProjectMinutes: project,
	}, nil
}
