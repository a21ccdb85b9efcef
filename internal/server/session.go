package server

import (
	"context"
	"sync"

	"fissh/internal/stream"
	"fissh/internal/terminal"
)

type session struct {
	id        string
	transport string
	remote    string
	dims      *terminal.Dims
	sched     *stream.Scheduler
	server    *Server
	ctx       context.Context

	reasonOnce sync.Once
	reason     string
}

// stop records why the session ended, first caller wins, and stops the
// scheduler.
func (s *session) stop(reason string) {
	s.reasonOnce.Do(func() { s.reason = reason })
	s.sched.Stop()
}

// finalReason returns the recorded reason, or derives one when the
// scheduler stopped on its own.
func (s *session) finalReason() string {
	s.reasonOnce.Do(func() {
		switch {
		case s.ctx.Err() != nil:
			s.reason = "shutdown"
		case s.sched.Err() != nil:
			s.reason = "write error"
		default:
			s.reason = "closed"
		}
	})
	return s.reason
}

// resize applies a terminal size change and records the new peak.
func (s *session) resize(termRows, termCols int) {
	s.dims.SetTerminal(termRows, termCols)
	rows, cols := s.dims.Get()
	if err := s.server.store.Observe(context.Background(), s.id, rows, cols); err != nil {
		s.server.logger.Debug("ledger observe failed", "session", s.id, "err", err)
	}
}
