// Package server streams aquariums to remote viewers over SSH and websockets.
//
// Every viewer gets its own tank and scheduler. Sessions are capped by a
// shared semaphore and recorded in a ledger.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/ssh"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"fissh/internal/aquarium"
	"fissh/internal/config"
	"fissh/internal/ledger"
	"fissh/internal/stream"
	"fissh/internal/terminal"
	pcore "fissh/pkg/core"
)

// ErrCapacity is returned when every session slot is taken.
var ErrCapacity = errors.New("server: at capacity")

const (
	shutdownTimeout = 5 * time.Second
	writeWait       = 2 * time.Second
)

// Server accepts viewers and runs one scheduler per viewer.
type Server struct {
	cfg    *config.Config
	params aquarium.Params
	store  ledger.Store
	logger *slog.Logger
	sem    *semaphore.Weighted

	sshConfig *ssh.ServerConfig

	mu       sync.Mutex
	sessions map[string]*session
	wg       sync.WaitGroup
}

// New validates cfg and prepares a server. When SSH is enabled the host key
// is loaded from, or generated at, cfg.SSH.HostKey. A nil store records into
// memory.
func New(cfg *config.Config, store ledger.Store, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	params, err := cfg.Params()
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if store == nil {
		store = ledger.NewMemoryStore()
		if err := store.Init(context.Background()); err != nil {
			return nil, err
		}
	}
	s := &Server{
		cfg:      cfg,
		params:   params,
		store:    store,
		logger:   logger,
		sem:      semaphore.NewWeighted(int64(cfg.Server.MaxSessions)),
		sessions: make(map[string]*session),
	}
	if cfg.SSH.Addr != "" {
		signer, err := LoadOrCreateHostKey(cfg.SSH.HostKey)
		if err != nil {
			return nil, fmt.Errorf("server: %w", err)
		}
		s.sshConfig = s.newSSHConfig(signer)
	}
	return s, nil
}

// Run listens on the configured addresses and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	var sshLn, webLn net.Listener
	var err error
	if s.cfg.SSH.Addr != "" {
		if sshLn, err = net.Listen("tcp", s.cfg.SSH.Addr); err != nil {
			return fmt.Errorf("ssh listen: %w", err)
		}
	}
	if s.cfg.Web.Addr != "" {
		if webLn, err = net.Listen("tcp", s.cfg.Web.Addr); err != nil {
			if sshLn != nil {
				_ = sshLn.Close()
			}
			return fmt.Errorf("web listen: %w", err)
		}
	}
	if sshLn == nil && webLn == nil {
		return errors.New("server: no listener configured")
	}
	return s.Serve(ctx, sshLn, webLn)
}

// Serve serves SSH on sshLn and HTTP on webLn; either may be nil. It returns
// after ctx is done and every session has been torn down.
func (s *Server) Serve(ctx context.Context, sshLn, webLn net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	if sshLn != nil {
		if s.sshConfig == nil {
			return errors.New("server: ssh listener without host key")
		}
		s.logger.Info("ssh listening", "addr", sshLn.Addr().String())
		g.Go(func() error { return s.serveSSH(gctx, sshLn) })
		g.Go(func() error {
			<-gctx.Done()
			return sshLn.Close()
		})
	}
	if webLn != nil {
		srv := &http.Server{
			Handler:           s.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
			BaseContext:       func(net.Listener) context.Context { return gctx },
		}
		s.logger.Info("web listening", "addr", webLn.Addr().String())
		g.Go(func() error {
			if err := srv.Serve(webLn); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("web serve: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	err := g.Wait()
	s.stopAll("shutdown")
	s.wg.Wait()
	if errors.Is(err, net.ErrClosed) {
		err = nil
	}
	s.logger.Info("server stopped")
	return err
}

// Active returns the number of live sessions.
func (s *Server) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Ledger exposes the session store.
func (s *Server) Ledger() ledger.Store { return s.store }

func (s *Server) stopAll(reason string) {
	s.mu.Lock()
	live := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		live = append(live, sess)
	}
	s.mu.Unlock()
	for _, sess := range live {
		sess.stop(reason)
	}
}

func (s *Server) schedulerOptions() []stream.Option {
	opts := []stream.Option{
		stream.WithInterval(s.cfg.Stream.Interval.Duration),
		stream.WithParams(s.params),
		stream.WithLogger(s.logger),
	}
	if s.cfg.Tank.Seed != 0 {
		opts = append(opts, stream.WithSource(pcore.NewRNG(s.cfg.Tank.Seed)))
	}
	return opts
}

// open reserves a slot and builds an idle scheduler sized from dims. The
// caller starts it and must call release exactly once.
func (s *Server) open(ctx context.Context, transport, remote string, dims *terminal.Dims, sink io.Writer) (*session, error) {
	if !s.sem.TryAcquire(1) {
		return nil, ErrCapacity
	}
	rows, cols := dims.Get()
	sched, err := stream.New(rows, cols, sink, dims.Get, s.schedulerOptions()...)
	if err != nil {
		s.sem.Release(1)
		return nil, err
	}
	sess := &session{
		id:        uuid.NewString(),
		transport: transport,
		remote:    remote,
		dims:      dims,
		sched:     sched,
		server:    s,
		ctx:       ctx,
	}

	rec := ledger.Record{
		ID:        sess.id,
		Transport: transport,
		Remote:    remote,
		Started:   time.Now(),
		PeakRows:  rows,
		PeakCols:  cols,
	}
	if err := s.store.Open(context.Background(), rec); err != nil {
		s.logger.Warn("ledger open failed", "session", sess.id, "err", err)
	}

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()
	s.wg.Add(1)

	s.logger.Info("session opened", "session", sess.id, "transport", transport, "remote", remote, "rows", rows, "cols", cols)
	return sess, nil
}

func (s *Server) release(sess *session) {
	sess.sched.Stop()
	reason := sess.finalReason()
	frames := int64(sess.sched.Frames())
	if err := s.store.Finish(context.Background(), sess.id, frames, reason); err != nil {
		s.logger.Warn("ledger finish failed", "session", sess.id, "err", err)
	}

	s.mu.Lock()
	delete(s.sessions, sess.id)
	s.mu.Unlock()
	s.sem.Release(1)
	s.wg.Done()

	s.logger.Info("session closed", "session", sess.id, "transport", sess.transport, "reason", reason, "frames", frames)
}
