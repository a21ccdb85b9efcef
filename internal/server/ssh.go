package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"

	"fissh/internal/terminal"
)

// Payloads of the session requests fissh understands (RFC 4254 section 6).
type ptyRequest struct {
	Term    string
	Columns uint32
	Rows    uint32
	Width   uint32
	Height  uint32
	Modes   string
}

type windowChange struct {
	Columns uint32
	Rows    uint32
	Width   uint32
	Height  uint32
}

type exitStatus struct {
	Status uint32
}

func (s *Server) newSSHConfig(signer ssh.Signer) *ssh.ServerConfig {
	cfg := &ssh.ServerConfig{
		NoClientAuth: true,
		PasswordCallback: func(ssh.ConnMetadata, []byte) (*ssh.Permissions, error) {
			return nil, nil
		},
		KeyboardInteractiveCallback: func(ssh.ConnMetadata, ssh.KeyboardInteractiveChallenge) (*ssh.Permissions, error) {
			return nil, nil
		},
	}
	if banner := s.cfg.SSH.Banner; banner != "" {
		cfg.BannerCallback = func(ssh.ConnMetadata) string { return banner }
	}
	cfg.AddHostKey(signer)
	return cfg
}

func (s *Server) serveSSH(ctx context.Context, ln net.Listener) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			return fmt.Errorf("ssh accept: %w", err)
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleSSHConn(ctx, conn)
		}()
	}
}

func (s *Server) handleSSHConn(ctx context.Context, conn net.Conn) {
	remote := conn.RemoteAddr().String()
	if d := s.cfg.SSH.HandshakeTimeout.Duration; d > 0 {
		_ = conn.SetDeadline(time.Now().Add(d))
	}
	sconn, chans, reqs, err := ssh.NewServerConn(conn, s.sshConfig)
	if err != nil {
		s.logger.Debug("ssh handshake failed", "remote", remote, "err", err)
		_ = conn.Close()
		return
	}
	_ = conn.SetDeadline(time.Time{})
	defer sconn.Close()
	s.logger.Debug("ssh connection", "remote", remote, "user", sconn.User(), "client", string(sconn.ClientVersion()))

	go ssh.DiscardRequests(reqs)

	// Tear the connection down when the server stops.
	connDone := make(chan struct{})
	defer close(connDone)
	go func() {
		select {
		case <-ctx.Done():
			_ = sconn.Close()
		case <-connDone:
		}
	}()

	var wg sync.WaitGroup
	for nc := range chans {
		if nc.ChannelType() != "session" {
			_ = nc.Reject(ssh.UnknownChannelType, "only session channels are supported")
			continue
		}
		ch, chReqs, err := nc.Accept()
		if err != nil {
			s.logger.Debug("ssh channel accept failed", "remote", remote, "err", err)
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.handleSSHChannel(ctx, ch, chReqs, remote)
		}()
	}
	wg.Wait()
}

// handleSSHChannel serves one session channel: pty-req and window-change
// resize the viewport, shell starts the stream and any Ctrl-C or Ctrl-D from
// the client ends it.
func (s *Server) handleSSHChannel(ctx context.Context, ch ssh.Channel, reqs <-chan *ssh.Request, remote string) {
	dims := terminal.NewDims(terminal.Viewport(terminal.FallbackRows, terminal.FallbackCols))
	var (
		sess     *session
		finished chan struct{}
	)

	for req := range reqs {
		switch req.Type {
		case "pty-req":
			var p ptyRequest
			if err := ssh.Unmarshal(req.Payload, &p); err != nil {
				reply(req, false)
				continue
			}
			s.resizeSSH(sess, dims, int(p.Rows), int(p.Columns))
			reply(req, true)
		case "window-change":
			var w windowChange
			if err := ssh.Unmarshal(req.Payload, &w); err != nil {
				reply(req, false)
				continue
			}
			s.resizeSSH(sess, dims, int(w.Rows), int(w.Columns))
			reply(req, true)
		case "shell":
			if sess != nil {
				reply(req, false)
				continue
			}
			var err error
			sess, err = s.open(ctx, "ssh", remote, dims, ch)
			if err != nil {
				reply(req, true)
				s.rejectSSH(ch, err)
				go ssh.DiscardRequests(reqs)
				return
			}
			reply(req, true)
			if err := sess.sched.Start(ctx); err != nil {
				s.logger.Debug("ssh stream failed to start", "session", sess.id, "err", err)
			}
			finished = make(chan struct{})
			go func() {
				// EOF on stdin leaves the stream running; only the channel
				// closing ends it.
				if terminal.ReadUntilInterrupt(ch) {
					sess.stop("interrupt")
				}
			}()
			go func() {
				defer close(finished)
				<-sess.sched.Done()
				s.release(sess)
				if restoreWithin(ch, writeWait) {
					_, _ = ch.SendRequest("exit-status", false, ssh.Marshal(exitStatus{}))
				}
				_ = ch.Close()
			}()
		default:
			reply(req, false)
		}
	}

	// The client closed the channel or the connection dropped.
	if sess == nil {
		_ = ch.Close()
		return
	}
	sess.stop("closed")
	<-finished
}

func (s *Server) resizeSSH(sess *session, dims *terminal.Dims, termRows, termCols int) {
	if sess != nil {
		sess.resize(termRows, termCols)
		return
	}
	dims.SetTerminal(termRows, termCols)
}

func (s *Server) rejectSSH(ch ssh.Channel, err error) {
	msg := "fissh: " + err.Error()
	status := uint32(1)
	if errors.Is(err, ErrCapacity) {
		msg = "fissh: the aquarium is full, try again later"
	}
	s.logger.Info("ssh session rejected", "err", err)
	_, _ = io.WriteString(ch, msg+"\r\n")
	_, _ = ch.SendRequest("exit-status", false, ssh.Marshal(exitStatus{Status: status}))
	_ = ch.Close()
}

func reply(req *ssh.Request, ok bool) {
	if req.WantReply {
		_ = req.Reply(ok, nil)
	}
}

// restoreWithin writes the terminal restore sequence unless the client has
// stopped reading for longer than d. Closing the channel afterwards unblocks
// any write still pending.
func restoreWithin(ch ssh.Channel, d time.Duration) bool {
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = terminal.Restore(ch)
	}()
	select {
	case <-done:
		return true
	case <-time.After(d):
		return false
	}
}
