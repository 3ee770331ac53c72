// SPDX-License-Identifier: MPL-2.0

package sshserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"

	"vaultrun-cli/internal/core/serverbase"

	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
)

// Start brings the server up and returns once it accepts connections, the
// startup timeout elapses, or ctx is cancelled. After a nil return, runtime
// failures arrive on Err().
func (s *Server) Start(ctx context.Context) error {
	if err := s.TransitionToStarting(ctx); err != nil {
		return err
	}

	startupCtx, cancel := context.WithTimeout(ctx, s.cfg.StartupTimeout)
	defer cancel()

	addr := s.cfg.Port.HostPort(s.cfg.Host.String())
	listener, err := (&net.ListenConfig{}).Listen(startupCtx, "tcp", addr)
	if err != nil {
		s.TransitionToFailed(fmt.Errorf("bind %s: %w", addr, err))
		return s.LastError()
	}

	// The listener resolves a zero port; record the address it actually got.
	s.srvMu.Lock()
	s.listener = listener
	s.addr = listener.Addr().String()
	s.srvMu.Unlock()

	// Auth handlers are only registered when a token is installed; without
	// them the server accepts every connection.
	opts := []ssh.Option{
		wish.WithAddress(addr),
		wish.WithMiddleware(s.sessionMiddleware()),
	}
	if s.AuthEnabled() {
		opts = append(opts,
			wish.WithPublicKeyAuth(s.publicKeyHandler),
			wish.WithPasswordAuth(s.passwordHandler),
		)
	}

	srv, err := wish.NewServer(opts...)
	if err != nil {
		_ = listener.Close()
		s.TransitionToFailed(fmt.Errorf("build SSH server: %w", err))
		return s.LastError()
	}

	s.srvMu.Lock()
	s.srv = srv
	s.srvMu.Unlock()

	s.AddGoroutine()
	go s.serve()

	select {
	case <-s.StartedChannel():
		s.logger.Info("SSH server started", "address", s.boundAddr(), "auth", s.AuthEnabled())
		return nil
	case err := <-s.Err():
		s.TransitionToFailed(err)
		return err
	case <-startupCtx.Done():
		s.TransitionToFailed(fmt.Errorf("startup timeout: %w", startupCtx.Err()))
		return s.LastError()
	}
}

// serve accepts connections until the listener closes. It runs on its own
// goroutine; closing the started channel is what releases Start().
func (s *Server) serve() {
	defer s.DoneGoroutine()

	s.TransitionToRunning()

	s.srvMu.Lock()
	srv, listener := s.srv, s.listener
	s.srvMu.Unlock()
	if srv == nil || listener == nil {
		return
	}

	err := srv.Serve(listener)
	if err == nil || errors.Is(err, ssh.ErrServerClosed) || errors.Is(err, net.ErrClosed) {
		// Ordinary shutdown.
		return
	}
	s.SendError(fmt.Errorf("serve error: %w", err))
}

// Stop shuts the server down, waiting for open sessions up to the configured
// shutdown timeout. Calling it again (or on a server that never started) is
// a no-op.
func (s *Server) Stop() error {
	if !s.TransitionToStopping() {
		// Nothing to shut down here, but a concurrent Stop may still be in
		// flight; wait so every caller returns to a quiet server.
		s.WaitForShutdown()
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	var shutdownErr error
	s.srvMu.Lock()
	if s.srv != nil {
		if err := s.srv.Shutdown(shutdownCtx); err != nil && !isClosedConnError(err) {
			s.logger.Error("shutdown error", "error", err)
			shutdownErr = err
		}
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.srvMu.Unlock()

	s.WaitForShutdown()

	s.TransitionToStopped()
	s.CloseErrChannel()
	s.logger.Info("SSH server stopped")

	return shutdownErr
}

// Address returns the bound listen address (host:port). It blocks while a
// Start() is still settling and returns "" when the server never started or
// failed to come up.
func (s *Server) Address() string {
	// Fast path once startup completed; the address stays readable after
	// Stop.
	select {
	case <-s.StartedChannel():
		return s.boundAddr()
	default:
	}

	ctx := s.Context()
	if ctx == nil {
		// Start() has not been called.
		return ""
	}

	select {
	case <-s.StartedChannel():
		return s.boundAddr()
	case <-ctx.Done():
		return ""
	}
}

func (s *Server) boundAddr() string {
	s.srvMu.Lock()
	defer s.srvMu.Unlock()
	return s.addr
}

// Port returns the port the server actually listens on, 0 when it never
// started. With cfg.Port = 0 this is where the kernel-picked port surfaces.
func (s *Server) Port() int {
	_, portStr, err := net.SplitHostPort(s.Address())
	if err != nil {
		return 0
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 0
	}
	return port
}

// Host returns the configured bind host.
func (s *Server) Host() string {
	return s.cfg.Host.String()
}

// Wait blocks until the server has fully stopped and reports the failure
// that brought it down, if any.
func (s *Server) Wait() error {
	s.WaitForShutdown()
	if s.State() == serverbase.StateFailed {
		return s.LastError()
	}
	return nil
}

// isClosedConnError matches the net.OpError the standard library returns
// when an accept races listener shutdown. There is no exported sentinel for
// it, so the message text is the only handle.
func isClosedConnError(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Err.Error() == "use of closed network connection"
}
