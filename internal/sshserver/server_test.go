// SPDX-License-Identifier: MPL-2.0

package sshserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"testing"
	"time"

	"vaultrun-cli/internal/core/serverbase"
	"vaultrun-cli/internal/testutil"
)

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	srv := New(DefaultConfig())

	if srv.AuthEnabled() {
		t.Error("server built without a token should start open")
	}

	token, err := srv.GenerateToken()
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	if len(token.Value) != 64 {
		t.Errorf("token value length = %d, want 64 hex chars", len(token.Value))
	}
	if !token.ExpiresAt.After(token.CreatedAt) {
		t.Error("Token should expire after its creation time")
	}
	if !srv.AuthEnabled() {
		t.Error("AuthEnabled() should be true after GenerateToken()")
	}
}

func TestValidateToken(t *testing.T) {
	t.Parallel()

	srv := New(DefaultConfig())

	token, err := srv.GenerateToken()
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	if !srv.ValidateToken(token.Value) {
		t.Error("Token should be valid")
	}
	if srv.ValidateToken("invalid-token") {
		t.Error("Invalid token should not be valid")
	}
}

func TestValidateToken_OpenServer(t *testing.T) {
	t.Parallel()

	srv := New(DefaultConfig())

	if srv.ValidateToken("anything") {
		t.Error("open server should not validate any token")
	}
}

func TestConfiguredToken(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Token = "sesame"

	srv := New(cfg)

	if !srv.AuthEnabled() {
		t.Error("AuthEnabled() should be true for a configured token")
	}
	if !srv.ValidateToken("sesame") {
		t.Error("configured token should validate")
	}
	if srv.ValidateToken("open sesame") {
		t.Error("wrong token should not validate")
	}
}

func TestRevokeToken(t *testing.T) {
	t.Parallel()

	srv := New(DefaultConfig())

	token, err := srv.GenerateToken()
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	if !srv.ValidateToken(token.Value) {
		t.Error("Token should be valid before revocation")
	}

	srv.RevokeToken()

	if srv.ValidateToken(token.Value) {
		t.Error("Token should be invalid after revocation")
	}
}

func TestGenerateToken_ReplacesPrevious(t *testing.T) {
	t.Parallel()

	srv := New(DefaultConfig())

	first, err := srv.GenerateToken()
	if err != nil {
		t.Fatalf("Failed to generate first token: %v", err)
	}
	second, err := srv.GenerateToken()
	if err != nil {
		t.Fatalf("Failed to generate second token: %v", err)
	}

	if first.Value == second.Value {
		t.Error("regenerated token should differ from the first")
	}
	if srv.ValidateToken(first.Value) {
		t.Error("first token should stop working after regeneration")
	}
	if !srv.ValidateToken(second.Value) {
		t.Error("second token should validate")
	}
}

func TestExpiredToken(t *testing.T) {
	t.Parallel()

	// Expiry is driven by the injected clock, not wall time.
	clock := testutil.NewFakeClock(time.Now())
	cfg := DefaultConfig()
	srv := NewWithClock(cfg, clock)

	token, err := srv.GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken() = %v", err)
	}
	if !srv.ValidateToken(token.Value) {
		t.Fatal("fresh token should validate")
	}

	clock.Advance(cfg.TokenTTL + time.Millisecond)

	if srv.ValidateToken(token.Value) {
		t.Error("token should stop validating once its TTL has passed")
	}
}

// startServer boots a server on an ephemeral port and registers a cleanup
// that shuts it down.
func startServer(t *testing.T) *Server {
	t.Helper()

	cfg := DefaultConfig()
	cfg.Port = 0 // bind an ephemeral port
	srv := New(cfg)

	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	t.Cleanup(testutil.DeferStop(t, srv))

	return srv
}

// cancelledContext returns a context that is already cancelled, which makes
// Start fail before the listener comes up.
func cancelledContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}

func TestServerLifecycle(t *testing.T) {
	t.Parallel()

	srv := New(DefaultConfig())

	if got := srv.State(); got != serverbase.StateCreated {
		t.Fatalf("state before Start() = %s, want created", got)
	}
	if srv.IsRunning() {
		t.Fatal("IsRunning() = true before Start()")
	}

	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	if got := srv.State(); got != serverbase.StateRunning {
		t.Errorf("state after Start() = %s, want running", got)
	}
	if !srv.IsRunning() {
		t.Error("IsRunning() = false after Start()")
	}
	if srv.Port() == 0 {
		t.Error("Port() = 0 after Start(), want a bound port")
	}
	if srv.Address() == "" {
		t.Error("Address() empty after Start()")
	}

	if err := srv.Stop(); err != nil {
		t.Fatalf("Stop() failed: %v", err)
	}

	if got := srv.State(); got != serverbase.StateStopped {
		t.Errorf("state after Stop() = %s, want stopped", got)
	}
	if srv.IsRunning() {
		t.Error("IsRunning() = true after Stop()")
	}
}

func TestServerSecondStartFails(t *testing.T) {
	t.Parallel()

	srv := startServer(t)

	if err := srv.Start(context.Background()); err == nil {
		t.Error("Start() on a running server should fail")
	}
}

func TestServerStopIsIdempotent(t *testing.T) {
	t.Parallel()

	srv := startServer(t)

	if err := srv.Stop(); err != nil {
		t.Fatalf("Stop() failed: %v", err)
	}
	if err := srv.Stop(); err != nil {
		t.Errorf("repeated Stop() = %v, want nil", err)
	}
}

func TestServerStartCancelledContext(t *testing.T) {
	t.Parallel()

	srv := New(DefaultConfig())

	if err := srv.Start(cancelledContext()); err == nil {
		testutil.MustStop(t, srv)
		t.Fatal("Start() with a cancelled context should fail")
	}
	if got := srv.State(); got != serverbase.StateFailed {
		t.Errorf("state after failed Start() = %s, want failed", got)
	}
}

func TestServerStopBeforeStart(t *testing.T) {
	t.Parallel()

	srv := New(DefaultConfig())

	if err := srv.Stop(); err != nil {
		t.Errorf("Stop() on a never-started server = %v, want nil", err)
	}
	if got := srv.State(); got != serverbase.StateStopped {
		t.Errorf("state = %s, want stopped", got)
	}
}

func TestIsClosedConnError(t *testing.T) {
	t.Parallel()

	closedConn := func() error {
		return &net.OpError{Op: "accept", Err: errors.New("use of closed network connection")}
	}

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("boom"), false},
		{"closed connection", closedConn(), true},
		{"wrapped closed connection", fmt.Errorf("accept loop: %w", closedConn()), true},
		{"unrelated op error", &net.OpError{Op: "accept", Err: errors.New("connection reset by peer")}, false},
		{"matching text without OpError", errors.New("use of closed network connection"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := isClosedConnError(tt.err); got != tt.want {
				t.Errorf("isClosedConnError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestServerPortConflict(t *testing.T) {
	t.Parallel()

	first := startServer(t)

	cfg := DefaultConfig()
	cfg.Port = ListenPort(first.Port())
	second := New(cfg)

	if err := second.Start(context.Background()); err == nil {
		testutil.MustStop(t, second)
		t.Fatalf("Start() on occupied port %d should fail", first.Port())
	}
	if got := second.State(); got != serverbase.StateFailed {
		t.Errorf("state after failed Start() = %s, want failed", got)
	}
}

func TestServerAddress(t *testing.T) {
	t.Parallel()

	srv := startServer(t)

	host, port, err := net.SplitHostPort(srv.Address())
	if err != nil {
		t.Fatalf("Address() = %q, not host:port: %v", srv.Address(), err)
	}
	if host != srv.Host() {
		t.Errorf("Address() host = %q, Host() = %q", host, srv.Host())
	}
	if want := strconv.Itoa(srv.Port()); port != want {
		t.Errorf("Address() port = %q, Port() = %d", port, srv.Port())
	}
	if srv.Host() != "127.0.0.1" {
		t.Errorf("Host() = %q, want 127.0.0.1", srv.Host())
	}
	if srv.Port() <= 0 {
		t.Errorf("Port() = %d, want > 0", srv.Port())
	}
}

func TestServerWaitAfterStop(t *testing.T) {
	t.Parallel()

	srv := startServer(t)

	if err := srv.Stop(); err != nil {
		t.Fatalf("Stop() failed: %v", err)
	}
	if err := srv.Wait(); err != nil {
		t.Errorf("Wait() after clean Stop() = %v, want nil", err)
	}
}

func TestServerWaitAfterFailedStart(t *testing.T) {
	t.Parallel()

	srv := New(DefaultConfig())

	if err := srv.Start(cancelledContext()); err == nil {
		testutil.MustStop(t, srv)
		t.Fatal("Start() with a cancelled context should fail")
	}
	if err := srv.Wait(); err == nil {
		t.Error("Wait() after failed Start() = nil, want the startup error")
	}
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	checks := []struct {
		field string
		got   any
		want  any
	}{
		{"Host", cfg.Host, HostAddress("127.0.0.1")},
		{"Port", cfg.Port, ListenPort(0)},
		{"Token", cfg.Token, TokenValue("")},
		{"TokenTTL", cfg.TokenTTL, time.Hour},
		{"DefaultWorld", cfg.DefaultWorld, "corridor"},
		{"FrameDelay", cfg.FrameDelay, 120 * time.Millisecond},
		{"ShutdownTimeout", cfg.ShutdownTimeout, 10 * time.Second},
		{"StartupTimeout", cfg.StartupTimeout, 5 * time.Second},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("DefaultConfig().%s = %v, want %v", c.field, c.got, c.want)
		}
	}
}

// A stopped server cannot be started again; callers build a fresh instance
// per listen cycle.
