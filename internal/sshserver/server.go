// SPDX-License-Identifier: MPL-2.0

package sshserver

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"vaultrun-cli/internal/core/serverbase"
	"vaultrun-cli/internal/testutil"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
)

type (
	// Token is the shared secret presented as the SSH password. The server
	// holds at most one token at a time; installing a new one replaces it.
	Token struct {
		Value     TokenValue
		CreatedAt time.Time
		ExpiresAt time.Time
	}

	// Server serves Vault Runner sessions over SSH.
	// A Server instance is single-use: once stopped or failed, create a new instance.
	Server struct {
		*serverbase.Base

		// Immutable configuration (set at creation, never modified)
		cfg Config

		// Initialized during Start() - protected by srvMu for writes
		srvMu    sync.Mutex
		srv      *ssh.Server
		listener net.Listener
		addr     string // Actual bound address (including resolved port)

		// Session token; nil means the server accepts every connection
		token   *Token
		tokenMu sync.RWMutex

		// Clock for token expiry (injectable for testing)
		clock testutil.Clock

		logger *log.Logger
	}

	// Config holds immutable configuration for the SSH server.
	Config struct {
		// Host is the address to bind to (default: 127.0.0.1)
		Host HostAddress
		// Port is the port to listen on (0 = auto-select)
		Port ListenPort
		// Token guards sessions when set. Leaving it empty starts the
		// server open, accepting every connection; only sensible when
		// bound to a loopback address.
		Token TokenValue
		// TokenTTL is how long a token stays valid (default: 1 hour)
		TokenTTL time.Duration
		// DefaultWorld receives programs piped into a session that names
		// no world (default: corridor)
		DefaultWorld string
		// FrameDelay paces the per-step redraw on interactive sessions
		// (default: 120ms)
		FrameDelay time.Duration
		// ShutdownTimeout is the timeout for graceful shutdown (default: 10s)
		ShutdownTimeout time.Duration
		// StartupTimeout is the max time to wait for server to be ready (default: 5s)
		StartupTimeout time.Duration
	}
)

// Validate returns nil if every Config field is valid, or an
// InvalidSSHConfigError collecting the field-level errors.
func (c Config) Validate() error {
	var fieldErrors []error

	if err := c.Host.Validate(); err != nil {
		fieldErrors = append(fieldErrors, err)
	}
	if err := c.Port.Validate(); err != nil {
		fieldErrors = append(fieldErrors, err)
	}
	if c.Token != "" {
		if err := c.Token.Validate(); err != nil {
			fieldErrors = append(fieldErrors, err)
		}
	}
	if strings.TrimSpace(c.DefaultWorld) == "" {
		fieldErrors = append(fieldErrors, errors.New("default world must not be empty"))
	}
	if c.FrameDelay < 0 {
		fieldErrors = append(fieldErrors, fmt.Errorf("frame delay must not be negative, got %v", c.FrameDelay))
	}

	if len(fieldErrors) > 0 {
		return &InvalidSSHConfigError{FieldErrors: fieldErrors}
	}
	return nil
}

// DefaultConfig returns a default configuration.
func DefaultConfig() Config {
	return Config{
		Host:            "127.0.0.1",
		Port:            0,
		TokenTTL:        time.Hour,
		DefaultWorld:    "corridor",
		FrameDelay:      120 * time.Millisecond,
		ShutdownTimeout: 10 * time.Second,
		StartupTimeout:  5 * time.Second,
	}
}

// New creates a new SSH server instance.
// The server is not started; call Start() to begin accepting connections.
func New(cfg Config) *Server {
	return NewWithClock(cfg, testutil.RealClock{})
}

// NewWithClock creates a new SSH server with a custom clock, so tests can
// drive token expiry deterministically.
func NewWithClock(cfg Config, clock testutil.Clock) *Server {
	// Zero fields fall back to the defaults; a zero Port stays zero and
	// binds an ephemeral port.
	def := DefaultConfig()
	if cfg.Host == "" {
		cfg.Host = def.Host
	}
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = def.TokenTTL
	}
	if cfg.DefaultWorld == "" {
		cfg.DefaultWorld = def.DefaultWorld
	}
	if cfg.FrameDelay == 0 {
		cfg.FrameDelay = def.FrameDelay
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = def.ShutdownTimeout
	}
	if cfg.StartupTimeout == 0 {
		cfg.StartupTimeout = def.StartupTimeout
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		Prefix: "ssh-server",
	})

	s := &Server{
		Base:   serverbase.NewBase(),
		cfg:    cfg,
		clock:  clock,
		logger: logger,
	}
	if cfg.Token != "" {
		s.installToken(cfg.Token)
	}

	return s
}
