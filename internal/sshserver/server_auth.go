// SPDX-License-Identifier: MPL-2.0

package sshserver

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"github.com/charmbracelet/ssh"
)

// installToken stores value as the session secret, stamped with the
// configured TTL.
func (s *Server) installToken(value TokenValue) *Token {
	now := s.clock.Now()
	token := &Token{
		Value:     value,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.TokenTTL),
	}

	s.tokenMu.Lock()
	s.token = token
	s.tokenMu.Unlock()

	return token
}

// GenerateToken mints a random token and installs it as the session secret.
// Any previously installed token stops working. Auth handlers bind during
// Start(), so the token must be installed before the server starts; on a
// server started open this has no effect.
func (s *Server) GenerateToken() (*Token, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	token := s.installToken(TokenValue(hex.EncodeToString(tokenBytes)))
	s.logger.Debug("Generated session token", "expiresAt", token.ExpiresAt)

	return token, nil
}

// AuthEnabled returns whether sessions must present a token.
func (s *Server) AuthEnabled() bool {
	s.tokenMu.RLock()
	defer s.tokenMu.RUnlock()
	return s.token != nil
}

// ValidateToken checks a presented secret against the installed token.
// The comparison is constant-time so the secret cannot be probed byte
// by byte.
func (s *Server) ValidateToken(value TokenValue) bool {
	s.tokenMu.RLock()
	token := s.token
	s.tokenMu.RUnlock()

	if token == nil {
		return false
	}
	if s.clock.Now().After(token.ExpiresAt) {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(token.Value), []byte(value)) == 1
}

// RevokeToken discards the installed token. Sessions opened afterwards are
// rejected until a new token is installed; the server does not fall back
// to open mode.
func (s *Server) RevokeToken() {
	s.tokenMu.Lock()
	s.token = nil
	s.tokenMu.Unlock()
}

// passwordHandler handles password authentication using the session token.
func (s *Server) passwordHandler(ctx ssh.Context, password string) bool {
	if !s.ValidateToken(TokenValue(password)) {
		s.logger.Warn("Invalid token authentication attempt", "user", ctx.User(), "remote", ctx.RemoteAddr())
		return false
	}

	s.logger.Debug("Token authentication successful", "user", ctx.User())
	return true
}

// publicKeyHandler rejects all public key authentication.
// We only want token-based authentication.
func (s *Server) publicKeyHandler(ctx ssh.Context, key ssh.PublicKey) bool {
	// Reject public key auth - we only accept token-based password auth
	return false
}
