// SPDX-License-Identifier: MPL-2.0

package sshserver

import (
	"errors"
	"fmt"
	"strings"

	"vaultrun-cli/pkg/types"
)

// ListenPort and its validation error live in pkg/types, shared with the
// configuration layer; the aliases keep this package self-contained for
// callers.
type (
	ListenPort             = types.ListenPort
	InvalidListenPortError = types.InvalidListenPortError
)

// ErrInvalidListenPort mirrors the pkg/types sentinel.
var ErrInvalidListenPort = types.ErrInvalidListenPort

// HostAddress is a bind host (IP or hostname) for the serve listener. Any
// non-blank string passes validation; resolution problems surface when the
// listener opens.
type HostAddress string

// ErrInvalidHostAddress is wrapped by InvalidHostAddressError.
var ErrInvalidHostAddress = errors.New("invalid host address")

// InvalidHostAddressError reports an empty or whitespace-only HostAddress.
type InvalidHostAddressError struct {
	Value HostAddress
}

func (e *InvalidHostAddressError) Error() string {
	return fmt.Sprintf("invalid host address %q: must be non-blank", e.Value)
}

func (e *InvalidHostAddressError) Unwrap() error { return ErrInvalidHostAddress }

func (h HostAddress) String() string { return string(h) }

// Validate rejects blank addresses.
func (h HostAddress) Validate() error {
	if strings.TrimSpace(string(h)) == "" {
		return &InvalidHostAddressError{Value: h}
	}
	return nil
}

// TokenValue is a shared session token. Validation only rejects blank
// values; an absent token is a config-level state (open server) decided
// before any TokenValue exists.
type TokenValue string

// ErrInvalidTokenValue is wrapped by InvalidTokenValueError.
var ErrInvalidTokenValue = errors.New("invalid token value")

// InvalidTokenValueError reports an empty or whitespace-only TokenValue.
type InvalidTokenValueError struct {
	Value TokenValue
}

func (e *InvalidTokenValueError) Error() string {
	return fmt.Sprintf("invalid token value %q: must be non-blank", e.Value)
}

func (e *InvalidTokenValueError) Unwrap() error { return ErrInvalidTokenValue }

func (t TokenValue) String() string { return string(t) }

// Validate rejects blank tokens.
func (t TokenValue) Validate() error {
	if strings.TrimSpace(string(t)) == "" {
		return &InvalidTokenValueError{Value: t}
	}
	return nil
}

// ErrInvalidSSHConfig is wrapped by InvalidSSHConfigError.
var ErrInvalidSSHConfig = errors.New("invalid SSH server config")

// InvalidSSHConfigError collects the field-level failures of a server
// Config so callers see every problem at once.
type InvalidSSHConfigError struct {
	FieldErrors []error
}

func (e *InvalidSSHConfigError) Error() string {
	return fmt.Sprintf("invalid SSH server config: %d invalid field(s)", len(e.FieldErrors))
}

func (e *InvalidSSHConfigError) Unwrap() error { return ErrInvalidSSHConfig }
