// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"net"
	"strconv"
)

// ErrInvalidListenPort matches any out-of-range port via errors.Is. The
// concrete *InvalidListenPortError carries the offending value.
var ErrInvalidListenPort = errors.New("invalid listen port")

// ListenPort is a TCP port for the SSH server to bind. Zero is valid and
// asks the kernel for an ephemeral port; anything else must fit 1-65535.
type ListenPort int

// InvalidListenPortError reports a port that cannot be bound.
type InvalidListenPortError struct {
	Value ListenPort
}

func (e *InvalidListenPortError) Error() string {
	return fmt.Sprintf("listen port %d is outside 0-65535", e.Value)
}

func (e *InvalidListenPortError) Unwrap() error { return ErrInvalidListenPort }

// String returns the port in decimal.
func (p ListenPort) String() string { return strconv.Itoa(int(p)) }

// HostPort joins host with the port in the "host:port" form net.Listen
// accepts.
func (p ListenPort) HostPort(host string) string {
	return net.JoinHostPort(host, p.String())
}

// Validate rejects ports that cannot be bound. Zero passes; it selects an
// ephemeral port at bind time.
func (p ListenPort) Validate() error {
	if p < 0 || p > 65535 {
		return &InvalidListenPortError{Value: p}
	}
	return nil
}
