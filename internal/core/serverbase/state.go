// SPDX-License-Identifier: MPL-2.0

package serverbase

import (
	"errors"
	"fmt"
)

// State tracks where a server is in its lifecycle. Transitions only move
// forward; Base holds the CAS methods that enforce this.
type State int32

const (
	// StateCreated is the zero state, before Start is called.
	StateCreated State = iota
	// StateStarting covers Start up to the listener being ready.
	StateStarting
	// StateRunning means the server is accepting connections.
	StateRunning
	// StateStopping covers Stop while the graceful shutdown drains.
	StateStopping
	// StateStopped is terminal: the server shut down cleanly.
	StateStopped
	// StateFailed is terminal: startup failed or a fatal error occurred.
	StateFailed
)

// ErrInvalidState matches any out-of-range State via errors.Is.
var ErrInvalidState = errors.New("invalid state")

// InvalidStateError carries the rejected state value.
type InvalidStateError struct {
	Value State
}

var stateNames = [...]string{
	StateCreated:  "created",
	StateStarting: "starting",
	StateRunning:  "running",
	StateStopping: "stopping",
	StateStopped:  "stopped",
	StateFailed:   "failed",
}

// String returns the lowercase state name, "unknown" for out-of-range values.
func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Validate rejects values outside the defined lifecycle states. The states
// are a contiguous iota block, so a range check covers them.
func (s State) Validate() error {
	if s < StateCreated || s > StateFailed {
		return &InvalidStateError{Value: s}
	}
	return nil
}

// IsTerminal returns true for the states a server never leaves.
func (s State) IsTerminal() bool {
	return s == StateStopped || s == StateFailed
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("invalid state %d, valid states are %d through %d (%s through %s)",
		e.Value, StateCreated, StateFailed, StateCreated, StateFailed)
}

// Unwrap returns ErrInvalidState so callers can use errors.Is.
func (e *InvalidStateError) Unwrap() error { return ErrInvalidState }
