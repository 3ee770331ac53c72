// SPDX-License-Identifier: MPL-2.0

// Package serverbase provides the lifecycle state machine shared by
// long-running servers: atomic state transitions, readiness signaling,
// goroutine tracking and async error reporting.
package serverbase
