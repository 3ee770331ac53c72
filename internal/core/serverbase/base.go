// SPDX-License-Identifier: MPL-2.0

package serverbase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// Base carries the lifecycle plumbing a concrete server embeds: the state
// machine, a readiness channel, a WaitGroup for background goroutines and a
// buffered channel for async errors.
//
// A server instance is single-use. Once stopped or failed, create a new one.
type Base struct {
	state atomic.Int32

	// stateMu guards lastErr; the state word itself is atomic.
	stateMu sync.Mutex
	lastErr error

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	startedCh chan struct{}
	errCh     chan error
}

// NewBase returns a Base in the Created state.
func NewBase() *Base {
	b := &Base{
		startedCh: make(chan struct{}),
		errCh:     make(chan error, 1),
	}
	b.state.Store(int32(StateCreated))
	return b
}

// State returns the current server state (lock-free read).
func (b *Base) State() State {
	return State(b.state.Load())
}

// IsRunning reports whether the server is currently running.
func (b *Base) IsRunning() bool {
	return b.State() == StateRunning
}

// Err returns the channel that receives fatal errors from background
// goroutines. It is closed when the server stops.
func (b *Base) Err() <-chan error {
	return b.errCh
}

// LastError returns whatever error put the server into the Failed state, or
// nil when it never failed.
func (b *Base) LastError() error {
	b.stateMu.Lock()
	defer b.stateMu.Unlock()
	return b.lastErr
}

// TransitionToStarting moves Created -> Starting and installs the internal
// lifecycle context. It fails when the caller's context is already cancelled
// or the server is not in the Created state. Call it first thing in Start().
func (b *Base) TransitionToStarting(ctx context.Context) error {
	// A cancelled context must be caught before any goroutine can race the
	// state machine into Running.
	select {
	case <-ctx.Done():
		b.TransitionToFailed(fmt.Errorf("context cancelled before start: %w", ctx.Err()))
		return b.LastError()
	default:
	}

	if !b.state.CompareAndSwap(int32(StateCreated), int32(StateStarting)) {
		return fmt.Errorf("cannot start server in state %s", b.State())
	}

	b.ctx, b.cancel = context.WithCancel(context.Background())
	return nil
}

// TransitionToRunning moves Starting -> Running and closes the readiness
// channel. Call it when the server is actually accepting connections.
func (b *Base) TransitionToRunning() {
	if b.state.CompareAndSwap(int32(StateStarting), int32(StateRunning)) {
		close(b.startedCh)
	}
}

// cancelLifecycle tears down the context installed by TransitionToStarting.
// Safe to call at any point; before Start the cancel func is still nil.
func (b *Base) cancelLifecycle() {
	if b.cancel != nil {
		b.cancel()
	}
}

// TransitionToFailed records err as the failure cause, moves to the Failed
// state and cancels the lifecycle context. The error is also pushed to Err().
func (b *Base) TransitionToFailed(err error) {
	b.stateMu.Lock()
	b.lastErr = err
	b.stateMu.Unlock()

	// Failed is terminal and reachable from every state, so a plain store
	// is enough; no CAS loop here.
	b.state.Store(int32(StateFailed))
	b.cancelLifecycle()
	b.SendError(err)
}

// TransitionToStopping moves Starting/Running -> Stopping and cancels the
// lifecycle context. It returns false when there is nothing to stop: the
// server already stopped, failed, is stopping elsewhere, or never started
// (Created collapses straight to Stopped).
func (b *Base) TransitionToStopping() bool {
	for {
		current := State(b.state.Load())
		switch current {
		case StateStopped, StateFailed, StateStopping:
			return false
		case StateCreated:
			if b.state.CompareAndSwap(int32(StateCreated), int32(StateStopped)) {
				return false
			}
			continue
		case StateStarting, StateRunning:
			if !b.state.CompareAndSwap(int32(current), int32(StateStopping)) {
				continue
			}
			b.cancelLifecycle()
			return true
		default:
			return false
		}
	}
}

// TransitionToStopped marks the server fully stopped. Call it only after
// WaitForShutdown() returns.
func (b *Base) TransitionToStopped() {
	b.state.Store(int32(StateStopped))
}

// WaitForShutdown blocks until every tracked goroutine has exited.
func (b *Base) WaitForShutdown() {
	b.wg.Wait()
}

// Context returns the lifecycle context, nil before Start().
func (b *Base) Context() context.Context {
	return b.ctx
}

// AddGoroutine registers a background goroutine. Call before go.
func (b *Base) AddGoroutine() {
	b.wg.Add(1)
}

// DoneGoroutine marks a background goroutine finished. Defer at its top.
func (b *Base) DoneGoroutine() {
	b.wg.Done()
}

// SendError delivers err to Err() consumers without blocking; when the
// channel is full the error is dropped.
func (b *Base) SendError(err error) {
	select {
	case b.errCh <- err:
	default:
	}
}

// CloseErrChannel closes the error channel. Call once, when fully stopped.
func (b *Base) CloseErrChannel() {
	close(b.errCh)
}

// StartedChannel returns the readiness channel, closed on Running.
func (b *Base) StartedChannel() <-chan struct{} {
	return b.startedCh
}
