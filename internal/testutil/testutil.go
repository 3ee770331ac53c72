// SPDX-License-Identifier: MPL-2.0

// Package testutil carries small helpers shared by tests across packages.
package testutil

import (
	"os"
	"testing"
)

// Stopper is the stop half of a long-running component, typically a server.
type Stopper interface {
	Stop() error
}

// MustSetenv sets key to value and returns a restore function. Unlike
// t.Setenv it can be used from tests that call t.Parallel, as long as the
// caller serializes access to the variable itself.
func MustSetenv(t testing.TB, key, value string) func() {
	t.Helper()
	prev, had := os.LookupEnv(key)
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("Setenv(%s) = %v", key, err)
	}
	return func() {
		var err error
		if had {
			err = os.Setenv(key, prev)
		} else {
			err = os.Unsetenv(key)
		}
		if err != nil {
			t.Errorf("restoring %s: %v", key, err)
		}
	}
}

// MustWriteFile writes data to path, failing the test on error.
func MustWriteFile(t testing.TB, path string, data []byte, perm os.FileMode) {
	t.Helper()
	if err := os.WriteFile(path, data, perm); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// MustStop stops s. Shutdown errors are logged, not failed on; by teardown
// time they are noise.
func MustStop(t testing.TB, s Stopper) {
	t.Helper()
	if err := s.Stop(); err != nil {
		t.Logf("stop during cleanup: %v", err)
	}
}

// DeferStop wraps MustStop for use with t.Cleanup.
func DeferStop(t testing.TB, s Stopper) func() {
	return func() {
		t.Helper()
		MustStop(t, s)
	}
}
