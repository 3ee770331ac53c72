// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that handle errors
// appropriately, reducing boilerplate and ensuring consistent error handling.
//
// Common helpers include environment variable management (MustSetenv),
// directory and file operations (MustChdir, MustWriteFile), resource cleanup
// (MustClose, MustStop, DeferStop), a Clock abstraction with a controllable
// FakeClock, and a semaphore bounding container-backed test parallelism.
package testutil
