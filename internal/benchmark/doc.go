// SPDX-License-Identifier: MPL-2.0

// Package benchmark provides comprehensive benchmarks for PGO profile generation.
// These benchmarks cover all hot paths in the vaultrun codebase:
//   - CUE world file parsing and schema validation
//   - Program tokenizing and parsing
//   - Builtin, native, and container runtime execution
//   - End-to-end program runs against the builtin worlds
//
// To generate a PGO profile, run:
//
//	make pgo-profile       # Full profile (includes container tests)
//	make pgo-profile-short # Short profile (skips container tests)
package benchmark
