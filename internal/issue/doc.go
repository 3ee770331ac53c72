// SPDX-License-Identifier: MPL-2.0

// Package issue centralizes the user-facing failure catalog. Every known
// failure mode that deserves more than a bare error string gets an Issue
// with a rendered markdown explanation, plus an ActionableError type for
// attaching operations, resources and suggestions to error chains.
package issue
