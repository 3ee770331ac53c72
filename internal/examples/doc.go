// SPDX-License-Identifier: MPL-2.0

// Package examples holds the bundled bot programs, each paired with the
// builtin world it is written for. The catalog ships as an embedded TOML
// manifest so new examples are added without touching Go code.
package examples
