// SPDX-License-Identifier: MPL-2.0

package platform

// Named runtime.GOOS values, so call sites compare against a constant
// instead of a bare string.
const (
	Windows = "windows"
	Darwin  = "darwin"
	Linux   = "linux"
)
