// SPDX-License-Identifier: MPL-2.0

package config

// configDirOverride points config lookup at a test-controlled directory.
// os.UserHomeDir does not follow the HOME environment variable on every
// platform (macOS in CI, notably), so tests cannot redirect through env
// alone.
var configDirOverride string

// Reset clears test overrides. Call from test cleanup to restore defaults.
func Reset() {
	configDirOverride = ""
}

// SetConfigDirOverride redirects config directory lookup, bypassing
// os.UserHomeDir. Intended for tests.
func SetConfigDirOverride(dir string) {
	configDirOverride = dir
}
