// SPDX-License-Identifier: MPL-2.0

package cueutil

// DefaultMaxFileSize caps CUE input at 5MB. World and config files are a
// few kilobytes; anything near the cap is not one of ours.
const DefaultMaxFileSize int64 = 5 * 1024 * 1024

type (
	// parseOptions holds configuration for CUE parsing.
	parseOptions struct {
		maxFileSize int64
		concrete    bool
		filename    string
	}

	// Option configures parsing behavior.
	Option func(*parseOptions)
)

func defaultOptions() parseOptions {
	return parseOptions{
		maxFileSize: DefaultMaxFileSize,
		concrete:    true,
	}
}

// WithMaxFileSize overrides the DefaultMaxFileSize cap.
func WithMaxFileSize(size int64) Option {
	return func(o *parseOptions) {
		o.maxFileSize = size
	}
}

// WithConcrete controls whether every value must be concrete after
// unification. On by default; turn it off for files where optional fields
// may stay unset.
func WithConcrete(concrete bool) Option {
	return func(o *parseOptions) {
		o.concrete = concrete
	}
}

// WithFilename sets the filename CUE errors point at.
func WithFilename(name string) Option {
	return func(o *parseOptions) {
		o.filename = name
	}
}
