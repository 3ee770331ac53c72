// SPDX-License-Identifier: MPL-2.0

package config

import "context"

// LoadOptions names the explicit inputs to a config load. Zero value means
// the default lookup chain.
type LoadOptions struct {
	// ConfigFilePath forces loading from a specific config file when set.
	ConfigFilePath string
	// ConfigDirPath overrides the config directory lookup when set.
	ConfigDirPath string
}

// Provider loads configuration from explicit options. Commands depend on
// this instead of package-level load functions so tests can substitute
// canned configurations.
type Provider interface {
	Load(ctx context.Context, opts LoadOptions) (*Config, error)
}

// NewProvider returns the file-backed Provider used in production.
func NewProvider() Provider {
	return &fsProvider{}
}

type fsProvider struct{}

func (p *fsProvider) Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	cfg, _, err := loadWithOptions(ctx, opts)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}
