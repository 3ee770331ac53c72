// SPDX-License-Identifier: MPL-2.0

package examples

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

//go:embed examples.toml
var manifest []byte

type (
	// Example is one bundled program with the world it solves.
	Example struct {
		Name        string `toml:"name"`
		Description string `toml:"description"`
		World       string `toml:"world"`
		Program     string `toml:"program"`
	}

	catalog struct {
		Examples []Example `toml:"example"`
	}
)

// load parses the embedded manifest once. The manifest is build-time data;
// a parse failure is a packaging bug, surfaced as a panic at first use.
var load = sync.OnceValue(func() []Example {
	exs, err := ParseManifest(manifest)
	if err != nil {
		panic(fmt.Sprintf("examples: embedded manifest is invalid: %v", err))
	}
	return exs
})

// ParseManifest decodes a TOML example manifest. It backs catalogs loaded
// from disk as well as the embedded one.
func ParseManifest(data []byte) ([]Example, error) {
	var c catalog
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse example manifest: %w", err)
	}
	return c.Examples, nil
}

// All returns the bundled examples in manifest order.
func All() []Example {
	return append([]Example(nil), load()...)
}

// Get returns the example with the given name.
func Get(name string) (Example, bool) {
	for _, ex := range load() {
		if ex.Name == name {
			return ex, true
		}
	}
	return Example{}, false
}

// Names returns the example names in manifest order.
func Names() []string {
	all := load()
	names := make([]string, 0, len(all))
	for _, ex := range all {
		names = append(names, ex.Name)
	}
	return names
}
