// SPDX-License-Identifier: MPL-2.0

package worldfile

import (
	_ "embed"
	"fmt"
	"os"

	"vaultrun-cli/internal/world"
	"vaultrun-cli/pkg/cueutil"
)

//go:embed world_schema.cue
var worldSchema []byte

// Parse reads and parses a world file from the given path.
func Parse(path string) (*WorldFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read world file at %s: %w", path, err)
	}

	return ParseBytes(data, path)
}

// ParseBytes parses world file content from bytes.
// Uses cueutil.ParseAndDecode for the 3-step CUE parsing flow:
// compile schema → compile user data → validate and decode.
func ParseBytes(data []byte, path string) (*WorldFile, error) {
	result, err := cueutil.ParseAndDecode[WorldFile](
		worldSchema,
		data,
		"#World",
		cueutil.WithFilename(path),
	)
	if err != nil {
		return nil, err
	}

	wf := result.Value
	wf.FilePath = path
	return wf, nil
}

// Load resolves a world by name or path. Builtin preset names win; any
// other value is treated as a file path. The returned world is live and
// owned by the caller.
func Load(nameOrPath string) (*world.World, error) {
	if p, ok := world.PresetByName(nameOrPath); ok {
		return p.Build()
	}

	wf, err := Parse(nameOrPath)
	if err != nil {
		return nil, err
	}
	return wf.ToWorld()
}
