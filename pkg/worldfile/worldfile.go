// SPDX-License-Identifier: MPL-2.0

package worldfile

import (
	"fmt"

	"vaultrun-cli/internal/world"
	"vaultrun-cli/pkg/types"
)

// Start is the bot's initial position in a world file.
type Start struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// WorldFile is the decoded form of a world file. Schema-level shape is
// guaranteed by the CUE schema; grid semantics are checked by ToWorld.
type WorldFile struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Rows        []string `json:"rows"`
	Start       Start    `json:"start"`
	Direction   string   `json:"direction"`

	// FilePath is where the file was loaded from, empty for builtins.
	FilePath string `json:"-"`
}

// ToWorld builds a live world from the file. Grid-level constraints the
// schema cannot express (rectangular rows, start inside bounds) surface
// here as errors.
func (wf *WorldFile) ToWorld() (*world.World, error) {
	dir, err := types.ParseDirection(wf.Direction)
	if err != nil {
		return nil, fmt.Errorf("world %q: %w", wf.Name, err)
	}

	w, err := world.New(wf.Rows, wf.Start.X, wf.Start.Y, dir)
	if err != nil {
		return nil, fmt.Errorf("world %q: %w", wf.Name, err)
	}
	return w, nil
}

// FromPreset converts a builtin preset into the file representation,
// mainly so builtins can be exported as CUE.
func FromPreset(p world.Preset) *WorldFile {
	return &WorldFile{
		Name:        p.Name,
		Description: p.Description,
		Rows:        append([]string(nil), p.Rows...),
		Start:       Start{X: p.StartX, Y: p.StartY},
		Direction:   string(p.Direction),
	}
}
