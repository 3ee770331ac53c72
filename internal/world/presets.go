// SPDX-License-Identifier: MPL-2.0

package world

import "vaultrun-cli/pkg/types"

// Preset is a named builtin world layout with its conventional start pose.
type Preset struct {
	Name        string
	Description string
	Rows        []string
	StartX      int
	StartY      int
	Direction   types.Direction
}

// Build constructs a fresh world from the preset.
func (p Preset) Build() (*World, error) {
	return New(p.Rows, p.StartX, p.StartY, p.Direction)
}

// SimpleCorridor returns the open-room layout with the exit in the
// bottom-right corner.
func SimpleCorridor() []string {
	return []string{
		"WWWWWWWWWW",
		"W........W",
		"W........W",
		"W........W",
		"W........W",
		"W........W",
		"W........W",
		"W........W",
		"W.......EW",
		"WWWWWWWWWW",
	}
}

// CorridorWithTurn returns the layout with an inner wall forcing a turn
// before the exit.
func CorridorWithTurn() []string {
	return []string{
		"WWWWWWWWWW",
		"W........W",
		"W........W",
		"W........W",
		"W....WWWWW",
		"W....W...W",
		"W....W...W",
		"W....W...W",
		"W...EW...W",
		"WWWWWWWWWW",
	}
}

// RoomWithKeyAndDoor returns the layout with a key to collect and a door to
// open on the way to the exit.
func RoomWithKeyAndDoor() []string {
	return []string{
		"WWWWWWWWWW",
		"W..K.....W",
		"W........W",
		"W.......DW",
		"W........W",
		"W........W",
		"W........W",
		"W........W",
		"W.......EW",
		"WWWWWWWWWW",
	}
}

// ComplexMaze returns the maze layout with inner walls, a key and a door.
func ComplexMaze() []string {
	return []string{
		"WWWWWWWWWW",
		"W.K......W",
		"W.WWWW...W",
		"W.WDWW...W",
		"W.W..W...W",
		"W.WW.W...W",
		"W.WW.W...W",
		"W.WW.W...W",
		"W......E.W",
		"WWWWWWWWWW",
	}
}

// presets is the ordered builtin catalog. Start poses match the reference
// program-file defaults: cell (1, 1) facing south.
var presets = []Preset{
	{
		Name:        "corridor",
		Description: "Open room with the exit in the far corner",
		Rows:        SimpleCorridor(),
		StartX:      1,
		StartY:      1,
		Direction:   types.South,
	},
	{
		Name:        "corridor_turn",
		Description: "Corridor with an inner wall forcing a turn",
		Rows:        CorridorWithTurn(),
		StartX:      1,
		StartY:      1,
		Direction:   types.South,
	},
	{
		Name:        "key_door",
		Description: "Room with a key to collect and a door to open",
		Rows:        RoomWithKeyAndDoor(),
		StartX:      1,
		StartY:      1,
		Direction:   types.South,
	},
	{
		Name:        "maze",
		Description: "Maze with inner walls, a key and a door",
		Rows:        ComplexMaze(),
		StartX:      1,
		StartY:      1,
		Direction:   types.South,
	},
}

// Presets returns the builtin worlds in listing order.
func Presets() []Preset {
	out := make([]Preset, len(presets))
	copy(out, presets)
	return out
}

// PresetByName looks up a builtin world by name.
func PresetByName(name string) (Preset, bool) {
	for _, p := range presets {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}
