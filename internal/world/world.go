// SPDX-License-Identifier: MPL-2.0

// Package world implements the 2D grid the bot navigates: floors, walls,
// keys, doors and the exit tile. The world owns the grid state and the bot
// pose used for rendering; movement rules live in the bot package.
package world

import (
	"errors"
	"fmt"
	"strings"

	"vaultrun-cli/pkg/types"
)

// ErrInvalidWorld is the sentinel error wrapped by world construction errors.
var ErrInvalidWorld = errors.New("invalid world")

// Tile is a single grid cell kind.
type Tile uint8

// Grid cell kinds.
const (
	TileFloor Tile = iota
	TileWall
	TileKey
	TileDoor
	TileExit
)

// Rune returns the map glyph used when rendering the tile.
func (t Tile) Rune() rune {
	switch t {
	case TileWall:
		return '#'
	case TileKey:
		return 'K'
	case TileDoor:
		return 'D'
	case TileExit:
		return 'E'
	default:
		return '.'
	}
}

// String returns the tile kind name.
func (t Tile) String() string {
	switch t {
	case TileFloor:
		return "floor"
	case TileWall:
		return "wall"
	case TileKey:
		return "key"
	case TileDoor:
		return "door"
	case TileExit:
		return "exit"
	default:
		return fmt.Sprintf("tile(%d)", uint8(t))
	}
}

// ParseTile maps a map-definition character to a tile. 'W' is a wall, 'K' a
// key, 'D' a door, 'E' the exit; every other character (including 'F' and
// '.') is floor.
func ParseTile(ch byte) Tile {
	switch ch {
	case 'W':
		return TileWall
	case 'K':
		return TileKey
	case 'D':
		return TileDoor
	case 'E':
		return TileExit
	default:
		return TileFloor
	}
}

// World is the mutable grid state for one run.
type World struct {
	grid   [][]Tile
	width  int
	height int

	botX   int
	botY   int
	botDir types.Direction

	keysCollected int
	doorsOpened   int
}

// New builds a world from row strings and places the bot. Rows must be
// non-empty; the width is taken from the first row and every row must match
// it. The start cell must be inside the grid.
func New(rows []string, startX, startY int, dir types.Direction) (*World, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%w: map has no rows", ErrInvalidWorld)
	}
	if err := dir.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidWorld, err)
	}

	w := &World{
		width:  len(rows[0]),
		height: len(rows),
		botX:   startX,
		botY:   startY,
		botDir: dir,
	}
	w.grid = make([][]Tile, w.height)
	for y, row := range rows {
		if len(row) != w.width {
			return nil, fmt.Errorf("%w: row %d is %d wide, want %d", ErrInvalidWorld, y, len(row), w.width)
		}
		w.grid[y] = make([]Tile, w.width)
		for x := 0; x < w.width; x++ {
			w.grid[y][x] = ParseTile(row[x])
		}
	}

	if startX < 0 || startX >= w.width || startY < 0 || startY >= w.height {
		return nil, fmt.Errorf("%w: start (%d, %d) outside %dx%d grid", ErrInvalidWorld, startX, startY, w.width, w.height)
	}
	return w, nil
}

// Width returns the grid width in cells.
func (w *World) Width() int { return w.width }

// Height returns the grid height in cells.
func (w *World) Height() int { return w.height }

// Tile returns the tile at (x, y). ok is false outside the grid.
func (w *World) Tile(x, y int) (Tile, bool) {
	if x < 0 || x >= w.width || y < 0 || y >= w.height {
		return TileFloor, false
	}
	return w.grid[y][x], true
}

// IsWall reports whether (x, y) is a wall.
func (w *World) IsWall(x, y int) bool { return w.tileIs(x, y, TileWall) }

// IsKey reports whether (x, y) holds a key.
func (w *World) IsKey(x, y int) bool { return w.tileIs(x, y, TileKey) }

// IsDoor reports whether (x, y) is a closed door.
func (w *World) IsDoor(x, y int) bool { return w.tileIs(x, y, TileDoor) }

// IsExit reports whether (x, y) is the exit.
func (w *World) IsExit(x, y int) bool { return w.tileIs(x, y, TileExit) }

// IsFloor reports whether (x, y) is plain floor.
func (w *World) IsFloor(x, y int) bool { return w.tileIs(x, y, TileFloor) }

func (w *World) tileIs(x, y int, kind Tile) bool {
	t, ok := w.Tile(x, y)
	return ok && t == kind
}

// FrontPosition returns the cell one step ahead of (x, y) facing dir.
func (w *World) FrontPosition(x, y int, dir types.Direction) (int, int) {
	dx, dy := dir.Delta()
	return x + dx, y + dy
}

// FrontTile returns the tile one step ahead. ok is false outside the grid.
func (w *World) FrontTile(x, y int, dir types.Direction) (Tile, bool) {
	fx, fy := w.FrontPosition(x, y, dir)
	return w.Tile(fx, fy)
}

// IsFrontClear reports whether the cell ahead is not a wall. Cells outside
// the grid count as clear; enclosed maps keep the bot inside regardless.
func (w *World) IsFrontClear(x, y int, dir types.Direction) bool {
	t, ok := w.FrontTile(x, y, dir)
	return !ok || t != TileWall
}

// BotPosition returns the bot pose tracked for rendering.
func (w *World) BotPosition() (x, y int) { return w.botX, w.botY }

// BotDirection returns the bot heading tracked for rendering.
func (w *World) BotDirection() types.Direction { return w.botDir }

// MoveBot records a new bot pose.
func (w *World) MoveBot(x, y int, dir types.Direction) {
	w.botX, w.botY, w.botDir = x, y, dir
}

// CollectKey removes the key at (x, y) and counts it. It returns false when
// the cell holds no key.
func (w *World) CollectKey(x, y int) bool {
	if !w.IsKey(x, y) {
		return false
	}
	w.grid[y][x] = TileFloor
	w.keysCollected++
	return true
}

// OpenDoor opens the door at (x, y), turning it into floor, and counts it.
// It returns false when the cell is not a door.
func (w *World) OpenDoor(x, y int) bool {
	if !w.IsDoor(x, y) {
		return false
	}
	w.grid[y][x] = TileFloor
	w.doorsOpened++
	return true
}

// KeysCollected returns how many keys have been picked up.
func (w *World) KeysCollected() int { return w.keysCollected }

// DoorsOpened returns how many doors have been opened.
func (w *World) DoorsOpened() int { return w.doorsOpened }

// RenderGrid returns the grid rows with the bot drawn as a heading arrow.
func (w *World) RenderGrid() string {
	var b strings.Builder
	for y := 0; y < w.height; y++ {
		for x := 0; x < w.width; x++ {
			if x == w.botX && y == w.botY {
				b.WriteString(w.botDir.Arrow())
				continue
			}
			b.WriteRune(w.grid[y][x].Rune())
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Render returns the grid preceded by a state header: size, bot pose and
// the key/door counters.
func (w *World) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "World (%dx%d)\n", w.width, w.height)
	fmt.Fprintf(&b, "Bot at (%d, %d) facing %s\n", w.botX, w.botY, w.botDir)
	fmt.Fprintf(&b, "Keys collected: %d\n", w.keysCollected)
	fmt.Fprintf(&b, "Doors opened: %d\n", w.doorsOpened)
	b.WriteString(w.RenderGrid())
	return b.String()
}
