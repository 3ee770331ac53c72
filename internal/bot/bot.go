// SPDX-License-Identifier: MPL-2.0

// Package bot implements the robot that executes program actions inside a
// world. The bot sees only the cell directly ahead and exposes the sensor
// predicates the language's conditions are built from.
package bot

import (
	"errors"
	"fmt"

	"vaultrun-cli/internal/world"
	"vaultrun-cli/pkg/types"
)

// MaxSteps caps forward moves in a single run. Exceeding it aborts the run.
const MaxSteps = 1000

// ErrStepLimit is returned by Move once the step cap is exhausted.
var ErrStepLimit = errors.New("step limit exceeded")

// Bot is the robot state for one run.
type Bot struct {
	w *world.World

	x, y int
	dir  types.Direction

	haveKey    bool
	openedDoor bool
	steps      int
	limit      int
}

// New places a bot at (x, y) facing dir and records the pose in the world.
func New(w *world.World, x, y int, dir types.Direction) *Bot {
	b := &Bot{w: w, x: x, y: y, dir: dir, limit: MaxSteps}
	w.MoveBot(x, y, dir)
	return b
}

// SetStepLimit lowers the forward-move cap for this run. Values below one
// or above MaxSteps keep the default cap.
func (b *Bot) SetStepLimit(n int) {
	if n >= 1 && n <= MaxSteps {
		b.limit = n
	}
}

// Position returns the bot's cell.
func (b *Bot) Position() (x, y int) { return b.x, b.y }

// Direction returns the bot's heading.
func (b *Bot) Direction() types.Direction { return b.dir }

// HaveKey reports whether the bot holds a key.
func (b *Bot) HaveKey() bool { return b.haveKey }

// OpenedDoor reports whether the bot has opened a door this run.
func (b *Bot) OpenedDoor() bool { return b.openedDoor }

// Steps returns the number of forward moves taken.
func (b *Bot) Steps() int { return b.steps }

// OnKey reports whether the bot stands on a key.
func (b *Bot) OnKey() bool { return b.w.IsKey(b.x, b.y) }

// OnDoor reports whether the bot stands on a closed door.
func (b *Bot) OnDoor() bool { return b.w.IsDoor(b.x, b.y) }

// OnExit reports whether the bot stands on the exit.
func (b *Bot) OnExit() bool { return b.w.IsExit(b.x, b.y) }

// FrontClear reports whether the cell ahead is not a wall.
func (b *Bot) FrontClear() bool { return b.w.IsFrontClear(b.x, b.y, b.dir) }

// Move advances one cell. It returns false without moving when a wall is
// ahead, and ErrStepLimit once MaxSteps moves have been taken.
func (b *Bot) Move() (bool, error) {
	if b.steps >= b.limit {
		return false, fmt.Errorf("%w: %d moves", ErrStepLimit, b.steps)
	}
	if !b.FrontClear() {
		return false, nil
	}
	b.x, b.y = b.w.FrontPosition(b.x, b.y, b.dir)
	b.w.MoveBot(b.x, b.y, b.dir)
	b.steps++
	return true, nil
}

// TurnLeft rotates the bot 90 degrees counterclockwise.
func (b *Bot) TurnLeft() {
	b.dir = b.dir.TurnLeft()
	b.w.MoveBot(b.x, b.y, b.dir)
}

// TurnRight rotates the bot 90 degrees clockwise.
func (b *Bot) TurnRight() {
	b.dir = b.dir.TurnRight()
	b.w.MoveBot(b.x, b.y, b.dir)
}

// PickKey collects the key under the bot. It returns false when the bot is
// not standing on a key.
func (b *Bot) PickKey() bool {
	if !b.OnKey() {
		return false
	}
	b.w.CollectKey(b.x, b.y)
	b.haveKey = true
	return true
}

// OpenDoor opens the door under the bot. It requires standing on a door
// while holding a key.
func (b *Bot) OpenDoor() bool {
	if !b.OnDoor() || !b.haveKey {
		return false
	}
	b.w.OpenDoor(b.x, b.y)
	b.openedDoor = true
	return true
}

// Look returns the tile ahead. ok is false outside the grid.
func (b *Bot) Look() (world.Tile, bool) {
	return b.w.FrontTile(b.x, b.y, b.dir)
}

// Status is a point-in-time snapshot used by verbose traces and the SSH
// session view.
type Status struct {
	X, Y       int
	Direction  types.Direction
	HaveKey    bool
	OpenedDoor bool
	Steps      int
	OnKey      bool
	OnDoor     bool
	OnExit     bool
	FrontClear bool
}

// Status captures the bot's current state.
func (b *Bot) Status() Status {
	return Status{
		X:          b.x,
		Y:          b.y,
		Direction:  b.dir,
		HaveKey:    b.haveKey,
		OpenedDoor: b.openedDoor,
		Steps:      b.steps,
		OnKey:      b.OnKey(),
		OnDoor:     b.OnDoor(),
		OnExit:     b.OnExit(),
		FrontClear: b.FrontClear(),
	}
}
