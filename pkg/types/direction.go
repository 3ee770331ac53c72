// SPDX-License-Identifier: MPL-2.0

// Package types defines cross-cutting value types shared by the domain
// packages (world, bot, worldfile, launch). These are foundation types that
// carry semantic meaning and validation but have no domain-specific
// dependencies.
//
// This package is a leaf dependency: it imports only the standard library.
// Domain packages import it; it never imports domain packages.
package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidDirection is the sentinel error wrapped by InvalidDirectionError.
var ErrInvalidDirection = errors.New("invalid direction")

type (
	// Direction is a compass heading on the grid: "N", "E", "S" or "W".
	// The zero value ("") is invalid; use North as the conventional default.
	Direction string

	// InvalidDirectionError is returned when a Direction value is not one
	// of the four compass headings.
	InvalidDirectionError struct {
		Value Direction
	}
)

// The four grid headings.
const (
	North Direction = "N"
	East  Direction = "E"
	South Direction = "S"
	West  Direction = "W"
)

// String returns the single-letter representation of the Direction.
func (d Direction) String() string { return string(d) }

// Validate returns an error if the Direction is not one of N, E, S, W.
func (d Direction) Validate() error {
	switch d {
	case North, East, South, West:
		return nil
	}
	return &InvalidDirectionError{Value: d}
}

// TurnLeft returns the heading after a 90-degree counterclockwise turn.
func (d Direction) TurnLeft() Direction {
	switch d {
	case North:
		return West
	case West:
		return South
	case South:
		return East
	case East:
		return North
	}
	return d
}

// TurnRight returns the heading after a 90-degree clockwise turn.
func (d Direction) TurnRight() Direction {
	switch d {
	case North:
		return East
	case East:
		return South
	case South:
		return West
	case West:
		return North
	}
	return d
}

// Delta returns the (dx, dy) unit offset one step ahead. The grid origin is
// the top-left corner, so North decreases y.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case North:
		return 0, -1
	case East:
		return 1, 0
	case South:
		return 0, 1
	case West:
		return -1, 0
	}
	return 0, 0
}

// Arrow returns the rendering glyph for the heading, or "?" when invalid.
func (d Direction) Arrow() string {
	switch d {
	case North:
		return "↑"
	case East:
		return "→"
	case South:
		return "↓"
	case West:
		return "←"
	}
	return "?"
}

// ParseDirection converts a string into a Direction, accepting the
// single-letter form or the full compass name in either case.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "n", "north":
		return North, nil
	case "e", "east":
		return East, nil
	case "s", "south":
		return South, nil
	case "w", "west":
		return West, nil
	}
	return "", &InvalidDirectionError{Value: Direction(s)}
}

// Error implements the error interface for InvalidDirectionError.
func (e *InvalidDirectionError) Error() string {
	return fmt.Sprintf("invalid direction %q: must be one of N, E, S, W", e.Value)
}

// Unwrap returns ErrInvalidDirection for errors.Is() compatibility.
func (e *InvalidDirectionError) Unwrap() error { return ErrInvalidDirection }
