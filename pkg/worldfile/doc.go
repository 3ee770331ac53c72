// SPDX-License-Identifier: MPL-2.0

// Package worldfile defines the CUE-based world file format.
//
// A world file describes a vault grid: its tile rows, the bot's start
// position and its facing direction. Files are validated against the
// embedded CUE schema first, then semantically (rectangular grid, start
// inside bounds) when converted to a live world.
//
// # Example
//
//	name: "tiny"
//	rows: [
//		"#####",
//		"#.K.#",
//		"#.#D#",
//		"#..E#",
//		"#####",
//	]
//	start: {x: 1, y: 1}
//	direction: "S"
package worldfile
