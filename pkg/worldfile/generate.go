// SPDX-License-Identifier: MPL-2.0

package worldfile

import (
	"fmt"
	"strings"
)

// GenerateCUE generates CUE text from a WorldFile struct.
// This is how builtin worlds are exported as editable starting points.
func GenerateCUE(wf *WorldFile) string {
	var sb strings.Builder

	sb.WriteString("// World definition for vaultrun\n")
	sb.WriteString("// Tiles: '.' floor, 'W' wall, 'K' key, 'D' door, 'E' exit\n\n")

	fmt.Fprintf(&sb, "name: %q\n", wf.Name)
	if wf.Description != "" {
		fmt.Fprintf(&sb, "description: %q\n", wf.Description)
	}

	sb.WriteString("rows: [\n")
	for _, row := range wf.Rows {
		fmt.Fprintf(&sb, "\t%q,\n", row)
	}
	sb.WriteString("]\n")

	fmt.Fprintf(&sb, "start: {x: %d, y: %d}\n", wf.Start.X, wf.Start.Y)
	fmt.Fprintf(&sb, "direction: %q\n", wf.Direction)

	return sb.String()
}
