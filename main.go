// SPDX-License-Identifier: MPL-2.0

package main

import cmd "vaultrun-cli/cmd/vaultrun"

func main() {
	cmd.Execute()
}
