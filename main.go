// SPDX-License-Identifier: MPL-2.0

package main

import cmd "cargo-nuget/cmd/cargonuget"

func main() {
	cmd.Execute()
}
