// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/invowk/recipe/cmd/recipe"

func main() {
	cmd.Execute()
}
