// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/ingestkit/ingestkit/cmd/ingestkit"

func main() {
	cmd.Execute()
}
