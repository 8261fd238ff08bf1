// Command importer refreshes finishing materials from the BigBox product API.
package main

import (
	"os"

	"jamb/cmd/importer/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
