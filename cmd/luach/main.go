// Command luach is the command-line front end of the Hebrew calendar and
// zmanim engine.
package main

import (
	"os"
	_ "time/tzdata"

	"github.com/zapponejosh/luach-api/cmd/luach/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
