// cmd/cli/main.go
package main

import (
	"os"

	"github.com/keshon/domme-music/cmd/cli/commands"
)

func main() {
	if err := commands.Root().Execute(); err != nil {
		os.Exit(1)
	}
}
