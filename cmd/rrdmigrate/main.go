package main

import (
	"fmt"
	"os"

	"github.com/rrdkit/rrdmigrate/internal/cli"
	"github.com/rrdkit/rrdmigrate/internal/util"
)

func main() {
	// Setup signal handling for graceful shutdown
	ctx := util.SetupSignalHandler()

	// Execute the CLI
	if err := cli.Execute(ctx); err != nil {
		fmt.Fprintln(os.Stderr, util.FriendlyError(err))
		os.Exit(1)
	}
}
