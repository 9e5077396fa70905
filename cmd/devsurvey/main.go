// Package main is the devsurvey command line: it builds, inspects and exports
// the cached survey and salary tables.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"devsurvey/cmd/devsurvey/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	commands.ExecuteContext(ctx)
}
