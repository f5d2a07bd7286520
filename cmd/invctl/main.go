package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rudraroyaltypython/inventory-sys/cmd/invctl/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand(cli.DefaultEnv()).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
