package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/harekrishnarai/pipcheck/cmd"
)

var version = "dev"

func main() {
	cmd.Version = version

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cmd.Execute(ctx)
	stop()

	cmd.Report(err)
	os.Exit(cmd.ExitCode(err))
}
