package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	tubestarcmder "github.com/papercomputeco/tubestar/cmd/tubestar"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	cmd := tubestarcmder.NewTubestarCmd()
	err := cmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
