package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := initializeApp()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "moodfit: wiring failed: %v\n", err)
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "moodfit: stopped with error: %v\n", err)
		os.Exit(1)
	}
}
