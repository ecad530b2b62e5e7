// Command registrar drives the enrollment engine from the terminal: bulk
// loads, the demonstration scenario and statistics.
package main

import (
	"context"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1) //nolint:gocritic
	}
}
