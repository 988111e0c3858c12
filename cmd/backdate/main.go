package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jalbritt/backdate/internal/config"
	"github.com/jalbritt/backdate/internal/errors"
)

// Version information - injected at build time
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	versionInfo := config.VersionInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	}

	app := NewDefaultApp(versionInfo)

	if err := app.Config.ParseFlags(); err != nil {
		_, _ = fmt.Fprintf(app.Stderr, "error: %v\n", err)
		app.exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		sig := <-c
		fmt.Printf("\nReceived signal %v, stopping backdate...\n", sig)

		cancel()

		// Give the session a moment to stop between days; if the process is
		// still alive after that, force cleanup.
		time.Sleep(5 * time.Second)
		app.CleanupOnSignal()
		app.exit(0)
	}()

	if err := app.Run(ctx); err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			// Normal signal shutdown path
		case errors.Is(err, errors.ErrAborted):
			_ = app.Close()
			app.exit(0)
		default:
			_, _ = fmt.Fprintf(app.Stderr, "error: %v\n", err)
			_ = app.Close()
			app.exit(1)
		}
	}

	if !app.Config.Version && app.Backfiller != nil {
		app.Backfiller.PrintSummary()
	}
	_ = app.Close()
}
