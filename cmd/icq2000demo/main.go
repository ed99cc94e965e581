// Command icq2000demo is a minimal embedder of the icq2000 client
// library: it logs in, prints every event the library emits, and lets
// an operator send messages from stdin. It is a worked example of
// wiring the library's non-blocking contract (spec.md §5, §6) into a
// real program, not a production client.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/gooscar/icq2000/client"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func init() {
	cfgFile := flag.String("config", "settings.env", "Path to config file")
	showHelp := flag.Bool("help", false, "Display help")
	showVersion := flag.Bool("version", false, "Display build information")

	flag.Parse()

	switch {
	case *showVersion:
		fmt.Printf("%-10s %s\n", "version:", version)
		fmt.Printf("%-10s %s\n", "commit:", commit)
		fmt.Printf("%-10s %s\n", "date:", date)
		os.Exit(0)
	case *showHelp:
		flag.PrintDefaults()
		os.Exit(0)
	}

	if err := godotenv.Load(*cfgFile); err != nil {
		fmt.Printf("Config file (%s) not found, defaulting to env vars for app config...\n", *cfgFile)
	} else {
		fmt.Printf("Successfully loaded config file (%s)\n", *cfgFile)
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := MakeCommonDeps()
	if err != nil {
		fmt.Printf("startup failed: %s\n", err)
		os.Exit(1)
	}

	sockets := newSocketSet()
	eventCh := make(chan client.Event, 64)

	c := client.NewClient(deps.cfg, deps.logger, func(ev client.Event) {
		eventCh <- ev
	}, sockets.add, sockets.remove)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return runClient(ctx, c, deps, sockets) })
	g.Go(func() error { return runEventPrinter(ctx, deps, eventCh) })
	g.Go(func() error { return runStdinCommands(ctx, c, deps, stop) })

	if err := g.Wait(); err != nil {
		deps.logger.Error("demo exited with error", "err", err.Error())
		os.Exit(1)
	}
}

func runEventPrinter(ctx context.Context, deps Container, eventCh <-chan client.Event) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-eventCh:
			logEvent(deps.logger, ev)
		}
	}
}
