// Command ocichat serves a web form that sends prompts to an OCI Generative AI
// model and shows the answer.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zalbiraw/ocichat/internal/compat"
	"github.com/zalbiraw/ocichat/internal/config"
	"github.com/zalbiraw/ocichat/internal/inference"
	"github.com/zalbiraw/ocichat/internal/logger"
	"github.com/zalbiraw/ocichat/internal/server"
	"github.com/zalbiraw/ocichat/internal/web"
)

const shutdownTimeout = 10 * time.Second

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("ocichat", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Path to an optional YAML configuration file")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(stderr, err) //nolint:errcheck
		return 1
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(stderr, err) //nolint:errcheck
		return 1
	}
	defer log.Sync() //nolint:errcheck

	client, err := inference.NewFromConfig(cfg, log)
	if err != nil {
		log.Errorw("failed to initialize inference client", "error", err)
		return 1
	}

	router := server.NewRouter(
		web.NewShell(client, cfg.ModelID, log),
		compat.New(client, cfg.ModelID, log),
	)
	srv := server.New(cfg, router, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		if err != nil {
			log.Errorw("server stopped", "error", err)
			return 1
		}
		return 0
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("shutdown failed", "error", err)
		return 1
	}
	return 0
}
