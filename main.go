package main

import (
	"context"
	"fmt"
	"os"

	"catalog/internal/app"
	"catalog/internal/config"
	"catalog/internal/logging"

	gfshutdown "github.com/gelmium/graceful-shutdown"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}

	// --- Store, services and routes ---
	application, err := app.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build catalog service")
	}

	// --- Start HTTP Server ---
	go func() {
		if err := application.Listen(); err != nil {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for SIGINT/SIGTERM, then drain in-flight requests.
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"catalog": func(ctx context.Context) error {
				log.Info().Msg("shutting down server")
				return application.Shutdown(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Info().Int("code", exitCode).Msg("server stopped")
	os.Exit(exitCode)
}
