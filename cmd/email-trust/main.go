package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mikey/email-trust/internal/adapters/httpapi"
	"github.com/mikey/email-trust/internal/adapters/override"
	"github.com/mikey/email-trust/internal/di"
	"github.com/mikey/email-trust/internal/domainlist"
	"go.uber.org/zap"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	server *httpapi.Server,
	cache *domainlist.Cache,
	store override.Store,
) error {
	defer logger.Sync()

	// Warm the domain cache without delaying startup; the first validation
	// request would otherwise pay for the initial fetch
	go cache.CurrentSets(context.Background())

	// Start the HTTP API
	if err := server.Start(); err != nil {
		logger.Fatal("Failed to start HTTP API", zap.Error(err))
		return err
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	// Stop the HTTP API
	if err := server.Stop(); err != nil {
		logger.Error("Failed to stop HTTP API", zap.Error(err))
	}

	// Close the override store if it holds connections
	if closer, ok := store.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close override store", zap.Error(err))
		}
	}

	logger.Info("Shutdown complete")
	return nil
}
