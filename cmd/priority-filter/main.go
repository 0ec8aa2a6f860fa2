package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mikey/llm-priority-scorer/internal/core"
	"github.com/mikey/llm-priority-scorer/internal/di"
	"github.com/mikey/llm-priority-scorer/internal/ports"
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
	emailIngest ports.EmailIngest,
	languageService core.LanguageService,
	priorityStore ports.PriorityStore,
) error {
	defer logger.Sync()

	// Start the ingest front-end
	if err := emailIngest.Start(); err != nil {
		logger.Fatal("Failed to start email ingest", zap.Error(err))
		return err
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	// Stop the ingest front-end
	if err := emailIngest.Stop(); err != nil {
		logger.Error("Failed to stop email ingest", zap.Error(err))
	}

	// Close any resources that need closing
	if closer, ok := languageService.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close language service client", zap.Error(err))
		}
	}

	// Stop the store if needed
	if stopper, ok := priorityStore.(interface{ Stop() }); ok {
		stopper.Stop()
	}

	logger.Info("Shutdown complete")
	return nil
}
