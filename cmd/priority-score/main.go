package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/mail"
	"os"

	"github.com/mikey/llm-priority-scorer/internal/adapters/ingest"
	"github.com/mikey/llm-priority-scorer/internal/core"
	"github.com/mikey/llm-priority-scorer/internal/di"
	"github.com/mikey/llm-priority-scorer/internal/ports"
	"go.uber.org/zap"
)

func main() {
	flags := di.ParseFlags()

	// Build the dependency injection container
	container, err := di.BuildCLIContainer(flags)
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

// run scores one email from the input file or stdin and prints the breakdown
func run(
	flags *di.CLIFlags,
	logger *zap.Logger,
	emailIngest ports.EmailIngest,
	languageService core.LanguageService,
) error {
	defer logger.Sync()

	// Read email from file or stdin
	var emailReader io.Reader
	if flags.InputFile != "" {
		file, err := os.Open(flags.InputFile)
		if err != nil {
			logger.Fatal("Failed to open input file", zap.Error(err), zap.String("file", flags.InputFile))
		}
		defer file.Close()
		emailReader = file
		logger.Info("Reading email from file", zap.String("file", flags.InputFile))
	} else {
		emailReader = os.Stdin
		logger.Info("Reading email from stdin")
	}

	// Parse email
	msg, err := mail.ReadMessage(bufio.NewReader(emailReader))
	if err != nil {
		logger.Fatal("Failed to parse email", zap.Error(err))
	}

	email, err := ingest.EmailFromMessage(msg, "", nil)
	if err != nil {
		logger.Fatal("Failed to extract email content", zap.Error(err))
	}

	if _, err := emailIngest.ProcessEmail(context.Background(), email); err != nil {
		logger.Fatal("Failed to score email", zap.Error(err))
	}

	// Close any resources that need closing
	if closer, ok := languageService.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close language service client", zap.Error(err))
		}
	}

	return nil
}
