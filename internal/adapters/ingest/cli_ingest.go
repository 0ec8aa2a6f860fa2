package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/mikey/llm-priority-scorer/internal/core"
	"go.uber.org/zap"
)

// CliIngest implements a command-line front-end for priority scoring
type CliIngest struct {
	service *core.ScoringService
	logger  *zap.Logger
	verbose bool
}

// NewCliIngest creates a new CLI ingestion front-end
func NewCliIngest(service *core.ScoringService, logger *zap.Logger, verbose bool) (*CliIngest, error) {
	return &CliIngest{
		service: service,
		logger:  logger,
		verbose: verbose,
	}, nil
}

// ProcessEmail scores an email and displays the results
func (f *CliIngest) ProcessEmail(ctx context.Context, email *core.Email) (*core.PriorityScore, error) {
	f.logger.Debug("Scoring email", zap.String("sender", email.From))

	fmt.Printf("\n=== Email Summary ===\n")
	fmt.Printf("From: %s\n", email.From)
	fmt.Printf("To: %s\n", email.To)
	fmt.Printf("Subject: %s\n", email.Subject)
	fmt.Printf("Body length: %d bytes\n", len(email.Body))

	if f.verbose {
		preview := email.Body
		if len(preview) > 500 {
			preview = preview[:500] + "..."
		}
		fmt.Printf("\nBody preview:\n%s\n", preview)
	}

	fmt.Printf("\n=== Scoring ===\n")
	startTime := time.Now()
	score := f.service.Score(ctx, email)
	duration := time.Since(startTime)

	fmt.Printf("\n%s\n", f.service.Explain(score))
	fmt.Printf("\nProcessing time: %v\n", duration)

	return score, nil
}

// Start is a no-op for the CLI front-end
func (f *CliIngest) Start() error {
	return nil
}

// Stop is a no-op for the CLI front-end
func (f *CliIngest) Stop() error {
	return nil
}
