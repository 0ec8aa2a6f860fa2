package ports

import (
	"context"

	"github.com/mikey/llm-priority-scorer/internal/core"
)

// EmailIngest defines the interface for email ingestion front-ends
type EmailIngest interface {
	// ProcessEmail scores a single email
	ProcessEmail(ctx context.Context, email *core.Email) (*core.PriorityScore, error)

	// Start starts the ingestion service
	Start() error

	// Stop stops the ingestion service
	Stop() error
}
