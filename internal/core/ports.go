package core

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a contact or history record does not exist
	ErrNotFound = errors.New("record not found")
	// ErrUnavailable is returned by language service adapters that are not
	// configured or reachable; callers fall back to deterministic analysis
	ErrUnavailable = errors.New("language service unavailable")
)

// LanguageService defines the optional AI capabilities used by the scorers.
// Every method either returns a fully populated value or an error; a partial
// result is never produced. Absence of the service degrades confidence only,
// never correctness.
type LanguageService interface {
	// AnalyzeTone returns an emotional tone profile for the text
	AnalyzeTone(ctx context.Context, text string) (*ToneVector, error)

	// InferAuthority guesses the sender's authority level from their name,
	// address and extracted signature block
	InferAuthority(ctx context.Context, name, address, signature string) (*AuthorityInference, error)
}

// ContactDirectory looks up known contacts by normalized email address
type ContactDirectory interface {
	// Lookup returns the contact for the address, or ErrNotFound
	Lookup(ctx context.Context, address string) (*Contact, error)

	// Upsert creates or replaces a contact keyed by its email address
	Upsert(ctx context.Context, contact *Contact) error
}

// ResponseHistoryStore persists per-sender response pattern records
type ResponseHistoryStore interface {
	// Get returns the history record for a sender, or ErrNotFound
	Get(ctx context.Context, sender string) (*ResponseHistoryRecord, error)

	// Create inserts a fresh record for a sender with one received email
	Create(ctx context.Context, sender string) (*ResponseHistoryRecord, error)

	// Update persists the mutated record
	Update(ctx context.Context, record *ResponseHistoryRecord) error
}

// EmailArchive stores raw scored emails. Archiving is idempotent on the
// email ID; archiving the same email twice is a no-op.
type EmailArchive interface {
	Archive(ctx context.Context, email *Email) error
}
