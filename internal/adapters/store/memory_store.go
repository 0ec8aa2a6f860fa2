package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/mikey/llm-priority-scorer/internal/core"
	"go.uber.org/zap"
)

// MemoryStore is an in-memory implementation of the contact directory,
// response history store and email archive. Used for storeless operation
// and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	contacts map[string]*core.Contact
	history  map[string]*core.ResponseHistoryRecord
	archive  map[string]*core.Email
	logger   *zap.Logger
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	return &MemoryStore{
		contacts: make(map[string]*core.Contact),
		history:  make(map[string]*core.ResponseHistoryRecord),
		archive:  make(map[string]*core.Email),
		logger:   logger,
	}
}

// Lookup returns the contact for the address, or core.ErrNotFound
func (s *MemoryStore) Lookup(ctx context.Context, address string) (*core.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	contact, ok := s.contacts[normalize(address)]
	if !ok {
		return nil, core.ErrNotFound
	}
	copied := *contact
	return &copied, nil
}

// Upsert creates or replaces a contact keyed by its email address
func (s *MemoryStore) Upsert(ctx context.Context, contact *core.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *contact
	copied.Email = normalize(contact.Email)
	if copied.CreatedAt.IsZero() {
		copied.CreatedAt = time.Now().UTC()
	}
	copied.UpdatedAt = time.Now().UTC()
	s.contacts[copied.Email] = &copied
	return nil
}

// Get returns the history record for a sender, or core.ErrNotFound
func (s *MemoryStore) Get(ctx context.Context, sender string) (*core.ResponseHistoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.history[normalize(sender)]
	if !ok {
		return nil, core.ErrNotFound
	}
	copied := *record
	return &copied, nil
}

// Create inserts a fresh record for a sender with one received email
func (s *MemoryStore) Create(ctx context.Context, sender string) (*core.ResponseHistoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	record := &core.ResponseHistoryRecord{
		SenderEmail:       normalize(sender),
		EmailsReceived:    1,
		LastEmailReceived: now,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	s.history[record.SenderEmail] = record
	copied := *record
	return &copied, nil
}

// Update persists the mutated record
func (s *MemoryStore) Update(ctx context.Context, record *core.ResponseHistoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *record
	copied.SenderEmail = normalize(record.SenderEmail)
	s.history[copied.SenderEmail] = &copied
	return nil
}

// Archive stores the raw email, idempotent on its ID
func (s *MemoryStore) Archive(ctx context.Context, email *core.Email) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.archive[email.ID]; exists {
		return nil
	}
	copied := *email
	s.archive[email.ID] = &copied
	return nil
}

// ArchivedCount returns the number of archived emails
func (s *MemoryStore) ArchivedCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.archive)
}

func normalize(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}
