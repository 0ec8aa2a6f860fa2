package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikey/llm-priority-scorer/internal/core"
	"go.uber.org/zap"
)

// SQLiteStore is a SQLite implementation of the contact directory, response
// history store and email archive
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteStore opens the database and creates the schema if needed
func NewSQLiteStore(dbPath string, logger *zap.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS contacts (
			email TEXT PRIMARY KEY,
			name TEXT,
			authority TEXT,
			domain TEXT,
			priority_boost INTEGER DEFAULT 0,
			notes TEXT,
			created_at TIMESTAMP,
			updated_at TIMESTAMP
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create contacts table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS response_history (
			sender_email TEXT PRIMARY KEY,
			emails_received INTEGER DEFAULT 0,
			responses_sent INTEGER DEFAULT 0,
			total_response_hours REAL DEFAULT 0,
			avg_response_hours REAL DEFAULT 0,
			response_rate REAL DEFAULT 0,
			last_email_received TIMESTAMP,
			last_response_sent TIMESTAMP,
			created_at TIMESTAMP,
			updated_at TIMESTAMP
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create response_history table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS email_archive (
			email_id TEXT PRIMARY KEY,
			sender TEXT,
			sender_name TEXT,
			subject TEXT,
			body TEXT,
			received_at TIMESTAMP,
			has_attachments BOOLEAN,
			archived_at TIMESTAMP
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create email_archive table: %w", err)
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_archive_sender ON email_archive(sender)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create archive index: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger,
	}, nil
}

// Lookup returns the contact for the address, or core.ErrNotFound
func (s *SQLiteStore) Lookup(ctx context.Context, address string) (*core.Contact, error) {
	var contact core.Contact
	var authority string
	var createdAt, updatedAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT email, name, authority, domain, priority_boost, notes, created_at, updated_at
		FROM contacts
		WHERE email = ?
	`, normalize(address)).Scan(
		&contact.Email,
		&contact.Name,
		&authority,
		&contact.Domain,
		&contact.PriorityBoost,
		&contact.Notes,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query contact: %w", err)
	}

	contact.Authority = core.AuthorityClass(authority)
	contact.CreatedAt = parseTimestamp(createdAt, s.logger)
	contact.UpdatedAt = parseTimestamp(updatedAt, s.logger)
	return &contact, nil
}

// Upsert creates or replaces a contact keyed by its email address
func (s *SQLiteStore) Upsert(ctx context.Context, contact *core.Contact) error {
	now := time.Now().UTC()
	createdAt := contact.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contacts (email, name, authority, domain, priority_boost, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(email) DO UPDATE SET
			name = excluded.name,
			authority = excluded.authority,
			domain = excluded.domain,
			priority_boost = excluded.priority_boost,
			notes = excluded.notes,
			updated_at = excluded.updated_at
	`, normalize(contact.Email), contact.Name, string(contact.Authority), contact.Domain,
		contact.PriorityBoost, contact.Notes, createdAt.Format(time.RFC3339), now.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to upsert contact: %w", err)
	}
	return nil
}

// Get returns the history record for a sender, or core.ErrNotFound
func (s *SQLiteStore) Get(ctx context.Context, sender string) (*core.ResponseHistoryRecord, error) {
	var record core.ResponseHistoryRecord
	var lastReceived, lastResponse, createdAt, updatedAt sql.NullString

	err := s.db.QueryRowContext(ctx, `
		SELECT sender_email, emails_received, responses_sent, total_response_hours,
		       avg_response_hours, response_rate, last_email_received, last_response_sent,
		       created_at, updated_at
		FROM response_history
		WHERE sender_email = ?
	`, normalize(sender)).Scan(
		&record.SenderEmail,
		&record.EmailsReceived,
		&record.ResponsesSent,
		&record.TotalResponseHours,
		&record.AvgResponseHours,
		&record.ResponseRate,
		&lastReceived,
		&lastResponse,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query response history: %w", err)
	}

	record.LastEmailReceived = parseNullTimestamp(lastReceived, s.logger)
	record.LastResponseSent = parseNullTimestamp(lastResponse, s.logger)
	record.CreatedAt = parseNullTimestamp(createdAt, s.logger)
	record.UpdatedAt = parseNullTimestamp(updatedAt, s.logger)
	return &record, nil
}

// Create inserts a fresh record for a sender with one received email
func (s *SQLiteStore) Create(ctx context.Context, sender string) (*core.ResponseHistoryRecord, error) {
	now := time.Now().UTC()
	record := &core.ResponseHistoryRecord{
		SenderEmail:       normalize(sender),
		EmailsReceived:    1,
		LastEmailReceived: now,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO response_history (sender_email, emails_received, responses_sent,
			total_response_hours, avg_response_hours, response_rate,
			last_email_received, created_at, updated_at)
		VALUES (?, 1, 0, 0, 0, 0, ?, ?, ?)
	`, record.SenderEmail, now.Format(time.RFC3339), now.Format(time.RFC3339), now.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("failed to create response history record: %w", err)
	}
	return record, nil
}

// Update persists the mutated record
func (s *SQLiteStore) Update(ctx context.Context, record *core.ResponseHistoryRecord) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE response_history
		SET emails_received = ?, responses_sent = ?, total_response_hours = ?,
		    avg_response_hours = ?, response_rate = ?, last_email_received = ?,
		    last_response_sent = ?, updated_at = ?
		WHERE sender_email = ?
	`, record.EmailsReceived, record.ResponsesSent, record.TotalResponseHours,
		record.AvgResponseHours, record.ResponseRate,
		formatTimestamp(record.LastEmailReceived), formatTimestamp(record.LastResponseSent),
		time.Now().UTC().Format(time.RFC3339), normalize(record.SenderEmail))
	if err != nil {
		return fmt.Errorf("failed to update response history record: %w", err)
	}
	return nil
}

// Archive stores the raw email, idempotent on its ID
func (s *SQLiteStore) Archive(ctx context.Context, email *core.Email) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO email_archive (email_id, sender, sender_name, subject,
			body, received_at, has_attachments, archived_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, email.ID, email.From, email.FromName, email.Subject, email.Body,
		formatTimestamp(email.Timestamp), email.HasAttachments,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to archive email: %w", err)
	}
	return nil
}

// Stop closes the database connection
func (s *SQLiteStore) Stop() {
	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close SQLite database", zap.Error(err))
	}
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func parseTimestamp(value string, logger *zap.Logger) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		logger.Warn("Failed to parse stored timestamp", zap.Error(err), zap.String("value", value))
		return time.Time{}
	}
	return t
}

func parseNullTimestamp(value sql.NullString, logger *zap.Logger) time.Time {
	if !value.Valid {
		return time.Time{}
	}
	return parseTimestamp(value.String, logger)
}
