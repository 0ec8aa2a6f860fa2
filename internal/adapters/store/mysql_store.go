package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/mikey/llm-priority-scorer/internal/core"
	"go.uber.org/zap"
)

const mysqlTimeFormat = "2006-01-02 15:04:05"

// MySQLStore is a MySQL implementation of the contact directory, response
// history store and email archive
type MySQLStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewMySQLStore connects to the database and creates the schema if needed
func NewMySQLStore(dsn string, logger *zap.Logger) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS contacts (
			email VARCHAR(255) PRIMARY KEY,
			name VARCHAR(255),
			authority VARCHAR(32),
			domain VARCHAR(255),
			priority_boost INT DEFAULT 0,
			notes TEXT,
			created_at DATETIME,
			updated_at DATETIME
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create contacts table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS response_history (
			sender_email VARCHAR(255) PRIMARY KEY,
			emails_received INT DEFAULT 0,
			responses_sent INT DEFAULT 0,
			total_response_hours DOUBLE DEFAULT 0,
			avg_response_hours DOUBLE DEFAULT 0,
			response_rate DOUBLE DEFAULT 0,
			last_email_received DATETIME NULL,
			last_response_sent DATETIME NULL,
			created_at DATETIME,
			updated_at DATETIME
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create response_history table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS email_archive (
			email_id VARCHAR(255) PRIMARY KEY,
			sender VARCHAR(255),
			sender_name VARCHAR(255),
			subject TEXT,
			body MEDIUMTEXT,
			received_at DATETIME NULL,
			has_attachments BOOLEAN,
			archived_at DATETIME,
			INDEX idx_archive_sender (sender)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create email_archive table: %w", err)
	}

	return &MySQLStore{
		db:     db,
		logger: logger,
	}, nil
}

// Lookup returns the contact for the address, or core.ErrNotFound
func (s *MySQLStore) Lookup(ctx context.Context, address string) (*core.Contact, error) {
	var contact core.Contact
	var authority string
	var createdAt, updatedAt sql.NullString

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
	contact.CreatedAt = parseMySQLTimestamp(createdAt, s.logger)
	contact.UpdatedAt = parseMySQLTimestamp(updatedAt, s.logger)
	return &contact, nil
}

// Upsert creates or replaces a contact keyed by its email address
func (s *MySQLStore) Upsert(ctx context.Context, contact *core.Contact) error {
	now := time.Now().UTC()
	createdAt := contact.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contacts (email, name, authority, domain, priority_boost, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			name = VALUES(name),
			authority = VALUES(authority),
			domain = VALUES(domain),
			priority_boost = VALUES(priority_boost),
			notes = VALUES(notes),
			updated_at = VALUES(updated_at)
	`, normalize(contact.Email), contact.Name, string(contact.Authority), contact.Domain,
		contact.PriorityBoost, contact.Notes, createdAt.Format(mysqlTimeFormat), now.Format(mysqlTimeFormat))
	if err != nil {
		return fmt.Errorf("failed to upsert contact: %w", err)
	}
	return nil
}

// Get returns the history record for a sender, or core.ErrNotFound
func (s *MySQLStore) Get(ctx context.Context, sender string) (*core.ResponseHistoryRecord, error) {
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

	record.LastEmailReceived = parseMySQLTimestamp(lastReceived, s.logger)
	record.LastResponseSent = parseMySQLTimestamp(lastResponse, s.logger)
	record.CreatedAt = parseMySQLTimestamp(createdAt, s.logger)
	record.UpdatedAt = parseMySQLTimestamp(updatedAt, s.logger)
	return &record, nil
}

// Create inserts a fresh record for a sender with one received email
func (s *MySQLStore) Create(ctx context.Context, sender string) (*core.ResponseHistoryRecord, error) {
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
	`, record.SenderEmail, now.Format(mysqlTimeFormat), now.Format(mysqlTimeFormat), now.Format(mysqlTimeFormat))
	if err != nil {
		return nil, fmt.Errorf("failed to create response history record: %w", err)
	}
	return record, nil
}

// Update persists the mutated record
func (s *MySQLStore) Update(ctx context.Context, record *core.ResponseHistoryRecord) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE response_history
		SET emails_received = ?, responses_sent = ?, total_response_hours = ?,
		    avg_response_hours = ?, response_rate = ?, last_email_received = ?,
		    last_response_sent = ?, updated_at = ?
		WHERE sender_email = ?
	`, record.EmailsReceived, record.ResponsesSent, record.TotalResponseHours,
		record.AvgResponseHours, record.ResponseRate,
		formatMySQLTimestamp(record.LastEmailReceived), formatMySQLTimestamp(record.LastResponseSent),
		time.Now().UTC().Format(mysqlTimeFormat), normalize(record.SenderEmail))
	if err != nil {
		return fmt.Errorf("failed to update response history record: %w", err)
	}
	return nil
}

// Archive stores the raw email, idempotent on its ID
func (s *MySQLStore) Archive(ctx context.Context, email *core.Email) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT IGNORE INTO email_archive (email_id, sender, sender_name, subject,
			body, received_at, has_attachments, archived_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, email.ID, email.From, email.FromName, email.Subject, email.Body,
		formatMySQLTimestamp(email.Timestamp), email.HasAttachments,
		time.Now().UTC().Format(mysqlTimeFormat))
	if err != nil {
		return fmt.Errorf("failed to archive email: %w", err)
	}
	return nil
}

// Stop closes the database connection
func (s *MySQLStore) Stop() {
	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close MySQL database", zap.Error(err))
	}
}

func formatMySQLTimestamp(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t.Format(mysqlTimeFormat)
}

func parseMySQLTimestamp(value sql.NullString, logger *zap.Logger) time.Time {
	if !value.Valid || value.String == "" {
		return time.Time{}
	}
	t, err := time.Parse(mysqlTimeFormat, value.String)
	if err != nil {
		logger.Warn("Failed to parse stored timestamp", zap.Error(err), zap.String("value", value.String))
		return time.Time{}
	}
	return t
}
