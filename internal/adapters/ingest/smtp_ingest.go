package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/mail"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/mikey/llm-priority-scorer/internal/core"
	"go.uber.org/zap"
)

// SMTPIngest implements a Postfix content filter that scores inbound email
// and injects priority headers before relaying it back
type SMTPIngest struct {
	service               *core.ScoringService
	logger                *zap.Logger
	listenAddr            string
	server                *smtp.Server
	scoreHeader           string
	levelHeader           string
	reasonHeader          string
	relayAddr             string
	relayPort             int
	relayEnabled          bool
	criticalSubjectPrefix string
	tagCriticalSubject    bool
}

// NewSMTPIngest creates a new SMTP ingestion front-end
func NewSMTPIngest(
	service *core.ScoringService,
	logger *zap.Logger,
	listenAddr string,
	scoreHeader string,
	levelHeader string,
	reasonHeader string,
	relayAddr string,
	relayPort int,
	relayEnabled bool,
	criticalSubjectPrefix string,
	tagCriticalSubject bool,
) *SMTPIngest {
	if criticalSubjectPrefix == "" && tagCriticalSubject {
		criticalSubjectPrefix = "[PRIORITY] "
	}

	return &SMTPIngest{
		service:               service,
		logger:                logger,
		listenAddr:            listenAddr,
		scoreHeader:           scoreHeader,
		levelHeader:           levelHeader,
		reasonHeader:          reasonHeader,
		relayAddr:             relayAddr,
		relayPort:             relayPort,
		relayEnabled:          relayEnabled,
		criticalSubjectPrefix: criticalSubjectPrefix,
		tagCriticalSubject:    tagCriticalSubject,
	}
}

// Start starts the SMTP server
func (f *SMTPIngest) Start() error {
	f.server = smtp.NewServer(&smtpBackend{ingest: f})

	f.server.Addr = f.listenAddr
	f.server.Domain = "localhost"
	f.server.ReadTimeout = 30 * time.Second
	f.server.WriteTimeout = 30 * time.Second
	f.server.MaxMessageBytes = 30 * 1024 * 1024 // 30MB
	f.server.MaxRecipients = 50
	f.server.AllowInsecureAuth = true

	f.logger.Info("SMTP ingest starting", zap.String("address", f.listenAddr))

	go func() {
		if err := f.server.ListenAndServe(); err != nil {
			if err != smtp.ErrServerClosed {
				f.logger.Error("SMTP server error", zap.Error(err))
			}
		}
	}()

	return nil
}

// Stop stops the SMTP server
func (f *SMTPIngest) Stop() error {
	if f.server != nil {
		return f.server.Close()
	}
	return nil
}

// ProcessEmail scores a single email. Used for testing or direct calls.
func (f *SMTPIngest) ProcessEmail(ctx context.Context, email *core.Email) (*core.PriorityScore, error) {
	return f.service.Score(ctx, email), nil
}

// sendToRelay sends the processed email back to the relay on the configured port
func (f *SMTPIngest) sendToRelay(sender string, recipients []string, emailData []byte) error {
	relayAddr := fmt.Sprintf("%s:%d", f.relayAddr, f.relayPort)

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	conn, err := net.DialTimeout("tcp", relayAddr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to relay: %w", err)
	}

	if err := conn.SetDeadline(time.Now().Add(30 * time.Second)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}

	if err := c.Mail(sender, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	recipientOK := false
	for _, recipient := range recipients {
		if err := c.Rcpt(recipient, nil); err != nil {
			f.logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", recipient),
				zap.Error(err))
			// Continue with other recipients even if one fails
		} else {
			recipientOK = true
		}
	}

	if !recipientOK {
		return fmt.Errorf("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}

	_, err = wc.Write(emailData)
	if err != nil {
		wc.Close()
		return fmt.Errorf("failed to send email data: %w", err)
	}

	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		f.logger.Warn("QUIT command failed", zap.Error(err))
		// The email has already been relayed at this point
	}

	return nil
}

// smtpBackend implements the go-smtp Backend interface
type smtpBackend struct {
	ingest *SMTPIngest
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(c *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{
		ingest:     b.ingest,
		recipients: make([]string, 0),
	}, nil
}

// smtpSession implements the go-smtp Session interface
type smtpSession struct {
	ingest     *SMTPIngest
	sender     string
	recipients []string
}

// Reset resets the session state
func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = make([]string, 0)
}

// AuthPlain handles PLAIN authentication (not needed for the filter)
func (s *smtpSession) AuthPlain(_ []byte) error {
	return smtp.ErrAuthUnsupported
}

// Mail sets the sender address
func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

// Rcpt adds a recipient
func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data scores the email, injects priority headers and relays the result
func (s *smtpSession) Data(r io.Reader) error {
	rawData, err := io.ReadAll(r)
	if err != nil {
		s.ingest.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	rawDataCopy := make([]byte, len(rawData))
	copy(rawDataCopy, rawData)

	msg, err := mail.ReadMessage(bytes.NewReader(rawData))
	if err != nil {
		s.ingest.logger.Error("Failed to parse email message", zap.Error(err))
		return err
	}

	email, err := EmailFromMessage(msg, s.sender, s.recipients)
	if err != nil {
		s.ingest.logger.Error("Failed to build email from message", zap.Error(err))
		return err
	}

	senderDomain := "unknown"
	if parts := strings.Split(email.From, "@"); len(parts) == 2 {
		senderDomain = parts[1]
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Score never fails: degraded extractors contribute neutral components
	score := s.ingest.service.Score(ctx, email)
	isCritical := score.Score >= 80

	var modifiedEmail bytes.Buffer

	// Priority headers go first
	fmt.Fprintf(&modifiedEmail, "%s: %d\r\n", s.ingest.scoreHeader, score.Score)
	fmt.Fprintf(&modifiedEmail, "%s: %s\r\n", s.ingest.levelHeader, score.Label)
	fmt.Fprintf(&modifiedEmail, "%s: %s\r\n", s.ingest.reasonHeader, topReason(score))

	if isCritical && s.ingest.tagCriticalSubject && s.ingest.criticalSubjectPrefix != "" {
		originalSubject := msg.Header.Get("Subject")

		decodedSubject, err := decodeEncodedHeader(originalSubject)
		if err != nil {
			decodedSubject = originalSubject
		}

		if !strings.HasPrefix(decodedSubject, s.ingest.criticalSubjectPrefix) {
			newSubject := s.ingest.criticalSubjectPrefix + decodedSubject
			fmt.Fprintf(&modifiedEmail, "Subject: %s\r\n", newSubject)

			for key, values := range msg.Header {
				if !strings.EqualFold(key, "Subject") {
					for _, value := range values {
						fmt.Fprintf(&modifiedEmail, "%s: %s\r\n", key, value)
					}
				}
			}
		} else {
			for key, values := range msg.Header {
				for _, value := range values {
					fmt.Fprintf(&modifiedEmail, "%s: %s\r\n", key, value)
				}
			}
		}
	} else {
		for key, values := range msg.Header {
			for _, value := range values {
				fmt.Fprintf(&modifiedEmail, "%s: %s\r\n", key, value)
			}
		}
	}

	fmt.Fprintf(&modifiedEmail, "\r\n")

	// Preserve the original body bytes, MIME parts and attachments included
	bodyStartIndex := bytes.Index(rawDataCopy, []byte("\r\n\r\n"))
	if bodyStartIndex == -1 {
		bodyStartIndex = bytes.Index(rawDataCopy, []byte("\n\n"))
		if bodyStartIndex == -1 {
			bodyBytes, err := io.ReadAll(msg.Body)
			if err != nil {
				s.ingest.logger.Error("Failed to read message body", zap.Error(err))
				return err
			}
			modifiedEmail.Write(bodyBytes)
		} else {
			modifiedEmail.Write(rawDataCopy[bodyStartIndex+2:])
		}
	} else {
		modifiedEmail.Write(rawDataCopy[bodyStartIndex+4:])
	}

	if s.ingest.relayEnabled {
		if err := s.ingest.sendToRelay(s.sender, s.recipients, modifiedEmail.Bytes()); err != nil {
			s.ingest.logger.Error("Failed to relay email",
				zap.Error(err),
				zap.String("sender", email.From))
			return err
		}
	} else {
		s.ingest.logger.Warn("Relay disabled, scored email was not forwarded")
	}

	s.ingest.logger.Info("Scored email",
		zap.String("from", email.From),
		zap.String("sender_domain", senderDomain),
		zap.Int("score", score.Score),
		zap.String("level", score.Label),
		zap.Float64("confidence", score.Confidence))

	return nil
}

// Logout handles SMTP logout (not needed for the filter)
func (s *smtpSession) Logout() error {
	return nil
}

// EmailFromMessage builds a core.Email from a parsed RFC 822 message.
// The envelope sender wins over the From header when both are present.
func EmailFromMessage(msg *mail.Message, envelopeSender string, recipients []string) (*core.Email, error) {
	textContent, err := extractTextFromMessage(msg)
	if err != nil {
		return nil, err
	}

	email := &core.Email{
		Headers: make(map[string][]string),
		Body:    textContent,
		From:    envelopeSender,
		To:      recipients,
	}

	for key, values := range msg.Header {
		email.Headers[key] = values
	}

	if subject := msg.Header.Get("Subject"); subject != "" {
		decoded, err := decodeEncodedHeader(subject)
		if err != nil {
			decoded = subject
		}
		email.Subject = decoded
	}

	if from := msg.Header.Get("From"); from != "" {
		if addr, err := mail.ParseAddress(from); err == nil {
			email.FromName = addr.Name
			if email.From == "" {
				email.From = addr.Address
			}
		} else if email.From == "" {
			email.From = from
		}
	}

	if len(email.To) == 0 {
		if to := msg.Header.Get("To"); to != "" {
			if addrs, err := mail.ParseAddressList(to); err == nil {
				for _, addr := range addrs {
					email.To = append(email.To, addr.Address)
				}
			} else {
				email.To = []string{to}
			}
		}
	}
	if cc := msg.Header.Get("Cc"); cc != "" {
		if addrs, err := mail.ParseAddressList(cc); err == nil {
			for _, addr := range addrs {
				email.Cc = append(email.Cc, addr.Address)
			}
		}
	}

	if msgID := msg.Header.Get("Message-Id"); msgID != "" {
		email.ID = strings.Trim(msgID, "<>")
	} else {
		email.ID = fmt.Sprintf("%s-%d", email.From, time.Now().UnixNano())
	}

	if date, err := msg.Header.Date(); err == nil {
		email.Timestamp = date
	} else {
		email.Timestamp = time.Now().UTC()
	}

	email.HasAttachments = hasAttachments(msg)

	return email, nil
}

// topReason picks the highest-contributing component's reason for the header
func topReason(score *core.PriorityScore) string {
	b := score.Breakdown
	best := b.Authority
	for _, c := range []core.ScoreComponent{b.Deadline, b.Tone, b.History, b.Calendar} {
		if c.Score > best.Score {
			best = c
		}
	}
	return best.Reason
}
