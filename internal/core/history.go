package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// neutralHistoryScore is the baseline when nothing is known about a sender
const neutralHistoryScore = 7

// HistoryScorer scores senders by past response behavior (max 15 points).
// Scoring a sender with a connected store always counts the email as
// received; re-scoring the same email counts it again. That mirrors the
// receipt-tracking contract and is deliberate.
type HistoryScorer struct {
	store  ResponseHistoryStore
	logger *zap.Logger
	now    func() time.Time
}

// NewHistoryScorer creates a new history scorer. The store is optional;
// without it the scorer is a pure function returning the neutral component.
func NewHistoryScorer(store ResponseHistoryStore, logger *zap.Logger) *HistoryScorer {
	return &HistoryScorer{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// CalculateScore computes the historical pattern component
func (s *HistoryScorer) CalculateScore(ctx context.Context, email *Email) (ScoreComponent, error) {
	if s.store == nil {
		return ScoreComponent{
			Score:      neutralHistoryScore,
			Max:        15,
			Reason:     "No history available (store not connected)",
			Confidence: 0.5,
		}, nil
	}

	sender := strings.ToLower(strings.TrimSpace(email.From))

	record, err := s.store.Get(ctx, sender)
	if errors.Is(err, ErrNotFound) {
		if _, err := s.store.Create(ctx, sender); err != nil {
			return ScoreComponent{}, fmt.Errorf("create history record: %w", err)
		}
		return ScoreComponent{
			Score:      neutralHistoryScore,
			Max:        15,
			Reason:     "New sender - no response history",
			Confidence: 0.5,
		}, nil
	}
	if err != nil {
		return ScoreComponent{}, fmt.Errorf("history lookup: %w", err)
	}

	score, reason := scoreFromHistory(record)

	// Receipt is recorded as part of scoring, attributed to this sender.
	record.EmailsReceived++
	record.LastEmailReceived = s.now()
	record.ResponseRate = responseRate(record)
	record.UpdatedAt = s.now()
	if err := s.store.Update(ctx, record); err != nil {
		return ScoreComponent{}, fmt.Errorf("update history record: %w", err)
	}

	return ScoreComponent{
		Score:      score,
		Max:        15,
		Reason:     reason,
		Confidence: 0.8,
	}, nil
}

// RecordResponse records that the user replied to this sender after the
// given number of hours. Invoked by the reply-handling workflow, not by
// scoring.
func (s *HistoryScorer) RecordResponse(ctx context.Context, sender string, responseHours float64) error {
	if s.store == nil {
		return errors.New("history store not connected")
	}
	sender = strings.ToLower(strings.TrimSpace(sender))

	record, err := s.store.Get(ctx, sender)
	if errors.Is(err, ErrNotFound) {
		record, err = s.store.Create(ctx, sender)
	}
	if err != nil {
		return fmt.Errorf("load history record: %w", err)
	}

	record.ResponsesSent++
	record.TotalResponseHours += responseHours
	record.AvgResponseHours = record.TotalResponseHours / float64(record.ResponsesSent)
	record.ResponseRate = responseRate(record)
	record.LastResponseSent = s.now()
	record.UpdatedAt = s.now()

	if err := s.store.Update(ctx, record); err != nil {
		return fmt.Errorf("update history record: %w", err)
	}
	return nil
}

// scoreFromHistory applies bounded additive adjustments to the baseline
func scoreFromHistory(record *ResponseHistoryRecord) (int, string) {
	score := neutralHistoryScore
	var reasons []string

	switch {
	case record.ResponseRate >= 0.9:
		score += 6
		reasons = append(reasons, "very high response rate (>90%)")
	case record.ResponseRate >= 0.7:
		score += 4
		reasons = append(reasons, "high response rate (>70%)")
	case record.ResponseRate >= 0.5:
		score += 2
		reasons = append(reasons, "moderate response rate")
	case record.ResponseRate < 0.3 && record.EmailsReceived >= 5:
		score -= 3
		reasons = append(reasons, "low response rate (<30%)")
	}

	if record.ResponsesSent >= 3 {
		switch {
		case record.AvgResponseHours < 2:
			score += 3
			reasons = append(reasons, "typically respond quickly (<2h)")
		case record.AvgResponseHours < 8:
			score += 1
			reasons = append(reasons, "moderate response time")
		case record.AvgResponseHours > 48:
			score -= 2
			reasons = append(reasons, "typically slow responses")
		}
	}

	switch {
	case record.EmailsReceived >= 20:
		score += 2
		reasons = append(reasons, "frequent sender")
	case record.EmailsReceived >= 10:
		score += 1
		reasons = append(reasons, "regular sender")
	}

	score = clampInt(score, 0, 15)

	if len(reasons) == 0 {
		return score, fmt.Sprintf("Based on %d previous emails", record.EmailsReceived)
	}
	return score, "History: " + strings.Join(reasons, ", ")
}

func responseRate(record *ResponseHistoryRecord) float64 {
	received := record.EmailsReceived
	if received < 1 {
		received = 1
	}
	return float64(record.ResponsesSent) / float64(received)
}
