package core

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"
)

// SignalExtractor produces one bounded scoring component for an email
type SignalExtractor interface {
	CalculateScore(ctx context.Context, email *Email) (ScoreComponent, error)
}

// ScoringService orchestrates the five signal extractors into a single
// priority score. Score never fails: a broken extractor degrades its own
// component to a neutral zero-confidence value and the rest proceed.
type ScoringService struct {
	authority SignalExtractor
	deadline  SignalExtractor
	tone      SignalExtractor
	history   *HistoryScorer
	calendar  SignalExtractor
	archive   EmailArchive
	logger    *zap.Logger
}

// NewScoringService creates a scoring service from explicitly constructed
// extractors. The archive is optional.
func NewScoringService(
	authority *AuthorityScorer,
	deadline *DeadlineScorer,
	tone *ToneScorer,
	history *HistoryScorer,
	calendar *CalendarScorer,
	archive EmailArchive,
	logger *zap.Logger,
) *ScoringService {
	return &ScoringService{
		authority: authority,
		deadline:  deadline,
		tone:      tone,
		history:   history,
		calendar:  calendar,
		archive:   archive,
		logger:    logger,
	}
}

// Score computes the complete priority score for an email
func (s *ScoringService) Score(ctx context.Context, email *Email) *PriorityScore {
	breakdown := ScoreBreakdown{
		Authority: s.runExtractor(ctx, "authority", s.authority, email, 25),
		Deadline:  s.runExtractor(ctx, "deadline", s.deadline, email, 25),
		Tone:      s.runExtractor(ctx, "tone", s.tone, email, 20),
		History:   s.runExtractor(ctx, "history", s.history, email, 15),
		Calendar:  s.runExtractor(ctx, "calendar", s.calendar, email, 15),
	}

	total := clampInt(breakdown.Sum(), 0, 100)
	band := BandFor(total)

	confidence := breakdown.Authority.Confidence*0.25 +
		breakdown.Deadline.Confidence*0.25 +
		breakdown.Tone.Confidence*0.20 +
		breakdown.History.Confidence*0.15 +
		breakdown.Calendar.Confidence*0.15

	if s.archive != nil {
		if err := s.archive.Archive(ctx, email); err != nil {
			s.logger.Warn("Failed to archive email",
				zap.Error(err),
				zap.String("email_id", email.ID))
		}
	}

	return &PriorityScore{
		EmailID:    email.ID,
		Score:      total,
		Label:      band.Label,
		Color:      band.Color,
		Badge:      band.Badge,
		Breakdown:  breakdown,
		Confidence: round2(confidence),
		ScoredAt:   time.Now().UTC(),
	}
}

// ScoreBatch scores emails sequentially, preserving input order. Score never
// fails, so the average always covers the full input.
func (s *ScoringService) ScoreBatch(ctx context.Context, emails []*Email) *BatchResult {
	scores := make([]*PriorityScore, 0, len(emails))
	sum := 0
	for _, email := range emails {
		score := s.Score(ctx, email)
		scores = append(scores, score)
		sum += score.Score
	}

	avg := 0.0
	if len(emails) > 0 {
		avg = round2(float64(sum) / float64(len(emails)))
	}
	return &BatchResult{
		Scores:      scores,
		TotalEmails: len(emails),
		AvgScore:    avg,
	}
}

// RecordResponse records a user reply to a sender for history tracking
func (s *ScoringService) RecordResponse(ctx context.Context, sender string, responseHours float64) error {
	return s.history.RecordResponse(ctx, sender, responseHours)
}

// Explain renders a human-readable breakdown of a priority score. Pure
// formatting, no side effects.
func (s *ScoringService) Explain(score *PriorityScore) string {
	b := score.Breakdown
	var sb strings.Builder

	fmt.Fprintf(&sb, "Priority Score: %d/100 (%s) %s\n\n", score.Score, strings.ToUpper(score.Label), score.Badge)
	sb.WriteString("Score Breakdown:\n")
	writeComponent(&sb, "Sender Authority", b.Authority)
	writeComponent(&sb, "Deadline Urgency", b.Deadline)
	writeComponent(&sb, "Emotional Tone", b.Tone)
	writeComponent(&sb, "Historical Pattern", b.History)
	writeComponent(&sb, "Calendar Conflict", b.Calendar)
	fmt.Fprintf(&sb, "Overall Confidence: %.0f%%", score.Confidence*100)

	return sb.String()
}

func writeComponent(sb *strings.Builder, name string, c ScoreComponent) {
	fmt.Fprintf(sb, "• %s: %d/%d\n  → %s\n\n", name, c.Score, c.Max, c.Reason)
}

// runExtractor wraps one extractor call in the fail-soft policy: any error
// becomes a neutral zero-confidence component for that dimension only.
func (s *ScoringService) runExtractor(ctx context.Context, name string, extractor SignalExtractor, email *Email, max int) ScoreComponent {
	component, err := extractor.CalculateScore(ctx, email)
	if err != nil {
		s.logger.Warn("Signal extractor degraded",
			zap.String("extractor", name),
			zap.Error(err),
			zap.String("email_id", email.ID))
		return ScoreComponent{
			Score:      0,
			Max:        max,
			Reason:     fmt.Sprintf("Signal unavailable (%s)", name),
			Confidence: 0.0,
		}
	}
	component.Score = clampInt(component.Score, 0, component.Max)
	return component
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
