package core

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func newStubService(authority, deadline, tone, calendar SignalExtractor, archive EmailArchive) *ScoringService {
	return &ScoringService{
		authority: authority,
		deadline:  deadline,
		tone:      tone,
		history:   newTestHistoryScorer(nil),
		calendar:  calendar,
		archive:   archive,
		logger:    zap.NewNop(),
	}
}

func fullConfidence(score, max int) *stubExtractor {
	return &stubExtractor{component: ScoreComponent{Score: score, Max: max, Reason: "stub", Confidence: 1.0}}
}

func TestScoreSumsAndClassifies(t *testing.T) {
	service := newStubService(
		fullConfidence(20, 25),
		fullConfidence(20, 25),
		fullConfidence(15, 20),
		fullConfidence(10, 15),
		nil,
	)

	score := service.Score(context.Background(), &Email{ID: "m1", From: "a@b.com"})

	// history without a store contributes the neutral 7
	want := 20 + 20 + 15 + 7 + 10
	if score.Score != want {
		t.Errorf("score = %d, want %d", score.Score, want)
	}
	if score.Score != score.Breakdown.Sum() {
		t.Errorf("total %d does not equal breakdown sum %d", score.Score, score.Breakdown.Sum())
	}
	if score.Label != "high" {
		t.Errorf("label = %q, want high", score.Label)
	}
	if score.EmailID != "m1" {
		t.Errorf("email id = %q", score.EmailID)
	}
}

func TestScoreConfidenceBlend(t *testing.T) {
	store := newFakeHistoryStore(&ResponseHistoryRecord{
		SenderEmail:    "a@b.com",
		EmailsReceived: 3,
		ResponsesSent:  1,
		ResponseRate:   0.33,
	})
	service := newStubService(
		fullConfidence(25, 25),
		fullConfidence(25, 25),
		fullConfidence(20, 20),
		fullConfidence(15, 15),
		nil,
	)
	service.history = newTestHistoryScorer(store)

	score := service.Score(context.Background(), &Email{ID: "m2", From: "a@b.com"})

	// known sender contributes the neutral 7 at 0.8 confidence
	if score.Score != 92 {
		t.Errorf("score = %d, want 92", score.Score)
	}
	if score.Label != "critical" || score.Badge != "🔴" {
		t.Errorf("band = %q %q, want critical 🔴", score.Label, score.Badge)
	}
	// 0.25 + 0.25 + 0.20 + 0.8*0.15 + 0.15 = 0.97
	if score.Confidence != 0.97 {
		t.Errorf("confidence = %v, want 0.97", score.Confidence)
	}
}

func TestScoreFailSoft(t *testing.T) {
	service := newStubService(
		&stubExtractor{err: errors.New("llm exploded")},
		fullConfidence(20, 25),
		fullConfidence(10, 20),
		fullConfidence(5, 15),
		nil,
	)

	score := service.Score(context.Background(), &Email{ID: "m3", From: "a@b.com"})

	if score.Breakdown.Authority.Score != 0 {
		t.Errorf("degraded component score = %d, want 0", score.Breakdown.Authority.Score)
	}
	if score.Breakdown.Authority.Confidence != 0 {
		t.Errorf("degraded component confidence = %v, want 0", score.Breakdown.Authority.Confidence)
	}
	if score.Breakdown.Authority.Reason != "Signal unavailable (authority)" {
		t.Errorf("degraded reason = %q", score.Breakdown.Authority.Reason)
	}
	want := 20 + 10 + 7 + 5
	if score.Score != want {
		t.Errorf("score = %d, want %d from remaining extractors", score.Score, want)
	}
}

func TestScoreClampsOverflowingComponent(t *testing.T) {
	service := newStubService(
		&stubExtractor{component: ScoreComponent{Score: 40, Max: 25, Reason: "stub", Confidence: 1.0}},
		fullConfidence(0, 25),
		fullConfidence(0, 20),
		fullConfidence(0, 15),
		nil,
	)

	score := service.Score(context.Background(), &Email{ID: "m4", From: "a@b.com"})
	if score.Breakdown.Authority.Score != 25 {
		t.Errorf("component score = %d, want clamped to max 25", score.Breakdown.Authority.Score)
	}
}

func TestScoreArchives(t *testing.T) {
	archive := &fakeArchive{}
	service := newStubService(
		fullConfidence(10, 25),
		fullConfidence(0, 25),
		fullConfidence(0, 20),
		fullConfidence(0, 15),
		archive,
	)

	service.Score(context.Background(), &Email{ID: "keep-me", From: "a@b.com"})
	if len(archive.archived) != 1 || archive.archived[0] != "keep-me" {
		t.Errorf("archived = %v, want [keep-me]", archive.archived)
	}
}

func TestScoreSurvivesArchiveFailure(t *testing.T) {
	archive := &fakeArchive{err: errors.New("disk full")}
	service := newStubService(
		fullConfidence(10, 25),
		fullConfidence(0, 25),
		fullConfidence(0, 20),
		fullConfidence(0, 15),
		archive,
	)

	score := service.Score(context.Background(), &Email{ID: "m5", From: "a@b.com"})
	if score == nil {
		t.Fatal("Score returned nil on archive failure")
	}
}

func TestScoreBatch(t *testing.T) {
	service := newStubService(
		fullConfidence(13, 25),
		fullConfidence(0, 25),
		fullConfidence(0, 20),
		fullConfidence(0, 15),
		nil,
	)

	emails := []*Email{
		{ID: "b1", From: "a@b.com"},
		{ID: "b2", From: "c@d.com"},
	}
	result := service.ScoreBatch(context.Background(), emails)

	if result.TotalEmails != 2 || len(result.Scores) != 2 {
		t.Fatalf("result = %+v, want 2 scores", result)
	}
	if result.Scores[0].EmailID != "b1" || result.Scores[1].EmailID != "b2" {
		t.Errorf("batch order not preserved: %q, %q", result.Scores[0].EmailID, result.Scores[1].EmailID)
	}
	// each email scores 13+7 = 20
	if result.AvgScore != 20 {
		t.Errorf("avg = %v, want 20", result.AvgScore)
	}
}

func TestScoreBatchEmpty(t *testing.T) {
	service := newStubService(
		fullConfidence(0, 25),
		fullConfidence(0, 25),
		fullConfidence(0, 20),
		fullConfidence(0, 15),
		nil,
	)

	result := service.ScoreBatch(context.Background(), nil)
	if result.TotalEmails != 0 || result.AvgScore != 0 {
		t.Errorf("result = %+v, want empty batch with zero average", result)
	}
}

func TestExplainFormat(t *testing.T) {
	service := newStubService(
		fullConfidence(25, 25),
		fullConfidence(20, 25),
		fullConfidence(15, 20),
		fullConfidence(10, 15),
		nil,
	)

	score := service.Score(context.Background(), &Email{ID: "m6", From: "a@b.com"})
	explain := service.Explain(score)

	for _, want := range []string{
		"Priority Score: 77/100 (HIGH)",
		"Score Breakdown:",
		"• Sender Authority: 25/25",
		"• Deadline Urgency: 20/25",
		"• Emotional Tone: 15/20",
		"• Historical Pattern: 7/15",
		"• Calendar Conflict: 10/15",
		"Overall Confidence:",
	} {
		if !strings.Contains(explain, want) {
			t.Errorf("Explain output missing %q:\n%s", want, explain)
		}
	}
}
