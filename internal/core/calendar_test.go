package core

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestCalendarNoContent(t *testing.T) {
	scorer := NewCalendarScorer(zap.NewNop())
	component, err := scorer.CalculateScore(context.Background(), &Email{
		Subject: "Quarterly numbers",
		Body:    "Figures attached for reference.",
	})
	if err != nil {
		t.Fatalf("CalculateScore: %v", err)
	}
	if component.Score != 0 {
		t.Errorf("score = %d, want 0", component.Score)
	}
	if component.Confidence != 0.7 {
		t.Errorf("confidence = %v, want 0.7", component.Confidence)
	}
	if component.Reason != "No calendar-related content detected" {
		t.Errorf("reason = %q", component.Reason)
	}
}

func TestCalendarFullSchedulingRequest(t *testing.T) {
	scorer := NewCalendarScorer(zap.NewNop())
	component, err := scorer.CalculateScore(context.Background(), &Email{
		Subject: "Sync tomorrow?",
		Body:    "Let's schedule a meeting tomorrow at 3pm.",
	})
	if err != nil {
		t.Fatalf("CalculateScore: %v", err)
	}
	// meeting mention 4 + scheduling request 5 + time mentions capped at 6
	if component.Score != 15 {
		t.Errorf("score = %d, want 15", component.Score)
	}
	if component.Confidence != 0.8 {
		t.Errorf("confidence = %v, want 0.8", component.Confidence)
	}
	if !strings.HasPrefix(component.Reason, "Calendar: ") {
		t.Errorf("reason = %q, want Calendar: prefix", component.Reason)
	}
	// reasons are truncated to three entries
	if n := strings.Count(component.Reason, ","); n > 2 {
		t.Errorf("reason lists more than three entries: %q", component.Reason)
	}
}

func TestCalendarConflictSignals(t *testing.T) {
	scorer := NewCalendarScorer(zap.NewNop())
	component, err := scorer.CalculateScore(context.Background(), &Email{
		Body: "I'm double-booked then, can we reschedule?",
	})
	if err != nil {
		t.Fatalf("CalculateScore: %v", err)
	}
	// scheduling request 5 + potential conflict 6
	if component.Score != 11 {
		t.Errorf("score = %d, want 11", component.Score)
	}
	if !strings.Contains(component.Reason, "potential conflict") {
		t.Errorf("reason = %q, want conflict signal", component.Reason)
	}
}

func TestCheckMeetingMentionsCaps(t *testing.T) {
	// keyword + invite + recurring = 4+3+2 = 9, capped at 8
	score, reasons := checkMeetingMentions("weekly meeting invite")
	if score != 8 {
		t.Errorf("score = %d, want capped 8", score)
	}
	if len(reasons) != 3 {
		t.Errorf("reasons = %v, want 3 entries", reasons)
	}
}

func TestCheckTimeMentionsCaps(t *testing.T) {
	// specific time 3 + day 2 + imminent 4 = 9, capped at 6
	score, _ := checkTimeMentions("monday at 10:30 am or tomorrow")
	if score != 6 {
		t.Errorf("score = %d, want capped 6", score)
	}
}

func TestCheckConflictsCancellation(t *testing.T) {
	score, reasons := checkConflicts("we need to postpone")
	if score != 4 {
		t.Errorf("score = %d, want 4", score)
	}
	if len(reasons) != 1 || reasons[0] != "schedule change request" {
		t.Errorf("reasons = %v", reasons)
	}
}
