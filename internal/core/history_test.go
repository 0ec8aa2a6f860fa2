package core

import (
	"context"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestHistoryScorer(store ResponseHistoryStore) *HistoryScorer {
	scorer := NewHistoryScorer(store, zap.NewNop())
	scorer.now = func() time.Time { return fixedNow }
	return scorer
}

func TestHistoryWithoutStoreIsNeutral(t *testing.T) {
	scorer := newTestHistoryScorer(nil)
	component, err := scorer.CalculateScore(context.Background(), &Email{From: "a@b.com"})
	if err != nil {
		t.Fatalf("CalculateScore: %v", err)
	}
	if component.Score != 7 || component.Confidence != 0.5 {
		t.Errorf("component = %+v, want neutral 7 @ 0.5", component)
	}
}

func TestHistoryNewSenderCreatesRecord(t *testing.T) {
	store := newFakeHistoryStore()
	scorer := newTestHistoryScorer(store)

	component, err := scorer.CalculateScore(context.Background(), &Email{From: "New@Sender.com"})
	if err != nil {
		t.Fatalf("CalculateScore: %v", err)
	}
	if component.Score != 7 {
		t.Errorf("score = %d, want neutral 7", component.Score)
	}
	if component.Reason != "New sender - no response history" {
		t.Errorf("reason = %q", component.Reason)
	}

	record, ok := store.records["new@sender.com"]
	if !ok {
		t.Fatal("record was not created for normalized sender")
	}
	if record.EmailsReceived != 1 {
		t.Errorf("EmailsReceived = %d, want 1", record.EmailsReceived)
	}
}

func TestHistoryScoringCountsReceipt(t *testing.T) {
	store := newFakeHistoryStore(&ResponseHistoryRecord{
		SenderEmail:    "colleague@corp.com",
		EmailsReceived: 4,
		ResponsesSent:  2,
		ResponseRate:   0.5,
	})
	scorer := newTestHistoryScorer(store)

	if _, err := scorer.CalculateScore(context.Background(), &Email{From: "colleague@corp.com"}); err != nil {
		t.Fatalf("CalculateScore: %v", err)
	}

	record := store.records["colleague@corp.com"]
	if record.EmailsReceived != 5 {
		t.Errorf("EmailsReceived = %d, want 5 after scoring", record.EmailsReceived)
	}
	if record.ResponseRate != 0.4 {
		t.Errorf("ResponseRate = %v, want 0.4 recomputed over 5 received", record.ResponseRate)
	}
	if !record.LastEmailReceived.Equal(fixedNow) {
		t.Errorf("LastEmailReceived = %v, want fixed clock", record.LastEmailReceived)
	}
}

func TestHistoryAdjustments(t *testing.T) {
	tests := []struct {
		name       string
		record     ResponseHistoryRecord
		wantScore  int
		wantInside string
	}{
		{
			name: "responsive frequent sender clamps at max",
			record: ResponseHistoryRecord{
				EmailsReceived: 20, ResponsesSent: 19,
				ResponseRate: 0.95, AvgResponseHours: 1,
			},
			wantScore:  15, // 7+6+3+2 clamped
			wantInside: "very high response rate",
		},
		{
			name: "high response rate",
			record: ResponseHistoryRecord{
				EmailsReceived: 4, ResponsesSent: 3,
				ResponseRate: 0.75, AvgResponseHours: 24,
			},
			wantScore:  11, // 7+4, avg between 8h and 48h adds nothing
			wantInside: "high response rate",
		},
		{
			name: "ignored sender",
			record: ResponseHistoryRecord{
				EmailsReceived: 8, ResponsesSent: 1,
				ResponseRate: 0.125,
			},
			wantScore:  4, // 7-3
			wantInside: "low response rate",
		},
		{
			name: "slow responder",
			record: ResponseHistoryRecord{
				EmailsReceived: 6, ResponsesSent: 3,
				ResponseRate: 0.5, AvgResponseHours: 72,
			},
			wantScore:  7, // 7+2-2
			wantInside: "typically slow responses",
		},
		{
			name: "no signals",
			record: ResponseHistoryRecord{
				EmailsReceived: 3, ResponsesSent: 1,
				ResponseRate: 0.33,
			},
			wantScore:  7,
			wantInside: "Based on 3 previous emails",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, reason := scoreFromHistory(&tt.record)
			if score != tt.wantScore {
				t.Errorf("score = %d, want %d", score, tt.wantScore)
			}
			if !strings.Contains(reason, tt.wantInside) {
				t.Errorf("reason = %q, want substring %q", reason, tt.wantInside)
			}
		})
	}
}

func TestRecordResponse(t *testing.T) {
	store := newFakeHistoryStore(&ResponseHistoryRecord{
		SenderEmail:    "boss@corp.com",
		EmailsReceived: 10,
	})
	scorer := newTestHistoryScorer(store)

	if err := scorer.RecordResponse(context.Background(), "Boss@Corp.com", 3); err != nil {
		t.Fatalf("RecordResponse: %v", err)
	}

	record := store.records["boss@corp.com"]
	if record.ResponsesSent != 1 {
		t.Errorf("ResponsesSent = %d, want 1", record.ResponsesSent)
	}
	if record.AvgResponseHours != 3 {
		t.Errorf("AvgResponseHours = %v, want 3", record.AvgResponseHours)
	}
	if record.ResponseRate != 0.1 {
		t.Errorf("ResponseRate = %v, want 0.1", record.ResponseRate)
	}
}

func TestRecordResponseUnknownSenderCreates(t *testing.T) {
	store := newFakeHistoryStore()
	scorer := newTestHistoryScorer(store)

	if err := scorer.RecordResponse(context.Background(), "new@corp.com", 5); err != nil {
		t.Fatalf("RecordResponse: %v", err)
	}
	record, ok := store.records["new@corp.com"]
	if !ok {
		t.Fatal("record was not created")
	}
	if record.ResponsesSent != 1 || record.TotalResponseHours != 5 {
		t.Errorf("record = %+v, want one response of 5h", record)
	}
}

func TestRecordResponseWithoutStoreFails(t *testing.T) {
	scorer := newTestHistoryScorer(nil)
	if err := scorer.RecordResponse(context.Background(), "a@b.com", 1); err == nil {
		t.Error("expected error without a connected store")
	}
}
