package core

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
)

func TestFallbackToneAnalysis(t *testing.T) {
	tests := []struct {
		name string
		text string
		want ToneVector
	}{
		{
			name: "empty text is neutral",
			text: "",
			want: ToneVector{Formality: 50},
		},
		{
			name: "urgency keywords",
			text: "urgent deadline",
			want: ToneVector{Urgency: 30, Formality: 50, OverallIntensity: 7},
		},
		{
			name: "exclamation burst",
			text: "done!!!",
			want: ToneVector{Urgency: 10, Excitement: 10, Formality: 50, OverallIntensity: 5},
		},
		{
			name: "shouting raises urgency and anger",
			text: "WHERE IS THE REPORT",
			want: ToneVector{Urgency: 15, Anger: 10, Formality: 50, OverallIntensity: 6},
		},
		{
			name: "stress words",
			text: "worried about this issue, need help",
			want: ToneVector{Stress: 36, Formality: 50, OverallIntensity: 9},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FallbackToneAnalysis(tt.text)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("FallbackToneAnalysis(%q) mismatch (-want +got):\n%s", tt.text, diff)
			}
		})
	}
}

func TestToneScoreWeights(t *testing.T) {
	tests := []struct {
		name   string
		vector ToneVector
		want   int
	}{
		{"zero vector", ToneVector{}, 0},
		{"saturated vector", ToneVector{Urgency: 100, Stress: 100, Anger: 100, Excitement: 100, Formality: 100, OverallIntensity: 100}, 20},
		{"urgency only", ToneVector{Urgency: 100}, 7},
		{"excitement weighs least", ToneVector{Excitement: 100}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := toneScore(tt.vector); got != tt.want {
				t.Errorf("toneScore = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestToneReason(t *testing.T) {
	tests := []struct {
		name   string
		vector ToneVector
		want   string
	}{
		{"neutral", ToneVector{}, "Neutral tone detected"},
		{"high urgency", ToneVector{Urgency: 80}, "Tone: high urgency"},
		{"combined", ToneVector{Urgency: 50, Anger: 65}, "Tone: moderate urgency, frustration detected"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := toneReason(tt.vector); got != tt.want {
				t.Errorf("toneReason = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestToneConfidenceByProvenance(t *testing.T) {
	email := &Email{Subject: "hello", Body: "plain message"}

	t.Run("no language service uses fallback", func(t *testing.T) {
		scorer := NewToneScorer(nil, zap.NewNop())
		component, err := scorer.CalculateScore(context.Background(), email)
		if err != nil {
			t.Fatalf("CalculateScore: %v", err)
		}
		if component.Confidence != 0.65 {
			t.Errorf("confidence = %v, want 0.65", component.Confidence)
		}
	})

	t.Run("valid service vector", func(t *testing.T) {
		scorer := NewToneScorer(&fakeLanguage{tone: &ToneVector{Urgency: 80, Formality: 60}}, zap.NewNop())
		component, err := scorer.CalculateScore(context.Background(), email)
		if err != nil {
			t.Fatalf("CalculateScore: %v", err)
		}
		if component.Confidence != 0.85 {
			t.Errorf("confidence = %v, want 0.85", component.Confidence)
		}
	})

	t.Run("out-of-range service vector is clamped with low confidence", func(t *testing.T) {
		scorer := NewToneScorer(&fakeLanguage{tone: &ToneVector{Urgency: 150}}, zap.NewNop())
		component, err := scorer.CalculateScore(context.Background(), email)
		if err != nil {
			t.Fatalf("CalculateScore: %v", err)
		}
		if component.Confidence != 0.5 {
			t.Errorf("confidence = %v, want 0.5", component.Confidence)
		}
		// clamped urgency 100 -> 0.35 weight -> 7 points
		if component.Score != 7 {
			t.Errorf("score = %d, want 7 from clamped vector", component.Score)
		}
	})

	t.Run("service failure falls back", func(t *testing.T) {
		scorer := NewToneScorer(&fakeLanguage{toneErr: errors.New("boom")}, zap.NewNop())
		component, err := scorer.CalculateScore(context.Background(), email)
		if err != nil {
			t.Fatalf("CalculateScore: %v", err)
		}
		if component.Confidence != 0.65 {
			t.Errorf("confidence = %v, want 0.65", component.Confidence)
		}
	})
}
