package core

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestAuthorityKnownContactShortCircuits(t *testing.T) {
	contacts := newFakeContacts(&Contact{
		Email:         "alice@bigcorp.com",
		Name:          "Alice",
		Authority:     AuthorityVIP,
		PriorityBoost: 5,
	})
	scorer := NewAuthorityScorer(contacts, nil, zap.NewNop())

	component, err := scorer.CalculateScore(context.Background(), &Email{From: "alice@bigcorp.com"})
	if err != nil {
		t.Fatalf("CalculateScore: %v", err)
	}
	if component.Score != 25 {
		t.Errorf("score = %d, want 25 (base 25 + boost 5 clamped)", component.Score)
	}
	if component.Confidence != 1.0 {
		t.Errorf("confidence = %v, want 1.0", component.Confidence)
	}
	if component.Reason != "Known vip contact: Alice" {
		t.Errorf("reason = %q", component.Reason)
	}
}

func TestAuthorityUnknownSenderDefault(t *testing.T) {
	scorer := NewAuthorityScorer(nil, nil, zap.NewNop())

	component, err := scorer.CalculateScore(context.Background(), &Email{
		From: "stranger@nowhere.io",
		Body: "hi",
	})
	if err != nil {
		t.Fatalf("CalculateScore: %v", err)
	}
	if component.Score != 5 {
		t.Errorf("score = %d, want 5", component.Score)
	}
	if component.Confidence != 0.5 {
		t.Errorf("confidence = %v, want 0.5", component.Confidence)
	}
	if component.Reason != "Unknown sender: stranger@nowhere.io" {
		t.Errorf("reason = %q", component.Reason)
	}
}

func TestAuthorityTitleDetection(t *testing.T) {
	tests := []struct {
		name       string
		fromName   string
		body       string
		wantScore  int
		wantConf   float64
		wantSource string
	}{
		{
			name:       "vip title in sender name",
			fromName:   "Jane Doe, CEO",
			wantScore:  25,
			wantConf:   0.8,
			wantSource: "title detection",
		},
		{
			name:       "manager title in signature",
			fromName:   "Bob Smith",
			body:       "Please review.\n\nRegards,\nBob Smith\nEngineering Manager",
			wantScore:  22,
			wantConf:   0.75,
			wantSource: "title detection",
		},
	}

	scorer := NewAuthorityScorer(nil, nil, zap.NewNop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			component, err := scorer.CalculateScore(context.Background(), &Email{
				From:     "sender@plain.io",
				FromName: tt.fromName,
				Body:     tt.body,
			})
			if err != nil {
				t.Fatalf("CalculateScore: %v", err)
			}
			if component.Score != tt.wantScore {
				t.Errorf("score = %d, want %d", component.Score, tt.wantScore)
			}
			if component.Confidence != tt.wantConf {
				t.Errorf("confidence = %v, want %v", component.Confidence, tt.wantConf)
			}
			if !strings.Contains(component.Reason, tt.wantSource) {
				t.Errorf("reason = %q, want source %q", component.Reason, tt.wantSource)
			}
		})
	}
}

func TestAuthorityDomainPatterns(t *testing.T) {
	scorer := NewAuthorityScorer(nil, nil, zap.NewNop())

	component, err := scorer.CalculateScore(context.Background(), &Email{
		From: "amy@talentrecruiting.com",
	})
	if err != nil {
		t.Fatalf("CalculateScore: %v", err)
	}
	if component.Score != AuthorityRecruiter.BaseScore() {
		t.Errorf("score = %d, want %d", component.Score, AuthorityRecruiter.BaseScore())
	}
	if component.Confidence != 0.7 {
		t.Errorf("confidence = %v, want 0.7", component.Confidence)
	}
}

func TestAuthorityInstitutionalDomain(t *testing.T) {
	scorer := NewAuthorityScorer(nil, nil, zap.NewNop())

	component, err := scorer.CalculateScore(context.Background(), &Email{
		From: "prof@university.edu",
	})
	if err != nil {
		t.Fatalf("CalculateScore: %v", err)
	}
	if component.Score != AuthorityExternal.BaseScore() {
		t.Errorf("score = %d, want %d", component.Score, AuthorityExternal.BaseScore())
	}
	if component.Confidence != 0.6 {
		t.Errorf("confidence = %v, want 0.6", component.Confidence)
	}
}

func TestAuthorityHighestBaseScoreWins(t *testing.T) {
	// Recruiter domain and manager title both match; manager has the higher
	// base score and must win regardless of candidate order.
	scorer := NewAuthorityScorer(nil, nil, zap.NewNop())

	component, err := scorer.CalculateScore(context.Background(), &Email{
		From:     "lead@talentrecruiting.com",
		FromName: "Team Lead",
	})
	if err != nil {
		t.Fatalf("CalculateScore: %v", err)
	}
	if component.Score != AuthorityManager.BaseScore() {
		t.Errorf("score = %d, want %d (manager outranks recruiter)", component.Score, AuthorityManager.BaseScore())
	}
}

func TestAuthorityLanguageServiceCandidate(t *testing.T) {
	language := &fakeLanguage{
		inference: &AuthorityInference{Class: AuthorityClient, Confidence: 0.9},
	}
	scorer := NewAuthorityScorer(nil, language, zap.NewNop())

	component, err := scorer.CalculateScore(context.Background(), &Email{
		From: "someone@plain.io",
	})
	if err != nil {
		t.Fatalf("CalculateScore: %v", err)
	}
	if component.Score != AuthorityClient.BaseScore() {
		t.Errorf("score = %d, want %d", component.Score, AuthorityClient.BaseScore())
	}
	if component.Confidence != 0.9 {
		t.Errorf("confidence = %v, want 0.9", component.Confidence)
	}
	if !strings.Contains(component.Reason, "AI inference") {
		t.Errorf("reason = %q, want AI inference source", component.Reason)
	}
}

func TestAuthorityLanguageServiceFailureIgnored(t *testing.T) {
	language := &fakeLanguage{inferErr: ErrUnavailable}
	scorer := NewAuthorityScorer(nil, language, zap.NewNop())

	component, err := scorer.CalculateScore(context.Background(), &Email{
		From: "someone@plain.io",
	})
	if err != nil {
		t.Fatalf("CalculateScore: %v", err)
	}
	if component.Score != AuthorityUnknown.BaseScore() {
		t.Errorf("score = %d, want unknown default %d", component.Score, AuthorityUnknown.BaseScore())
	}
}

func TestExtractSignature(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "regards marker",
			body: "Hello\n\nRegards,\nJohn\nCEO of Things",
			want: "Regards,\nJohn\nCEO of Things",
		},
		{
			name: "dash marker",
			body: "content\n--\nJane",
			want: "--\nJane",
		},
		{
			name: "no marker short body",
			body: "just one line",
			want: "",
		},
		{
			name: "no marker long body falls back to tail",
			body: "a\nb\nc\nd\ne\nf\ng",
			want: "c\nd\ne\nf\ng",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractSignature(tt.body); got != tt.want {
				t.Errorf("extractSignature() = %q, want %q", got, tt.want)
			}
		})
	}
}
