package core

import (
	"context"
	"errors"
	"math"
	"strings"
	"unicode"

	"go.uber.org/zap"
)

// keyword categories for the deterministic tone fallback
var (
	urgentToneWords     = []string{"urgent", "asap", "immediately", "critical", "emergency", "deadline", "today", "now"}
	stressToneWords     = []string{"worried", "concerned", "issue", "problem", "stuck", "help", "struggling"}
	angerToneWords      = []string{"disappointed", "unacceptable", "frustrated", "complaint", "terrible", "worst"}
	excitementToneWords = []string{"excited", "great", "amazing", "wonderful", "thrilled", "congratulations"}
)

// ToneScorer scores emotional tone (max 20 points) from a tone vector,
// obtained from the language service when available and from a deterministic
// keyword/punctuation analysis otherwise.
type ToneScorer struct {
	language LanguageService
	logger   *zap.Logger
}

// NewToneScorer creates a new tone scorer. The language service is optional.
func NewToneScorer(language LanguageService, logger *zap.Logger) *ToneScorer {
	return &ToneScorer{
		language: language,
		logger:   logger,
	}
}

// CalculateScore computes the emotional tone component
func (s *ToneScorer) CalculateScore(ctx context.Context, email *Email) (ScoreComponent, error) {
	text := email.Subject + "\n\n" + email.Body

	vector, confidence := s.analyzeTone(ctx, text)
	return ScoreComponent{
		Score:      toneScore(vector),
		Max:        20,
		Reason:     toneReason(vector),
		Confidence: confidence,
	}, nil
}

// analyzeTone returns a tone vector and the confidence appropriate to its
// provenance: 0.85 for a validated service vector, 0.65 for the fallback,
// 0.5 for a service vector that failed validation and had to be clamped.
func (s *ToneScorer) analyzeTone(ctx context.Context, text string) (ToneVector, float64) {
	if s.language != nil {
		vector, err := s.language.AnalyzeTone(ctx, text)
		if err == nil && vector != nil {
			if vector.Valid() {
				return *vector, 0.85
			}
			if s.logger != nil {
				s.logger.Warn("Language service returned out-of-range tone vector")
			}
			return vector.Clamped(), 0.5
		}
		if err != nil && !errors.Is(err, ErrUnavailable) && s.logger != nil {
			s.logger.Debug("Tone analysis failed, using fallback", zap.Error(err))
		}
	}
	return FallbackToneAnalysis(text), 0.65
}

// toneScore converts a vector to points out of 20. Urgency and stress
// dominate the weighting.
func toneScore(v ToneVector) int {
	weighted := float64(v.Urgency)*0.35 +
		float64(v.Stress)*0.25 +
		float64(v.Anger)*0.20 +
		float64(v.OverallIntensity)*0.15 +
		float64(v.Excitement)*0.05
	return clampInt(int(math.Round(weighted/100*20)), 0, 20)
}

// toneReason summarizes the strongest tone indicators
func toneReason(v ToneVector) string {
	var indicators []string

	switch {
	case v.Urgency >= 70:
		indicators = append(indicators, "high urgency")
	case v.Urgency >= 40:
		indicators = append(indicators, "moderate urgency")
	}
	switch {
	case v.Stress >= 70:
		indicators = append(indicators, "high stress")
	case v.Stress >= 40:
		indicators = append(indicators, "some stress")
	}
	switch {
	case v.Anger >= 60:
		indicators = append(indicators, "frustration detected")
	case v.Anger >= 30:
		indicators = append(indicators, "mild frustration")
	}
	switch {
	case v.Excitement >= 70:
		indicators = append(indicators, "high excitement")
	case v.Excitement >= 40:
		indicators = append(indicators, "positive tone")
	}

	if len(indicators) == 0 {
		return "Neutral tone detected"
	}
	return "Tone: " + strings.Join(indicators, ", ")
}

// FallbackToneAnalysis derives a tone vector from keyword counts and
// punctuation signals. It is total over the empty string and fully
// deterministic.
func FallbackToneAnalysis(text string) ToneVector {
	lower := strings.ToLower(text)

	urgency := 0
	for _, w := range urgentToneWords {
		if strings.Contains(lower, w) {
			urgency += 15
		}
	}
	stress := 0
	for _, w := range stressToneWords {
		if strings.Contains(lower, w) {
			stress += 12
		}
	}
	anger := 0
	for _, w := range angerToneWords {
		if strings.Contains(lower, w) {
			anger += 15
		}
	}
	excitement := 0
	for _, w := range excitementToneWords {
		if strings.Contains(lower, w) {
			excitement += 15
		}
	}

	if strings.Count(text, "!") > 2 {
		urgency += 10
		excitement += 10
	}
	if upperRatio(text) > 0.3 {
		urgency += 15
		anger += 10
	}

	urgency = clampInt(urgency, 0, 100)
	stress = clampInt(stress, 0, 100)
	anger = clampInt(anger, 0, 100)
	excitement = clampInt(excitement, 0, 100)

	return ToneVector{
		Urgency:          urgency,
		Stress:           stress,
		Anger:            anger,
		Excitement:       excitement,
		Formality:        50,
		OverallIntensity: clampInt((urgency+stress+anger+excitement)/4, 0, 100),
	}
}

// upperRatio is the share of uppercase characters in the text
func upperRatio(text string) float64 {
	if len(text) == 0 {
		return 0
	}
	upper := 0
	total := 0
	for _, r := range text {
		total++
		if unicode.IsUpper(r) {
			upper++
		}
	}
	return float64(upper) / float64(total)
}
