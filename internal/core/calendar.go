package core

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

var meetingKeywords = []string{
	"meeting", "call", "sync", "standup", "stand-up", "huddle",
	"conference", "discussion", "catch up", "catch-up", "touchbase",
	"one-on-one", "1:1", "review meeting", "demo", "presentation",
	"interview", "workshop", "training", "webinar", "town hall",
}

var schedulingKeywords = []string{
	"schedule", "reschedule", "book", "calendar", "availability",
	"free time", "slot", "when are you", "can we meet", "let's meet",
	"set up a", "arrange", "plan for", "block time", "hold time",
}

var availabilityPhrases = []string{
	"are you available", "are you free", "what time works",
	"when can you", "your availability", "open slots",
}

var conflictKeywords = []string{
	"conflict", "double-booked", "overlap", "clash", "same time",
	"already scheduled", "can't make it", "won't be able", "reschedule",
}

var cancellationWords = []string{"cancel", "postpone", "move", "push back", "delay"}

var recurringWords = []string{"weekly", "daily", "monthly", "recurring"}

var dayNames = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

var timePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\d{1,2}:\d{2}\s*(?:am|pm)?`),
	regexp.MustCompile(`(?i)\d{1,2}\s*(?:am|pm)`),
	regexp.MustCompile(`(?i)(?:at|by|around)\s+\d{1,2}`),
	regexp.MustCompile(`(?i)(?:morning|afternoon|evening|noon|midnight)`),
}

// CalendarScorer scores calendar pressure (max 15 points) as the clamped sum
// of four independently capped sub-signals.
type CalendarScorer struct {
	logger *zap.Logger
}

// NewCalendarScorer creates a new calendar scorer
func NewCalendarScorer(logger *zap.Logger) *CalendarScorer {
	return &CalendarScorer{logger: logger}
}

// CalculateScore computes the calendar conflict component
func (s *CalendarScorer) CalculateScore(ctx context.Context, email *Email) (ScoreComponent, error) {
	text := strings.ToLower(email.Subject + " " + email.Body)

	score := 0
	var reasons []string

	sub, subReasons := checkMeetingMentions(text)
	score += sub
	reasons = append(reasons, subReasons...)

	sub, subReasons = checkSchedulingRequests(text)
	score += sub
	reasons = append(reasons, subReasons...)

	sub, subReasons = checkTimeMentions(text)
	score += sub
	reasons = append(reasons, subReasons...)

	sub, subReasons = checkConflicts(text)
	score += sub
	reasons = append(reasons, subReasons...)

	if len(reasons) == 0 {
		return ScoreComponent{
			Score:      0,
			Max:        15,
			Reason:     "No calendar-related content detected",
			Confidence: 0.7,
		}, nil
	}

	if len(reasons) > 3 {
		reasons = reasons[:3]
	}
	return ScoreComponent{
		Score:      clampInt(score, 0, 15),
		Max:        15,
		Reason:     "Calendar: " + strings.Join(reasons, ", "),
		Confidence: 0.8,
	}, nil
}

// checkMeetingMentions scores meeting keywords, invites and recurrence (cap 8)
func checkMeetingMentions(text string) (int, []string) {
	score := 0
	var reasons []string

	for _, kw := range meetingKeywords {
		if strings.Contains(text, kw) {
			score += 4
			reasons = append(reasons, fmt.Sprintf("meeting mention ('%s')", kw))
			break
		}
	}
	if strings.Contains(text, "invite") && containsAny(text, meetingKeywords) {
		score += 3
		reasons = append(reasons, "meeting invite")
	}
	if containsAny(text, recurringWords) {
		score += 2
		reasons = append(reasons, "recurring meeting")
	}
	return clampInt(score, 0, 8), reasons
}

// checkSchedulingRequests scores scheduling and availability phrases (cap 8)
func checkSchedulingRequests(text string) (int, []string) {
	score := 0
	var reasons []string

	if containsAny(text, schedulingKeywords) {
		score += 5
		reasons = append(reasons, "scheduling request")
	}
	if containsAny(text, availabilityPhrases) {
		score += 4
		reasons = append(reasons, "availability inquiry")
	}
	return clampInt(score, 0, 8), reasons
}

// checkTimeMentions scores explicit times, day names and imminent
// today/tomorrow references (cap 6)
func checkTimeMentions(text string) (int, []string) {
	score := 0
	var reasons []string

	for _, pattern := range timePatterns {
		if pattern.MatchString(text) {
			score += 3
			reasons = append(reasons, "specific time mentioned")
			break
		}
	}
	for _, day := range dayNames {
		if strings.Contains(text, day) {
			score += 2
			reasons = append(reasons, fmt.Sprintf("day mentioned (%s)", day))
			break
		}
	}
	if strings.Contains(text, "today") || strings.Contains(text, "tomorrow") {
		score += 4
		reasons = append(reasons, "imminent time reference")
	}
	return clampInt(score, 0, 6), reasons
}

// checkConflicts scores conflict indicators and schedule changes (cap 8)
func checkConflicts(text string) (int, []string) {
	score := 0
	var reasons []string

	if containsAny(text, conflictKeywords) {
		score += 6
		reasons = append(reasons, "potential conflict")
	}
	if containsAny(text, cancellationWords) {
		score += 4
		reasons = append(reasons, "schedule change request")
	}
	return clampInt(score, 0, 8), reasons
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
