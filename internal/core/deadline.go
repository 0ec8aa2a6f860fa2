package core

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"go.uber.org/zap"
)

// urgencyKeywords ranks urgency phrases by pre-assigned point values (of 25).
// Higher-ranked phrases win when several match.
var urgencyKeywords = []struct {
	keyword string
	score   int
}{
	// critical urgency
	{"asap", 20},
	{"emergency", 20},
	{"immediately", 20},
	{"urgent", 18},
	{"critical", 18},
	{"right away", 18},
	{"as soon as possible", 18},
	// high urgency
	{"due today", 15},
	{"deadline", 14},
	{"by end of day", 14},
	{"eod", 14},
	{"by close of business", 13},
	{"cob", 13},
	{"time-sensitive", 12},
	{"time sensitive", 12},
	{"pressing", 11},
	{"priority", 10},
	// medium urgency
	{"by friday", 9},
	{"by monday", 9},
	{"this week", 8},
	{"soon", 7},
	{"quickly", 6},
	{"prompt", 6},
	{"timely", 5},
	// low urgency
	{"when you can", 2},
	{"when possible", 2},
	{"at your convenience", 1},
	{"whenever", 1},
	{"no rush", 0},
}

// relative time expressions resolved without a date parser
var (
	reByTomorrow   = regexp.MustCompile(`(?i)by\s+(tomorrow|tmrw)`)
	reByToday      = regexp.MustCompile(`(?i)by\s+(end\s+of\s+)?today`)
	reWithinHours  = regexp.MustCompile(`(?i)(?:within|in)\s+(\d+)\s+hours?`)
	reWithinDays   = regexp.MustCompile(`(?i)(?:within|in)\s+(\d+)\s+days?`)
	reNextWeek     = regexp.MustCompile(`(?i)next\s+week`)
	reThisWeek     = regexp.MustCompile(`(?i)this\s+week`)
	reByWeekday    = regexp.MustCompile(`(?i)by\s+(monday|tuesday|wednesday|thursday|friday|saturday|sunday)`)
	reOrdinal      = regexp.MustCompile(`(?i)(\d{1,2})(st|nd|rd|th)`)
	reExplicitYear = regexp.MustCompile(`\d{4}`)
)

// explicit date mentions handed to the date parser
var explicitDatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)by\s+(\w+\s+\d{1,2}(?:st|nd|rd|th)?(?:,?\s+\d{4})?)`),
	regexp.MustCompile(`(?i)due\s+(?:on\s+)?(\w+\s+\d{1,2}(?:st|nd|rd|th)?(?:,?\s+\d{4})?)`),
	regexp.MustCompile(`(?i)deadline[:\s]+(\w+\s+\d{1,2}(?:st|nd|rd|th)?(?:,?\s+\d{4})?)`),
	regexp.MustCompile(`(?i)before\s+(\w+\s+\d{1,2}(?:st|nd|rd|th)?(?:,?\s+\d{4})?)`),
	regexp.MustCompile(`(\d{1,2}/\d{1,2}/\d{2,4})`),
	regexp.MustCompile(`(\d{4}-\d{2}-\d{2})`),
}

var weekdayIndex = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
}

// DeadlineScorer scores deadline urgency (max 25 points) by running a
// keyword strategy and a date-resolution strategy and keeping the higher.
type DeadlineScorer struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewDeadlineScorer creates a new deadline scorer
func NewDeadlineScorer(logger *zap.Logger) *DeadlineScorer {
	return &DeadlineScorer{
		logger: logger,
		now:    time.Now,
	}
}

// CalculateScore computes the deadline urgency component
func (s *DeadlineScorer) CalculateScore(ctx context.Context, email *Email) (ScoreComponent, error) {
	text := strings.ToLower(email.Subject + " " + email.Body)

	keywordScore, keywordReason := s.keywordUrgency(text)

	deadlineScore := 0
	deadlineReason := ""
	if deadline, ok := s.ExtractDeadline(text); ok {
		deadlineScore, deadlineReason = s.scoreDeadline(deadline)
	}

	switch {
	case deadlineScore > keywordScore:
		return ScoreComponent{
			Score:      clampInt(deadlineScore, 0, 25),
			Max:        25,
			Reason:     deadlineReason,
			Confidence: 0.9,
		}, nil
	case keywordScore > 0:
		return ScoreComponent{
			Score:      clampInt(keywordScore, 0, 25),
			Max:        25,
			Reason:     keywordReason,
			Confidence: 0.8,
		}, nil
	default:
		return ScoreComponent{
			Score:      0,
			Max:        25,
			Reason:     "No urgency indicators detected",
			Confidence: 0.7,
		}, nil
	}
}

// keywordUrgency returns the highest-ranked matching urgency keyword
func (s *DeadlineScorer) keywordUrgency(text string) (int, string) {
	best := 0
	matched := ""
	for _, k := range urgencyKeywords {
		if strings.Contains(text, k.keyword) && k.score > best {
			best = k.score
			matched = k.keyword
		}
	}
	if best > 0 {
		return clampInt(best, 0, 25), fmt.Sprintf("Urgency keyword detected: '%s'", matched)
	}
	return 0, ""
}

// scoreDeadline maps days-until-deadline to points
func (s *DeadlineScorer) scoreDeadline(deadline time.Time) (int, string) {
	days := daysUntil(s.now(), deadline)
	switch {
	case days < 0:
		return 25, fmt.Sprintf("OVERDUE by %d days", -days)
	case days == 0:
		return 23, "Due TODAY"
	case days == 1:
		return 20, "Due TOMORROW"
	case days <= 3:
		return 16, fmt.Sprintf("Due in %d days", days)
	case days <= 7:
		return 12, fmt.Sprintf("Due in %d days (this week)", days)
	case days <= 14:
		return 8, fmt.Sprintf("Due in %d days", days)
	default:
		return 4, fmt.Sprintf("Due in %d days", days)
	}
}

// ExtractDeadline resolves the first deadline mentioned in the text.
// Relative expressions are tried before explicit dates.
func (s *DeadlineScorer) ExtractDeadline(text string) (time.Time, bool) {
	now := s.now()

	if reByTomorrow.MatchString(text) {
		return now.AddDate(0, 0, 1), true
	}
	if reByToday.MatchString(text) {
		return now, true
	}
	if m := reWithinHours.FindStringSubmatch(text); m != nil {
		if hours, err := strconv.Atoi(m[1]); err == nil {
			return now.Add(time.Duration(hours) * time.Hour), true
		}
	}
	if m := reWithinDays.FindStringSubmatch(text); m != nil {
		if days, err := strconv.Atoi(m[1]); err == nil {
			return now.AddDate(0, 0, days), true
		}
	}
	if m := reByWeekday.FindStringSubmatch(text); m != nil {
		return nextWeekday(now, weekdayIndex[strings.ToLower(m[1])]), true
	}
	if reNextWeek.MatchString(text) {
		return now.AddDate(0, 0, 7), true
	}
	if reThisWeek.MatchString(text) {
		return now.AddDate(0, 0, 5), true
	}

	for _, pattern := range explicitDatePatterns {
		m := pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if parsed, ok := s.parseExplicitDate(m[1], now); ok {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// parseExplicitDate parses a date mention with a future bias. Dates that
// resolve earlier than yesterday are rejected as noise.
func (s *DeadlineScorer) parseExplicitDate(raw string, now time.Time) (time.Time, bool) {
	cleaned := reOrdinal.ReplaceAllString(strings.TrimSpace(raw), "$1")
	hasYear := reExplicitYear.MatchString(cleaned)

	parsed, err := dateparse.ParseAny(cleaned)
	if err != nil && !hasYear {
		parsed, err = dateparse.ParseAny(cleaned + " " + strconv.Itoa(now.Year()))
	}
	if err != nil {
		if s.logger != nil {
			s.logger.Debug("Unparseable date mention", zap.String("raw", raw))
		}
		return time.Time{}, false
	}

	yesterday := now.AddDate(0, 0, -1)
	if parsed.Before(yesterday) && !hasYear {
		// No explicit year: assume the sender meant the next occurrence.
		parsed = parsed.AddDate(1, 0, 0)
	}
	if parsed.Before(yesterday) {
		return time.Time{}, false
	}
	return parsed, true
}

// nextWeekday returns the next occurrence of the weekday, at least one day out
func nextWeekday(now time.Time, target time.Weekday) time.Time {
	ahead := int(target) - int(now.Weekday())
	if ahead <= 0 {
		ahead += 7
	}
	return now.AddDate(0, 0, ahead)
}

// daysUntil returns whole days between now and the deadline, flooring toward
// negative infinity so a deadline earlier today counts as overdue by zero days
func daysUntil(now, deadline time.Time) int {
	return int(math.Floor(deadline.Sub(now).Hours() / 24))
}
