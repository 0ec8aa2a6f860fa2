package core

import (
	"time"
)

// Email represents an inbound email message to be scored
type Email struct {
	ID             string
	From           string
	FromName       string
	To             []string
	Cc             []string
	Subject        string
	Body           string
	Timestamp      time.Time
	HasAttachments bool
	Headers        map[string][]string
}

// AuthorityClass is the coarse importance category assigned to a sender
type AuthorityClass string

const (
	AuthorityVIP       AuthorityClass = "vip"
	AuthorityManager   AuthorityClass = "manager"
	AuthorityClient    AuthorityClass = "client"
	AuthorityRecruiter AuthorityClass = "recruiter"
	AuthorityColleague AuthorityClass = "colleague"
	AuthorityExternal  AuthorityClass = "external"
	AuthorityUnknown   AuthorityClass = "unknown"
)

// authorityBaseScores maps each authority class to its base score out of 25
var authorityBaseScores = map[AuthorityClass]int{
	AuthorityVIP:       25,
	AuthorityManager:   22,
	AuthorityClient:    20,
	AuthorityRecruiter: 15,
	AuthorityColleague: 12,
	AuthorityExternal:  8,
	AuthorityUnknown:   5,
}

// BaseScore returns the base authority score for the class (out of 25).
// Unrecognized classes fall back to the unknown score.
func (a AuthorityClass) BaseScore() int {
	if s, ok := authorityBaseScores[a]; ok {
		return s
	}
	return authorityBaseScores[AuthorityUnknown]
}

// IsValid reports whether the class is one of the known authority levels
func (a AuthorityClass) IsValid() bool {
	_, ok := authorityBaseScores[a]
	return ok
}

// ScoreComponent is a single bounded signal contribution to the total score
type ScoreComponent struct {
	Score      int
	Max        int
	Reason     string
	Confidence float64
}

// ScoreBreakdown holds the five signal components. The component maxima
// (25+25+20+15+15) always sum to 100.
type ScoreBreakdown struct {
	Authority ScoreComponent
	Deadline  ScoreComponent
	Tone      ScoreComponent
	History   ScoreComponent
	Calendar  ScoreComponent
}

// Sum returns the sum of the component scores before clamping
func (b ScoreBreakdown) Sum() int {
	return b.Authority.Score + b.Deadline.Score + b.Tone.Score + b.History.Score + b.Calendar.Score
}

// PriorityScore is the complete scoring result for one email
type PriorityScore struct {
	EmailID    string
	Score      int
	Label      string
	Color      string
	Badge      string
	Breakdown  ScoreBreakdown
	Confidence float64
	ScoredAt   time.Time
}

// BatchResult is the result of scoring a batch of emails
type BatchResult struct {
	Scores      []*PriorityScore
	TotalEmails int
	AvgScore    float64
}

// Contact is a known sender with a configured authority level
type Contact struct {
	Email         string
	Name          string
	Authority     AuthorityClass
	Domain        string
	PriorityBoost int
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ResponseHistoryRecord tracks how the user has responded to a sender over time
type ResponseHistoryRecord struct {
	SenderEmail        string
	EmailsReceived     int
	ResponsesSent      int
	TotalResponseHours float64
	AvgResponseHours   float64
	ResponseRate       float64
	LastEmailReceived  time.Time
	LastResponseSent   time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// ToneVector is an emotional tone profile, each dimension in [0,100]
type ToneVector struct {
	Urgency          int
	Stress           int
	Anger            int
	Excitement       int
	Formality        int
	OverallIntensity int
}

// Valid reports whether every dimension is within [0,100]. Vectors coming
// back from a language service are never trusted until they pass this check.
func (v ToneVector) Valid() bool {
	for _, d := range []int{v.Urgency, v.Stress, v.Anger, v.Excitement, v.Formality, v.OverallIntensity} {
		if d < 0 || d > 100 {
			return false
		}
	}
	return true
}

// Clamped returns a copy of the vector with every dimension clamped to [0,100]
func (v ToneVector) Clamped() ToneVector {
	return ToneVector{
		Urgency:          clampInt(v.Urgency, 0, 100),
		Stress:           clampInt(v.Stress, 0, 100),
		Anger:            clampInt(v.Anger, 0, 100),
		Excitement:       clampInt(v.Excitement, 0, 100),
		Formality:        clampInt(v.Formality, 0, 100),
		OverallIntensity: clampInt(v.OverallIntensity, 0, 100),
	}
}

// AuthorityInference is a language-service guess at a sender's authority level
type AuthorityInference struct {
	Class      AuthorityClass
	Confidence float64
	Title      string
}

func clampInt(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
