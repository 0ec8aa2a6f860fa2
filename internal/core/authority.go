package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// domainPatterns are substrings of a sender's domain that suggest a
// particular authority class
var domainPatterns = map[AuthorityClass][]string{
	AuthorityClient:    {"client", "customer", "partner"},
	AuthorityRecruiter: {"recruit", "talent", "hiring", "hr"},
}

// institutionalDomainSuffixes mark generic external organizations
var institutionalDomainSuffixes = []string{".edu", ".gov", ".org"}

// titlePatterns are job-title keywords scanned in the sender name and signature
var titlePatterns = map[AuthorityClass][]string{
	AuthorityVIP:     {"ceo", "cto", "cfo", "coo", "president", "founder", "owner", "director", "vp", "vice president"},
	AuthorityManager: {"manager", "lead", "head", "supervisor", "chief"},
}

// signatureMarkers open a closing-salutation block in the email body
var signatureMarkers = []string{"--", "regards", "best,", "thanks,", "sincerely", "cheers"}

// AuthorityScorer scores the sender's importance (max 25 points). A known
// contact wins outright; otherwise weighted heuristic and AI candidates are
// combined.
type AuthorityScorer struct {
	contacts ContactDirectory
	language LanguageService
	logger   *zap.Logger
}

// NewAuthorityScorer creates a new authority scorer. Both collaborators are
// optional; nil disables the corresponding signal.
func NewAuthorityScorer(contacts ContactDirectory, language LanguageService, logger *zap.Logger) *AuthorityScorer {
	return &AuthorityScorer{
		contacts: contacts,
		language: language,
		logger:   logger,
	}
}

// authorityCandidate is one weighted guess at the sender's class
type authorityCandidate struct {
	class      AuthorityClass
	confidence float64
	source     string
}

// CalculateScore computes the sender authority component
func (s *AuthorityScorer) CalculateScore(ctx context.Context, email *Email) (ScoreComponent, error) {
	sender := strings.ToLower(strings.TrimSpace(email.From))

	// Known contacts short-circuit every heuristic.
	if s.contacts != nil {
		contact, err := s.contacts.Lookup(ctx, sender)
		switch {
		case err == nil:
			base := contact.Authority.BaseScore()
			boosted := clampInt(base+contact.PriorityBoost, 0, 25)
			name := contact.Name
			if name == "" {
				name = sender
			}
			return ScoreComponent{
				Score:      boosted,
				Max:        25,
				Reason:     fmt.Sprintf("Known %s contact: %s", contact.Authority, name),
				Confidence: 1.0,
			}, nil
		case errors.Is(err, ErrNotFound):
			// fall through to heuristics
		default:
			return ScoreComponent{}, fmt.Errorf("contact lookup failed: %w", err)
		}
	}

	signature := extractSignature(email.Body)

	var candidates []authorityCandidate
	if c, ok := s.checkDomainPatterns(domainOf(sender)); ok {
		candidates = append(candidates, c)
	}
	if c, ok := s.inferFromLanguageService(ctx, email.FromName, sender, signature); ok {
		candidates = append(candidates, c)
	}
	if c, ok := s.checkTitlePatterns(email.FromName, signature); ok {
		candidates = append(candidates, c)
	}

	display := email.FromName
	if display == "" {
		display = sender
	}

	if len(candidates) == 0 {
		return ScoreComponent{
			Score:      AuthorityUnknown.BaseScore(),
			Max:        25,
			Reason:     fmt.Sprintf("Unknown sender: %s", display),
			Confidence: 0.5,
		}, nil
	}

	// Rank by class base score first, confidence second. A weak non-unknown
	// candidate still outranks the unknown default.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].class.BaseScore() != candidates[j].class.BaseScore() {
			return candidates[i].class.BaseScore() > candidates[j].class.BaseScore()
		}
		return candidates[i].confidence > candidates[j].confidence
	})
	best := candidates[0]

	return ScoreComponent{
		Score:      best.class.BaseScore(),
		Max:        25,
		Reason:     fmt.Sprintf("%s detected via %s: %s", titleCase(string(best.class)), best.source, display),
		Confidence: best.confidence,
	}, nil
}

// checkDomainPatterns matches the sender's domain against keyword lists
func (s *AuthorityScorer) checkDomainPatterns(domain string) (authorityCandidate, bool) {
	if domain == "" {
		return authorityCandidate{}, false
	}
	for class, patterns := range domainPatterns {
		for _, p := range patterns {
			if strings.Contains(domain, p) {
				return authorityCandidate{class: class, confidence: 0.7, source: "domain pattern"}, true
			}
		}
	}
	for _, suffix := range institutionalDomainSuffixes {
		if strings.Contains(domain, suffix) {
			return authorityCandidate{class: AuthorityExternal, confidence: 0.6, source: "domain pattern"}, true
		}
	}
	return authorityCandidate{}, false
}

// inferFromLanguageService asks the optional language service for an
// authority guess. Failures and unknown results contribute no candidate.
func (s *AuthorityScorer) inferFromLanguageService(ctx context.Context, name, address, signature string) (authorityCandidate, bool) {
	if s.language == nil {
		return authorityCandidate{}, false
	}
	inference, err := s.language.InferAuthority(ctx, name, address, signature)
	if err != nil {
		if !errors.Is(err, ErrUnavailable) && s.logger != nil {
			s.logger.Debug("Authority inference failed", zap.Error(err), zap.String("sender", address))
		}
		return authorityCandidate{}, false
	}
	if inference == nil || inference.Class == AuthorityUnknown || !inference.Class.IsValid() {
		return authorityCandidate{}, false
	}
	conf := inference.Confidence
	if conf <= 0 || conf > 1 {
		conf = 0.7
	}
	return authorityCandidate{class: inference.Class, confidence: conf, source: "AI inference"}, true
}

// checkTitlePatterns scans the sender name and signature for job titles
func (s *AuthorityScorer) checkTitlePatterns(name, signature string) (authorityCandidate, bool) {
	text := strings.ToLower(name + " " + signature)
	for _, p := range titlePatterns[AuthorityVIP] {
		if strings.Contains(text, p) {
			return authorityCandidate{class: AuthorityVIP, confidence: 0.8, source: "title detection"}, true
		}
	}
	for _, p := range titlePatterns[AuthorityManager] {
		if strings.Contains(text, p) {
			return authorityCandidate{class: AuthorityManager, confidence: 0.75, source: "title detection"}, true
		}
	}
	return authorityCandidate{}, false
}

// extractSignature returns the closing block of the body. It scans for a
// salutation marker and takes everything from that line on; bodies longer
// than five lines fall back to the last five lines.
func extractSignature(body string) string {
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		trimmed := strings.ToLower(strings.TrimSpace(line))
		for _, marker := range signatureMarkers {
			if strings.HasPrefix(trimmed, marker) {
				return strings.Join(lines[i:], "\n")
			}
		}
	}
	if len(lines) > 5 {
		return strings.Join(lines[len(lines)-5:], "\n")
	}
	return ""
}

func domainOf(address string) string {
	if at := strings.LastIndex(address, "@"); at >= 0 && at+1 < len(address) {
		return strings.ToLower(address[at+1:])
	}
	return ""
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
