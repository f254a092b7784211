package parser

import (
	"regexp"
	"strings"
)

// RelevanceScorer calculates how likely a message is genuine chartering
// traffic, independent of how well extraction went. It counts domain
// indicator terms against spam/marketing indicators, with small bonuses for
// structural signals a brokerage email tends to carry.
type RelevanceScorer struct {
	domainTerms    *regexp.Regexp
	spamTerms      *regexp.Regexp
	largeNumber    *regexp.Regexp
	portLikeBigram *regexp.Regexp
	datePattern    *regexp.Regexp
	dayRatePattern *regexp.Regexp
}

// NewRelevanceScorer creates a relevance scorer with pre-compiled patterns
func NewRelevanceScorer() *RelevanceScorer {
	return &RelevanceScorer{
		domainTerms:    regexp.MustCompile(`(?i)\b(vessel|cargo|charter|fixture|laycan|freight|tonnage|deadweight|dwt|stowage|demurrage|despatch|loadport|discharge|panamax|supramax|handysize|capesize|geared|gearless|nor|eta|etd|owners?|charterers?|brokers?|cob|afmt)\b`),
		spamTerms:      regexp.MustCompile(`(?i)\b(unsubscribe|newsletter|webinar|discount|sale ends|limited time|click here|free trial|promo(?:tion)?|deal of|congratulations|winner|viagra|casino|invest now|crypto)\b`),
		largeNumber:    regexp.MustCompile(`\b\d{1,3}(?:[.,]\d{3})+\b|\b\d{4,6}\b`),
		portLikeBigram: regexp.MustCompile(`\b[A-Z][a-z]{2,}\s+[A-Z][a-z]{2,}\b`),
		datePattern:    regexp.MustCompile(`(?i)\b\d{1,2}[-/]\d{1,2}\b|\b\d{1,2}\s+(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)`),
		dayRatePattern: regexp.MustCompile(`(?i)\b(?:usd|\$)\s*\d[\d.,]*\s*(?:/|per\s+)(?:day|pdpr|mt)\b|\b\d[\d.,]*\s*usd\b`),
	}
}

// Score returns a 0.0-1.0 shipping-content score for the message text
func (r *RelevanceScorer) Score(text string) float64 {
	score := 0.0

	domainMatches := r.domainTerms.FindAllString(text, -1)
	score += float64(len(uniqueLower(domainMatches))) * 0.12

	spamMatches := r.spamTerms.FindAllString(text, -1)
	score -= float64(len(spamMatches)) * 0.15

	if r.largeNumber.MatchString(text) {
		score += 0.1
	}
	if r.portLikeBigram.MatchString(text) {
		score += 0.05
	}
	if r.datePattern.MatchString(text) {
		score += 0.05
	}
	if r.dayRatePattern.MatchString(text) {
		score += 0.1
	}

	if score > 1.0 {
		score = 1.0
	} else if score < 0.0 {
		score = 0.0
	}

	return score
}

// IsRelevant checks the message against the relevance threshold used by the
// extraction-quality gate
func (r *RelevanceScorer) IsRelevant(text string) bool {
	return r.Score(text) >= RelevanceThreshold
}

func uniqueLower(matches []string) []string {
	seen := make(map[string]bool)
	var unique []string
	for _, m := range matches {
		key := strings.ToLower(m)
		if !seen[key] {
			seen[key] = true
			unique = append(unique, key)
		}
	}
	return unique
}
