package parser

// Extraction quality tiers
const (
	QualityExcellent    = "excellent"
	QualityGood         = "good"
	QualityPoor         = "poor"
	QualityInsufficient = "insufficient"
)

// Gate outcomes
const (
	DecisionPersist  = "persist"   // local extraction is trustworthy, store it
	DecisionFallback = "fallback"  // escalate to the costlier fallback extractor
	DecisionDiscard  = "discard"   // not worth persisting or escalating
)

// RelevanceThreshold is the shipping-content score below which a message is
// considered irrelevant and never escalated.
const RelevanceThreshold = 0.3

// GateResult explains the quality gate's verdict on one extraction
type GateResult struct {
	Decision       string  `json:"decision"`
	Quality        string  `json:"quality"`
	RelevanceScore float64 `json:"relevance_score"`
	Reason         string  `json:"reason"`
}

// QualityGate decides whether locally extracted fields are trustworthy enough
// to persist or whether the message warrants the costlier fallback extractor.
// It is a pure decision function and performs no I/O.
type QualityGate struct {
	relevance *RelevanceScorer
}

// NewQualityGate creates a gate with a fresh relevance scorer
func NewQualityGate() *QualityGate {
	return &QualityGate{relevance: NewRelevanceScorer()}
}

// Evaluate applies the gate policy to one candidate extraction
func (g *QualityGate) Evaluate(candidate *Candidate, rawText string) *GateResult {
	relevanceScore := g.relevance.Score(rawText)

	// Irrelevant content is never worth the fallback cost
	if relevanceScore < RelevanceThreshold {
		return &GateResult{
			Decision:       DecisionDiscard,
			Quality:        QualityInsufficient,
			RelevanceScore: relevanceScore,
			Reason:         "content does not look like chartering traffic",
		}
	}

	quality := classifyQuality(candidate)
	result := &GateResult{Quality: quality, RelevanceScore: relevanceScore}

	criticalPresent, criticalTotal := candidate.criticalFieldCoverage()
	missingCritical := criticalTotal - criticalPresent

	switch quality {
	case QualityExcellent:
		result.Decision = DecisionPersist
		result.Reason = "extraction complete and confident"

	case QualityGood:
		if !candidate.HasCommodity() || !candidate.HasQuantity() {
			result.Decision = DecisionFallback
			result.Reason = "good extraction but a headline field is missing"
		} else {
			result.Decision = DecisionPersist
			result.Reason = "extraction covers the headline fields"
		}

	case QualityPoor:
		if (candidate.HasCommodity() || candidate.HasQuantity()) && missingCritical <= 3 {
			result.Decision = DecisionFallback
			result.Reason = "partial extraction with a usable anchor field"
		} else {
			result.Decision = DecisionDiscard
			result.Reason = "too little extracted to anchor a fallback"
		}

	default: // insufficient
		if len(candidate.MatchedPatterns) > 0 {
			result.Decision = DecisionFallback
			result.Reason = "patterns fired but extraction is unusable locally"
		} else {
			result.Decision = DecisionDiscard
			result.Reason = "no pattern matched at all"
		}
	}

	return result
}

// classifyQuality buckets an extraction by confidence thresholds crossed with
// critical/important field counts. A tier requires both its confidence floor
// and its field counts; failing either drops to the next tier down.
func classifyQuality(candidate *Candidate) string {
	criticalPresent, _ := candidate.criticalFieldCoverage()
	importantPresent := candidate.importantFieldCount()

	switch {
	case candidate.Confidence >= 0.8 && criticalPresent >= 4 && importantPresent >= 2:
		return QualityExcellent
	case candidate.Confidence >= 0.6 && criticalPresent >= 3 && importantPresent >= 1:
		return QualityGood
	case candidate.Confidence >= 0.3 && criticalPresent >= 2:
		return QualityPoor
	default:
		return QualityInsufficient
	}
}
