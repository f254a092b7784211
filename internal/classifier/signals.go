package classifier

import "regexp"

const (
	signalBoost     = 1.5
	signalBoostCap  = 0.95
	signalDampening = 0.7
)

// strongSignals holds cue patterns that are near-unambiguous for one class.
// When exactly one class's cues fire, its probability is boosted and the
// others dampened before renormalizing. When zero or several fire, the
// vector-space probabilities stand as computed.
type strongSignals struct {
	vessel []*regexp.Regexp
	cargo  []*regexp.Regexp
	other  []*regexp.Regexp
}

func newStrongSignals() *strongSignals {
	return &strongSignals{
		vessel: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bm/?v\.?\s+[a-z]`),
			regexp.MustCompile(`(?i)\b\d[\d,\.]*\s*(?:mt\s+)?dwt\b`),
			regexp.MustCompile(`(?i)\bopen\s+(?:at\s+)?[a-z]{3,}`),
			regexp.MustCompile(`(?i)\bvessel\s+(?:available|open|position)\b`),
		},
		cargo: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b\d[\d,\.]*\s*(?:mt|mts|tons?|tonnes?)\s+(?:of\s+)?[a-z]`),
			regexp.MustCompile(`(?i)\bcargo\s+(?:of|available|enquiry)\b`),
			regexp.MustCompile(`(?i)\blaycan\b`),
			regexp.MustCompile(`(?i)\bstowage\s+factor\b`),
		},
		other: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bunsubscribe\b`),
			regexp.MustCompile(`(?i)\bnewsletter\b`),
			regexp.MustCompile(`(?i)\bwebinar\b`),
			regexp.MustCompile(`(?i)\binvoice\s+(?:attached|due)\b`),
		},
	}
}

func anyMatch(patterns []*regexp.Regexp, text string) bool {
	for _, pattern := range patterns {
		if pattern.MatchString(text) {
			return true
		}
	}
	return false
}

// adjust applies the strong-signal boost in place and returns the label whose
// signal fired, or "" when no adjustment was made.
func (s *strongSignals) adjust(text string, probabilities map[string]float64) string {
	fired := make([]string, 0, 3)
	if anyMatch(s.vessel, text) {
		fired = append(fired, LabelVessel)
	}
	if anyMatch(s.cargo, text) {
		fired = append(fired, LabelCargo)
	}
	if anyMatch(s.other, text) {
		fired = append(fired, LabelOther)
	}
	if len(fired) != 1 {
		return ""
	}

	winner := fired[0]
	boosted := probabilities[winner] * signalBoost
	if boosted > signalBoostCap {
		boosted = signalBoostCap
	}
	probabilities[winner] = boosted
	for _, label := range Labels {
		if label != winner {
			probabilities[label] *= signalDampening
		}
	}

	total := 0.0
	for _, label := range Labels {
		total += probabilities[label]
	}
	if total > 0 {
		for _, label := range Labels {
			probabilities[label] /= total
		}
	}
	return winner
}
