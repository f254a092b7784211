package parser

import (
	"regexp"
	"strings"

	"fixture-matching/internal/database"
)

// NormalizedText is the cleaned message plus the coarse signals detected in it
type NormalizedText struct {
	Text           string   `json:"text"`
	Numbers        []Number `json:"numbers"`
	PortCandidates []string `json:"port_candidates"`
	Dates          []string `json:"dates"`
	VesselNames    []string `json:"vessel_names"`
	Confidence     float64  `json:"confidence"`
}

// Number is a numeric quantity with the unit that followed it, if any
type Number struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// Normalizer cleans raw brokerage email text and extracts coarse signals.
// All methods are pure; malformed input always yields best-effort output.
type Normalizer struct {
	knownPorts []string

	markupTags     *regexp.Regexp
	whitespace     *regexp.Regexp
	signatureLine  *regexp.Regexp
	numberWithUnit *regexp.Regexp
	datePattern    *regexp.Regexp
	portPrefix     *regexp.Regexp
	vesselPrefix   *regexp.Regexp
}

// shipping abbreviations expanded during normalization
var abbreviations = []struct {
	pattern     *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`(?i)\bdwt\b`), "deadweight tonnage"},
	{regexp.MustCompile(`(?i)\bdwcc\b`), "deadweight cargo capacity"},
	{regexp.MustCompile(`(?i)\babt\b`), "about"},
	{regexp.MustCompile(`(?i)\bmtons\b`), "metric tons"},
	{regexp.MustCompile(`(?i)\bcbft\b`), "cuft"},
	{regexp.MustCompile(`(?i)\bcbm\b`), "m3"},
	{regexp.MustCompile(`(?i)\bw\.?o\.?g\.?\b`), "without guarantee"},
	{regexp.MustCompile(`(?i)\bfyg\b`), "for your guidance"},
	{regexp.MustCompile(`(?i)\bpls\b`), "please"},
	{regexp.MustCompile(`(?i)\bcld\b`), "could"},
	{regexp.MustCompile(`(?i)\bshldr?\b`), "should"},
	{regexp.MustCompile(`(?i)\bttl\b`), "total"},
	{regexp.MustCompile(`(?i)\bl/?c\b`), "laycan"},
	{regexp.MustCompile(`(?i)\bdisch\b`), "discharge"},
}

// NewNormalizer creates a normalizer using the given known-port names for
// gazetteer-based port candidate detection
func NewNormalizer(knownPorts []string) *Normalizer {
	return &Normalizer{
		knownPorts:     knownPorts,
		markupTags:     regexp.MustCompile(`<[^>]*>`),
		whitespace:     regexp.MustCompile(`\s+`),
		signatureLine:  regexp.MustCompile(`(?i)^\s*(best\s+)?(regards|sincerely|thanks|thank you|brgds|b\.?rgds|cheers)\b`),
		numberWithUnit: regexp.MustCompile(`(?i)\b(\d{1,3}(?:[.,]\d{3})+|\d+(?:\.\d+)?)\s*(metric tons?|mt\b|tons?\b|cuft\b|m3\b|knots?\b|kn\b|%)?`),
		datePattern:    regexp.MustCompile(`(?i)\b(\d{1,2}[-/]\d{1,2}(?:[-/]\d{2,4})?|\d{1,2}\s*(?:-|to|/)\s*\d{1,2}\s+(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*|(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\s+\d{1,2})\b`),
		portPrefix:     regexp.MustCompile(`\b(?i:from|to|ex|at|off|open)\s+([A-Z][a-zA-Z]+(?:\s+[A-Z][a-zA-Z]+)?)`),
		vesselPrefix:   regexp.MustCompile(`\b(?i:mv|m/v|ms|m/s|mt|m/t|ss)\.?\s+([A-Z][a-zA-Z0-9]+(?:\s+[A-Z][a-zA-Z0-9]+){0,2})`),
	}
}

// NewDefaultNormalizer creates a normalizer seeded with the built-in gazetteer
func NewDefaultNormalizer() *Normalizer {
	ports := database.DefaultPorts()
	names := make([]string, 0, len(ports))
	for _, port := range ports {
		names = append(names, port.Name)
		names = append(names, port.AltNames...)
	}
	return NewNormalizer(names)
}

// Normalize cleans the raw subject+body text and extracts side-signals
func (n *Normalizer) Normalize(subject, body string) *NormalizedText {
	raw := strings.TrimSpace(subject + "\n" + body)

	cleaned := n.stripMarkup(raw)
	cleaned = n.truncateSignature(cleaned)
	cleaned = n.expandAbbreviations(cleaned)
	cleaned = strings.TrimSpace(n.whitespace.ReplaceAllString(cleaned, " "))

	result := &NormalizedText{
		Text:           cleaned,
		Numbers:        n.extractNumbers(cleaned),
		PortCandidates: n.extractPortCandidates(cleaned),
		Dates:          n.datePattern.FindAllString(cleaned, -1),
		VesselNames:    n.extractVesselNames(cleaned),
	}
	result.Confidence = n.estimateConfidence(result)

	return result
}

// stripMarkup removes HTML tags and decodes common entities
func (n *Normalizer) stripMarkup(text string) string {
	text = n.markupTags.ReplaceAllString(text, " ")

	entities := map[string]string{
		"&amp;":  "&",
		"&lt;":   "<",
		"&gt;":   ">",
		"&quot;": "\"",
		"&#39;":  "'",
		"&nbsp;": " ",
	}
	for entity, replacement := range entities {
		text = strings.ReplaceAll(text, entity, replacement)
	}

	return text
}

// truncateSignature drops everything from a signature line onward, but only
// when the signature appears past the midpoint of the text so that short
// courteous messages are not emptied out.
func (n *Normalizer) truncateSignature(text string) string {
	lines := strings.Split(text, "\n")
	midpoint := len(text) / 2

	offset := 0
	for i, line := range lines {
		if n.signatureLine.MatchString(line) && offset > midpoint {
			return strings.Join(lines[:i], "\n")
		}
		offset += len(line) + 1
	}

	return text
}

// expandAbbreviations rewrites known shipping shorthand into full terms
func (n *Normalizer) expandAbbreviations(text string) string {
	for _, abbr := range abbreviations {
		text = abbr.pattern.ReplaceAllString(text, abbr.replacement)
	}
	return text
}

// extractNumbers finds numeric quantities with trailing units
func (n *Normalizer) extractNumbers(text string) []Number {
	var numbers []Number
	for _, m := range n.numberWithUnit.FindAllStringSubmatch(text, -1) {
		value, ok := parseNumber(m[1])
		if !ok {
			continue
		}
		numbers = append(numbers, Number{
			Value: value,
			Unit:  strings.ToLower(strings.TrimSpace(m[2])),
		})
	}
	return numbers
}

// extractPortCandidates finds candidate port names via the gazetteer and via
// preposition cues ("from X", "to Y", "ex Z")
func (n *Normalizer) extractPortCandidates(text string) []string {
	seen := make(map[string]bool)
	var candidates []string

	lower := strings.ToLower(text)
	for _, port := range n.knownPorts {
		if strings.Contains(lower, strings.ToLower(port)) && !seen[strings.ToLower(port)] {
			seen[strings.ToLower(port)] = true
			candidates = append(candidates, port)
		}
	}

	for _, m := range n.portPrefix.FindAllStringSubmatch(text, -1) {
		name := strings.TrimSpace(m[1])
		key := strings.ToLower(name)
		if !seen[key] {
			seen[key] = true
			candidates = append(candidates, name)
		}
	}

	return candidates
}

// extractVesselNames finds names following known vessel-name prefixes
func (n *Normalizer) extractVesselNames(text string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, m := range n.vesselPrefix.FindAllStringSubmatch(text, -1) {
		name := strings.TrimSpace(m[1])
		key := strings.ToLower(name)
		if !seen[key] {
			seen[key] = true
			names = append(names, name)
		}
	}
	return names
}

// estimateConfidence derives a confidence figure from how many signal
// categories were found: base 0.5, bumped per category, capped at 1.0
func (n *Normalizer) estimateConfidence(result *NormalizedText) float64 {
	confidence := 0.5
	if len(result.Numbers) > 0 {
		confidence += 0.15
	}
	if len(result.PortCandidates) > 0 {
		confidence += 0.15
	}
	if len(result.Dates) > 0 {
		confidence += 0.1
	}
	if hasUnit(result.Numbers) {
		confidence += 0.1
	}
	if confidence > 1.0 {
		confidence = 1.0
	}
	return confidence
}

func hasUnit(numbers []Number) bool {
	for _, number := range numbers {
		if number.Unit != "" {
			return true
		}
	}
	return false
}
