package parser

import (
	"strconv"
	"time"
)

// Candidate kinds
const (
	KindCargo  = "CARGO"
	KindVessel = "VESSEL"
)

// Candidate is a partially-populated record extracted from one message. All
// extracted fields are pointers so downstream consumers can tell "absent"
// from "zero".
type Candidate struct {
	Kind string `json:"kind"`

	// Cargo-shaped fields
	Commodity         *string    `json:"commodity,omitempty"`
	Quantity          *float64   `json:"quantity,omitempty"`
	LoadPort          *string    `json:"load_port,omitempty"`
	DischargePort     *string    `json:"discharge_port,omitempty"`
	StowageFactor     *float64   `json:"stowage_factor,omitempty"`
	StowageFactorUnit *string    `json:"stowage_factor_unit,omitempty"`
	BrokenStowagePct  *float64   `json:"broken_stowage_pct,omitempty"`
	Requirements      []string   `json:"requirements,omitempty"`

	// Vessel-shaped fields
	VesselName    *string  `json:"vessel_name,omitempty"`
	DWT           *float64 `json:"dwt,omitempty"`
	GrainCapacity *float64 `json:"grain_capacity,omitempty"`
	BaleCapacity  *float64 `json:"bale_capacity,omitempty"`
	SpeedKnots    *float64 `json:"speed_knots,omitempty"`
	CurrentPort   *string  `json:"current_port,omitempty"`
	Features      []string `json:"features,omitempty"`

	// Shared: laycan / availability window
	LaycanFrom  *time.Time `json:"laycan_from,omitempty"`
	LaycanUntil *time.Time `json:"laycan_until,omitempty"`

	MatchedPatterns []string `json:"matched_patterns"`
	Confidence      float64  `json:"confidence"`

	// referenceYear anchors DD-MM laycan parsing
	referenceYear int
}

// setLaycan parses a DD-MM .. DD-MM window. An end date earlier in the year
// than the start is taken as a year rollover; a still-inverted window is
// treated as unset rather than an error.
func (c *Candidate) setLaycan(fromDay, fromMonth, toDay, toMonth string) bool {
	if c.LaycanFrom != nil || c.LaycanUntil != nil {
		return false
	}

	year := c.referenceYear
	if year == 0 {
		year = time.Now().UTC().Year()
	}

	from, ok := makeDate(year, fromMonth, fromDay)
	if !ok {
		return false
	}
	until, ok := makeDate(year, toMonth, toDay)
	if !ok {
		return false
	}

	if until.Before(from) {
		until = until.AddDate(1, 0, 0)
	}
	if until.Before(from) {
		return false
	}

	c.LaycanFrom = &from
	c.LaycanUntil = &until
	return true
}

func makeDate(year int, month, day string) (time.Time, bool) {
	m, err := strconv.Atoi(month)
	if err != nil || m < 1 || m > 12 {
		return time.Time{}, false
	}
	d, err := strconv.Atoi(day)
	if err != nil || d < 1 || d > 31 {
		return time.Time{}, false
	}
	date := time.Date(year, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if date.Day() != d {
		// Day overflowed the month (e.g. 31-02)
		return time.Time{}, false
	}
	return date, true
}

// FieldExtractor runs the ordered pattern tables over normalized text
type FieldExtractor struct {
	cargoRules  []FieldRule
	vesselRules []FieldRule

	// ReferenceYear anchors laycan year inference; zero means current year
	ReferenceYear int
}

// NewFieldExtractor creates an extractor with the built-in rule tables
func NewFieldExtractor() *FieldExtractor {
	return &FieldExtractor{
		cargoRules:  cargoRules(),
		vesselRules: vesselRules(),
	}
}

// Extract runs the rule table for the given kind over the normalized text and
// returns the candidate record, the named patterns that fired, and a
// confidence derived from critical-field coverage.
func (e *FieldExtractor) Extract(normalized *NormalizedText, kind string) *Candidate {
	candidate := &Candidate{
		Kind:          kind,
		referenceYear: e.ReferenceYear,
	}

	rules := e.cargoRules
	if kind == KindVessel {
		rules = e.vesselRules
	}

	for _, rule := range rules {
		matches := rule.Regex.FindStringSubmatch(normalized.Text)
		if matches == nil {
			continue
		}
		if rule.Apply(candidate, matches) {
			candidate.MatchedPatterns = append(candidate.MatchedPatterns, rule.Name)
		}
	}

	// A vessel name detected by the normalizer backstops the pattern table
	if kind == KindVessel && candidate.VesselName == nil && len(normalized.VesselNames) > 0 {
		name := normalized.VesselNames[0]
		candidate.VesselName = &name
	}

	critical, total := candidate.criticalFieldCoverage()
	candidate.Confidence = normalized.Confidence * float64(critical) / float64(total)

	return candidate
}

// criticalFieldCoverage reports how many of the kind's critical fields are set
func (c *Candidate) criticalFieldCoverage() (present, total int) {
	var fields []bool
	if c.Kind == KindVessel {
		fields = []bool{
			c.VesselName != nil,
			c.DWT != nil,
			c.CurrentPort != nil,
			c.LaycanFrom != nil && c.LaycanUntil != nil,
		}
	} else {
		fields = []bool{
			c.Commodity != nil,
			c.Quantity != nil,
			c.LoadPort != nil,
			c.DischargePort != nil,
			c.LaycanFrom != nil && c.LaycanUntil != nil,
		}
	}

	for _, set := range fields {
		if set {
			present++
		}
	}
	return present, len(fields)
}

// importantFieldCount reports how many of the kind's secondary fields are set
func (c *Candidate) importantFieldCount() int {
	var fields []bool
	if c.Kind == KindVessel {
		fields = []bool{
			c.GrainCapacity != nil || c.BaleCapacity != nil,
			c.SpeedKnots != nil,
			len(c.Features) > 0,
		}
	} else {
		fields = []bool{
			c.StowageFactor != nil,
			c.BrokenStowagePct != nil,
			len(c.Requirements) > 0,
		}
	}

	count := 0
	for _, set := range fields {
		if set {
			count++
		}
	}
	return count
}

// HasCommodity reports whether the commodity field is populated
func (c *Candidate) HasCommodity() bool { return c.Commodity != nil }

// HasQuantity reports whether the quantity (or DWT, for vessels) is populated
func (c *Candidate) HasQuantity() bool {
	if c.Kind == KindVessel {
		return c.DWT != nil
	}
	return c.Quantity != nil
}
