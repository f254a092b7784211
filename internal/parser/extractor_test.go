package parser

import (
	"testing"
	"time"
)

func testExtract(t *testing.T, kind, subject, body string) *Candidate {
	t.Helper()
	normalizer := NewNormalizer([]string{"Rotterdam", "Hamburg", "Singapore"})
	extractor := NewFieldExtractor()
	extractor.ReferenceYear = 2026

	return extractor.Extract(normalizer.Normalize(subject, body), kind)
}

func TestExtractCargo(t *testing.T) {
	candidate := testExtract(t, KindCargo,
		"Firm cargo order",
		"We have 50,000 metric tons wheat ex Rotterdam to Hamburg. Laycan 10/10-20/10. SF 45 cuft. Vessel must be geared.")

	if candidate.Kind != KindCargo {
		t.Errorf("expected kind %q, got %q", KindCargo, candidate.Kind)
	}
	if candidate.Commodity == nil || *candidate.Commodity != "wheat" {
		t.Errorf("expected commodity wheat, got %v", candidate.Commodity)
	}
	if candidate.Quantity == nil || *candidate.Quantity != 50000 {
		t.Errorf("expected quantity 50000, got %v", candidate.Quantity)
	}
	if candidate.LoadPort == nil || *candidate.LoadPort != "Rotterdam" {
		t.Errorf("expected load port Rotterdam, got %v", candidate.LoadPort)
	}
	if candidate.DischargePort == nil || *candidate.DischargePort != "Hamburg" {
		t.Errorf("expected discharge port Hamburg, got %v", candidate.DischargePort)
	}
	if candidate.LaycanFrom == nil || candidate.LaycanUntil == nil {
		t.Fatalf("expected laycan window, got %v - %v", candidate.LaycanFrom, candidate.LaycanUntil)
	}
	wantFrom := time.Date(2026, 10, 10, 0, 0, 0, 0, time.UTC)
	wantUntil := time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)
	if !candidate.LaycanFrom.Equal(wantFrom) || !candidate.LaycanUntil.Equal(wantUntil) {
		t.Errorf("expected laycan %v - %v, got %v - %v", wantFrom, wantUntil, candidate.LaycanFrom, candidate.LaycanUntil)
	}
	if candidate.StowageFactor == nil || *candidate.StowageFactor != 45 {
		t.Errorf("expected stowage factor 45, got %v", candidate.StowageFactor)
	}
	if candidate.StowageFactorUnit == nil || *candidate.StowageFactorUnit != "cuft/mt" {
		t.Errorf("expected unit cuft/mt, got %v", candidate.StowageFactorUnit)
	}
	if len(candidate.Requirements) != 1 || candidate.Requirements[0] != "geared" {
		t.Errorf("expected geared requirement, got %v", candidate.Requirements)
	}
	if candidate.Confidence <= 0 {
		t.Errorf("expected positive confidence, got %v", candidate.Confidence)
	}
	if len(candidate.MatchedPatterns) == 0 {
		t.Error("expected matched patterns to be recorded")
	}
}

func TestExtractVessel(t *testing.T) {
	candidate := testExtract(t, KindVessel,
		"Open tonnage",
		"MV Baltic Wind, 45,000 dwt, grain/bale: 52,000/50,000 cuft, 14 knots, geared, open Singapore 05/11-15/11.")

	if candidate.VesselName == nil || *candidate.VesselName != "Baltic Wind" {
		t.Errorf("expected vessel name Baltic Wind, got %v", candidate.VesselName)
	}
	if candidate.DWT == nil || *candidate.DWT != 45000 {
		t.Errorf("expected DWT 45000, got %v", candidate.DWT)
	}
	if candidate.GrainCapacity == nil || *candidate.GrainCapacity != 52000/float64(cubicFeetPerCubicM) {
		t.Errorf("expected grain capacity %v, got %v", 52000/float64(cubicFeetPerCubicM), candidate.GrainCapacity)
	}
	if candidate.BaleCapacity == nil || *candidate.BaleCapacity != 50000/float64(cubicFeetPerCubicM) {
		t.Errorf("expected bale capacity %v, got %v", 50000/float64(cubicFeetPerCubicM), candidate.BaleCapacity)
	}
	if candidate.SpeedKnots == nil || *candidate.SpeedKnots != 14 {
		t.Errorf("expected speed 14, got %v", candidate.SpeedKnots)
	}
	if candidate.CurrentPort == nil || *candidate.CurrentPort != "Singapore" {
		t.Errorf("expected current port Singapore, got %v", candidate.CurrentPort)
	}
	if candidate.LaycanFrom == nil || !candidate.LaycanFrom.Equal(time.Date(2026, 11, 5, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected open window from 05 Nov, got %v", candidate.LaycanFrom)
	}
	if len(candidate.Features) == 0 || candidate.Features[0] != "geared" {
		t.Errorf("expected geared feature, got %v", candidate.Features)
	}
}

func TestExtractCapacityUnits(t *testing.T) {
	tests := []struct {
		name string
		body string
		want float64
	}{
		{
			name: "cubic feet converted to cubic meters",
			body: "MV Test Vessel, 60,000 dwt, grain 2,500,000 cuft, open Hamburg.",
			want: 2500000 / float64(cubicFeetPerCubicM),
		},
		{
			name: "cbft converted to cubic meters",
			body: "MV Test Vessel, 60,000 dwt, grain 2,500,000 cbft, open Hamburg.",
			want: 2500000 / float64(cubicFeetPerCubicM),
		},
		{
			name: "explicit cubic meters stored as is",
			body: "MV Test Vessel, 60,000 dwt, grain 70,000 m3, open Hamburg.",
			want: 70000,
		},
		{
			name: "bare number taken as cubic meters",
			body: "MV Test Vessel, 60,000 dwt, grain capacity 70,000, open Hamburg.",
			want: 70000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidate := testExtract(t, KindVessel, "Open tonnage", tt.body)
			if candidate.GrainCapacity == nil || *candidate.GrainCapacity != tt.want {
				t.Errorf("expected grain capacity %v, got %v", tt.want, candidate.GrainCapacity)
			}
		})
	}
}

func TestExtractVesselLowercasePrefix(t *testing.T) {
	normalizer := NewNormalizer(nil)
	extractor := NewFieldExtractor()

	normalized := normalizer.Normalize("", "m/s Nordic Trader with 30,000 dwt available")
	candidate := extractor.Extract(normalized, KindVessel)

	if candidate.VesselName == nil || *candidate.VesselName != "Nordic Trader" {
		t.Errorf("expected vessel name Nordic Trader, got %v", candidate.VesselName)
	}
	if candidate.DWT == nil || *candidate.DWT != 30000 {
		t.Errorf("expected DWT 30000, got %v", candidate.DWT)
	}
}

func TestLaycanYearRollover(t *testing.T) {
	candidate := testExtract(t, KindCargo,
		"", "25,000 metric tons corn ex Rotterdam laycan 28/12-05/01")

	if candidate.LaycanFrom == nil || candidate.LaycanUntil == nil {
		t.Fatalf("expected laycan window, got %v - %v", candidate.LaycanFrom, candidate.LaycanUntil)
	}
	if candidate.LaycanFrom.Year() != 2026 || candidate.LaycanFrom.Month() != time.December {
		t.Errorf("expected start Dec 2026, got %v", candidate.LaycanFrom)
	}
	if candidate.LaycanUntil.Year() != 2027 || candidate.LaycanUntil.Month() != time.January {
		t.Errorf("expected end Jan 2027, got %v", candidate.LaycanUntil)
	}
}

func TestSetLaycanRejectsImpossibleDates(t *testing.T) {
	tests := []struct {
		name                               string
		fromDay, fromMonth, toDay, toMonth string
	}{
		{"month 13", "10", "13", "20", "13"},
		{"day 32", "32", "01", "05", "02"},
		{"day overflow for month", "31", "02", "05", "03"},
		{"garbage", "aa", "bb", "cc", "dd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Candidate{Kind: KindCargo, referenceYear: 2026}
			if c.setLaycan(tt.fromDay, tt.fromMonth, tt.toDay, tt.toMonth) {
				t.Errorf("expected rejection, got %v - %v", c.LaycanFrom, c.LaycanUntil)
			}
		})
	}
}

func TestSetLaycanDoesNotOverwrite(t *testing.T) {
	c := &Candidate{Kind: KindCargo, referenceYear: 2026}
	if !c.setLaycan("10", "10", "20", "10") {
		t.Fatal("expected first window to apply")
	}
	if c.setLaycan("01", "11", "05", "11") {
		t.Error("expected second window to be refused")
	}
	if c.LaycanFrom.Month() != time.October {
		t.Errorf("expected original window kept, got %v", c.LaycanFrom)
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		raw   string
		want  float64
		valid bool
	}{
		{"50,000", 50000, true},
		{"50.000", 50000, true},
		{"1,234,567", 1234567, true},
		{"12.5", 12.5, true},
		{"45000", 45000, true},
		{"", 0, false},
		{"abc", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := parseNumber(tt.raw)
			if ok != tt.valid {
				t.Fatalf("parseNumber(%q) valid = %v, want %v", tt.raw, ok, tt.valid)
			}
			if ok && got != tt.want {
				t.Errorf("parseNumber(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestQuantityPlausibilityBounds(t *testing.T) {
	c := &Candidate{Kind: KindCargo}
	if setQuantity(c, "5") {
		t.Error("expected quantity below plausibility floor to be rejected")
	}
	if setQuantity(c, "900,000") {
		t.Error("expected quantity above plausibility ceiling to be rejected")
	}
	if !setQuantity(c, "50,000") {
		t.Error("expected plausible quantity to be accepted")
	}
}

func TestNormalizeCommodity(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"wheat", "wheat"},
		{"steel coils", "steel coils"},
		{"the cargo", ""},
		{"metric tons", ""},
		{"Ready Wheat", "wheat"},
	}

	for _, tt := range tests {
		if got := normalizeCommodity(tt.raw); got != tt.want {
			t.Errorf("normalizeCommodity(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
