package parser

import (
	"strings"
	"testing"
)

func TestNormalizeStripsMarkup(t *testing.T) {
	n := NewNormalizer(nil)

	result := n.Normalize("Firm cargo", "<p>50,000 metric tons of <b>wheat</b> &amp; barley</p>")

	if strings.Contains(result.Text, "<") || strings.Contains(result.Text, ">") {
		t.Errorf("expected markup stripped, got %q", result.Text)
	}
	if !strings.Contains(result.Text, "wheat & barley") {
		t.Errorf("expected entities decoded, got %q", result.Text)
	}
}

func TestNormalizeExpandsAbbreviations(t *testing.T) {
	n := NewNormalizer(nil)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"dwt", "45000 dwt vessel", "deadweight tonnage"},
		{"abt", "abt 50000 tons", "about"},
		{"wog", "all details w.o.g.", "without guarantee"},
		{"disch", "disch Hamburg", "discharge"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := n.Normalize("", tt.body)
			if !strings.Contains(result.Text, tt.want) {
				t.Errorf("expected %q in normalized text, got %q", tt.want, result.Text)
			}
		})
	}
}

func TestNormalizeCollapsesWhitespace(t *testing.T) {
	n := NewNormalizer(nil)

	result := n.Normalize("Subject", "line one\n\n\n   line    two\t\tend")

	if strings.Contains(result.Text, "  ") {
		t.Errorf("expected single spaces, got %q", result.Text)
	}
}

func TestExtractNumbers(t *testing.T) {
	n := NewNormalizer(nil)

	result := n.Normalize("", "50,000 metric tons wheat, speed 14 knots")

	if len(result.Numbers) < 2 {
		t.Fatalf("expected at least 2 numbers, got %v", result.Numbers)
	}

	var found50k, foundSpeed bool
	for _, number := range result.Numbers {
		if number.Value == 50000 && strings.HasPrefix(number.Unit, "metric ton") {
			found50k = true
		}
		if number.Value == 14 && number.Unit == "knots" {
			foundSpeed = true
		}
	}
	if !found50k {
		t.Errorf("expected 50000 with metric ton unit, got %v", result.Numbers)
	}
	if !foundSpeed {
		t.Errorf("expected 14 knots, got %v", result.Numbers)
	}
}

func TestExtractPortCandidates(t *testing.T) {
	n := NewNormalizer([]string{"Rotterdam", "Hamburg", "Singapore"})

	result := n.Normalize("", "Loading ex Rotterdam, discharge Hamburg, vessel now passing Gibraltar")

	wantGazetteer := map[string]bool{"Rotterdam": false, "Hamburg": false}
	for _, candidate := range result.PortCandidates {
		if _, ok := wantGazetteer[candidate]; ok {
			wantGazetteer[candidate] = true
		}
	}
	for port, found := range wantGazetteer {
		if !found {
			t.Errorf("expected gazetteer port %q in candidates %v", port, result.PortCandidates)
		}
	}
}

func TestExtractVesselNames(t *testing.T) {
	n := NewNormalizer(nil)

	result := n.Normalize("", "MV Baltic Wind open at Singapore, also M/V Ocean Star available")

	if len(result.VesselNames) != 2 {
		t.Fatalf("expected 2 vessel names, got %v", result.VesselNames)
	}
	if result.VesselNames[0] != "Baltic Wind" {
		t.Errorf("expected 'Baltic Wind', got %q", result.VesselNames[0])
	}
	if result.VesselNames[1] != "Ocean Star" {
		t.Errorf("expected 'Ocean Star', got %q", result.VesselNames[1])
	}
}

func TestTruncateSignature(t *testing.T) {
	n := NewNormalizer(nil)

	filler := strings.Repeat("cargo details and more commercial terms here. ", 10)
	body := filler + "\nBest regards\nJohn Smith\nAcme Chartering\n+44 20 1234 5678"

	result := n.Normalize("", body)

	if strings.Contains(result.Text, "Acme Chartering") {
		t.Errorf("expected signature dropped, got %q", result.Text)
	}
	if !strings.Contains(result.Text, "commercial terms") {
		t.Errorf("expected body retained, got %q", result.Text)
	}
}

func TestTruncateSignatureKeepsShortMessages(t *testing.T) {
	n := NewNormalizer(nil)

	// A leading courteous line must not empty the whole message
	result := n.Normalize("", "Thanks for the offer, we will revert with our cargo shortly")

	if !strings.Contains(result.Text, "revert") {
		t.Errorf("expected short message kept, got %q", result.Text)
	}
}

func TestEstimateConfidence(t *testing.T) {
	n := NewNormalizer([]string{"Rotterdam"})

	sparse := n.Normalize("", "hello there")
	rich := n.Normalize("", "50,000 metric tons wheat ex Rotterdam laycan 10/10-20/10")

	if sparse.Confidence != 0.5 {
		t.Errorf("expected base confidence 0.5 for sparse text, got %v", sparse.Confidence)
	}
	if rich.Confidence <= sparse.Confidence {
		t.Errorf("expected rich text confidence above %v, got %v", sparse.Confidence, rich.Confidence)
	}
	if rich.Confidence > 1.0 {
		t.Errorf("confidence must be capped at 1.0, got %v", rich.Confidence)
	}
}

func TestNormalizeMalformedInput(t *testing.T) {
	n := NewNormalizer(nil)

	// Malformed input yields best-effort output, never a panic
	inputs := []struct {
		name    string
		subject string
		body    string
	}{
		{"empty", "", ""},
		{"unclosed tag", "", "<div class='x"},
		{"only entities", "", "&amp;&lt;&gt;"},
		{"binary-ish", "", "\x00\x01\x02"},
	}

	for _, tt := range inputs {
		t.Run(tt.name, func(t *testing.T) {
			result := n.Normalize(tt.subject, tt.body)
			if result == nil {
				t.Fatal("expected non-nil result")
			}
			if result.Confidence < 0 || result.Confidence > 1 {
				t.Errorf("confidence out of range: %v", result.Confidence)
			}
		})
	}
}
