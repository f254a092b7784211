package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// FieldRule binds a named pattern to a setter on the candidate record.
// Rules are evaluated in order; the first rule that sets a given field wins
// because every setter refuses to overwrite a populated field.
type FieldRule struct {
	Name  string
	Regex *regexp.Regexp
	Apply func(c *Candidate, m []string) bool
}

// Plausibility bounds. Parsed values outside these are discarded silently.
const (
	minPlausibleQuantity = 100
	maxPlausibleQuantity = 500000
	minPlausibleDWT      = 100
	maxPlausibleDWT      = 500000
)

// parseNumber parses a numeric string tolerating thousands separators
// (either comma or dot) and a decimal point.
func parseNumber(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}

	// "50,000" and "50.000" are both thousands-separated integers when the
	// separator groups exactly three digits.
	grouped := regexp.MustCompile(`^\d{1,3}([.,]\d{3})+$`)
	if grouped.MatchString(raw) {
		raw = strings.NewReplacer(",", "", ".", "").Replace(raw)
	} else {
		raw = strings.ReplaceAll(raw, ",", "")
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

func setQuantity(c *Candidate, raw string) bool {
	if c.Quantity != nil {
		return false
	}
	value, ok := parseNumber(raw)
	if !ok || value < minPlausibleQuantity || value > maxPlausibleQuantity {
		return false
	}
	c.Quantity = &value
	return true
}

func setDWT(c *Candidate, raw string) bool {
	if c.DWT != nil {
		return false
	}
	value, ok := parseNumber(raw)
	if !ok || value < minPlausibleDWT || value > maxPlausibleDWT {
		return false
	}
	c.DWT = &value
	return true
}

func setString(field **string, value string) bool {
	value = strings.TrimSpace(value)
	if *field != nil || value == "" {
		return false
	}
	*field = &value
	return true
}

// cubicFeetPerCubicM converts cubic-foot capacity quotes to the cubic
// meters the matching engine expects
const cubicFeetPerCubicM = 35.3147

// setCapacity stores a cubic capacity in cubic meters, converting when the
// message quotes cubic feet. A bare number is taken as cubic meters.
func setCapacity(field **float64, raw, unit string) bool {
	if *field != nil {
		return false
	}
	value, ok := parseNumber(raw)
	if !ok {
		return false
	}
	switch strings.ToLower(unit) {
	case "cuft", "cbft":
		value /= cubicFeetPerCubicM
	}
	*field = &value
	return true
}

func setFloat(field **float64, raw string) bool {
	if *field != nil {
		return false
	}
	value, ok := parseNumber(raw)
	if !ok {
		return false
	}
	*field = &value
	return true
}

func addTag(tags *[]string, tag string) bool {
	for _, existing := range *tags {
		if existing == tag {
			return false
		}
	}
	*tags = append(*tags, tag)
	return true
}

// cargoRules is the ordered extraction table for cargo-shaped messages
func cargoRules() []FieldRule {
	return []FieldRule{
		{
			Name:  "quantity_commodity",
			Regex: regexp.MustCompile(`(?i)\b(\d[\d.,]*)\s*(?:metric tons?|mts?\b|tons?\b)\s+(?:of\s+)?([a-z][a-z]+(?:\s+[a-z]+)?)`),
			Apply: func(c *Candidate, m []string) bool {
				applied := setQuantity(c, m[1])
				if commodity := normalizeCommodity(m[2]); commodity != "" {
					applied = setString(&c.Commodity, commodity) || applied
				}
				return applied
			},
		},
		{
			Name:  "cargo_of_commodity",
			Regex: regexp.MustCompile(`(?i)\bcargo\s+of\s+([a-z]+(?:\s+[a-z]+)?)`),
			Apply: func(c *Candidate, m []string) bool {
				if commodity := normalizeCommodity(m[1]); commodity != "" {
					return setString(&c.Commodity, commodity)
				}
				return false
			},
		},
		{
			Name:  "commodity_keyword",
			Regex: regexp.MustCompile(`(?i)\b(wheat|corn|maize|barley|soybeans?|rice|sugar|coal|petcoke|iron ore|bauxite|alumina|cement|clinker|fertilizer|urea|steel(?:\s+(?:pipes|coils|billets))?|scrap|grain|logs|salt)\b`),
			Apply: func(c *Candidate, m []string) bool {
				return setString(&c.Commodity, strings.ToLower(m[1]))
			},
		},
		{
			Name:  "bare_quantity_mt",
			Regex: regexp.MustCompile(`(?i)\b(\d[\d.,]*)\s*(?:metric tons?|mts?\b)`),
			Apply: func(c *Candidate, m []string) bool {
				return setQuantity(c, m[1])
			},
		},
		{
			Name:  "load_port",
			Regex: regexp.MustCompile(`\b(?i:ex|from|load(?:ing)?(?:\s+port)?)\s*:?\s+([A-Z][a-zA-Z]+(?:\s+[A-Z][a-zA-Z]+)?)`),
			Apply: func(c *Candidate, m []string) bool {
				return setString(&c.LoadPort, m[1])
			},
		},
		{
			Name:  "discharge_port",
			Regex: regexp.MustCompile(`\b(?i:to|discharge(?:\s+port)?|dest(?:ination)?)\s*:?\s+([A-Z][a-zA-Z]+(?:\s+[A-Z][a-zA-Z]+)?)`),
			Apply: func(c *Candidate, m []string) bool {
				return setString(&c.DischargePort, m[1])
			},
		},
		{
			Name:  "laycan_window",
			Regex: regexp.MustCompile(`(?i)(?:laycan|lay/?can|l/c)?\s*:?\s*\b(\d{1,2})[-/](\d{1,2})\s*(?:-|to|/)\s*(\d{1,2})[-/](\d{1,2})\b`),
			Apply: func(c *Candidate, m []string) bool {
				return c.setLaycan(m[1], m[2], m[3], m[4])
			},
		},
		{
			Name:  "stowage_factor",
			Regex: regexp.MustCompile(`(?i)\b(?:sf|stowage factor)\s*:?\s*(?:about\s+)?(\d[\d.,]*)\s*(cuft|cbft|m3|cbm)?`),
			Apply: func(c *Candidate, m []string) bool {
				if !setFloat(&c.StowageFactor, m[1]) {
					return false
				}
				unit := strings.ToLower(m[2])
				switch unit {
				case "m3", "cbm":
					unit = "m3/mt"
				default:
					unit = "cuft/mt"
				}
				c.StowageFactorUnit = &unit
				return true
			},
		},
		{
			Name:  "broken_stowage",
			Regex: regexp.MustCompile(`(?i)\b(?:broken stowage|bs)\s*:?\s*(\d{1,2}(?:\.\d+)?)\s*%`),
			Apply: func(c *Candidate, m []string) bool {
				return setFloat(&c.BrokenStowagePct, m[1])
			},
		},
		{
			Name:  "requires_geared",
			Regex: regexp.MustCompile(`(?i)\bgeared\b`),
			Apply: func(c *Candidate, m []string) bool {
				return addTag(&c.Requirements, "geared")
			},
		},
		{
			Name:  "requires_box_hold",
			Regex: regexp.MustCompile(`(?i)\bbox\s*-?\s*(?:shaped\s+)?holds?\b`),
			Apply: func(c *Candidate, m []string) bool {
				return addTag(&c.Requirements, "box hold")
			},
		},
		{
			Name:  "requires_open_hatch",
			Regex: regexp.MustCompile(`(?i)\bopen\s*-?\s*hatch\b`),
			Apply: func(c *Candidate, m []string) bool {
				return addTag(&c.Requirements, "open hatch")
			},
		},
	}
}

// vesselRules is the ordered extraction table for vessel-shaped messages
func vesselRules() []FieldRule {
	return []FieldRule{
		{
			Name:  "vessel_name",
			Regex: regexp.MustCompile(`\b(?i:mv|m/v|ms|m/s|mt|m/t|ss)\.?\s+([A-Z][a-zA-Z0-9]+(?:\s+[A-Z][a-zA-Z0-9]+){0,2})`),
			Apply: func(c *Candidate, m []string) bool {
				return setString(&c.VesselName, m[1])
			},
		},
		{
			Name:  "dwt_after_number",
			Regex: regexp.MustCompile(`(?i)\b(\d[\d.,]*)\s*(?:tons?\s+)?(?:deadweight(?:\s+tonnage)?|dwt)\b`),
			Apply: func(c *Candidate, m []string) bool {
				return setDWT(c, m[1])
			},
		},
		{
			Name:  "dwt_labeled",
			Regex: regexp.MustCompile(`(?i)\b(?:deadweight(?:\s+tonnage)?|dwt)\s*:?\s*(?:about\s+)?(\d[\d.,]*)`),
			Apply: func(c *Candidate, m []string) bool {
				return setDWT(c, m[1])
			},
		},
		{
			Name:  "grain_bale_pair",
			Regex: regexp.MustCompile(`(?i)\bgrain\s*/\s*bale\s*:?\s*(\d[\d.,]*)\s*/\s*(\d[\d.,]*)\s*(cuft|cbft|m3)?`),
			Apply: func(c *Candidate, m []string) bool {
				applied := setCapacity(&c.GrainCapacity, m[1], m[3])
				applied = setCapacity(&c.BaleCapacity, m[2], m[3]) || applied
				return applied
			},
		},
		{
			Name:  "grain_capacity",
			Regex: regexp.MustCompile(`(?i)\bgrain(?:\s+capacity)?\s*:?\s*(?:about\s+)?(\d[\d.,]*)\s*(cuft|cbft|m3)?`),
			Apply: func(c *Candidate, m []string) bool {
				return setCapacity(&c.GrainCapacity, m[1], m[2])
			},
		},
		{
			Name:  "bale_capacity",
			Regex: regexp.MustCompile(`(?i)\bbale(?:\s+capacity)?\s*:?\s*(?:about\s+)?(\d[\d.,]*)\s*(cuft|cbft|m3)?`),
			Apply: func(c *Candidate, m []string) bool {
				return setCapacity(&c.BaleCapacity, m[1], m[2])
			},
		},
		{
			Name:  "speed_knots",
			Regex: regexp.MustCompile(`(?i)\b(\d{1,2}(?:\.\d)?)\s*(?:knots?|kn)\b`),
			Apply: func(c *Candidate, m []string) bool {
				return setFloat(&c.SpeedKnots, m[1])
			},
		},
		{
			Name:  "open_port",
			Regex: regexp.MustCompile(`\b(?i:open)\s+(?i:at\s+|in\s+)?([A-Z][a-zA-Z]+(?:\s+[A-Z][a-zA-Z]+)?)`),
			Apply: func(c *Candidate, m []string) bool {
				return setString(&c.CurrentPort, m[1])
			},
		},
		{
			Name:  "current_port_labeled",
			Regex: regexp.MustCompile(`\b(?i:current(?:ly)?(?:\s+at)?|position|port)\s*:?\s+([A-Z][a-zA-Z]+(?:\s+[A-Z][a-zA-Z]+)?)`),
			Apply: func(c *Candidate, m []string) bool {
				return setString(&c.CurrentPort, m[1])
			},
		},
		{
			Name:  "open_window",
			Regex: regexp.MustCompile(`(?i)\b(\d{1,2})[-/](\d{1,2})\s*(?:-|to|/)\s*(\d{1,2})[-/](\d{1,2})\b`),
			Apply: func(c *Candidate, m []string) bool {
				return c.setLaycan(m[1], m[2], m[3], m[4])
			},
		},
		{
			Name:  "feature_geared",
			Regex: regexp.MustCompile(`(?i)\bgeared\b|\bcranes?\b|\bgrabs?\s+fitted\b`),
			Apply: func(c *Candidate, m []string) bool {
				return addTag(&c.Features, "geared")
			},
		},
		{
			Name:  "feature_box_hold",
			Regex: regexp.MustCompile(`(?i)\bbox\s*-?\s*(?:shaped\s+)?holds?\b`),
			Apply: func(c *Candidate, m []string) bool {
				return addTag(&c.Features, "box hold")
			},
		},
		{
			Name:  "feature_open_hatch",
			Regex: regexp.MustCompile(`(?i)\bopen\s*-?\s*hatch\b`),
			Apply: func(c *Candidate, m []string) bool {
				return addTag(&c.Features, "open hatch")
			},
		},
	}
}

// commodity words too generic to store on their own
var commodityNoise = map[string]bool{
	"cargo": true, "shipment": true, "tons": true, "ton": true, "metric": true,
	"the": true, "a": true, "an": true, "of": true, "ready": true, "available": true,
}

func normalizeCommodity(raw string) string {
	words := strings.Fields(strings.ToLower(strings.TrimSpace(raw)))
	var kept []string
	for _, word := range words {
		if commodityNoise[word] {
			continue
		}
		kept = append(kept, word)
	}
	return strings.Join(kept, " ")
}
