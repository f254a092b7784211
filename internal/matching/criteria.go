package matching

import "fmt"

// Defaults for the tunable matching criteria. Everything else the engine
// consults (scoring weights, physical bounds) is a fixed constant.
const (
	DefaultMaxLaycanGapDays = 3
	DefaultMaxDistanceDays  = 2.0
	DefaultMaxOversizeRatio = 0.35
	DefaultRouteFactor      = 1.20
	DefaultMinMatchScore    = 60.0
)

// Criteria is the externally tunable matching configuration. Zero values mean
// "use the default"; Normalized resolves them before a run.
type Criteria struct {
	// MaxLaycanGapDays is the largest tolerated gap between the vessel's
	// availability window and the cargo's laycan, in days.
	MaxLaycanGapDays int `json:"max_laycan_gap_days"`

	// MaxDistanceDays is the largest tolerated sailing time from the
	// vessel's current port to the cargo's load port.
	MaxDistanceDays float64 `json:"max_distance_days"`

	// MaxOversizeRatio is how far the cargo may under-fill the vessel,
	// as a fraction of DWT.
	MaxOversizeRatio float64 `json:"max_oversize_ratio"`

	// RouteFactor inflates great-circle distance to approximate real
	// routing.
	RouteFactor float64 `json:"route_factor"`

	// MinMatchScore is the lowest total score worth reporting.
	MinMatchScore float64 `json:"min_match_score"`
}

// DefaultCriteria returns the standard configuration
func DefaultCriteria() Criteria {
	return Criteria{
		MaxLaycanGapDays: DefaultMaxLaycanGapDays,
		MaxDistanceDays:  DefaultMaxDistanceDays,
		MaxOversizeRatio: DefaultMaxOversizeRatio,
		RouteFactor:      DefaultRouteFactor,
		MinMatchScore:    DefaultMinMatchScore,
	}
}

// Normalized fills unset fields with defaults and validates the rest. Out of
// domain values are a caller bug and fail hard.
func (c Criteria) Normalized() (Criteria, error) {
	if c.MaxLaycanGapDays == 0 {
		c.MaxLaycanGapDays = DefaultMaxLaycanGapDays
	}
	if c.MaxDistanceDays == 0 {
		c.MaxDistanceDays = DefaultMaxDistanceDays
	}
	if c.MaxOversizeRatio == 0 {
		c.MaxOversizeRatio = DefaultMaxOversizeRatio
	}
	if c.RouteFactor == 0 {
		c.RouteFactor = DefaultRouteFactor
	}
	if c.MinMatchScore == 0 {
		c.MinMatchScore = DefaultMinMatchScore
	}

	if c.MaxLaycanGapDays < 0 {
		return c, fmt.Errorf("max_laycan_gap_days must be >= 0, got %d", c.MaxLaycanGapDays)
	}
	if c.MaxDistanceDays < 0 {
		return c, fmt.Errorf("max_distance_days must be >= 0, got %v", c.MaxDistanceDays)
	}
	if c.MaxOversizeRatio < 0 || c.MaxOversizeRatio >= 1 {
		return c, fmt.Errorf("max_oversize_ratio must be in [0, 1), got %v", c.MaxOversizeRatio)
	}
	if c.RouteFactor < 1 {
		return c, fmt.Errorf("route_factor must be >= 1, got %v", c.RouteFactor)
	}
	if c.MinMatchScore < 0 || c.MinMatchScore > 100 {
		return c, fmt.Errorf("min_match_score must be in [0, 100], got %v", c.MinMatchScore)
	}
	return c, nil
}
