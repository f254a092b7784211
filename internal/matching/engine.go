package matching

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"fixture-matching/internal/database"
)

// Scoring weights. These are fixed; only the Criteria knobs are tunable.
const (
	tonnagePoints       = 25.0
	tonnageBonus        = 5.0
	tonnageBonusCutoff  = 0.85
	laycanPoints        = 25.0
	laycanBonus         = 5.0
	distancePoints      = 20.0
	volumeFitPoints     = 15.0
	volumePenalty       = -10.0
	requirementsPoints  = 15.0
	maxScore            = 100.0
	cubicFeetPerCubicM  = 35.3147
	defaultVesselSpeed  = 12.0
)

// CriterionResult records how one criterion scored for a pair
type CriterionResult struct {
	Evaluated bool    `json:"evaluated"`
	Passed    bool    `json:"passed"`
	Points    float64 `json:"points"`
	Reason    string  `json:"reason,omitempty"`
}

// Breakdown is the full per-pair compatibility report
type Breakdown struct {
	Tonnage      CriterionResult `json:"tonnage"`
	Laycan       CriterionResult `json:"laycan"`
	Distance     CriterionResult `json:"distance"`
	Volume       CriterionResult `json:"volume"`
	Requirements CriterionResult `json:"requirements"`

	UtilizationPct float64 `json:"utilization_pct"`
	LaycanGapDays  int     `json:"laycan_gap_days"`
	DistanceNM     float64 `json:"distance_nm"`
	SailingDays    float64 `json:"sailing_days"`
}

// Result is one surviving vessel/cargo pairing
type Result struct {
	Vessel    *database.Vessel `json:"vessel"`
	Cargo     *database.Cargo  `json:"cargo"`
	Score     float64          `json:"score"`
	Breakdown Breakdown        `json:"breakdown"`
	Rationale string           `json:"rationale"`
}

// Engine evaluates vessel/cargo pairs against commercial constraints. It is
// stateless across runs; each run snapshots its inputs and the gazetteer.
type Engine struct {
	gazetteer *Gazetteer
	criteria  Criteria
	workers   int
}

// NewEngine builds an engine over the given port gazetteer. Criteria zero
// values fall back to defaults; out-of-domain values are returned as errors.
func NewEngine(ports []database.Port, criteria Criteria) (*Engine, error) {
	normalized, err := criteria.Normalized()
	if err != nil {
		return nil, fmt.Errorf("invalid matching criteria: %w", err)
	}
	return &Engine{
		gazetteer: NewGazetteer(ports),
		criteria:  normalized,
		workers:   runtime.NumCPU(),
	}, nil
}

// Criteria returns the normalized configuration the engine runs with
func (e *Engine) Criteria() Criteria {
	return e.criteria
}

// Match scores every (vessel, cargo) pair and returns the survivors ranked by
// score descending, ties kept in input order. Pairs are independent, so they
// are fanned out across workers; results land in a fixed slot per pair to keep
// the output deterministic.
func (e *Engine) Match(ctx context.Context, vessels []database.Vessel, cargos []database.Cargo) []Result {
	total := len(vessels) * len(cargos)
	if total == 0 {
		return nil
	}

	slots := make([]*Result, total)
	indices := make(chan int)

	var wg sync.WaitGroup
	workers := e.workers
	if workers > total {
		workers = total
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indices {
				vessel := &vessels[idx/len(cargos)]
				cargo := &cargos[idx%len(cargos)]
				slots[idx] = e.evaluatePair(vessel, cargo)
			}
		}()
	}

feed:
	for i := 0; i < total; i++ {
		select {
		case <-ctx.Done():
			break feed
		case indices <- i:
		}
	}
	close(indices)
	wg.Wait()

	results := make([]Result, 0, total)
	for _, result := range slots {
		if result != nil {
			results = append(results, *result)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}

// evaluatePair runs all criteria for one pair. A nil return means the pair was
// eliminated by a hard gate or fell below the minimum score.
func (e *Engine) evaluatePair(vessel *database.Vessel, cargo *database.Cargo) *Result {
	var breakdown Breakdown

	if !e.scoreTonnage(vessel, cargo, &breakdown) {
		return nil
	}
	if !e.scoreLaycan(vessel, cargo, &breakdown) {
		return nil
	}
	if !e.scoreDistance(vessel, cargo, &breakdown) {
		return nil
	}
	e.scoreVolume(vessel, cargo, &breakdown)
	if !e.scoreRequirements(vessel, cargo, &breakdown) {
		return nil
	}

	score := breakdown.Tonnage.Points + breakdown.Laycan.Points +
		breakdown.Distance.Points + breakdown.Volume.Points +
		breakdown.Requirements.Points
	if score > maxScore {
		score = maxScore
	}
	if score < 0 {
		score = 0
	}
	if score < e.criteria.MinMatchScore {
		return nil
	}

	return &Result{
		Vessel:    vessel,
		Cargo:     cargo,
		Score:     score,
		Breakdown: breakdown,
		Rationale: buildRationale(&breakdown),
	}
}

func (e *Engine) scoreTonnage(vessel *database.Vessel, cargo *database.Cargo, breakdown *Breakdown) bool {
	breakdown.Tonnage.Evaluated = true
	if vessel.DWT <= 0 || cargo.Quantity <= 0 {
		breakdown.Tonnage.Reason = "missing tonnage data"
		return false
	}

	utilization := cargo.Quantity / vessel.DWT
	breakdown.UtilizationPct = utilization * 100

	if cargo.Quantity > vessel.DWT {
		breakdown.Tonnage.Reason = fmt.Sprintf("cargo %.0f MT exceeds vessel DWT %.0f", cargo.Quantity, vessel.DWT)
		return false
	}
	if utilization < 1-e.criteria.MaxOversizeRatio {
		breakdown.Tonnage.Reason = fmt.Sprintf("vessel under-utilized at %.0f%%", utilization*100)
		return false
	}

	breakdown.Tonnage.Passed = true
	breakdown.Tonnage.Points = tonnagePoints
	if utilization > tonnageBonusCutoff {
		breakdown.Tonnage.Points += tonnageBonus
	}
	breakdown.Tonnage.Reason = fmt.Sprintf("tonnage fits at %.0f%% utilization", utilization*100)
	return true
}

func (e *Engine) scoreLaycan(vessel *database.Vessel, cargo *database.Cargo, breakdown *Breakdown) bool {
	breakdown.Laycan.Evaluated = true

	vesselWindowSet := windowSet(vessel.OpenFrom, vessel.OpenUntil)
	cargoWindowSet := windowSet(cargo.LaycanFrom, cargo.LaycanUntil)
	if !vesselWindowSet || !cargoWindowSet {
		// An unset window is never "always compatible"
		breakdown.Laycan.Reason = "laycan window missing on one side"
		return false
	}

	gap := windowGapDays(*vessel.OpenFrom, *vessel.OpenUntil, *cargo.LaycanFrom, *cargo.LaycanUntil)
	breakdown.LaycanGapDays = gap
	if gap > e.criteria.MaxLaycanGapDays {
		breakdown.Laycan.Reason = fmt.Sprintf("laycan gap %d days exceeds limit %d", gap, e.criteria.MaxLaycanGapDays)
		return false
	}

	breakdown.Laycan.Passed = true
	breakdown.Laycan.Points = laycanPoints
	if gap == 0 {
		breakdown.Laycan.Points += laycanBonus
		breakdown.Laycan.Reason = "laycan windows overlap"
	} else {
		breakdown.Laycan.Reason = fmt.Sprintf("laycan gap %d days within limit", gap)
	}
	return true
}

func (e *Engine) scoreDistance(vessel *database.Vessel, cargo *database.Cargo, breakdown *Breakdown) bool {
	breakdown.Distance.Evaluated = true

	from, ok := e.gazetteer.Resolve(vessel.CurrentPort)
	if !ok {
		breakdown.Distance.Reason = fmt.Sprintf("unknown vessel port %q", vessel.CurrentPort)
		return false
	}
	to, ok := e.gazetteer.Resolve(cargo.LoadPort)
	if !ok {
		breakdown.Distance.Reason = fmt.Sprintf("unknown load port %q", cargo.LoadPort)
		return false
	}

	distance := HaversineNM(from.Latitude, from.Longitude, to.Latitude, to.Longitude)
	speed := vessel.SpeedKnots
	if speed <= 0 {
		speed = defaultVesselSpeed
	}
	sailingDays := distance * e.criteria.RouteFactor / speed / 24

	breakdown.DistanceNM = distance
	breakdown.SailingDays = sailingDays

	if sailingDays > e.criteria.MaxDistanceDays {
		breakdown.Distance.Reason = fmt.Sprintf("%.1f sailing days to load port exceeds limit %.1f", sailingDays, e.criteria.MaxDistanceDays)
		return false
	}

	breakdown.Distance.Passed = true
	breakdown.Distance.Points = distancePoints
	breakdown.Distance.Reason = fmt.Sprintf("%.0f nm to load port, %.1f sailing days", distance, sailingDays)
	return true
}

// scoreVolume is the only soft criterion: a stowage-factor-less cargo skips
// it, and a tight or unknown hold volume penalizes without eliminating.
func (e *Engine) scoreVolume(vessel *database.Vessel, cargo *database.Cargo, breakdown *Breakdown) {
	if cargo.StowageFactor == nil {
		breakdown.Volume.Passed = true
		breakdown.Volume.Reason = "no stowage factor given"
		return
	}
	breakdown.Volume.Evaluated = true

	// Work in cubic feet; capacities are stored in cubic meters.
	sf := *cargo.StowageFactor
	if cargo.StowageFactorUnit != "cuft/mt" {
		sf *= cubicFeetPerCubicM
	}
	needed := cargo.Quantity * sf * (1 + cargo.BrokenStowagePct/100)

	capacity := vessel.BaleCapacity
	if capacity == nil {
		capacity = vessel.GrainCapacity
	}
	if capacity == nil {
		breakdown.Volume.Points = volumePenalty
		breakdown.Volume.Reason = "vessel cubic capacity unknown"
		return
	}

	capacityCuft := *capacity * cubicFeetPerCubicM
	if needed > capacityCuft {
		breakdown.Volume.Points = volumePenalty
		breakdown.Volume.Reason = fmt.Sprintf("cargo needs %.0f cuft, vessel offers %.0f", needed, capacityCuft)
		return
	}

	breakdown.Volume.Passed = true
	breakdown.Volume.Points = volumeFitPoints
	breakdown.Volume.Reason = fmt.Sprintf("cargo volume %.0f cuft fits %.0f cuft capacity", needed, capacityCuft)
}

func (e *Engine) scoreRequirements(vessel *database.Vessel, cargo *database.Cargo, breakdown *Breakdown) bool {
	breakdown.Requirements.Evaluated = true

	for _, requirement := range cargo.Requirements {
		if !featureMatches(vessel.Features, requirement) {
			breakdown.Requirements.Reason = fmt.Sprintf("vessel lacks %q", requirement)
			return false
		}
	}

	breakdown.Requirements.Passed = true
	breakdown.Requirements.Points = requirementsPoints
	if len(cargo.Requirements) == 0 {
		breakdown.Requirements.Reason = "no special requirements"
	} else {
		breakdown.Requirements.Reason = fmt.Sprintf("meets %s", strings.Join(cargo.Requirements, ", "))
	}
	return true
}

// featureMatches checks substring containment in either direction,
// case-insensitive, so "geared" satisfies "geared 4x30t" and vice versa.
func featureMatches(features []string, requirement string) bool {
	needle := strings.ToLower(strings.TrimSpace(requirement))
	if needle == "" {
		return true
	}
	for _, feature := range features {
		lower := strings.ToLower(feature)
		if strings.Contains(lower, needle) || strings.Contains(needle, lower) {
			return true
		}
	}
	return false
}

func windowSet(from, until *time.Time) bool {
	return from != nil && until != nil && !until.Before(*from)
}

// windowGapDays returns 0 when the windows overlap, otherwise the whole days
// between the nearer edges, rounded up.
func windowGapDays(aFrom, aUntil, bFrom, bUntil time.Time) int {
	if !aUntil.Before(bFrom) && !bUntil.Before(aFrom) {
		return 0
	}
	var gap time.Duration
	if aUntil.Before(bFrom) {
		gap = bFrom.Sub(aUntil)
	} else {
		gap = aFrom.Sub(bUntil)
	}
	return int(math.Ceil(gap.Hours() / 24))
}

func buildRationale(breakdown *Breakdown) string {
	var fragments []string
	for _, criterion := range []CriterionResult{
		breakdown.Tonnage, breakdown.Laycan, breakdown.Distance,
		breakdown.Volume, breakdown.Requirements,
	} {
		if criterion.Points > 0 && criterion.Reason != "" {
			fragments = append(fragments, criterion.Reason)
		}
	}
	return strings.Join(fragments, "; ")
}
