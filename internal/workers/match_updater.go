package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"time"

	"fixture-matching/internal/cache"
	"fixture-matching/internal/config"
	"fixture-matching/internal/database"
	"fixture-matching/internal/matching"
)

// MatchUpdater recomputes the proposed match set in the background so scores
// track pool changes without anyone hitting the run endpoint. It also retires
// proposals whose laycan has passed and prunes stale unreviewed emails.
type MatchUpdater struct {
	ctx    context.Context
	cancel context.CancelFunc
	config *config.Config
	db     *database.DB
	cache  *cache.Manager
	paused atomic.Bool
	logger *slog.Logger
}

// NewMatchUpdater creates a new match updater service
func NewMatchUpdater(cfg *config.Config, db *database.DB, cacheManager *cache.Manager, logger *slog.Logger) *MatchUpdater {
	ctx, cancel := context.WithCancel(context.Background())
	return &MatchUpdater{
		ctx:    ctx,
		cancel: cancel,
		config: cfg,
		db:     db,
		cache:  cacheManager,
		logger: logger,
	}
}

// Start begins the background refresh process
func (u *MatchUpdater) Start() {
	if !u.config.MatchRefreshEnabled {
		u.logger.Info("Match refresh is disabled, skipping background updates")
		return
	}

	u.logger.Info("Starting match updater service",
		"interval", u.config.MatchRefreshInterval,
		"expire_after_days", u.config.MatchExpireAfterDays)

	go u.refreshLoop()
}

// Stop gracefully stops the background refresh process
func (u *MatchUpdater) Stop() {
	u.logger.Info("Stopping match updater service")
	u.cancel()
}

// Pause temporarily pauses automatic refreshes
func (u *MatchUpdater) Pause() {
	u.paused.Store(true)
	u.logger.Info("Match updater paused")
}

// Resume resumes automatic refreshes
func (u *MatchUpdater) Resume() {
	u.paused.Store(false)
	u.logger.Info("Match updater resumed")
}

// IsPaused returns true if the updater is currently paused
func (u *MatchUpdater) IsPaused() bool {
	return u.paused.Load()
}

// IsRunning returns true if the updater has not been stopped
func (u *MatchUpdater) IsRunning() bool {
	select {
	case <-u.ctx.Done():
		return false
	default:
		return true
	}
}

// refreshLoop is the main background loop
func (u *MatchUpdater) refreshLoop() {
	ticker := time.NewTicker(u.config.MatchRefreshInterval)
	defer ticker.Stop()

	// Perform the initial refresh after a short delay so startup stays fast
	initialDelay := time.NewTimer(30 * time.Second)
	defer initialDelay.Stop()

	for {
		select {
		case <-u.ctx.Done():
			u.logger.Info("Match updater stopped")
			return

		case <-initialDelay.C:
			u.performRefresh()

		case <-ticker.C:
			u.performRefresh()
		}
	}
}

// performRefresh executes one full refresh cycle
func (u *MatchUpdater) performRefresh() {
	if u.paused.Load() {
		u.logger.Debug("Refresh paused, skipping cycle")
		return
	}

	u.logger.Info("Starting automatic match refresh")
	startTime := time.Now()

	u.expireStaleProposals()
	u.recomputeProposals()
	u.pruneStaleEmails()

	u.logger.Info("Completed automatic match refresh", "duration", time.Since(startTime))
}

// expireStaleProposals retires proposals whose cargo laycan has fully passed
func (u *MatchUpdater) expireStaleProposals() {
	expired, err := u.db.Matches.ExpireProposedBefore(time.Now().UTC())
	if err != nil {
		u.logger.Error("Failed to expire stale proposals", "error", err)
		return
	}
	if expired > 0 {
		u.logger.Info("Expired stale proposals", "count", expired)
	}
}

// recomputeProposals rescores the AVAILABLE pools and replaces all PROPOSED
// matches with the fresh result
func (u *MatchUpdater) recomputeProposals() {
	vessels, err := u.db.Vessels.GetAvailable()
	if err != nil {
		u.logger.Error("Failed to load vessels for refresh", "error", err)
		return
	}
	cargos, err := u.db.Cargos.GetAvailable()
	if err != nil {
		u.logger.Error("Failed to load cargos for refresh", "error", err)
		return
	}
	ports, err := u.db.Ports.GetAll()
	if err != nil {
		u.logger.Error("Failed to load ports for refresh", "error", err)
		return
	}

	engine, err := matching.NewEngine(ports, u.config.MatchCriteria())
	if err != nil {
		u.logger.Error("Failed to build matching engine", "error", err)
		return
	}

	results := engine.Match(u.ctx, vessels, cargos)
	if u.ctx.Err() != nil {
		return // Service is stopping
	}

	if err := u.db.Matches.DeleteProposed(); err != nil {
		u.logger.Error("Failed to clear proposed matches", "error", err)
		return
	}

	stored := 0
	for _, result := range results {
		breakdown, err := json.Marshal(result.Breakdown)
		if err != nil {
			u.logger.Error("Failed to encode breakdown", "error", err)
			continue
		}

		match := &database.Match{
			VesselID:  result.Vessel.ID,
			CargoID:   result.Cargo.ID,
			Score:     result.Score,
			Breakdown: string(breakdown),
			Rationale: result.Rationale,
			Status:    database.MatchProposed,
		}
		if err := u.db.Matches.Upsert(match); err != nil {
			if err == database.ErrMatchAccepted {
				continue
			}
			u.logger.Error("Failed to store match",
				"vessel_id", result.Vessel.ID,
				"cargo_id", result.Cargo.ID,
				"error", err)
			continue
		}
		stored++
	}

	// The cached run responses no longer reflect the stored proposals
	if u.cache != nil {
		if err := u.cache.InvalidateAll(); err != nil {
			u.logger.Warn("Failed to invalidate match run cache", "error", err)
		}
	}

	u.logger.Info("Recomputed proposed matches",
		"vessels", len(vessels),
		"cargos", len(cargos),
		"proposals", stored)
}

// pruneStaleEmails removes unreviewed emails past the retention window
func (u *MatchUpdater) pruneStaleEmails() {
	if u.config.MatchExpireAfterDays <= 0 {
		return
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -u.config.MatchExpireAfterDays)
	deleted, err := u.db.Emails.DeleteOlderThan(cutoff)
	if err != nil {
		u.logger.Error("Failed to prune stale emails", "error", err)
		return
	}
	if deleted > 0 {
		u.logger.Info("Pruned stale unreviewed emails", "count", deleted, "cutoff", cutoff)
	}
}
