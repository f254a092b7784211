package database

// DashboardStats aggregates pool and match counts for the dashboard
type DashboardStats struct {
	TotalVessels     int     `json:"total_vessels"`
	AvailableVessels int     `json:"available_vessels"`
	TotalCargos      int     `json:"total_cargos"`
	AvailableCargos  int     `json:"available_cargos"`
	ProposedMatches  int     `json:"proposed_matches"`
	AcceptedMatches  int     `json:"accepted_matches"`
	RejectedMatches  int     `json:"rejected_matches"`
	ExpiredMatches   int     `json:"expired_matches"`
	AvgProposedScore float64 `json:"avg_proposed_score"`
	StoredEmails     int     `json:"stored_emails"`
	UnreviewedEmails int     `json:"unreviewed_emails"`
}

// GetStats collects dashboard statistics across all stores
func (db *DB) GetStats() (*DashboardStats, error) {
	stats := &DashboardStats{}

	counts := []struct {
		query string
		args  []interface{}
		dest  *int
	}{
		{`SELECT COUNT(*) FROM vessels`, nil, &stats.TotalVessels},
		{`SELECT COUNT(*) FROM vessels WHERE status = ?`, []interface{}{StatusAvailable}, &stats.AvailableVessels},
		{`SELECT COUNT(*) FROM cargos`, nil, &stats.TotalCargos},
		{`SELECT COUNT(*) FROM cargos WHERE status = ?`, []interface{}{StatusAvailable}, &stats.AvailableCargos},
		{`SELECT COUNT(*) FROM matches WHERE status = ?`, []interface{}{MatchProposed}, &stats.ProposedMatches},
		{`SELECT COUNT(*) FROM matches WHERE status = ?`, []interface{}{MatchAccepted}, &stats.AcceptedMatches},
		{`SELECT COUNT(*) FROM matches WHERE status = ?`, []interface{}{MatchRejected}, &stats.RejectedMatches},
		{`SELECT COUNT(*) FROM matches WHERE status = ?`, []interface{}{MatchExpired}, &stats.ExpiredMatches},
		{`SELECT COUNT(*) FROM inbound_emails`, nil, &stats.StoredEmails},
		{`SELECT COUNT(*) FROM inbound_emails WHERE reviewed = FALSE`, nil, &stats.UnreviewedEmails},
	}

	for _, c := range counts {
		if err := db.QueryRow(c.query, c.args...).Scan(c.dest); err != nil {
			return nil, err
		}
	}

	err := db.QueryRow(
		`SELECT COALESCE(AVG(score), 0) FROM matches WHERE status = ?`, MatchProposed).
		Scan(&stats.AvgProposedScore)
	if err != nil {
		return nil, err
	}

	return stats, nil
}
