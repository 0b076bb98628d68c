package models

import "time"

// KnownUser is an address that has interacted with the platform. The
// leaderboard is computed over this set; persisting it means rankings
// survive a process restart instead of rebuilding from scratch.
type KnownUser struct {
	Address   string    `gorm:"size:66;primaryKey" json:"address"`
	FirstSeen time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"first_seen"`
	LastSeen  time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"last_seen"`
}

func (KnownUser) TableName() string {
	return "known_users"
}

// LeaderboardEntry is one ranked row. Profit needs historical payout data
// the ledger does not expose per-user yet, so it stays zero.
type LeaderboardEntry struct {
	Address     string  `json:"address"`
	TotalBets   uint64  `json:"total_bets"`
	TotalWon    uint64  `json:"total_won"`
	TotalVolume uint64  `json:"total_volume"`
	WinRate     float64 `json:"win_rate"`
	Profit      int64   `json:"profit"`
}
