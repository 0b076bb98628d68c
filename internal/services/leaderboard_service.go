package services

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pulse-market/internal/models"
)

const (
	leaderboardCacheTTL = time.Minute
	leaderboardLimit    = 10
)

// LeaderboardService ranks every address that has interacted with the
// platform by their on-ledger stats. The known-user set lives in the
// database, so rankings survive restarts; the computed board is cached
// in memory since stats come from per-user ledger views.
type LeaderboardService struct {
	db        *gorm.DB
	positions *PositionService

	mu        sync.Mutex
	cached    []models.LeaderboardEntry
	cachedAt  time.Time
	cacheTTL  time.Duration
}

func NewLeaderboardService(db *gorm.DB, positions *PositionService) *LeaderboardService {
	return &LeaderboardService{
		db:        db,
		positions: positions,
		cacheTTL:  leaderboardCacheTTL,
	}
}

// AddKnownUser records that an address interacted with the platform.
// Repeat visits just bump last_seen.
func (s *LeaderboardService) AddKnownUser(ctx context.Context, address string) error {
	now := time.Now()
	user := models.KnownUser{
		Address:   address,
		FirstSeen: now,
		LastSeen:  now,
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "address"}},
			DoUpdates: clause.Assignments(map[string]any{"last_seen": now}),
		}).
		Create(&user).Error
}

// Leaderboard returns the top entries sorted by win rate, then volume.
// The board is recomputed at most once per cache TTL.
func (s *LeaderboardService) Leaderboard(ctx context.Context) ([]models.LeaderboardEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil && time.Since(s.cachedAt) < s.cacheTTL {
		return s.cached, nil
	}

	var users []models.KnownUser
	if err := s.db.WithContext(ctx).Find(&users).Error; err != nil {
		return nil, err
	}

	entries := make([]models.LeaderboardEntry, 0, len(users))
	for _, user := range users {
		stats, err := s.positions.GetUserStats(ctx, user.Address)
		if err != nil {
			// One unreadable user must not take down the whole board.
			log.Printf("[LeaderboardService] failed to fetch stats for %s: %v", user.Address, err)
			continue
		}
		winRate := 0.0
		if stats.TotalBets > 0 {
			winRate = float64(stats.TotalWon) / float64(stats.TotalBets) * 100
		}
		entries = append(entries, models.LeaderboardEntry{
			Address:     user.Address,
			TotalBets:   stats.TotalBets,
			TotalWon:    stats.TotalWon,
			TotalVolume: stats.TotalVolume,
			WinRate:     winRate,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].WinRate != entries[j].WinRate {
			return entries[i].WinRate > entries[j].WinRate
		}
		return entries[i].TotalVolume > entries[j].TotalVolume
	})
	if len(entries) > leaderboardLimit {
		entries = entries[:leaderboardLimit]
	}

	s.cached = entries
	s.cachedAt = time.Now()
	return entries, nil
}

// Invalidate drops the cached board so the next read recomputes it.
func (s *LeaderboardService) Invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
}
