package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"

	"pulse-market/internal/chain"
	"pulse-market/internal/models"
	"pulse-market/internal/pricing"
)

// PositionService reads user positions from the ledger and derives the
// active / claimable / settled partitions. All buckets come from one
// snapshot fetch; nothing here is cached or mutated.
type PositionService struct {
	chain   *chain.Client
	markets *MarketService
}

func NewPositionService(chainClient *chain.Client, markets *MarketService) *PositionService {
	return &PositionService{
		chain:   chainClient,
		markets: markets,
	}
}

// GetUserPositions fetches a user's positions joined with their market
// snapshots. A market that fails to load leaves its positions with a nil
// Market; such positions are conservatively treated as active, never as
// claimable.
func (s *PositionService) GetUserPositions(ctx context.Context, userAddress string) ([]models.PositionWithMarket, error) {
	var positions []models.Position
	fn := s.chain.Function(chain.ModulePosition, "get_user_positions")
	if err := s.chain.ViewInto(ctx, fn, []any{userAddress}, &positions); err != nil {
		return nil, fmt.Errorf("fetch positions for %s: %w", userAddress, err)
	}

	// One fetch per distinct market, shared across its positions so every
	// bucket is computed from the same snapshot.
	marketsByID := make(map[uint64]*models.Market)
	for _, p := range positions {
		if _, seen := marketsByID[p.MarketID]; seen {
			continue
		}
		market, err := s.markets.GetMarket(ctx, p.MarketID)
		if err != nil {
			log.Printf("[PositionService] market %d unavailable: %v", p.MarketID, err)
			marketsByID[p.MarketID] = nil
			continue
		}
		marketsByID[p.MarketID] = market
	}

	joined := make([]models.PositionWithMarket, len(positions))
	for i, p := range positions {
		joined[i] = models.PositionWithMarket{Position: p, Market: marketsByID[p.MarketID]}
	}
	return joined, nil
}

// Partition splits joined positions into the four UI-facing buckets.
// Pure filtering over the given snapshot.
func (s *PositionService) Partition(positions []models.PositionWithMarket) models.PositionBook {
	book := models.PositionBook{All: positions}
	for _, p := range positions {
		if p.IsActive() {
			book.Active = append(book.Active, p)
		}
		if p.IsClaimable() {
			book.Claimable = append(book.Claimable, p)
		}
		if p.IsWinner() {
			book.SettledWon = append(book.SettledWon, p)
		}
		if p.IsLoser() {
			book.SettledLost = append(book.SettledLost, p)
		}
	}
	return book
}

// GetUserBook fetches and partitions in one call.
func (s *PositionService) GetUserBook(ctx context.Context, userAddress string) (models.PositionBook, error) {
	positions, err := s.GetUserPositions(ctx, userAddress)
	if err != nil {
		return models.PositionBook{}, err
	}
	return s.Partition(positions), nil
}

// ClaimableAmount sums the payouts owed across claimable positions, for
// display before a claim batch runs. Computed from the current market
// snapshots; the ledger fixed the authoritative amounts at settlement.
func (s *PositionService) ClaimableAmount(claimable []models.PositionWithMarket) uint64 {
	var total uint64
	for _, p := range claimable {
		if p.Market == nil {
			continue
		}
		total += pricing.Payout(p.Amount, p.Market.TotalYesStake, p.Market.TotalNoStake, p.IsYes)
	}
	return total
}

// GetUserStats returns the ledger's aggregate betting stats for a user.
func (s *PositionService) GetUserStats(ctx context.Context, userAddress string) (*models.UserStats, error) {
	fn := s.chain.Function(chain.ModulePosition, "get_user_stats")
	values, err := s.chain.View(ctx, fn, []any{userAddress})
	if err != nil {
		return nil, fmt.Errorf("fetch stats for %s: %w", userAddress, err)
	}
	if len(values) < 3 {
		return nil, fmt.Errorf("stats view returned %d values, want 3", len(values))
	}

	stats := &models.UserStats{}
	for i, target := range []*uint64{&stats.TotalBets, &stats.TotalWon, &stats.TotalVolume} {
		n, err := decodeChainU64(values[i])
		if err != nil {
			return nil, fmt.Errorf("decode stats value %d: %w", i, err)
		}
		*target = n
	}
	return stats, nil
}

// decodeChainU64 accepts both string-encoded and bare JSON numbers.
func decodeChainU64(raw json.RawMessage) (uint64, error) {
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, err
		}
		return strconv.ParseUint(s, 10, 64)
	}
	var n uint64
	err := json.Unmarshal(raw, &n)
	return n, err
}
