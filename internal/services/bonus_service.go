package services

import (
	"context"
	"encoding/json"

	"pulse-market/internal/chain"
)

// DefaultWelcomeBonusAmount is used when the contract constant cannot be
// read, 1 MOVE in Octas.
const DefaultWelcomeBonusAmount uint64 = 100_000_000

// BonusStats are the contract-wide issuance totals.
type BonusStats struct {
	TotalIssued uint64 `json:"total_issued"`
	TotalUsed   uint64 `json:"total_used"`
}

// BonusService reads the welcome-bonus state from the bonus module. It only
// reads; claiming the bonus is a user-signed transaction that goes through
// the gas station.
type BonusService struct {
	chain *chain.Client
}

func NewBonusService(chainClient *chain.Client) *BonusService {
	return &BonusService{chain: chainClient}
}

// BonusBalance returns the user's unspent bonus balance in Octas.
func (s *BonusService) BonusBalance(ctx context.Context, address string) (uint64, error) {
	fn := s.chain.Function(chain.ModuleBonus, "get_bonus_balance")
	results, err := s.chain.View(ctx, fn, []any{address})
	if err != nil {
		return 0, err
	}
	return decodeFirstU64(results)
}

// HasClaimedWelcomeBonus reports whether the address already took its
// one-time welcome bonus.
func (s *BonusService) HasClaimedWelcomeBonus(ctx context.Context, address string) (bool, error) {
	fn := s.chain.Function(chain.ModuleBonus, "has_claimed_welcome_bonus")
	results, err := s.chain.View(ctx, fn, []any{address})
	if err != nil {
		return false, err
	}
	return decodeFirstBool(results)
}

// WelcomeBonusAmount returns the contract's welcome bonus constant, falling
// back to the default when the view fails.
func (s *BonusService) WelcomeBonusAmount(ctx context.Context) uint64 {
	fn := s.chain.Function(chain.ModuleBonus, "get_welcome_bonus_amount")
	results, err := s.chain.View(ctx, fn, nil)
	if err != nil {
		return DefaultWelcomeBonusAmount
	}
	amount, err := decodeFirstU64(results)
	if err != nil {
		return DefaultWelcomeBonusAmount
	}
	return amount
}

// Stats returns the global issued/used bonus totals.
func (s *BonusService) Stats(ctx context.Context) (BonusStats, error) {
	fn := s.chain.Function(chain.ModuleBonus, "get_bonus_stats")
	results, err := s.chain.View(ctx, fn, nil)
	if err != nil {
		return BonusStats{}, err
	}
	stats := BonusStats{}
	if len(results) > 0 {
		if stats.TotalIssued, err = decodeChainU64(results[0]); err != nil {
			return BonusStats{}, err
		}
	}
	if len(results) > 1 {
		if stats.TotalUsed, err = decodeChainU64(results[1]); err != nil {
			return BonusStats{}, err
		}
	}
	return stats, nil
}

func decodeFirstU64(results []json.RawMessage) (uint64, error) {
	if len(results) == 0 {
		return 0, nil
	}
	return decodeChainU64(results[0])
}

func decodeFirstBool(results []json.RawMessage) (bool, error) {
	if len(results) == 0 {
		return false, nil
	}
	var v bool
	if err := json.Unmarshal(results[0], &v); err != nil {
		return false, err
	}
	return v, nil
}
