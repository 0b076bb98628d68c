package models

import (
	"encoding/json"
	"fmt"
)

// Position is a user's stake on one side of a market. Amount is immutable
// after creation; claimed flips exactly once, and only for winners of a
// settled market.
type Position struct {
	ID        uint64 `json:"id"`
	MarketID  uint64 `json:"market_id"`
	User      string `json:"user"`
	IsYes     bool   `json:"is_yes"`
	Amount    uint64 `json:"amount"`
	Claimed   bool   `json:"claimed"`
	CreatedAt int64  `json:"created_at"`
}

type chainPosition struct {
	ID        chainU64 `json:"id"`
	MarketID  chainU64 `json:"market_id"`
	User      string   `json:"user"`
	IsYes     bool     `json:"is_yes"`
	Amount    chainU64 `json:"amount"`
	Claimed   bool     `json:"claimed"`
	CreatedAt chainU64 `json:"created_at"`
}

func (p *Position) UnmarshalJSON(data []byte) error {
	var cp chainPosition
	if err := json.Unmarshal(data, &cp); err != nil {
		return fmt.Errorf("decode position: %w", err)
	}
	p.ID = uint64(cp.ID)
	p.MarketID = uint64(cp.MarketID)
	p.User = cp.User
	p.IsYes = cp.IsYes
	p.Amount = uint64(cp.Amount)
	p.Claimed = cp.Claimed
	p.CreatedAt = int64(cp.CreatedAt)
	return nil
}

// PositionWithMarket joins a position with its market snapshot. Market is
// nil when the market could not be loaded; such positions are treated
// conservatively (never claimable).
type PositionWithMarket struct {
	Position
	Market *Market `json:"market,omitempty"`
}

// IsActive reports whether the owning market is still unsettled. A position
// whose market is missing counts as active rather than settled.
func (p *PositionWithMarket) IsActive() bool {
	return p.Market == nil || !p.Market.Settled
}

// IsWinner reports whether the position is on the settled market's winning
// side. False whenever the market is missing or unsettled.
func (p *PositionWithMarket) IsWinner() bool {
	if p.Market == nil || !p.Market.Settled || p.Market.Outcome == nil {
		return false
	}
	return p.IsYes == *p.Market.Outcome
}

// IsClaimable reports whether the position is a settled, unclaimed winner.
func (p *PositionWithMarket) IsClaimable() bool {
	return p.IsWinner() && !p.Claimed
}

// IsLoser reports whether the position is on the settled market's losing side.
func (p *PositionWithMarket) IsLoser() bool {
	if p.Market == nil || !p.Market.Settled || p.Market.Outcome == nil {
		return false
	}
	return p.IsYes != *p.Market.Outcome
}

// PositionBook is the partition of a user's positions computed from a single
// consistent snapshot of (position, market) pairs. Recomputed on every fetch;
// never cached.
type PositionBook struct {
	All         []PositionWithMarket `json:"positions"`
	Active      []PositionWithMarket `json:"active"`
	Claimable   []PositionWithMarket `json:"claimable"`
	SettledWon  []PositionWithMarket `json:"settled_won"`
	SettledLost []PositionWithMarket `json:"settled_lost"`
}

// UserStats aggregates a user's betting history as reported by the ledger.
type UserStats struct {
	TotalBets   uint64 `json:"total_bets"`
	TotalWon    uint64 `json:"total_won"`
	TotalVolume uint64 `json:"total_volume"`
}
