package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"pulse-market/internal/chain"
	"pulse-market/internal/models"
	"pulse-market/internal/pricing"
)

// Local bet validation failures, rejected before any network call.
var (
	ErrBetTooSmall   = errors.New("bet amount below minimum")
	ErrBetTooLarge   = errors.New("bet amount above maximum")
	ErrMarketSettled = errors.New("market already settled")
	ErrMarketExpired = errors.New("market past resolution time")
)

// MarketService reads markets from the ledger and prices prospective bets.
type MarketService struct {
	chain  *chain.Client
	minBet uint64
	maxBet uint64
}

// NewMarketService creates a market service. minBet/maxBet are the
// configured bet bounds in Octas, mirrored from the position module.
func NewMarketService(chainClient *chain.Client, minBet, maxBet uint64) *MarketService {
	return &MarketService{
		chain:  chainClient,
		minBet: minBet,
		maxBet: maxBet,
	}
}

// GetActiveMarkets returns all unsettled markets.
func (s *MarketService) GetActiveMarkets(ctx context.Context) ([]models.Market, error) {
	var markets []models.Market
	fn := s.chain.Function(chain.ModuleMarketViews, "get_active_markets")
	if err := s.chain.ViewInto(ctx, fn, nil, &markets); err != nil {
		return nil, fmt.Errorf("fetch active markets: %w", err)
	}
	return markets, nil
}

// GetMarket returns a single market by ID.
func (s *MarketService) GetMarket(ctx context.Context, marketID uint64) (*models.Market, error) {
	var market models.Market
	fn := s.chain.Function(chain.ModuleMarketViews, "get_market")
	args := []any{strconv.FormatUint(marketID, 10)}
	if err := s.chain.ViewInto(ctx, fn, args, &market); err != nil {
		return nil, fmt.Errorf("fetch market %d: %w", marketID, err)
	}
	return &market, nil
}

// GetMarketsPaginated returns a window of markets ordered by ID.
func (s *MarketService) GetMarketsPaginated(ctx context.Context, offset, limit uint64) ([]models.Market, error) {
	var markets []models.Market
	fn := s.chain.Function(chain.ModuleMarketViews, "get_markets_paginated")
	args := []any{strconv.FormatUint(offset, 10), strconv.FormatUint(limit, 10)}
	if err := s.chain.ViewInto(ctx, fn, args, &markets); err != nil {
		return nil, fmt.Errorf("fetch markets page: %w", err)
	}
	return markets, nil
}

// GetPendingResolutionMarkets returns markets past their resolution time
// that are still unsettled. Prefers the dedicated view; falls back to
// filtering active markets when the view is not deployed.
func (s *MarketService) GetPendingResolutionMarkets(ctx context.Context, now time.Time) ([]models.Market, error) {
	var markets []models.Market
	fn := s.chain.Function(chain.ModuleMarketViews, "get_pending_resolution_markets")
	if err := s.chain.ViewInto(ctx, fn, nil, &markets); err == nil {
		return markets, nil
	} else {
		log.Printf("[MarketService] pending-resolution view unavailable, filtering active markets: %v", err)
	}

	active, err := s.GetActiveMarkets(ctx)
	if err != nil {
		return nil, err
	}
	pending := make([]models.Market, 0, len(active))
	for _, m := range active {
		if m.IsPendingResolution(now) {
			pending = append(pending, m)
		}
	}
	return pending, nil
}

// PreviewBet quotes odds, multiplier, and potential payout for a bet that
// has not been placed. Validation failures are rejected locally before any
// network call; the returned quote is a display preview, not a commitment.
func (s *MarketService) PreviewBet(ctx context.Context, marketID uint64, isYes bool, amount uint64) (*models.BetPreview, error) {
	if amount < s.minBet {
		return nil, fmt.Errorf("%w: %d < %d", ErrBetTooSmall, amount, s.minBet)
	}
	if amount > s.maxBet {
		return nil, fmt.Errorf("%w: %d > %d", ErrBetTooLarge, amount, s.maxBet)
	}

	market, err := s.GetMarket(ctx, marketID)
	if err != nil {
		return nil, err
	}
	if market.Settled {
		return nil, ErrMarketSettled
	}
	if market.IsPendingResolution(time.Now()) {
		return nil, ErrMarketExpired
	}

	yesPct, noPct := pricing.ImpliedOdds(market.TotalYesStake, market.TotalNoStake)
	return &models.BetPreview{
		MarketID:        marketID,
		IsYes:           isYes,
		Amount:          amount,
		YesPercent:      yesPct,
		NoPercent:       noPct,
		Multiplier:      pricing.Multiplier(market.TotalYesStake, market.TotalNoStake, isYes),
		PotentialPayout: pricing.Payout(amount, market.TotalYesStake, market.TotalNoStake, isYes),
	}, nil
}
