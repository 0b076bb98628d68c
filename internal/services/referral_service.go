package services

import (
	"context"
	"encoding/json"

	"pulse-market/internal/chain"
)

// ReferralStats summarizes an address's referral activity.
type ReferralStats struct {
	ReferralCount uint64 `json:"referral_count"`
	TotalEarnings uint64 `json:"total_earnings"`
}

// ReferralService reads referral state from the referral module.
// Registering a referral is a user-signed transaction and is not done here.
type ReferralService struct {
	chain *chain.Client
}

func NewReferralService(chainClient *chain.Client) *ReferralService {
	return &ReferralService{chain: chainClient}
}

// Stats returns the referral count and accumulated earnings for an address.
func (s *ReferralService) Stats(ctx context.Context, address string) (ReferralStats, error) {
	countFn := s.chain.Function(chain.ModuleReferral, "get_referral_count")
	countResults, err := s.chain.View(ctx, countFn, []any{address})
	if err != nil {
		return ReferralStats{}, err
	}
	count, err := decodeFirstU64(countResults)
	if err != nil {
		return ReferralStats{}, err
	}

	earningsFn := s.chain.Function(chain.ModuleReferral, "get_referral_earnings")
	earningsResults, err := s.chain.View(ctx, earningsFn, []any{address})
	if err != nil {
		return ReferralStats{}, err
	}
	earnings, err := decodeFirstU64(earningsResults)
	if err != nil {
		return ReferralStats{}, err
	}

	return ReferralStats{ReferralCount: count, TotalEarnings: earnings}, nil
}

// HasReferrer reports whether the address registered with a referral code.
func (s *ReferralService) HasReferrer(ctx context.Context, address string) (bool, error) {
	fn := s.chain.Function(chain.ModuleReferral, "has_referrer")
	results, err := s.chain.View(ctx, fn, []any{address})
	if err != nil {
		return false, err
	}
	return decodeFirstBool(results)
}

// Referrer returns the referrer address, or "" when there is none. The view
// returns a Move Option.
func (s *ReferralService) Referrer(ctx context.Context, address string) (string, error) {
	fn := s.chain.Function(chain.ModuleReferral, "get_referrer")
	results, err := s.chain.View(ctx, fn, []any{address})
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "", nil
	}
	var opt struct {
		Vec []string `json:"vec"`
	}
	if err := json.Unmarshal(results[0], &opt); err != nil {
		return "", err
	}
	if len(opt.Vec) == 0 {
		return "", nil
	}
	return opt.Vec[0], nil
}
