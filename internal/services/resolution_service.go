package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"pulse-market/internal/chain"
	"pulse-market/internal/models"
	"pulse-market/internal/oracle"
)

// CycleReport summarizes one resolution pass over the pending markets.
type CycleReport struct {
	Candidates     int
	Resolved       int
	AlreadySettled int
	Failed         int
}

// ResolutionService drives oracle-backed markets through their settle
// transition. It never resolves a market itself: it proposes the outcome to
// the ledger with a verifiable price payload attached, and the ledger's own
// resolution logic checks the evidence.
type ResolutionService struct {
	db      *gorm.DB
	markets *MarketService
	oracle  *oracle.Client
	sender  chain.TxnSender
	chain   *chain.Client
}

func NewResolutionService(
	db *gorm.DB,
	chainClient *chain.Client,
	markets *MarketService,
	oracleClient *oracle.Client,
	sender chain.TxnSender,
) *ResolutionService {
	return &ResolutionService{
		db:      db,
		chain:   chainClient,
		markets: markets,
		oracle:  oracleClient,
		sender:  sender,
	}
}

// PendingCandidates returns markets eligible for automatic resolution:
// past their resolution time, unsettled, and oracle-backed. Markets without
// an oracle config are resolved manually and never touched here.
func (s *ResolutionService) PendingCandidates(ctx context.Context, now time.Time) ([]models.Market, error) {
	pending, err := s.markets.GetPendingResolutionMarkets(ctx, now)
	if err != nil {
		return nil, err
	}
	candidates := make([]models.Market, 0, len(pending))
	for _, m := range pending {
		if m.IsPendingResolution(now) && m.HasOracle() {
			candidates = append(candidates, m)
		}
	}
	return candidates, nil
}

// ResolveMarket submits one settle proposal for an oracle-backed market.
// An "already settled" rejection from the ledger is benign — a retry raced
// an earlier success or another resolver — and is reported as success.
func (s *ResolutionService) ResolveMarket(ctx context.Context, market models.Market) (alreadySettled bool, err error) {
	if market.OracleConfig == nil {
		return false, fmt.Errorf("market %d has no oracle config", market.ID)
	}
	feedID := market.OracleConfig.FeedID

	// The proposed outcome is computed locally for the audit trail and
	// logs; the ledger recomputes it from the attached evidence.
	quote, err := s.oracle.GetPriceByFeedID(ctx, feedID)
	if err != nil {
		s.recordAttempt(ctx, market, nil, nil, "", false, false, err)
		return false, fmt.Errorf("fetch price for market %d: %w", market.ID, err)
	}
	outcome := market.OracleConfig.Outcome(quote.Price)

	updateData, err := s.oracle.GetPriceUpdateData(ctx, []string{feedID})
	if err != nil {
		s.recordAttempt(ctx, market, &outcome, nil, "", false, false, err)
		return false, fmt.Errorf("fetch price evidence for market %d: %w", market.ID, err)
	}

	fn := s.chain.Function(chain.ModuleMarket, "resolve_market_with_oracle")
	args := []any{strconv.FormatUint(market.ID, 10), updateData}
	res, err := s.sender.Submit(ctx, fn, args)
	if err != nil {
		s.recordAttempt(ctx, market, &outcome, nil, "", false, false, err)
		return false, fmt.Errorf("submit resolution for market %d: %w", market.ID, err)
	}

	classified := chain.ClassifyResult(res)
	switch {
	case classified == nil:
		log.Printf("[ResolutionService] market %d resolved (outcome=%v, price=%s, tx=%s)",
			market.ID, outcome, quote.Price, res.Hash)
		s.recordAttempt(ctx, market, &outcome, &res.Hash, res.VMStatus, true, false, nil)
		return false, nil
	case errors.Is(classified, chain.ErrAlreadySettled):
		log.Printf("[ResolutionService] market %d already settled, treating as success", market.ID)
		s.recordAttempt(ctx, market, &outcome, &res.Hash, res.VMStatus, true, true, nil)
		return true, nil
	default:
		s.recordAttempt(ctx, market, &outcome, &res.Hash, res.VMStatus, false, false, classified)
		return false, fmt.Errorf("resolve market %d: %w", market.ID, classified)
	}
}

// RunCycle resolves every pending candidate, isolating failures: one
// market's failure is logged and the loop continues, and the failed market
// comes back as a candidate next cycle.
func (s *ResolutionService) RunCycle(ctx context.Context) CycleReport {
	report := CycleReport{}

	candidates, err := s.PendingCandidates(ctx, time.Now())
	if err != nil {
		log.Printf("[ResolutionService] failed to fetch candidates: %v", err)
		return report
	}
	report.Candidates = len(candidates)
	if len(candidates) == 0 {
		return report
	}

	log.Printf("[ResolutionService] %d markets pending resolution", len(candidates))

	for _, market := range candidates {
		alreadySettled, err := s.ResolveMarket(ctx, market)
		if err != nil {
			report.Failed++
			log.Printf("[ResolutionService] market %d left for next cycle: %v", market.ID, err)
			continue
		}
		if alreadySettled {
			report.AlreadySettled++
		} else {
			report.Resolved++
		}
	}
	return report
}

func (s *ResolutionService) recordAttempt(
	ctx context.Context,
	market models.Market,
	outcome *bool,
	txHash *string,
	vmStatus string,
	success, alreadySettled bool,
	attemptErr error,
) {
	if s.db == nil {
		return
	}
	attempt := models.ResolutionAttempt{
		ID:             uuid.New(),
		MarketID:       market.ID,
		Outcome:        outcome,
		TxHash:         txHash,
		VMStatus:       vmStatus,
		Success:        success,
		AlreadySettled: alreadySettled,
		CreatedAt:      time.Now(),
	}
	if market.OracleConfig != nil {
		attempt.FeedID = market.OracleConfig.FeedID
	}
	if attemptErr != nil {
		attempt.Error = attemptErr.Error()
	}
	if err := s.db.WithContext(ctx).Create(&attempt).Error; err != nil {
		log.Printf("[ResolutionService] failed to record attempt for market %d: %v", market.ID, err)
	}
}
