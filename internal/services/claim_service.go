package services

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"pulse-market/internal/chain"
	"pulse-market/internal/models"
)

// ClaimService claims winnings for settled positions. Batches run strictly
// sequentially: every claim is an independent ledger transaction from the
// same sender account, and sequential submission avoids sequence-number
// races. Do not parallelize this loop.
type ClaimService struct {
	db        *gorm.DB
	chain     *chain.Client
	positions *PositionService
}

func NewClaimService(db *gorm.DB, chainClient *chain.Client, positions *PositionService) *ClaimService {
	return &ClaimService{
		db:        db,
		chain:     chainClient,
		positions: positions,
	}
}

// ProgressFunc observes batch progress. Called before every attempt with
// the 1-based position index, success or failure alike, so "claiming 3 of
// 7" renders even when attempts silently fail.
type ProgressFunc func(models.ClaimProgress)

// ClaimOne submits a single claim_winnings transaction. An already-claimed
// rejection counts as success: the winnings are with the user, which is the
// state the caller wanted.
func (s *ClaimService) ClaimOne(ctx context.Context, sender chain.TxnSender, position models.PositionWithMarket) error {
	fn := s.chain.Function(chain.ModulePosition, "claim_winnings")
	res, err := sender.Submit(ctx, fn, []any{strconv.FormatUint(position.ID, 10)})
	if err != nil {
		return err
	}
	if err := chain.ClassifyResult(res); err != nil {
		if errors.Is(err, chain.ErrAlreadyClaimed) {
			log.Printf("[ClaimService] position %d already claimed, treating as success", position.ID)
			return nil
		}
		return err
	}
	return nil
}

// ClaimAll claims every given position in order, isolating failures: a
// failed claim is logged and the batch moves on, leaving that position
// claimable for a future batch. Always returns a result summary, never an
// error — partial failure is the expected mode, not an exception.
func (s *ClaimService) ClaimAll(
	ctx context.Context,
	sender chain.TxnSender,
	claimable []models.PositionWithMarket,
	onProgress ProgressFunc,
) models.ClaimResult {
	result := models.ClaimResult{AttemptedCount: len(claimable)}
	previewAmount := s.positions.ClaimableAmount(claimable)

	for i, position := range claimable {
		if onProgress != nil {
			onProgress(models.ClaimProgress{Current: i + 1, Total: len(claimable)})
		}

		if err := s.ClaimOne(ctx, sender, position); err != nil {
			log.Printf("[ClaimService] failed to claim position %d: %v", position.ID, err)
			continue
		}
		result.SuccessCount++
	}

	s.recordBatch(ctx, sender.Sender(), previewAmount, result)

	log.Printf("[ClaimService] batch for %s: %d/%d claimed",
		sender.Sender(), result.SuccessCount, result.AttemptedCount)
	return result
}

func (s *ClaimService) recordBatch(ctx context.Context, userAddress string, previewAmount uint64, result models.ClaimResult) {
	if s.db == nil || result.AttemptedCount == 0 {
		return
	}
	batch := models.ClaimBatch{
		ID:            uuid.New(),
		UserAddress:   userAddress,
		Attempted:     result.AttemptedCount,
		Succeeded:     result.SuccessCount,
		PreviewAmount: previewAmount,
		CreatedAt:     time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(&batch).Error; err != nil {
		// Audit only; a failed write must not fail the batch.
		log.Printf("[ClaimService] failed to record claim batch: %v", err)
	}
}
