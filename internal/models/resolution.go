package models

import (
	"time"

	"github.com/google/uuid"
)

// ResolutionAttempt is the persisted audit record of one settle submission
// by the resolution worker. Failed attempts are retried on the next cycle,
// so a market may accumulate several rows before one succeeds.
type ResolutionAttempt struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	MarketID       uint64    `gorm:"not null;index" json:"market_id"`
	FeedID         string    `gorm:"size:80" json:"feed_id"`
	Outcome        *bool     `json:"outcome,omitempty"`
	TxHash         *string   `gorm:"size:80" json:"tx_hash,omitempty"`
	VMStatus       string    `gorm:"size:500" json:"vm_status"`
	Success        bool      `gorm:"not null;index" json:"success"`
	AlreadySettled bool      `gorm:"not null" json:"already_settled"`
	Error          string    `gorm:"size:500" json:"error,omitempty"`
	CreatedAt      time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (ResolutionAttempt) TableName() string {
	return "resolution_attempts"
}
