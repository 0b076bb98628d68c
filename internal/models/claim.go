package models

import (
	"time"

	"github.com/google/uuid"
)

// ClaimProgress is the observer-visible counter for a running claim batch.
// Current advances by one after every attempt, success or not.
type ClaimProgress struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// ClaimResult summarizes a finished claim batch.
type ClaimResult struct {
	SuccessCount   int `json:"success_count"`
	AttemptedCount int `json:"attempted_count"`
}

// Celebrate reports whether the batch produced a user-visible success.
// A partial batch still celebrates; an all-failure batch does not.
func (r ClaimResult) Celebrate() bool {
	return r.SuccessCount > 0
}

// ClaimBatch is the persisted audit record of one claim-all run.
type ClaimBatch struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserAddress   string    `gorm:"size:66;not null;index" json:"user_address"`
	Attempted     int       `gorm:"not null" json:"attempted"`
	Succeeded     int       `gorm:"not null" json:"succeeded"`
	PreviewAmount uint64    `gorm:"not null" json:"preview_amount"`
	CreatedAt     time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (ClaimBatch) TableName() string {
	return "claim_batches"
}
