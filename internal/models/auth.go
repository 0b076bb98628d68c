package models

import "time"

// AuthNonce is a single-use login challenge issued for a wallet address.
// The wallet proves ownership by signing the nonce; consumed nonces are
// deleted so a captured signature cannot be replayed.
type AuthNonce struct {
	Address   string    `gorm:"size:66;primaryKey" json:"address"`
	Nonce     string    `gorm:"size:64;not null" json:"nonce"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (AuthNonce) TableName() string {
	return "auth_nonces"
}
