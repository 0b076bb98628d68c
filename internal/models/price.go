package models

import "github.com/shopspring/decimal"

// PriceQuote is an ephemeral oracle price observation. Never persisted;
// cached only briefly to bound outbound calls.
type PriceQuote struct {
	Symbol     string          `json:"symbol"`
	FeedID     string          `json:"feed_id"`
	Price      decimal.Decimal `json:"price"`
	Confidence decimal.Decimal `json:"confidence"`
	Timestamp  int64           `json:"timestamp"`
}

// BetPreview is the client-facing quote for a bet that has not been placed
// yet. Computed from a market snapshot; the ledger's own math is the
// authority once the bet lands.
type BetPreview struct {
	MarketID        uint64  `json:"market_id"`
	IsYes           bool    `json:"is_yes"`
	Amount          uint64  `json:"amount"`
	YesPercent      int     `json:"yes_percent"`
	NoPercent       int     `json:"no_percent"`
	Multiplier      float64 `json:"multiplier"`
	PotentialPayout uint64  `json:"potential_payout"`
}
