package models

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// ErrAlreadySettled is returned when a settle transition is attempted on a
// market that has already been settled. Settlement is exactly-once.
var ErrAlreadySettled = errors.New("market already settled")

// Market categories as stored on chain (u8).
const (
	CategoryCrypto = iota
	CategorySports
	CategoryPolitics
	CategoryEntertainment
	CategoryWeather
	CategoryCustom
)

var categoryNames = []string{"crypto", "sports", "politics", "entertainment", "weather", "custom"}

// CategoryName maps the on-chain category tag to its display name.
// Unknown tags fall back to "custom".
func CategoryName(category uint8) string {
	if int(category) < len(categoryNames) {
		return categoryNames[category]
	}
	return "custom"
}

// PriceScale is the implied decimal scale of on-chain oracle thresholds
// (8 decimals, matching Octas).
const PriceScale = 8

// OracleConfig describes how a market is resolved automatically from a
// price feed. Present only on oracle-backed markets.
type OracleConfig struct {
	FeedID string `json:"feed_id"`
	// Threshold is the raw on-chain threshold (PriceScale implied decimals).
	Threshold uint64 `json:"threshold"`
	IsAbove   bool   `json:"is_above"`
}

// ThresholdPrice returns the threshold as a decimal price in whole units.
func (oc *OracleConfig) ThresholdPrice() decimal.Decimal {
	return decimal.New(int64(oc.Threshold), -PriceScale)
}

// Outcome applies the oracle rule to a price: YES wins iff the price is
// strictly above the threshold (is_above) or strictly below it (!is_above).
func (oc *OracleConfig) Outcome(price decimal.Decimal) bool {
	threshold := oc.ThresholdPrice()
	if oc.IsAbove {
		return price.GreaterThan(threshold)
	}
	return price.LessThan(threshold)
}

// Market is a binary pari-mutuel market as stored on the ledger.
// Stake totals only grow while the market is open; settled flips to true
// exactly once and fixes the outcome permanently.
type Market struct {
	ID             uint64        `json:"id"`
	Question       string        `json:"question"`
	Category       uint8         `json:"category"`
	ResolutionTime int64         `json:"resolution_time"`
	TotalYesStake  uint64        `json:"total_yes_stake"`
	TotalNoStake   uint64        `json:"total_no_stake"`
	Outcome        *bool         `json:"outcome"`
	Settled        bool          `json:"settled"`
	OracleConfig   *OracleConfig `json:"oracle_config,omitempty"`
	Creator        string        `json:"creator"`
	CreatedAt      int64         `json:"created_at"`
}

// IsPendingResolution reports whether the resolution time has passed while
// the market is still unsettled.
func (m *Market) IsPendingResolution(now time.Time) bool {
	return now.Unix() >= m.ResolutionTime && !m.Settled
}

// HasOracle reports whether the market can be auto-resolved by the worker.
func (m *Market) HasOracle() bool {
	return m.OracleConfig != nil
}

// Settle transitions the market to its terminal state. The ledger enforces
// the same precondition on its side; a double settle here is a caller bug.
func (m *Market) Settle(outcome bool) error {
	if m.Settled {
		return ErrAlreadySettled
	}
	m.Settled = true
	m.Outcome = &outcome
	return nil
}

// chainMarket mirrors the JSON shape the fullnode returns for a Market:
// u64 fields arrive as strings and optionals as Move Option vecs.
type chainMarket struct {
	ID             chainU64    `json:"id"`
	Question       string      `json:"question"`
	Category       uint8       `json:"category"`
	ResolutionTime chainU64    `json:"resolution_time"`
	TotalYesStake  chainU64    `json:"total_yes_stake"`
	TotalNoStake   chainU64    `json:"total_no_stake"`
	Outcome        chainOption `json:"outcome"`
	Settled        bool        `json:"settled"`
	OracleConfig   chainOption `json:"oracle_config"`
	Creator        string      `json:"creator"`
	CreatedAt      chainU64    `json:"created_at"`
}

type chainOracleConfig struct {
	FeedID    []byte   `json:"feed_id"`
	Threshold chainU64 `json:"threshold"`
	IsAbove   bool     `json:"is_above"`
}

// UnmarshalJSON decodes the on-chain representation.
func (m *Market) UnmarshalJSON(data []byte) error {
	var cm chainMarket
	if err := json.Unmarshal(data, &cm); err != nil {
		return fmt.Errorf("decode market: %w", err)
	}

	m.ID = uint64(cm.ID)
	m.Question = cm.Question
	m.Category = cm.Category
	m.ResolutionTime = int64(cm.ResolutionTime)
	m.TotalYesStake = uint64(cm.TotalYesStake)
	m.TotalNoStake = uint64(cm.TotalNoStake)
	m.Settled = cm.Settled
	m.Creator = cm.Creator
	m.CreatedAt = int64(cm.CreatedAt)

	if raw, ok := cm.Outcome.Value(); ok {
		var outcome bool
		if err := json.Unmarshal(raw, &outcome); err != nil {
			return fmt.Errorf("decode market outcome: %w", err)
		}
		m.Outcome = &outcome
	} else {
		m.Outcome = nil
	}

	if raw, ok := cm.OracleConfig.Value(); ok {
		var coc chainOracleConfig
		if err := json.Unmarshal(raw, &coc); err != nil {
			return fmt.Errorf("decode oracle config: %w", err)
		}
		m.OracleConfig = &OracleConfig{
			FeedID:    "0x" + hex.EncodeToString(coc.FeedID),
			Threshold: uint64(coc.Threshold),
			IsAbove:   coc.IsAbove,
		}
	} else {
		m.OracleConfig = nil
	}

	return nil
}

// chainU64 decodes a u64 that the fullnode serializes as a JSON string
// (or, for small values, a bare number).
type chainU64 uint64

func (u *chainU64) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return fmt.Errorf("parse u64 %q: %w", s, err)
		}
		*u = chainU64(v)
		return nil
	}
	var v uint64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*u = chainU64(v)
	return nil
}

// chainOption decodes a Move Option, serialized as {"vec": []} when empty
// and {"vec": [value]} when present.
type chainOption struct {
	Vec []json.RawMessage `json:"vec"`
}

// Value returns the wrapped value and whether it is present.
func (o chainOption) Value() (json.RawMessage, bool) {
	if len(o.Vec) == 0 {
		return nil, false
	}
	return o.Vec[0], true
}
