// Package pricing computes odds, multipliers, and payouts for binary
// pari-mutuel pools. Every function is a pure function of the stake totals:
// the mobile preview and the settlement path must agree bit-for-bit, so
// nothing here touches I/O, floats in payout math, or global state.
package pricing

import "math/big"

// DefaultMultiplier is the payout multiplier quoted for a side nobody has
// staked on yet. A fresh 50/50 market pays even money.
const DefaultMultiplier = 2.0

// ImpliedOdds converts pool totals into a YES/NO percentage pair.
// The pair always sums to exactly 100; an empty pool reads as 50/50.
func ImpliedOdds(totalYes, totalNo uint64) (yesPercent, noPercent int) {
	total := totalYes + totalNo
	if total == 0 {
		return 50, 50
	}
	// round(100 * totalYes / total) in integers, half up.
	yesPercent = int((200*totalYes + total) / (2 * total))
	return yesPercent, 100 - yesPercent
}

// Multiplier returns the gross payout multiplier for one side of the pool.
// An empty side falls back to DefaultMultiplier rather than dividing by zero.
func Multiplier(totalYes, totalNo uint64, isYes bool) float64 {
	side := totalNo
	if isYes {
		side = totalYes
	}
	if side == 0 {
		return DefaultMultiplier
	}
	return float64(totalYes+totalNo) / float64(side)
}

// Payout computes the amount owed to a winning stake:
// stake * (totalYes + totalNo) / winningSideTotal, floor division.
//
// The intermediate product can exceed 64 bits for realistic Octa amounts
// (stakes and pools up to 10^12), so it goes through big.Int. An empty
// winning pool pays 0 — nobody can be owed from a pool with no winners.
func Payout(stake, totalYes, totalNo uint64, isYesSide bool) uint64 {
	winningSide := totalNo
	if isYesSide {
		winningSide = totalYes
	}
	if winningSide == 0 {
		return 0
	}

	product := new(big.Int).Mul(
		new(big.Int).SetUint64(stake),
		new(big.Int).SetUint64(totalYes+totalNo),
	)
	product.Quo(product, new(big.Int).SetUint64(winningSide))
	return product.Uint64()
}
