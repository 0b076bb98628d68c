package chain

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// Sentinel ledger rejections. Already-settled and already-claimed are
// benign: a retry raced a prior success, the ledger is in the state we
// wanted, and callers treat them as no-ops.
var (
	ErrAlreadySettled = errors.New("market already settled")
	ErrAlreadyClaimed = errors.New("winnings already claimed")
)

// Abort codes of the market module (1-99).
const (
	CodeMarketNotAuthorized  = 1
	CodeMarketNotFound       = 2
	CodeMarketAlreadySettled = 3
	CodeMarketNotSettled     = 4
	CodeMarketBadCategory    = 5
	CodeMarketExpired        = 6
	CodeMarketInitialized    = 8
	CodeMarketNoOracle       = 9
	CodeMarketNotExpired     = 10
)

// Abort codes of the position module (100-199).
const (
	CodePositionNotFound    = 101
	CodePositionClaimed     = 102
	CodePositionNotSettled  = 103
	CodePositionNotWinner   = 104
	CodePositionBetTooSmall = 106
	CodePositionBetTooLarge = 107
	CodePositionExpired     = 108
	CodePositionNotOwner    = 109
	CodePositionInitialized = 110
)

// Abort codes of the treasury module (200-299).
const (
	CodeTreasuryNotAuthorized = 201
	CodeTreasuryInsufficient  = 202
	CodeTreasuryBadFee        = 203
	CodeTreasuryInitialized   = 204
	CodeTreasuryMissing       = 205
)

// Abort codes of the bonus module (300-399).
const (
	CodeBonusNotAuthorized = 301
	CodeBonusClaimed       = 302
	CodeBonusInsufficient  = 303
	CodeBonusInitialized   = 304
)

// contractErrors maps every known abort code to its user-facing message.
// This table is shared contract: client-side preview validation and
// server-side error translation must agree on it.
var contractErrors = map[int]string{
	CodeMarketNotAuthorized:  "You don't have permission to perform this action",
	CodeMarketNotFound:       "Market not found",
	CodeMarketAlreadySettled: "Market has already been settled",
	CodeMarketNotSettled:     "Market has not been settled yet",
	CodeMarketBadCategory:    "Invalid category",
	CodeMarketExpired:        "Market has expired",
	CodeMarketInitialized:    "Already initialized",
	CodeMarketNoOracle:       "No oracle configuration found",
	CodeMarketNotExpired:     "Market has not expired yet",

	CodePositionNotFound:    "Position not found",
	CodePositionClaimed:     "Winnings already claimed",
	CodePositionNotSettled:  "Market has not been settled yet",
	CodePositionNotWinner:   "You did not win this bet",
	CodePositionBetTooSmall: "Bet amount too small (minimum $0.10)",
	CodePositionBetTooLarge: "Bet amount too large (maximum $10)",
	CodePositionExpired:     "Market has expired - no more bets allowed",
	CodePositionNotOwner:    "You don't own this position",
	CodePositionInitialized: "Already initialized",

	CodeTreasuryNotAuthorized: "You don't have permission to perform this action",
	CodeTreasuryInsufficient:  "Insufficient treasury balance",
	CodeTreasuryBadFee:        "Invalid fee percentage",
	CodeTreasuryInitialized:   "Already initialized",
	CodeTreasuryMissing:       "Treasury not initialized",

	CodeBonusNotAuthorized: "You don't have permission to perform this action",
	CodeBonusClaimed:       "Welcome bonus already claimed",
	CodeBonusInsufficient:  "Insufficient bonus balance",
	CodeBonusInitialized:   "Already initialized",
}

const vmStatusExecuted = "Executed successfully"

var (
	hexAbortPattern = regexp.MustCompile(`0x([0-9a-fA-F]+)$`)
	decAbortPattern = regexp.MustCompile(`(?i)abort code:\s*(\d+)`)
)

// ExtractAbortCode pulls the numeric abort code out of a vm_status string,
// e.g. "Move abort in 0x...::market: 0x6" or "... abort code: 6".
func ExtractAbortCode(vmStatus string) (int, bool) {
	if m := hexAbortPattern.FindStringSubmatch(vmStatus); m != nil {
		code, err := strconv.ParseInt(m[1], 16, 32)
		if err == nil {
			return int(code), true
		}
	}
	if m := decAbortPattern.FindStringSubmatch(vmStatus); m != nil {
		code, err := strconv.Atoi(m[1])
		if err == nil {
			return code, true
		}
	}
	return 0, false
}

// ContractError returns the message for a known abort code, or a generic
// message for codes this build does not know about. Unrecognized codes must
// degrade, never crash.
func ContractError(code int) string {
	if msg, ok := contractErrors[code]; ok {
		return msg
	}
	return "Unknown error (code: " + strconv.Itoa(code) + ")"
}

// ParseVMStatus turns a raw vm_status into a user-facing message.
func ParseVMStatus(vmStatus string) string {
	if vmStatus == vmStatusExecuted {
		return "Transaction successful"
	}
	if code, ok := ExtractAbortCode(vmStatus); ok {
		return ContractError(code)
	}
	switch {
	case strings.Contains(vmStatus, "INSUFFICIENT_BALANCE"):
		return "Insufficient balance for this transaction"
	case strings.Contains(vmStatus, "OUT_OF_GAS"):
		return "Transaction ran out of gas"
	case strings.Contains(vmStatus, "SEQUENCE_NUMBER"):
		return "Transaction sequence error - please try again"
	}
	return "Transaction failed. Please try again."
}

// IsBenignAbort reports whether an abort code means the transaction found
// the ledger already in the target state.
func IsBenignAbort(code int) bool {
	return code == CodeMarketAlreadySettled || code == CodePositionClaimed || code == CodeBonusClaimed
}

// ClassifyResult inspects a transaction result and maps benign aborts onto
// their sentinel errors. Returns nil for success, a sentinel for benign
// rejections, and a descriptive error for genuine failures.
func ClassifyResult(res *TxnResult) error {
	if res == nil {
		return errors.New("no transaction result")
	}
	if res.Success {
		return nil
	}
	code, ok := ExtractAbortCode(res.VMStatus)
	if !ok {
		return errors.New(ParseVMStatus(res.VMStatus))
	}
	switch code {
	case CodeMarketAlreadySettled:
		return ErrAlreadySettled
	case CodePositionClaimed:
		return ErrAlreadyClaimed
	}
	return errors.New(ContractError(code))
}
