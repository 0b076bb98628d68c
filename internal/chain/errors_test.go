package chain

import (
	"errors"
	"testing"
)

func TestExtractAbortCode(t *testing.T) {
	cases := []struct {
		vmStatus string
		code     int
		ok       bool
	}{
		{"Move abort in 0x78a3::market: 0x3", 3, true},
		{"Move abort in 0x78a3::position: 0x66", 102, true},
		{"Transaction failed, abort code: 104", 104, true},
		{"Executed successfully", 0, false},
		{"some unparseable garbage", 0, false},
	}

	for _, c := range cases {
		code, ok := ExtractAbortCode(c.vmStatus)
		if ok != c.ok || code != c.code {
			t.Errorf("ExtractAbortCode(%q) = (%d, %v), want (%d, %v)",
				c.vmStatus, code, ok, c.code, c.ok)
		}
	}
}

func TestParseVMStatus(t *testing.T) {
	cases := []struct {
		vmStatus string
		want     string
	}{
		{"Executed successfully", "Transaction successful"},
		{"Move abort in 0x78a3::market: 0x3", "Market has already been settled"},
		{"Move abort in 0x78a3::position: 0x68", "You did not win this bet"},
		{"abort code: 302", "Welcome bonus already claimed"},
		{"abort code: 999", "Unknown error (code: 999)"},
		{"INSUFFICIENT_BALANCE_FOR_TRANSACTION_FEE", "Insufficient balance for this transaction"},
		{"EXECUTION_FAILURE: OUT_OF_GAS", "Transaction ran out of gas"},
		{"SEQUENCE_NUMBER_TOO_OLD", "Transaction sequence error - please try again"},
		{"mystery failure", "Transaction failed. Please try again."},
	}

	for _, c := range cases {
		if got := ParseVMStatus(c.vmStatus); got != c.want {
			t.Errorf("ParseVMStatus(%q) = %q, want %q", c.vmStatus, got, c.want)
		}
	}
}

func TestClassifyResult(t *testing.T) {
	if err := ClassifyResult(&TxnResult{Success: true, VMStatus: "Executed successfully"}); err != nil {
		t.Errorf("success classified as error: %v", err)
	}

	err := ClassifyResult(&TxnResult{Success: false, VMStatus: "Move abort in 0x1::market: 0x3"})
	if !errors.Is(err, ErrAlreadySettled) {
		t.Errorf("already-settled abort = %v, want ErrAlreadySettled", err)
	}

	err = ClassifyResult(&TxnResult{Success: false, VMStatus: "Move abort in 0x1::position: 0x66"})
	if !errors.Is(err, ErrAlreadyClaimed) {
		t.Errorf("already-claimed abort = %v, want ErrAlreadyClaimed", err)
	}

	err = ClassifyResult(&TxnResult{Success: false, VMStatus: "Move abort in 0x1::position: 0x68"})
	if err == nil || errors.Is(err, ErrAlreadySettled) || errors.Is(err, ErrAlreadyClaimed) {
		t.Errorf("not-a-winner abort misclassified: %v", err)
	}
	if err.Error() != "You did not win this bet" {
		t.Errorf("not-a-winner message = %q", err.Error())
	}
}

func TestIsBenignAbort(t *testing.T) {
	benign := []int{CodeMarketAlreadySettled, CodePositionClaimed, CodeBonusClaimed}
	for _, code := range benign {
		if !IsBenignAbort(code) {
			t.Errorf("code %d should be benign", code)
		}
	}
	genuine := []int{CodeMarketNotFound, CodePositionNotWinner, CodeTreasuryInsufficient, CodePositionBetTooSmall}
	for _, code := range genuine {
		if IsBenignAbort(code) {
			t.Errorf("code %d should not be benign", code)
		}
	}
}

func TestShouldSponsor(t *testing.T) {
	station := NewGasStation("https://api.shinami.com/aptos/gas/v1", "key")

	sponsored := []string{
		"0x78a3::position::place_bet",
		"0x78a3::position::claim_winnings",
		"0x78a3::bonus::claim_welcome_bonus",
		"0x78a3::referral::register_referral",
	}
	for _, fn := range sponsored {
		if !station.ShouldSponsor(fn) {
			t.Errorf("%s should be sponsored", fn)
		}
	}

	unsponsored := []string{
		"0x78a3::market::create_market",
		"0x78a3::market::resolve_market_with_oracle",
		"0x78a3::treasury::withdraw",
	}
	for _, fn := range unsponsored {
		if station.ShouldSponsor(fn) {
			t.Errorf("%s should not be sponsored", fn)
		}
	}

	disabled := NewGasStation("https://api.shinami.com/aptos/gas/v1", "")
	if disabled.ShouldSponsor("0x78a3::position::place_bet") {
		t.Error("disabled station should never sponsor")
	}
}
