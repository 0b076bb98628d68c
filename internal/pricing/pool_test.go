package pricing

import "testing"

func TestImpliedOddsSumToHundred(t *testing.T) {
	cases := []struct {
		yes, no uint64
	}{
		{0, 0},
		{1, 0},
		{0, 1},
		{600_000_000, 400_000_000},
		{1, 2},
		{2, 1},
		{333, 667},
		{1_000_000_000_000, 1},
		{1, 1_000_000_000_000},
		{7, 13},
	}

	for _, c := range cases {
		yesPct, noPct := ImpliedOdds(c.yes, c.no)
		if yesPct+noPct != 100 {
			t.Errorf("ImpliedOdds(%d, %d) = (%d, %d), sum %d, want 100",
				c.yes, c.no, yesPct, noPct, yesPct+noPct)
		}
		if yesPct < 0 || yesPct > 100 || noPct < 0 || noPct > 100 {
			t.Errorf("ImpliedOdds(%d, %d) = (%d, %d), out of [0,100]",
				c.yes, c.no, yesPct, noPct)
		}
	}
}

func TestImpliedOddsEmptyPool(t *testing.T) {
	yesPct, noPct := ImpliedOdds(0, 0)
	if yesPct != 50 || noPct != 50 {
		t.Errorf("empty pool odds = (%d, %d), want (50, 50)", yesPct, noPct)
	}
}

func TestImpliedOddsScenario(t *testing.T) {
	// 600 MOVE yes vs 400 MOVE no (in Octas) reads as 60/40.
	yesPct, noPct := ImpliedOdds(600_000_000, 400_000_000)
	if yesPct != 60 || noPct != 40 {
		t.Errorf("odds = (%d, %d), want (60, 40)", yesPct, noPct)
	}
}

func TestMultiplier(t *testing.T) {
	if m := Multiplier(0, 0, true); m != DefaultMultiplier {
		t.Errorf("empty side multiplier = %v, want %v", m, DefaultMultiplier)
	}
	if m := Multiplier(500, 0, false); m != DefaultMultiplier {
		t.Errorf("empty NO side multiplier = %v, want %v", m, DefaultMultiplier)
	}
	if m := Multiplier(500, 500, true); m != 2.0 {
		t.Errorf("balanced pool multiplier = %v, want 2.0", m)
	}
	if m := Multiplier(600_000_000, 400_000_000, true); m != 1_000_000_000.0/600_000_000.0 {
		t.Errorf("yes multiplier = %v", m)
	}
}

func TestPayoutBalancedPoolDoublesStake(t *testing.T) {
	const total = 250_000_000
	if got := Payout(100, total, total, true); got != 200 {
		t.Errorf("balanced payout = %d, want 200", got)
	}
}

func TestPayoutScenario(t *testing.T) {
	// 1 MOVE on YES against a 600/400 pool previews at 166,666,666 Octas.
	got := Payout(100_000_000, 600_000_000, 400_000_000, true)
	if got != 166_666_666 {
		t.Errorf("payout = %d, want 166666666", got)
	}
}

func TestPayoutEmptyWinningPool(t *testing.T) {
	// A market that resolves to a side nobody bet on owes nothing.
	if got := Payout(100, 500, 0, false); got != 0 {
		t.Errorf("empty winning pool payout = %d, want 0", got)
	}
	if got := Payout(100, 0, 500, true); got != 0 {
		t.Errorf("empty winning pool payout = %d, want 0", got)
	}
}

func TestPayoutLargeAmountsNoOverflow(t *testing.T) {
	// stake * pool must not lose precision even at 10^12-scale amounts,
	// where the intermediate product overflows 64 bits.
	const stake = 1_000_000_000_000
	const yes = 1_000_000_000_000
	const no = 3_000_000_000_000
	// payout = stake * 4e12 / 1e12 = 4e12
	if got := Payout(stake, yes, no, true); got != 4_000_000_000_000 {
		t.Errorf("large payout = %d, want 4000000000000", got)
	}
}

func TestPayoutNeverNegativeAndFloors(t *testing.T) {
	// 1 Octa share of a 3-Octa pool floors to 1.
	if got := Payout(1, 2, 1, true); got != 1 {
		t.Errorf("floor payout = %d, want 1", got)
	}
	if got := Payout(0, 100, 100, true); got != 0 {
		t.Errorf("zero stake payout = %d, want 0", got)
	}
}
