package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pulse-market/internal/chain"
	"pulse-market/internal/models"
	"pulse-market/internal/pricing"
)

// fullnodeStub answers /view requests with canned JSON keyed by function
// name plus, for get_market, the market id argument.
func fullnodeStub(t *testing.T, responses map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Function  string `json:"function"`
			Arguments []any  `json:"arguments"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode view request: %v", err)
		}

		key := req.Function[strings.LastIndex(req.Function, "::")+2:]
		if key == "get_market" {
			key = fmt.Sprintf("get_market:%v", req.Arguments[0])
		}
		body, ok := responses[key]
		if !ok {
			http.Error(w, `{"message":"not found"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
}

func chainMarketJSON(id uint64, settled bool, outcome string) string {
	return fmt.Sprintf(`[{
		"id": "%d",
		"question": "q",
		"category": 0,
		"resolution_time": "1735689600",
		"total_yes_stake": "600000000",
		"total_no_stake": "400000000",
		"outcome": {"vec": [%s]},
		"settled": %t,
		"oracle_config": {"vec": []},
		"creator": "0xfeed",
		"created_at": "1735000000"
	}]`, id, outcome, settled)
}

func TestGetUserBookPartitions(t *testing.T) {
	positionsJSON := `[[
		{"id": "1", "market_id": "10", "user": "0xu", "is_yes": true,  "amount": "100000000", "claimed": false, "created_at": "1"},
		{"id": "2", "market_id": "11", "user": "0xu", "is_yes": true,  "amount": "100000000", "claimed": false, "created_at": "2"},
		{"id": "3", "market_id": "12", "user": "0xu", "is_yes": true,  "amount": "100000000", "claimed": false, "created_at": "3"},
		{"id": "4", "market_id": "11", "user": "0xu", "is_yes": false, "amount": "50000000",  "claimed": false, "created_at": "4"},
		{"id": "5", "market_id": "13", "user": "0xu", "is_yes": true,  "amount": "100000000", "claimed": false, "created_at": "5"}
	]]`

	server := fullnodeStub(t, map[string]string{
		"get_user_positions": positionsJSON,
		"get_market:10":      chainMarketJSON(10, false, ""),     // open
		"get_market:11":      chainMarketJSON(11, true, "true"),  // settled YES
		"get_market:12":      chainMarketJSON(12, true, "false"), // settled NO
		// market 13 intentionally missing: fetch fails
	})
	defer server.Close()

	chainClient := chain.NewClient(server.URL, "0xpulse")
	markets := NewMarketService(chainClient, 10_000_000, 1_000_000_000)
	svc := NewPositionService(chainClient, markets)

	book, err := svc.GetUserBook(context.Background(), "0xu")
	if err != nil {
		t.Fatalf("GetUserBook: %v", err)
	}

	if len(book.All) != 5 {
		t.Fatalf("All = %d positions, want 5", len(book.All))
	}

	// Position 1 (open market) and 5 (missing market) are active.
	if got := positionIDs(book.Active); !equalIDs(got, []uint64{1, 5}) {
		t.Errorf("Active = %v, want [1 5]", got)
	}
	// Position 2 is the only settled, unclaimed winner.
	if got := positionIDs(book.Claimable); !equalIDs(got, []uint64{2}) {
		t.Errorf("Claimable = %v, want [2]", got)
	}
	if got := positionIDs(book.SettledWon); !equalIDs(got, []uint64{2}) {
		t.Errorf("SettledWon = %v, want [2]", got)
	}
	// Positions 3 (YES on a NO market) and 4 (NO on a YES market) lost.
	if got := positionIDs(book.SettledLost); !equalIDs(got, []uint64{3, 4}) {
		t.Errorf("SettledLost = %v, want [3 4]", got)
	}
}

func TestMissingMarketNeverClaimable(t *testing.T) {
	outcome := true
	p := models.PositionWithMarket{
		Position: models.Position{ID: 1, IsYes: true, Claimed: false},
		Market:   nil,
	}
	if p.IsClaimable() {
		t.Error("position with missing market must not be claimable")
	}
	if !p.IsActive() {
		t.Error("position with missing market should read as active")
	}

	p.Market = &models.Market{Settled: true, Outcome: &outcome}
	if !p.IsClaimable() {
		t.Error("settled unclaimed winner must be claimable")
	}
}

func TestClaimableAmountMatchesPayout(t *testing.T) {
	chainClient := chain.NewClient("http://unused", "0xpulse")
	svc := NewPositionService(chainClient, NewMarketService(chainClient, 0, 1))

	outcome := true
	claimable := []models.PositionWithMarket{
		{
			Position: models.Position{ID: 1, IsYes: true, Amount: 100_000_000},
			Market: &models.Market{
				TotalYesStake: 700_000_000,
				TotalNoStake:  1_000_000_000,
				Settled:       true,
				Outcome:       &outcome,
			},
		},
		{
			// Market snapshot missing: contributes nothing rather than guessing.
			Position: models.Position{ID: 2, IsYes: true, Amount: 100_000_000},
		},
	}

	want := pricing.Payout(100_000_000, 700_000_000, 1_000_000_000, true)
	if got := svc.ClaimableAmount(claimable); got != want {
		t.Errorf("ClaimableAmount = %d, want %d", got, want)
	}
}

func TestGetUserStats(t *testing.T) {
	server := fullnodeStub(t, map[string]string{
		"get_user_stats": `["12", "5", "1200000000"]`,
	})
	defer server.Close()

	chainClient := chain.NewClient(server.URL, "0xpulse")
	svc := NewPositionService(chainClient, NewMarketService(chainClient, 0, 1))

	stats, err := svc.GetUserStats(context.Background(), "0xu")
	if err != nil {
		t.Fatalf("GetUserStats: %v", err)
	}
	if stats.TotalBets != 12 || stats.TotalWon != 5 || stats.TotalVolume != 1_200_000_000 {
		t.Errorf("stats = %+v", stats)
	}
}

func positionIDs(positions []models.PositionWithMarket) []uint64 {
	ids := make([]uint64, len(positions))
	for i, p := range positions {
		ids[i] = p.ID
	}
	return ids
}

func equalIDs(got, want []uint64) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
