package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"pulse-market/internal/chain"
	"pulse-market/internal/models"
)

// statsStub serves get_user_stats keyed by address. Unknown addresses get
// an error response.
func statsStub(t *testing.T, stats map[string][3]uint64, hits *int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Arguments []any `json:"arguments"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode view request: %v", err)
		}
		if hits != nil {
			*hits++
		}
		address := req.Arguments[0].(string)
		values, ok := stats[address]
		if !ok {
			http.Error(w, `{"message":"no stats"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]string{
			formatU64(values[0]), formatU64(values[1]), formatU64(values[2]),
		})
	}))
}

func TestLeaderboardRanksAndIsolatesFailures(t *testing.T) {
	hits := 0
	server := statsStub(t, map[string][3]uint64{
		// totalBets, totalWon, totalVolume
		"0xaaa": {10, 8, 500}, // 80% win rate
		"0xbbb": {10, 8, 900}, // 80% win rate, higher volume — ranks first
		"0xccc": {10, 2, 100}, // 20% win rate
		"0xddd": {0, 0, 0},    // never bet: 0% win rate, still listed
		// 0xeee missing: stats fetch fails, skipped without failing the board
	}, &hits)
	defer server.Close()

	db := testDB(t)
	chainClient := chain.NewClient(server.URL, "0xpulse")
	positions := NewPositionService(chainClient, NewMarketService(chainClient, 0, 1))
	svc := NewLeaderboardService(db, positions)

	ctx := context.Background()
	for _, addr := range []string{"0xaaa", "0xbbb", "0xccc", "0xddd", "0xeee"} {
		if err := svc.AddKnownUser(ctx, addr); err != nil {
			t.Fatalf("AddKnownUser(%s): %v", addr, err)
		}
	}
	// Repeat visit must upsert, not duplicate.
	if err := svc.AddKnownUser(ctx, "0xaaa"); err != nil {
		t.Fatalf("repeat AddKnownUser: %v", err)
	}
	var userCount int64
	db.Model(&models.KnownUser{}).Count(&userCount)
	if userCount != 5 {
		t.Fatalf("known users = %d, want 5", userCount)
	}

	entries, err := svc.Leaderboard(ctx)
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}

	wantOrder := []string{"0xbbb", "0xaaa", "0xccc", "0xddd"}
	if len(entries) != len(wantOrder) {
		t.Fatalf("leaderboard has %d entries, want %d", len(entries), len(wantOrder))
	}
	for i, want := range wantOrder {
		if entries[i].Address != want {
			t.Errorf("rank %d = %s, want %s", i+1, entries[i].Address, want)
		}
	}
	if entries[0].WinRate != 80 {
		t.Errorf("top win rate = %f, want 80", entries[0].WinRate)
	}

	// Second read within the TTL comes from cache: no extra view calls.
	hitsBefore := hits
	if _, err := svc.Leaderboard(ctx); err != nil {
		t.Fatalf("cached Leaderboard: %v", err)
	}
	if hits != hitsBefore {
		t.Errorf("cached read hit the node %d more times", hits-hitsBefore)
	}

	// Invalidate forces a recompute.
	svc.Invalidate()
	if _, err := svc.Leaderboard(ctx); err != nil {
		t.Fatalf("recomputed Leaderboard: %v", err)
	}
	if hits == hitsBefore {
		t.Error("invalidated read should hit the node again")
	}
}

func formatU64(v uint64) string {
	return strconv.FormatUint(v, 10)
}
