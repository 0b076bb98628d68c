package oracle

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

const btcFeed = "e62df6c8b4a85fe1a67db44dc12de5db330f7ac66b72dc658afedf0f4a415b43"

func hermesStub(hits *atomic.Int64) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"binary": {"encoding": "hex", "data": ["504e4155deadbeef"]},
			"parsed": [{
				"id": "` + btcFeed + `",
				"price": {"price": "9712345678901", "conf": "4200000000", "expo": -8, "publish_time": 1735689600}
			}]
		}`))
	}))
}

func TestGetLatestPricesParsesAndScales(t *testing.T) {
	var hits atomic.Int64
	server := hermesStub(&hits)
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	quotes, err := client.GetLatestPrices(context.Background())
	if err != nil {
		t.Fatalf("GetLatestPrices: %v", err)
	}

	quote, ok := quotes["BTC_USD"]
	if !ok {
		t.Fatalf("no BTC_USD quote in %v", quotes)
	}
	// 9712345678901 * 10^-8 = 97123.45678901
	want := decimal.RequireFromString("97123.45678901")
	if !quote.Price.Equal(want) {
		t.Errorf("price = %s, want %s", quote.Price, want)
	}
	if quote.Timestamp != 1735689600 {
		t.Errorf("timestamp = %d", quote.Timestamp)
	}
	if quote.FeedID != "0x"+btcFeed {
		t.Errorf("feed id = %s", quote.FeedID)
	}
}

func TestCacheServesWithinTTL(t *testing.T) {
	var hits atomic.Int64
	server := hermesStub(&hits)
	defer server.Close()

	client := NewClient(server.URL, time.Minute)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := client.GetLatestPrices(ctx); err != nil {
			t.Fatalf("fetch %d: %v", i, err)
		}
	}

	if got := hits.Load(); got != 1 {
		t.Errorf("upstream hit %d times within TTL, want 1", got)
	}
}

func TestInvalidateForcesRefetch(t *testing.T) {
	var hits atomic.Int64
	server := hermesStub(&hits)
	defer server.Close()

	client := NewClient(server.URL, time.Minute)
	ctx := context.Background()

	if _, err := client.GetLatestPrices(ctx); err != nil {
		t.Fatal(err)
	}
	client.Invalidate()
	if _, err := client.GetLatestPrices(ctx); err != nil {
		t.Fatal(err)
	}

	if got := hits.Load(); got != 2 {
		t.Errorf("upstream hit %d times after invalidate, want 2", got)
	}
}

func TestGetPriceUpdateDataBypassesCache(t *testing.T) {
	var hits atomic.Int64
	server := hermesStub(&hits)
	defer server.Close()

	client := NewClient(server.URL, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		data, err := client.GetPriceUpdateData(ctx, []string{btcFeed})
		if err != nil {
			t.Fatalf("GetPriceUpdateData: %v", err)
		}
		if len(data) != 1 || data[0] != "504e4155deadbeef" {
			t.Errorf("update data = %v", data)
		}
	}

	// Evidence payloads must never be cached.
	if got := hits.Load(); got != 2 {
		t.Errorf("upstream hit %d times for evidence, want 2", got)
	}
}

func TestFeedSymbol(t *testing.T) {
	if s := FeedSymbol("0x" + btcFeed); s != "BTC_USD" {
		t.Errorf("FeedSymbol with prefix = %q", s)
	}
	if s := FeedSymbol(btcFeed); s != "BTC_USD" {
		t.Errorf("FeedSymbol without prefix = %q", s)
	}
	if s := FeedSymbol("0xdeadbeef"); s != "" {
		t.Errorf("unknown feed resolved to %q", s)
	}
}
