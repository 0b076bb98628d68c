// Package oracle reads prices from a Pyth Hermes endpoint. Quotes are
// cached with a short TTL so every consumer in the process shares one
// outbound request stream; concurrent cache misses collapse into a single
// fetch.
package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"pulse-market/internal/models"
)

// DefaultEndpoint is the public Hermes instance.
const DefaultEndpoint = "https://hermes.pyth.network"

// DefaultTTL bounds how stale a cached quote may be.
const DefaultTTL = time.Second

// PriceFeeds maps supported symbols to their Pyth feed IDs.
var PriceFeeds = map[string]string{
	"BTC_USD":  "0xe62df6c8b4a85fe1a67db44dc12de5db330f7ac66b72dc658afedf0f4a415b43",
	"ETH_USD":  "0xff61491a931112ddf1bd8147cd1b641375f79f5825126d665480874634fd0ace",
	"MOVE_USD": "0x03ae4db29ed4ae33d323568895aa00337e658e348b37509f5372ae51f0af00d5",
	"SOL_USD":  "0xef0d8b6fda2ceba41da15d4095d1da392a0d2f8ed0c6c7bc0f4cfac8c280b56d",
}

// FeedSymbol resolves a feed ID back to its symbol, tolerating a missing
// 0x prefix and case differences. Empty string when unknown.
func FeedSymbol(feedID string) string {
	normalized := NormalizeFeedID(feedID)
	for symbol, id := range PriceFeeds {
		if NormalizeFeedID(id) == normalized {
			return symbol
		}
	}
	return ""
}

// NormalizeFeedID lowercases a feed ID and ensures the 0x prefix.
func NormalizeFeedID(feedID string) string {
	id := strings.ToLower(feedID)
	if !strings.HasPrefix(id, "0x") {
		id = "0x" + id
	}
	return id
}

// Client fetches and caches Pyth prices.
type Client struct {
	endpoint   string
	ttl        time.Duration
	httpClient *http.Client

	mu        sync.RWMutex
	quotes    map[string]models.PriceQuote
	lastFetch time.Time

	group singleflight.Group
}

// NewClient creates a Hermes client with the given cache TTL.
func NewClient(endpoint string, ttl time.Duration) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Client{
		endpoint: endpoint,
		ttl:      ttl,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		quotes: make(map[string]models.PriceQuote),
	}
}

// GetLatestPrices returns quotes for all supported feeds, served from cache
// when fresh. A cache read never blocks on the network; only a miss (or
// expiry) triggers a fetch, and concurrent misses share one request.
func (c *Client) GetLatestPrices(ctx context.Context) (map[string]models.PriceQuote, error) {
	c.mu.RLock()
	fresh := time.Since(c.lastFetch) < c.ttl && len(c.quotes) > 0
	cached := c.snapshotLocked()
	c.mu.RUnlock()

	if fresh {
		return cached, nil
	}

	_, err, _ := c.group.Do("latest", func() (any, error) {
		// Another waiter may have refreshed while we queued.
		c.mu.RLock()
		stillFresh := time.Since(c.lastFetch) < c.ttl && len(c.quotes) > 0
		c.mu.RUnlock()
		if stillFresh {
			return nil, nil
		}
		return nil, c.refresh(ctx)
	})
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshotLocked(), nil
}

// GetPrice returns the quote for one symbol.
func (c *Client) GetPrice(ctx context.Context, symbol string) (models.PriceQuote, error) {
	quotes, err := c.GetLatestPrices(ctx)
	if err != nil {
		return models.PriceQuote{}, err
	}
	quote, ok := quotes[symbol]
	if !ok {
		return models.PriceQuote{}, fmt.Errorf("no price for symbol %s", symbol)
	}
	return quote, nil
}

// GetPriceByFeedID returns the quote for one feed.
func (c *Client) GetPriceByFeedID(ctx context.Context, feedID string) (models.PriceQuote, error) {
	symbol := FeedSymbol(feedID)
	if symbol == "" {
		return models.PriceQuote{}, fmt.Errorf("unknown feed id %s", feedID)
	}
	return c.GetPrice(ctx, symbol)
}

// Invalidate drops the cache so the next read fetches fresh data.
func (c *Client) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.quotes = make(map[string]models.PriceQuote)
	c.lastFetch = time.Time{}
}

func (c *Client) snapshotLocked() map[string]models.PriceQuote {
	out := make(map[string]models.PriceQuote, len(c.quotes))
	for k, v := range c.quotes {
		out[k] = v
	}
	return out
}

type hermesResponse struct {
	Binary struct {
		Encoding string   `json:"encoding"`
		Data     []string `json:"data"`
	} `json:"binary"`
	Parsed []struct {
		ID    string `json:"id"`
		Price struct {
			Price       string `json:"price"`
			Conf        string `json:"conf"`
			Expo        int32  `json:"expo"`
			PublishTime int64  `json:"publish_time"`
		} `json:"price"`
	} `json:"parsed"`
}

func (c *Client) refresh(ctx context.Context) error {
	feedIDs := make([]string, 0, len(PriceFeeds))
	for _, id := range PriceFeeds {
		feedIDs = append(feedIDs, id)
	}

	parsed, _, err := c.fetchUpdates(ctx, feedIDs)
	if err != nil {
		return err
	}

	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for symbol, quote := range parsed {
		c.quotes[symbol] = quote
	}
	c.lastFetch = now
	return nil
}

// GetPriceUpdateData returns the verifiable update payloads for the given
// feeds, for attaching to settlement transactions as oracle evidence.
// Always fetched fresh: evidence must never come from the cache.
func (c *Client) GetPriceUpdateData(ctx context.Context, feedIDs []string) ([]string, error) {
	_, binary, err := c.fetchUpdates(ctx, feedIDs)
	if err != nil {
		return nil, err
	}
	if len(binary) == 0 {
		return nil, fmt.Errorf("hermes returned no update data")
	}
	return binary, nil
}

// fetchUpdates performs one Hermes request, returning parsed quotes keyed
// by symbol plus the binary update payloads.
func (c *Client) fetchUpdates(ctx context.Context, feedIDs []string) (map[string]models.PriceQuote, []string, error) {
	query := url.Values{}
	for _, id := range feedIDs {
		query.Add("ids[]", NormalizeFeedID(id))
	}
	query.Set("encoding", "hex")

	endpoint := fmt.Sprintf("%s/v2/updates/price/latest?%s", c.endpoint, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("build hermes request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch pyth prices: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(resp.Body)
		return nil, nil, fmt.Errorf("hermes returned %d: %s", resp.StatusCode, string(payload))
	}

	var hermes hermesResponse
	if err := json.NewDecoder(resp.Body).Decode(&hermes); err != nil {
		return nil, nil, fmt.Errorf("decode hermes response: %w", err)
	}

	quotes := make(map[string]models.PriceQuote)
	for _, update := range hermes.Parsed {
		feedID := NormalizeFeedID(update.ID)
		symbol := FeedSymbol(feedID)
		if symbol == "" {
			continue
		}
		priceInt, err := strconv.ParseInt(update.Price.Price, 10, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("parse price for %s: %w", symbol, err)
		}
		confInt, err := strconv.ParseInt(update.Price.Conf, 10, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("parse confidence for %s: %w", symbol, err)
		}
		quotes[symbol] = models.PriceQuote{
			Symbol:     symbol,
			FeedID:     feedID,
			Price:      decimal.New(priceInt, update.Price.Expo),
			Confidence: decimal.New(confInt, update.Price.Expo),
			Timestamp:  update.Price.PublishTime,
		}
	}

	return quotes, hermes.Binary.Data, nil
}
