package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// sponsoredFunctions are the operations eligible for gas sponsorship.
// Core user actions first, onboarding and growth second. Everything else
// pays its own gas.
var sponsoredFunctions = []string{
	"::position::place_bet",
	"::position::claim_winnings",
	"::bonus::claim_welcome_bonus",
	"::referral::register_referral",
}

// GasStation sponsors transaction fees through a Shinami-style gas station
// speaking JSON-RPC. A zero-value API key disables sponsorship entirely and
// every action falls back to paying its own gas.
type GasStation struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

// NewGasStation creates a gas station client. An empty apiKey yields a
// disabled station: ShouldSponsor always answers false.
func NewGasStation(endpoint, apiKey string) *GasStation {
	return &GasStation{
		endpoint: endpoint,
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Enabled reports whether the station is configured at all.
func (g *GasStation) Enabled() bool {
	return g.apiKey != ""
}

// ShouldSponsor reports whether a transaction targeting function should be
// submitted for sponsorship before signing.
func (g *GasStation) ShouldSponsor(function string) bool {
	if !g.Enabled() {
		return false
	}
	for _, pattern := range sponsoredFunctions {
		if strings.Contains(function, pattern) {
			return true
		}
	}
	return false
}

type rpcRequest struct {
	Jsonrpc string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result,omitempty"`
	Error  *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Sponsorship is the gas station's answer for one transaction.
type Sponsorship struct {
	FeePayer  string `json:"fee_payer"`
	Signature string `json:"signature"`
	ExpiresAt int64  `json:"expires_at"`
}

// Sponsor asks the gas station to co-sign a BCS-serialized transaction.
// Callers must treat failure as "pay your own gas", never as a blocked
// action.
func (g *GasStation) Sponsor(ctx context.Context, sender, transactionBytes string) (*Sponsorship, error) {
	if !g.Enabled() {
		return nil, fmt.Errorf("gas station not configured")
	}
	var sponsorship Sponsorship
	err := g.call(ctx, "gas_sponsorTransaction", map[string]string{
		"sender":      sender,
		"transaction": transactionBytes,
	}, &sponsorship)
	if err != nil {
		return nil, err
	}
	return &sponsorship, nil
}

// SponsorshipStatus returns IN_FLIGHT, INVALID, or COMPLETE for a
// previously sponsored transaction.
func (g *GasStation) SponsorshipStatus(ctx context.Context, transactionHash string) (string, error) {
	if !g.Enabled() {
		return "", fmt.Errorf("gas station not configured")
	}
	var status string
	err := g.call(ctx, "gas_getSponsoredTransactionStatus", map[string]string{
		"transactionHash": transactionHash,
	}, &status)
	if err != nil {
		return "", err
	}
	return status, nil
}

// FundInfo reports the sponsorship fund's remaining balance.
type FundInfo struct {
	Balance   uint64 `json:"balance"`
	InFlight  uint64 `json:"in_flight"`
	DepositTo string `json:"deposit_to"`
}

// Fund returns gas fund balance and metadata.
func (g *GasStation) Fund(ctx context.Context) (*FundInfo, error) {
	if !g.Enabled() {
		return nil, fmt.Errorf("gas station not configured")
	}
	var info FundInfo
	if err := g.call(ctx, "gas_getFund", map[string]string{}, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (g *GasStation) call(ctx context.Context, method string, params any, out any) error {
	body, err := json.Marshal(rpcRequest{
		Jsonrpc: "2.0",
		ID:      time.Now().UnixMilli(),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("encode %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s returned %d: %s", method, resp.StatusCode, string(payload))
	}

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	if rpcResp.Error != nil {
		log.Printf("[GasStation] %s error %d: %s", method, rpcResp.Error.Code, rpcResp.Error.Message)
		return fmt.Errorf("%s: %s", method, rpcResp.Error.Message)
	}
	if out != nil {
		if err := json.Unmarshal(rpcResp.Result, out); err != nil {
			return fmt.Errorf("decode %s result: %w", method, err)
		}
	}
	return nil
}
