// Package chain talks to the Pulse modules deployed on a Movement fullnode.
// Reads go through the node's view API; writes are modeled as a TxnSender so
// key custody and transaction signing stay outside this service.
package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// Module names under the Pulse contract address.
const (
	ModuleMarket      = "market"
	ModuleMarketViews = "market_views"
	ModulePosition    = "position"
	ModuleTreasury    = "treasury"
	ModuleBonus       = "bonus"
	ModuleReferral    = "referral"
)

// TxnResult is the outcome of a submitted ledger transaction. VMStatus
// carries the module abort information on failure and must be run through
// ParseVMStatus before showing anything to a user.
type TxnResult struct {
	Success  bool   `json:"success"`
	Hash     string `json:"transaction_hash"`
	VMStatus string `json:"vm_status"`
}

// TxnSender submits an entry-function transaction signed by a single sender
// account. Implementations own signing; claim batches rely on Submit being
// strictly sequential per sender to avoid sequence-number races.
type TxnSender interface {
	Sender() string
	Submit(ctx context.Context, function string, args []any) (*TxnResult, error)
}

// Client is a read-only fullnode client for the Pulse view functions.
// Constructed once at process start and passed by reference to consumers.
type Client struct {
	baseURL      string
	pulseAddress string
	httpClient   *http.Client
}

// NewClient creates a fullnode client. baseURL is the node's REST endpoint
// (e.g. https://testnet.movementnetwork.xyz/v1), pulseAddress the deployed
// contract address.
func NewClient(baseURL, pulseAddress string) *Client {
	return &Client{
		baseURL:      baseURL,
		pulseAddress: pulseAddress,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Function builds a fully qualified entry/view function name.
func (c *Client) Function(module, name string) string {
	return fmt.Sprintf("%s::%s::%s", c.pulseAddress, module, name)
}

// PulseAddress returns the deployed contract address.
func (c *Client) PulseAddress() string {
	return c.pulseAddress
}

type viewRequest struct {
	Function      string   `json:"function"`
	TypeArguments []string `json:"type_arguments"`
	Arguments     []any    `json:"arguments"`
}

// View calls a read-only function against the node and returns the raw
// result values.
func (c *Client) View(ctx context.Context, function string, args []any) ([]json.RawMessage, error) {
	if args == nil {
		args = []any{}
	}
	body, err := json.Marshal(viewRequest{
		Function:      function,
		TypeArguments: []string{},
		Arguments:     args,
	})
	if err != nil {
		return nil, fmt.Errorf("encode view request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/view", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build view request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("view %s: %w", function, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("view %s returned %d: %s", function, resp.StatusCode, string(payload))
	}

	var result []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode view result for %s: %w", function, err)
	}
	return result, nil
}

// ViewInto calls View and decodes the first returned value into out.
func (c *Client) ViewInto(ctx context.Context, function string, args []any, out any) error {
	result, err := c.View(ctx, function, args)
	if err != nil {
		return err
	}
	if len(result) == 0 {
		return fmt.Errorf("view %s returned no values", function)
	}
	if err := json.Unmarshal(result[0], out); err != nil {
		return fmt.Errorf("decode view value for %s: %w", function, err)
	}
	return nil
}

// HealthCheck verifies the node is reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/-/healthy", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("node health check: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Printf("[Chain] Node health check returned %d", resp.StatusCode)
		return fmt.Errorf("node unhealthy: status %d", resp.StatusCode)
	}
	return nil
}
