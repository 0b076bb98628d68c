package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RemoteSender submits entry functions through an external signing service
// that holds the sender's key. Custody never enters this process; the
// service signs, submits, waits for execution, and reports the vm_status.
type RemoteSender struct {
	endpoint   string
	sender     string
	httpClient *http.Client
}

// NewRemoteSender creates a sender backed by a signing service endpoint.
func NewRemoteSender(endpoint, sender string, timeout time.Duration) *RemoteSender {
	return &RemoteSender{
		endpoint: endpoint,
		sender:   sender,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Sender returns the account address transactions are signed for.
func (s *RemoteSender) Sender() string {
	return s.sender
}

type submitRequest struct {
	Sender        string   `json:"sender"`
	Function      string   `json:"function"`
	TypeArguments []string `json:"type_arguments"`
	Arguments     []any    `json:"arguments"`
}

// Submit sends one entry-function transaction and waits for its execution
// result. Submissions for the same sender must stay sequential; the signing
// service manages the account's sequence numbers.
func (s *RemoteSender) Submit(ctx context.Context, function string, args []any) (*TxnResult, error) {
	if args == nil {
		args = []any{}
	}
	body, err := json.Marshal(submitRequest{
		Sender:        s.sender,
		Function:      function,
		TypeArguments: []string{},
		Arguments:     args,
	})
	if err != nil {
		return nil, fmt.Errorf("encode submit request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build submit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("submit %s: %w", function, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("submit %s returned %d: %s", function, resp.StatusCode, string(payload))
	}

	var result TxnResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode submit result for %s: %w", function, err)
	}
	return &result, nil
}
