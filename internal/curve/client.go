package curve

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/gagliardetto/solana-go"
)

// ErrAccountNotFound is returned when the RPC node reports no value for the
// requested account (not yet created, or not yet visible at the requested
// commitment).
var ErrAccountNotFound = errors.New("curve: account not found")

// Client fetches bonding-curve account data over HTTP JSON-RPC, bounded by a
// token-bucket limiter so a growing monitored set can never turn curve
// polling into an RPC flood.
type Client struct {
	endpoint string
	http     *http.Client
	limiter  *rate.Limiter
}

// NewClient builds a Client against endpoint, limited to ratePerSec
// requests/second with the given burst allowance.
func NewClient(endpoint string, ratePerSec float64, burst int) *Client {
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: 10 * time.Second},
		limiter:  rate.NewLimiter(rate.Limit(ratePerSec), burst),
	}
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type accountInfoParams struct {
	Encoding   string `json:"encoding"`
	Commitment string `json:"commitment"`
}

type accountInfoResponse struct {
	Result struct {
		Value *struct {
			Data []string `json:"data"`
		} `json:"value"`
	} `json:"result"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// GetAccountData fetches and base64-decodes the raw account data for
// pubkey, waiting on the rate limiter first. Returns ErrAccountNotFound if
// the node has no value for this account.
func (c *Client) GetAccountData(ctx context.Context, pubkey solana.PublicKey) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("curve: rate limiter: %w", err)
	}

	reqBody := rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "getAccountInfo",
		Params: []interface{}{
			pubkey.String(),
			accountInfoParams{Encoding: "base64", Commitment: "confirmed"},
		},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("curve: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("curve: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("curve: rpc transport: %w", err)
	}
	defer resp.Body.Close()

	var parsed accountInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("curve: decode rpc response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("curve: rpc error: %s", parsed.Error.Message)
	}
	if parsed.Result.Value == nil || len(parsed.Result.Value.Data) == 0 {
		return nil, ErrAccountNotFound
	}

	raw, err := base64.StdEncoding.DecodeString(parsed.Result.Value.Data[0])
	if err != nil {
		return nil, fmt.Errorf("curve: decode account data: %w", err)
	}
	return raw, nil
}
