// Package ledger is the HTTP client for the external settlement ledger.
// Every call carries its own timeout; failures surface as errors and are
// never left hanging on the funding path.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	domain "agrolend-backend/internal/domain/ledger"
)

const callTimeout = 10 * time.Second

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: callTimeout},
	}
}

type balanceResponse struct {
	Balance float64 `json:"balance"`
}

type txResponse struct {
	TxRef string `json:"tx_ref"`
	Error string `json:"error,omitempty"`
}

func (c *Client) GetCollateralBalance(ctx context.Context, accountRef string) (float64, error) {
	u := fmt.Sprintf("%s/accounts/%s/collateral", c.baseURL, url.PathEscape(accountRef))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("ledger balance call: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("ledger balance call: status %d", resp.StatusCode)
	}
	var out balanceResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("ledger balance call: decode: %w", err)
	}
	return out.Balance, nil
}

func (c *Client) OpenLendingPosition(ctx context.Context, p domain.PositionRequest) (string, error) {
	return c.postTx(ctx, "/positions", p)
}

func (c *Client) Transfer(ctx context.Context, to string, amount float64) (string, error) {
	return c.postTx(ctx, "/transfers", map[string]any{"to": to, "amount": amount})
}

func (c *Client) postTx(ctx context.Context, path string, payload any) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("ledger %s: %w", path, err)
	}
	defer resp.Body.Close()

	var out txResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("ledger %s: decode: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		if out.Error != "" {
			return "", fmt.Errorf("ledger %s: %s", path, out.Error)
		}
		return "", fmt.Errorf("ledger %s: status %d", path, resp.StatusCode)
	}
	return out.TxRef, nil
}
