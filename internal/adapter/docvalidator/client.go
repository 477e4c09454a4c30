// Package docvalidator calls the document-validation service that gates
// collateral registration. It never sits on the funding path.
package docvalidator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const callTimeout = 15 * time.Second

// Result is the validation verdict; Confidence is in [0,1].
type Result struct {
	IsValid    bool    `json:"is_valid"`
	Confidence float64 `json:"confidence"`
}

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

func (c *Client) Validate(ctx context.Context, document string) (*Result, error) {
	body, err := json.Marshal(map[string]string{"document": document})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/validate", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("docvalidator: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("docvalidator: status %d", resp.StatusCode)
	}

	var out Result
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("docvalidator: decode: %w", err)
	}
	return &out, nil
}
