package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Client creates hosted checkout sessions with the payment provider. The
// session is opaque to the rest of the storefront: a redirect URL to open and
// a token to correlate the completed payment with, or a failure.
type Client struct {
	baseURL    string
	apiKey     string
	successURL string
	cancelURL  string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey, successURL, cancelURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		successURL: successURL,
		cancelURL:  cancelURL,
		httpClient: httpClient,
	}
}

type SessionRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type Session struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

func (c *Client) CreateSession(ctx context.Context, req SessionRequest) (*Session, error) {
	body := map[string]any{
		"amount":      req.Amount,
		"currency":    req.Currency,
		"success_url": c.successURL + "?session_id={CHECKOUT_SESSION_ID}",
		"cancel_url":  c.cancelURL,
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal session request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/checkout/sessions", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create session request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("payment provider returned status %d", resp.StatusCode)
	}

	var session Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("decode session response: %w", err)
	}
	if session.URL == "" {
		return nil, fmt.Errorf("payment provider returned no redirect url")
	}

	return &session, nil
}
