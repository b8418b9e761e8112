package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Client invokes the notifier function over HTTP. Used by the storefront's
// payment-return handler, which treats any failure as a non-blocking warning.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

func (c *Client) SendOrderConfirmation(ctx context.Context, orderID string) error {
	data, err := json.Marshal(sendRequest{OrderID: orderID})
	if err != nil {
		return fmt.Errorf("marshal confirmation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/send-order-confirmation", bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create confirmation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("invoke notifier: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		var body struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return fmt.Errorf("notifier returned status %d: %s", resp.StatusCode, body.Error)
	}

	return nil
}
