package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const defaultResendBaseURL = "https://api.resend.com"

// ResendTransport delivers through the Resend HTTP API.
type ResendTransport struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewResendTransport(apiKey string, httpClient *http.Client) *ResendTransport {
	return &ResendTransport{
		baseURL:    defaultResendBaseURL,
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

// NewResendTransportWithBaseURL exists for tests pointing at a local server.
func NewResendTransportWithBaseURL(baseURL, apiKey string, httpClient *http.Client) *ResendTransport {
	return &ResendTransport{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type resendResponse struct {
	ID string `json:"id"`
}

func (t *ResendTransport) Send(ctx context.Context, msg Message) (string, error) {
	data, err := json.Marshal(resendRequest{
		From:    msg.From,
		To:      []string{msg.To},
		Subject: msg.Subject,
		HTML:    msg.HTML,
	})
	if err != nil {
		return "", fmt.Errorf("marshal send request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/emails", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("create send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.apiKey)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send email: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("mail provider returned status %d: %s", resp.StatusCode, body)
	}

	var result resendResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode send response: %w", err)
	}

	return result.ID, nil
}
