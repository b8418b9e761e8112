package mail

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testMessage() Message {
	return Message{
		From:    "Cozy Bakes <orders@cozybakes.com>",
		To:      "ada@example.com",
		Subject: "Order Confirmation - Cozy Bakes (#11111111)",
		HTML:    "<h1>Thank you</h1>",
	}
}

func TestResendTransport_Send(t *testing.T) {
	t.Run("posts the message with bearer auth", func(t *testing.T) {
		var received resendRequest
		var gotAuth string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != "/emails" {
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			}
			gotAuth = r.Header.Get("Authorization")
			if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
				t.Errorf("failed to decode request: %v", err)
			}
			_ = json.NewEncoder(w).Encode(resendResponse{ID: "email-1"})
		}))
		defer server.Close()

		transport := NewResendTransportWithBaseURL(server.URL, "re_test_key", server.Client())

		id, err := transport.Send(context.Background(), testMessage())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if id != "email-1" {
			t.Errorf("expected provider id 'email-1', got %q", id)
		}
		if gotAuth != "Bearer re_test_key" {
			t.Errorf("unexpected authorization header %q", gotAuth)
		}
		if len(received.To) != 1 || received.To[0] != "ada@example.com" {
			t.Errorf("unexpected recipients %v", received.To)
		}
		if received.Subject != "Order Confirmation - Cozy Bakes (#11111111)" {
			t.Errorf("unexpected subject %q", received.Subject)
		}
		if received.HTML == "" {
			t.Error("expected html body forwarded")
		}
	})

	t.Run("surfaces provider errors with the response body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"message":"invalid from address"}`))
		}))
		defer server.Close()

		transport := NewResendTransportWithBaseURL(server.URL, "re_test_key", server.Client())

		_, err := transport.Send(context.Background(), testMessage())
		if err == nil {
			t.Fatal("expected an error")
		}
	})
}
