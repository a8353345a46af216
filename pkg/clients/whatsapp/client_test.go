package whatsapp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mamadbah2/shiftdesk/internal/config"
)

func TestSendTextMessage(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.1"}]}`))
	}))
	defer srv.Close()

	client := NewClient(config.WhatsAppConfig{
		AccessToken:   "token",
		PhoneNumberID: "12345",
		BaseURL:       srv.URL + "/",
		APIVersion:    "v20.0",
	})

	resp, err := client.SendTextMessage(context.Background(), SendTextMessageRequest{To: "84900000000", Body: "hello"})
	if err != nil {
		t.Fatalf("SendTextMessage returned error: %v", err)
	}
	if resp.MessageID() != "wamid.1" {
		t.Fatalf("unexpected message id %q", resp.MessageID())
	}
	if gotPath != "/v20.0/12345/messages" {
		t.Fatalf("unexpected path %s", gotPath)
	}
	if gotAuth != "Bearer token" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
	if gotBody["messaging_product"] != "whatsapp" || gotBody["to"] != "84900000000" || gotBody["type"] != "text" {
		t.Fatalf("unexpected body %v", gotBody)
	}
	text, _ := gotBody["text"].(map[string]any)
	if text["body"] != "hello" {
		t.Fatalf("unexpected text block %v", gotBody["text"])
	}
}

func TestSendTextMessageAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid parameter","code":100,"fbtrace_id":"abc"}}`))
	}))
	defer srv.Close()

	client := NewClient(config.WhatsAppConfig{AccessToken: "t", PhoneNumberID: "1", BaseURL: srv.URL, APIVersion: "v20.0"})
	_, err := client.SendTextMessage(context.Background(), SendTextMessageRequest{To: "1", Body: "x"})
	if err == nil || !strings.Contains(err.Error(), "code=100") || !strings.Contains(err.Error(), "Invalid parameter") {
		t.Fatalf("expected api error, got %v", err)
	}
}

func TestSendTextMessageRequiresRecipient(t *testing.T) {
	client := NewClient(config.WhatsAppConfig{BaseURL: "http://127.0.0.1:1", APIVersion: "v20.0"})
	if _, err := client.SendTextMessage(context.Background(), SendTextMessageRequest{Body: "x"}); !errors.Is(err, ErrNoRecipient) {
		t.Fatalf("expected ErrNoRecipient, got %v", err)
	}
}
