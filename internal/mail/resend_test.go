package mail

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewResendClient_RequiresKey(t *testing.T) {
	if _, err := NewResendClient("", "", "Research <a@b.c>"); err == nil {
		t.Fatal("NewResendClient without API key should fail")
	}
}

func TestNewResendClient_BaseURL(t *testing.T) {
	client, err := NewResendClient("re_key", "", "")
	if err != nil {
		t.Fatalf("NewResendClient: %v", err)
	}
	if got := client.client.BaseURL.String(); got != defaultResendBaseURL {
		t.Errorf("BaseURL = %q, want %q", got, defaultResendBaseURL)
	}
	client, err = NewResendClient("re_key", "https://x.test/proxy", "")
	if err != nil {
		t.Fatalf("NewResendClient: %v", err)
	}
	if got := client.client.BaseURL.String(); got != "https://x.test/proxy/" {
		t.Errorf("BaseURL = %q, want trailing slash added", got)
	}
}

type sentEmail struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

func TestResendClient_Send(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/emails" {
			t.Errorf("request = %s %s, want POST /emails", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer re_key" {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}
		var body sentEmail
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.From != "Research <a@b.c>" || len(body.To) != 1 || body.To[0] != "admin@example.com" {
			t.Errorf("body = %+v", body)
		}
		if body.Subject != "Hi" || body.HTML != "<p>x</p>" {
			t.Errorf("body = %+v", body)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"abc"}`))
	}))
	defer server.Close()

	client, err := NewResendClient("re_key", server.URL, "Research <a@b.c>")
	if err != nil {
		t.Fatalf("NewResendClient: %v", err)
	}
	if err := client.Send(context.Background(), Message{To: "admin@example.com", Subject: "Hi", HTML: "<p>x</p>"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
}

func TestResendClient_SendFailureStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"statusCode":422,"name":"validation_error","message":"invalid from"}`))
	}))
	defer server.Close()

	client, err := NewResendClient("re_key", server.URL, "")
	if err != nil {
		t.Fatalf("NewResendClient: %v", err)
	}
	err = client.Send(context.Background(), Message{To: "a@b.c"})
	if err == nil {
		t.Fatal("Send should fail on 422")
	}
	if !strings.Contains(err.Error(), "invalid from") {
		t.Errorf("error = %q", err.Error())
	}
}

func TestResendClient_CanceledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"abc"}`))
	}))
	defer server.Close()
	client, err := NewResendClient("k", server.URL, "")
	if err != nil {
		t.Fatalf("NewResendClient: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := client.Send(ctx, Message{To: "a@b.c"}); err == nil {
		t.Fatal("Send with canceled context should fail")
	}
}
