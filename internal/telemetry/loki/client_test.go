package loki

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"
)

func TestPushEventJSON_LabelsAndTimestamp(t *testing.T) {
	var got PushRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/loki/api/v1/push" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Content-Type = %q", r.Header.Get("Content-Type"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	raw := []byte(`{"type":"auth.login_failed","source":"auth api","createdAt":"2026-02-01T10:00:00Z"}`)
	if err := NewClient(srv.URL+"/").PushEventJSON(context.Background(), raw); err != nil {
		t.Fatalf("PushEventJSON: %v", err)
	}

	if len(got.Streams) != 1 {
		t.Fatalf("got %d streams, want 1", len(got.Streams))
	}
	s := got.Streams[0]
	if s.Stream["job"] != DefaultJob || s.Stream["event_type"] != "auth.login_failed" || s.Stream["source"] != "auth_api" {
		t.Errorf("labels = %v", s.Stream)
	}
	want := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC).UnixNano()
	if len(s.Values) != 1 {
		t.Fatalf("got %d values, want 1", len(s.Values))
	}
	if s.Values[0][0] != strconv.FormatInt(want, 10) {
		t.Errorf("timestamp = %s, want %d", s.Values[0][0], want)
	}
	if s.Values[0][1] != string(raw) {
		t.Errorf("line = %s", s.Values[0][1])
	}
}

func TestPushEventJSON_UnparseableLineStillPushed(t *testing.T) {
	var got PushRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
	}))
	defer srv.Close()

	if err := NewClient(srv.URL).PushEventJSON(context.Background(), []byte("not json")); err != nil {
		t.Fatalf("PushEventJSON: %v", err)
	}
	if len(got.Streams) != 1 {
		t.Fatalf("got %d streams, want 1", len(got.Streams))
	}
	if labels := got.Streams[0].Stream; len(labels) != 1 || labels["job"] != DefaultJob {
		t.Errorf("labels = %v, want only job", labels)
	}
}

func TestPush_Errors(t *testing.T) {
	err := (&Client{}).Push(context.Background(), time.Now(), "line", nil)
	if err == nil || err.Error() != "loki: base URL is empty" {
		t.Errorf("Push without URL: err = %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()
	err = NewClient(srv.URL).Push(context.Background(), time.Now(), "line", nil)
	if err == nil || !strings.Contains(err.Error(), "400") {
		t.Errorf("Push on 400: err = %v", err)
	}
}
