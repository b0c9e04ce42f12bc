package submission

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClientPostsJSON(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content-type = %q", ct)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"status":"success"}`))
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{URL: srv.URL, Timeout: 5 * time.Second})
	res, err := c.Post(context.Background(), Payload{
		StudentName: "Ada", StudentID: "S1", Score: 1, TotalQuestions: 2, AllAnswers: "(1:2, 2:X)",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Status != "success" {
		t.Fatalf("status = %q", res.Status)
	}
	for _, k := range []string{"studentName", "studentId", "score", "totalQuestions", "allAnswers"} {
		if _, ok := got[k]; !ok {
			t.Fatalf("payload missing %q: %v", k, got)
		}
	}
	if got["allAnswers"] != "(1:2, 2:X)" {
		t.Fatalf("allAnswers = %v", got["allAnswers"])
	}
}

func TestClientErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr bool
		reject  bool
	}{
		{name: "server error", status: 500, body: "oops", wantErr: true},
		{name: "rejected", status: 200, body: `{"status":"error","message":"sheet locked"}`, wantErr: true, reject: true},
		{name: "plain text ok", status: 200, body: "Success"},
		{name: "empty body ok", status: 200, body: ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := NewClient(ClientConfig{URL: srv.URL}).Post(context.Background(), Payload{})
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tc.wantErr)
			}
			if tc.reject && !errors.Is(err, ErrRemoteRejected) {
				t.Fatalf("expected ErrRemoteRejected, got %v", err)
			}
		})
	}
}

func TestClientWithoutURL(t *testing.T) {
	if _, err := NewClient(ClientConfig{}).Post(context.Background(), Payload{}); err == nil {
		t.Fatalf("expected error without url")
	}
}

func TestClientUsesClientCredentials(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-123","token_type":"Bearer","expires_in":3600}`))
	})
	var auth string
	mux.HandleFunc("/submit", func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(ClientConfig{
		URL: srv.URL + "/submit", TokenURL: srv.URL + "/oauth/token",
		ClientID: "quiz", ClientSecret: "secret",
	})
	if _, err := c.Post(context.Background(), Payload{}); err != nil {
		t.Fatal(err)
	}
	if auth != "Bearer tok-123" {
		t.Fatalf("authorization = %q", auth)
	}
}
