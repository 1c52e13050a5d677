package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/haasonsaas/conduit/pkg/conduit"
)

func TestExecuteReturnsOnFirstSuccess(t *testing.T) {
	t.Parallel()

	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	resp, err := Execute(context.Background(), srv.Client(), Request{Method: "POST", URL: srv.URL}, 3, nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("StatusCode = %d", resp.StatusCode)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestExecuteRetriesOn500ThenSucceeds(t *testing.T) {
	t.Parallel()

	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("boom"))
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	resp, err := Execute(context.Background(), srv.Client(), Request{Method: "GET", URL: srv.URL}, 5, nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("StatusCode = %d", resp.StatusCode)
	}
	if atomic.LoadInt32(&calls) != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestExecuteStopsRetryingAfterMaxRetriesExhausted(t *testing.T) {
	t.Parallel()

	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("still broken"))
	}))
	defer srv.Close()

	_, err := Execute(context.Background(), srv.Client(), Request{Method: "GET", URL: srv.URL}, 1, nil)
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	cerr, ok := err.(*conduit.Error)
	if !ok || cerr.Kind != conduit.ErrServerError {
		t.Fatalf("expected ServerError, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2 (1 initial + 1 retry)", calls)
	}
}

func TestExecuteDoesNotRetryOnClientError(t *testing.T) {
	t.Parallel()

	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("bad request"))
	}))
	defer srv.Close()

	_, err := Execute(context.Background(), srv.Client(), Request{Method: "GET", URL: srv.URL}, 5, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	cerr, ok := err.(*conduit.Error)
	if !ok || cerr.Kind != conduit.ErrInvalidInput {
		t.Fatalf("expected InvalidInput, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1 (400 is not retryable)", calls)
	}
}

func TestExecuteUsesParseErrorBodyForMessage(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"bad key"}}`))
	}))
	defer srv.Close()

	parse := func(body []byte) string { return "bad key" }

	_, err := Execute(context.Background(), srv.Client(), Request{Method: "GET", URL: srv.URL}, 0, parse)
	cerr, ok := err.(*conduit.Error)
	if !ok || cerr.Message != "bad key" {
		t.Fatalf("expected parsed message 'bad key', got %v", err)
	}
}

func TestExecuteHonorsContextCancellation(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Execute(ctx, srv.Client(), Request{Method: "GET", URL: srv.URL}, 3, nil)
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
	cerr, ok := err.(*conduit.Error)
	if !ok || cerr.Kind != conduit.ErrCancelled {
		t.Fatalf("expected Cancelled, got %v", err)
	}
}
