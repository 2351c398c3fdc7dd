package utils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDoSync_ReturnsStatusAndBodyForAnyStatus(t *testing.T) {
	var gotHeader, gotContentType, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("x-api-key")
		gotContentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"bad key"}}`)
	}))
	defer server.Close()

	status, body, err := DoSync(context.Background(), server.Client(), Request{
		URL:    server.URL,
		Header: http.Header{"X-Api-Key": {"k1"}},
		Body:   []byte(`{"q":1}`),
	})
	if err != nil {
		t.Fatalf("non-2xx must not be a transport error, got %v", err)
	}
	if status != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", status)
	}
	if !strings.Contains(string(body), "bad key") {
		t.Errorf("unexpected body %q", body)
	}
	if gotHeader != "k1" || gotContentType != "application/json" || gotBody != `{"q":1}` {
		t.Errorf("request not forwarded as prepared: %q %q %q", gotHeader, gotContentType, gotBody)
	}
}

func TestDoSync_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, _, err := DoSync(context.Background(), nil, Request{URL: url})
	if err == nil || !strings.Contains(err.Error(), "error sending request") {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestDoSync_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := DoSync(ctx, nil, Request{URL: "http://127.0.0.1:1"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

// TestDoStream_Non2xxReturnsStatusError verifies that an error body is read
// and surfaced with the status code instead of being handed to the decoder.
func TestDoStream_Non2xxReturnsStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, "slow down")
	}))
	defer server.Close()

	response, err := DoStream(context.Background(), server.Client(), Request{URL: server.URL})
	if response != nil {
		t.Error("expected nil response on non-2xx")
	}
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected *StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusTooManyRequests || statusErr.Body != "slow down" {
		t.Errorf("unexpected status error %+v", statusErr)
	}
}

func TestDoStream_LeavesBodyOpen(t *testing.T) {
	var accept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: chunk1\n\n")
	}))
	defer server.Close()

	response, err := DoStream(context.Background(), server.Client(), Request{URL: server.URL})
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	defer CloseWithLog(context.Background(), response.Body)

	event, err := NewSSEScanner(response.Body).Next()
	if err != nil || event.Data != "chunk1" {
		t.Fatalf("expected chunk1, got %+v, %v", event, err)
	}
	if accept != "text/event-stream" {
		t.Errorf("expected SSE Accept header, got %q", accept)
	}
}

func TestTruncateAndMask(t *testing.T) {
	if got := TruncateString("abcdef", 3); got != "abc... (truncated, total: 6 chars)" {
		t.Errorf("TruncateString: %q", got)
	}
	if got := TruncateString("short", 0); got != "short" {
		t.Errorf("TruncateString default: %q", got)
	}
	if got := MaskSecret("sk-1234567890abcd"); got != "sk-1*********abcd" {
		t.Errorf("MaskSecret: %q", got)
	}
	if got := MaskSecret("tiny"); got != "****" {
		t.Errorf("MaskSecret short: %q", got)
	}
	if got := JSONToString(make(chan int)); !strings.HasPrefix(got, `{"error":`) {
		t.Errorf("JSONToString should report marshal errors, got %q", got)
	}
	if *Ptr(3) != 3 {
		t.Error("Ptr")
	}
}
