package dispatch

import (
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
)

func TestClientCache_ConcurrentGetBuildsOnce(t *testing.T) {
	var built atomic.Int32
	cache := NewClientCacheFunc(func() *http.Client {
		built.Add(1)
		return &http.Client{}
	})

	const workers = 32
	clients := make([]*http.Client, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			clients[i] = cache.Get("https://api.example.com")
		}()
	}
	wg.Wait()

	if built.Load() != 1 {
		t.Errorf("expected one client, built %d", built.Load())
	}
	for _, client := range clients {
		if client != clients[0] {
			t.Fatal("all callers should share the same client")
		}
	}
	if cache.Get("https://other.example.com") == clients[0] || cache.Len() != 2 {
		t.Error("distinct base URLs need distinct clients")
	}
}

func TestSharedClients_IsProcessWide(t *testing.T) {
	if SharedClients() != SharedClients() {
		t.Error("SharedClients should return the same cache")
	}
}

func TestStatus_CanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusRunning, true},
		{StatusPending, StatusError, true},
		{StatusPending, StatusSuccess, false},
		{StatusRunning, StatusSuccess, true},
		{StatusRunning, StatusError, true},
		{StatusRunning, StatusPending, false},
		{StatusSuccess, StatusError, false},
		{StatusError, StatusRunning, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransition(tt.to); got != tt.want {
			t.Errorf("%s → %s: got %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}

	target := Target{Status: StatusSuccess}
	if err := target.transition(StatusRunning); err == nil {
		t.Error("terminal targets must not transition")
	}
}
