package dispatch

import (
	"net/http"
	"sync"
	"time"
)

// DefaultTimeout is the per-request HTTP timeout of cached clients.
const DefaultTimeout = 120 * time.Second

// ClientCache holds one *http.Client per base URL. Get inserts under a lock,
// so concurrent callers for the same base URL construct the client once.
// Clients are never evicted.
type ClientCache struct {
	mu        sync.Mutex
	clients   map[string]*http.Client
	newClient func() *http.Client
}

// NewClientCache creates a cache whose clients use timeout.
func NewClientCache(timeout time.Duration) *ClientCache {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return NewClientCacheFunc(func() *http.Client {
		return &http.Client{Timeout: timeout}
	})
}

// NewClientCacheFunc creates a cache that builds clients with newClient.
func NewClientCacheFunc(newClient func() *http.Client) *ClientCache {
	return &ClientCache{clients: make(map[string]*http.Client), newClient: newClient}
}

// Get returns the client for baseURL, creating it if absent.
func (c *ClientCache) Get(baseURL string) *http.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	if client, ok := c.clients[baseURL]; ok {
		return client
	}
	client := c.newClient()
	c.clients[baseURL] = client
	return client
}

// Len returns the number of cached clients.
func (c *ClientCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.clients)
}

var sharedClients = sync.OnceValue(func() *ClientCache {
	return NewClientCache(DefaultTimeout)
})

// SharedClients returns the process-wide cache.
func SharedClients() *ClientCache {
	return sharedClients()
}
