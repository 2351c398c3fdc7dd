package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Store is the read-only configuration collaborator: saved agents and
// per-provider defaults.
type Store interface {
	// AgentConfig returns the agent with the given id.
	AgentConfig(ctx context.Context, id string) (AgentConfig, error)
	// ProviderDefaults returns the defaults for providerID. A provider with
	// nothing configured yields a zero PartialConfig and no error.
	ProviderDefaults(ctx context.Context, providerID string) (PartialConfig, error)
}

// ErrAgentNotFound is returned by stores for unknown agent ids.
var ErrAgentNotFound = errors.New("agent not found")

// MemoryStore is a Store backed by maps. It is safe for concurrent use.
type MemoryStore struct {
	mu        sync.RWMutex
	agents    map[string]AgentConfig
	order     []string
	providers map[string]PartialConfig
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		agents:    make(map[string]AgentConfig),
		providers: make(map[string]PartialConfig),
	}
}

// PutAgent adds or replaces an agent.
func (s *MemoryStore) PutAgent(agent AgentConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.agents[agent.ID]; !exists {
		s.order = append(s.order, agent.ID)
	}
	s.agents[agent.ID] = agent
}

// PutProviderDefaults sets the defaults for a provider id.
func (s *MemoryStore) PutProviderDefaults(providerID string, defaults PartialConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.providers[strings.ToLower(providerID)] = defaults
}

func (s *MemoryStore) AgentConfig(_ context.Context, id string) (AgentConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	agent, ok := s.agents[id]
	if !ok {
		return AgentConfig{}, fmt.Errorf("%w: %q", ErrAgentNotFound, id)
	}
	return agent, nil
}

func (s *MemoryStore) ProviderDefaults(_ context.Context, providerID string) (PartialConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.providers[strings.ToLower(providerID)], nil
}

// Agents returns every agent in insertion order.
func (s *MemoryStore) Agents() []AgentConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]AgentConfig, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.agents[id])
	}
	return out
}
