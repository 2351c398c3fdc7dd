package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/leofalp/polyprompt/providers/ai"
	"github.com/leofalp/polyprompt/providers/registry"
)

// Resolver turns an AgentConfig into an EffectiveConfig.
type Resolver struct {
	registry *registry.Registry
	store    Store
	lookup   func(string) (string, bool)
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithLookupEnv replaces os.LookupEnv as the source of baseline credentials.
func WithLookupEnv(lookup func(string) (string, bool)) ResolverOption {
	return func(r *Resolver) {
		r.lookup = lookup
	}
}

// NewResolver creates a resolver. A nil registry uses registry.Default(); a
// nil store means no provider defaults are configured.
func NewResolver(reg *registry.Registry, store Store, opts ...ResolverOption) *Resolver {
	if reg == nil {
		reg = registry.Default()
	}
	if store == nil {
		store = NewMemoryStore()
	}
	resolver := &Resolver{registry: reg, store: store, lookup: os.LookupEnv}
	for _, opt := range opts {
		opt(resolver)
	}
	return resolver
}

// Registry returns the registry the resolver reads descriptors from.
func (r *Resolver) Registry() *registry.Registry {
	return r.registry
}

// ResolveOption adjusts a single Resolve call.
type ResolveOption func(*resolveOptions)

type resolveOptions struct {
	provider string
	fallback ai.Params
}

// WithProvider resolves against providerID instead of the agent's provider.
// Agent fields bound to the original provider (model, credential, endpoint,
// base URL) are ignored when the ids differ; agent parameters still apply.
func WithProvider(providerID string) ResolveOption {
	return func(o *resolveOptions) {
		o.provider = providerID
	}
}

// WithFallbackParams sets the global fallback parameter layer, which sits
// below provider defaults and the agent.
func WithFallbackParams(params ai.Params) ResolveOption {
	return func(o *resolveOptions) {
		o.fallback = params
	}
}

// Resolve computes the effective configuration for agent. It fails with
// ai.ErrUnknownProvider for an uncataloged provider and ai.ErrMissingCredential
// when no tier supplies a credential and the provider requires one.
func (r *Resolver) Resolve(ctx context.Context, agent AgentConfig, opts ...ResolveOption) (EffectiveConfig, error) {
	options := resolveOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	providerID := agent.Provider
	if options.provider != "" {
		if !strings.EqualFold(options.provider, agent.Provider) {
			agent = AgentConfig{ID: agent.ID, Name: agent.Name, Params: agent.Params}
		}
		providerID = options.provider
	}

	descriptor, err := r.registry.Describe(providerID)
	if err != nil {
		return EffectiveConfig{}, err
	}
	defaults, err := r.store.ProviderDefaults(ctx, descriptor.ID)
	if err != nil {
		return EffectiveConfig{}, fmt.Errorf("loading defaults for provider %q: %w", descriptor.ID, err)
	}

	purpose := firstNonEmpty(agent.Endpoint, defaults.Endpoint)
	endpoint, ok := descriptor.Endpoint(purpose)
	if !ok {
		return EffectiveConfig{}, ai.NewError(ai.KindConfig, "provider %q has no endpoint %q", descriptor.ID, purpose)
	}
	shape, streaming, auth := descriptor.Wire(endpoint)

	effective := EffectiveConfig{
		Provider:   descriptor,
		Endpoint:   endpoint,
		BaseURL:    firstNonEmpty(agent.BaseURL, defaults.BaseURL, endpoint.BaseURL),
		Credential: firstNonEmpty(agent.Credential, defaults.Credential, r.baselineCredential(descriptor)),
		Model:      firstNonEmpty(agent.Model, defaults.Model, descriptor.DefaultModel),
		Auth:       auth,
		Shape:      shape,
		Streaming:  streaming,
		Params:     options.fallback.Merge(defaults.Params).Merge(agent.Params),
	}

	if effective.Credential == "" && !descriptor.CredentialOptional {
		return EffectiveConfig{}, ai.NewError(ai.KindMissingCredential,
			"no credential for provider %q (set it on the agent, in provider defaults, or in %s)", descriptor.ID, descriptor.APIKeyEnv)
	}
	return effective, nil
}

// ResolveID loads the agent from the store and resolves it.
func (r *Resolver) ResolveID(ctx context.Context, agentID string, opts ...ResolveOption) (AgentConfig, EffectiveConfig, error) {
	agent, err := r.store.AgentConfig(ctx, agentID)
	if err != nil {
		return AgentConfig{}, EffectiveConfig{}, err
	}
	effective, err := r.Resolve(ctx, agent, opts...)
	return agent, effective, err
}

func (r *Resolver) baselineCredential(descriptor registry.Descriptor) string {
	if descriptor.APIKeyEnv == "" {
		return ""
	}
	value, _ := r.lookup(descriptor.APIKeyEnv)
	return strings.TrimSpace(value)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
