package config

import (
	"github.com/leofalp/polyprompt/providers/ai"
	"github.com/leofalp/polyprompt/providers/registry"
)

// AgentConfig is a user-named binding of a provider, model, credential,
// endpoint choice and parameter overrides. Only ID and Provider are required.
type AgentConfig struct {
	ID         string    `json:"id" mapstructure:"id"`
	Name       string    `json:"name,omitempty" mapstructure:"name"`
	Provider   string    `json:"provider" mapstructure:"provider"`
	Model      string    `json:"model,omitempty" mapstructure:"model"`
	Credential string    `json:"-" mapstructure:"credential"`
	Endpoint   string    `json:"endpoint,omitempty" mapstructure:"endpoint"` // endpoint purpose, e.g. "chat-alt-format"
	BaseURL    string    `json:"base_url,omitempty" mapstructure:"base_url"`
	Params     ai.Params `json:"params,omitempty" mapstructure:"params"`
}

// DisplayName returns Name, or ID when the agent is unnamed.
func (a AgentConfig) DisplayName() string {
	if a.Name != "" {
		return a.Name
	}
	return a.ID
}

// PartialConfig holds the user-configured defaults for one provider.
type PartialConfig struct {
	Model      string    `mapstructure:"model"`
	Credential string    `mapstructure:"credential"`
	Endpoint   string    `mapstructure:"endpoint"`
	BaseURL    string    `mapstructure:"base_url"`
	Params     ai.Params `mapstructure:"params"`
}

// EffectiveConfig is everything the codec needs to build one provider call.
type EffectiveConfig struct {
	Provider   registry.Descriptor
	Endpoint   registry.Endpoint
	BaseURL    string
	Credential string
	Model      string
	Auth       registry.Auth
	Shape      registry.Shape
	Streaming  registry.StreamKind
	Params     ai.Params
}

// URL is the request URL for a chat or stream call, without credentials.
func (c EffectiveConfig) URL(stream bool) string {
	return c.Endpoint.URL(c.BaseURL, c.Model, stream)
}
