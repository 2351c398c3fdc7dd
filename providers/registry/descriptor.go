package registry

import (
	"fmt"
	"maps"
	"strings"

	"github.com/leofalp/polyprompt/providers/ai"
)

// Shape is the request/response wire family a provider speaks.
type Shape string

const (
	ShapeOpenAI    Shape = "openai"    // flat chat-completions body
	ShapeAnthropic Shape = "anthropic" // messages API with a separate system field
	ShapeGemini    Shape = "gemini"    // contents + generationConfig
)

func (s Shape) Valid() bool {
	return s == ShapeOpenAI || s == ShapeAnthropic || s == ShapeGemini
}

// StreamKind is the event-stream dialect a provider emits.
type StreamKind string

const (
	// StreamDeltaJSON: one JSON chunk per data line with choices[].delta,
	// optionally closed by a "[DONE]" sentinel.
	StreamDeltaJSON StreamKind = "delta-json-sse"
	// StreamEventTyped: named events; the stream completes on message_stop.
	StreamEventTyped StreamKind = "event-typed-sse"
	// StreamCandidate: each event is a full response object with candidates.
	StreamCandidate StreamKind = "candidate-sse"
)

func (k StreamKind) Valid() bool {
	return k == StreamDeltaJSON || k == StreamEventTyped || k == StreamCandidate
}

// AuthScheme is where the credential goes on the outgoing request.
type AuthScheme string

const (
	AuthBearer AuthScheme = "bearer" // Authorization: Bearer <key>
	AuthHeader AuthScheme = "header" // <Name>: <key>
	AuthQuery  AuthScheme = "query"  // ?<Name>=<key>
)

// Auth names the scheme and, for header and query schemes, the field name.
type Auth struct {
	Scheme AuthScheme `yaml:"scheme" json:"scheme"`
	Name   string     `yaml:"name,omitempty" json:"name,omitempty"`
}

func (a Auth) validate() error {
	switch a.Scheme {
	case AuthBearer:
		return nil
	case AuthHeader, AuthQuery:
		if a.Name == "" {
			return fmt.Errorf("auth scheme %q requires a name", a.Scheme)
		}
		return nil
	}
	return fmt.Errorf("unknown auth scheme %q", a.Scheme)
}

// Endpoint is one base URL a provider can be reached at. Paths may contain
// the {model} placeholder. Shape, Streaming and Auth override the
// descriptor's values for alternate-format endpoints.
type Endpoint struct {
	Purpose    string     `yaml:"purpose" json:"purpose"`
	BaseURL    string     `yaml:"base_url" json:"base_url"`
	ChatPath   string     `yaml:"chat_path" json:"chat_path"`
	StreamPath string     `yaml:"stream_path,omitempty" json:"stream_path,omitempty"`
	Shape      Shape      `yaml:"shape,omitempty" json:"shape,omitempty"`
	Streaming  StreamKind `yaml:"streaming,omitempty" json:"streaming,omitempty"`
	Auth       *Auth      `yaml:"auth,omitempty" json:"auth,omitempty"`
}

// URL joins base and the chat or stream path, substituting model.
func (e Endpoint) URL(base, model string, stream bool) string {
	if base == "" {
		base = e.BaseURL
	}
	path := e.ChatPath
	if stream && e.StreamPath != "" {
		path = e.StreamPath
	}
	path = strings.ReplaceAll(path, "{model}", model)
	return strings.TrimRight(base, "/") + path
}

// Descriptor is the static description of one provider. Values handed out by
// a Registry are deep copies; mutating them does not affect the registry.
type Descriptor struct {
	ID                 string            `json:"id"`
	Name               string            `json:"name"`
	Shape              Shape             `json:"shape"`
	Streaming          StreamKind        `json:"streaming"`
	Auth               Auth              `json:"auth"`
	DefaultModel       string            `json:"default_model"`
	Endpoints          []Endpoint        `json:"endpoints"`
	Supported          ai.ParamSet       `json:"-"`
	APIKeyEnv          string            `json:"api_key_env,omitempty"`
	Headers            map[string]string `json:"headers,omitempty"`
	CredentialOptional bool              `json:"credential_optional,omitempty"`
	ThinkTags          bool              `json:"think_tags,omitempty"`
}

// Supports reports whether the provider accepts the parameter key.
func (d Descriptor) Supports(key ai.ParamKey) bool {
	return d.Supported.Contains(key)
}

// Endpoint returns the endpoint with the given purpose. An empty purpose
// selects the first (default) endpoint.
func (d Descriptor) Endpoint(purpose string) (Endpoint, bool) {
	if len(d.Endpoints) == 0 {
		return Endpoint{}, false
	}
	if purpose == "" {
		return d.Endpoints[0], true
	}
	for _, endpoint := range d.Endpoints {
		if endpoint.Purpose == purpose {
			return endpoint, true
		}
	}
	return Endpoint{}, false
}

// Wire returns the shape, stream kind and auth in effect for endpoint,
// applying its overrides.
func (d Descriptor) Wire(endpoint Endpoint) (Shape, StreamKind, Auth) {
	shape, streaming, auth := d.Shape, d.Streaming, d.Auth
	if endpoint.Shape != "" {
		shape = endpoint.Shape
	}
	if endpoint.Streaming != "" {
		streaming = endpoint.Streaming
	}
	if endpoint.Auth != nil {
		auth = *endpoint.Auth
	}
	return shape, streaming, auth
}

// Validate checks the descriptor is internally consistent.
func (d Descriptor) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("descriptor has no id")
	}
	if !d.Shape.Valid() {
		return fmt.Errorf("provider %q: unknown shape %q", d.ID, d.Shape)
	}
	if !d.Streaming.Valid() {
		return fmt.Errorf("provider %q: unknown streaming kind %q", d.ID, d.Streaming)
	}
	if err := d.Auth.validate(); err != nil {
		return fmt.Errorf("provider %q: %w", d.ID, err)
	}
	if len(d.Endpoints) == 0 {
		return fmt.Errorf("provider %q: no endpoints", d.ID)
	}
	for _, endpoint := range d.Endpoints {
		if endpoint.BaseURL == "" || endpoint.ChatPath == "" {
			return fmt.Errorf("provider %q: endpoint %q needs base_url and chat_path", d.ID, endpoint.Purpose)
		}
		if endpoint.Shape != "" && !endpoint.Shape.Valid() {
			return fmt.Errorf("provider %q: endpoint %q: unknown shape %q", d.ID, endpoint.Purpose, endpoint.Shape)
		}
		if endpoint.Streaming != "" && !endpoint.Streaming.Valid() {
			return fmt.Errorf("provider %q: endpoint %q: unknown streaming kind %q", d.ID, endpoint.Purpose, endpoint.Streaming)
		}
		if endpoint.Auth != nil {
			if err := endpoint.Auth.validate(); err != nil {
				return fmt.Errorf("provider %q: endpoint %q: %w", d.ID, endpoint.Purpose, err)
			}
		}
	}
	for key := range d.Supported {
		if !key.Valid() {
			return fmt.Errorf("provider %q: unknown parameter %q", d.ID, key)
		}
	}
	return nil
}

func (d Descriptor) clone() Descriptor {
	out := d
	out.Endpoints = make([]Endpoint, len(d.Endpoints))
	for i, endpoint := range d.Endpoints {
		if endpoint.Auth != nil {
			auth := *endpoint.Auth
			endpoint.Auth = &auth
		}
		out.Endpoints[i] = endpoint
	}
	out.Supported = maps.Clone(d.Supported)
	out.Headers = maps.Clone(d.Headers)
	return out
}

// SupportedKeys lists the accepted parameters in lexical order.
func (d Descriptor) SupportedKeys() []ai.ParamKey {
	return d.Supported.Sorted()
}
