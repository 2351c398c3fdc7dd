package dispatch

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/leofalp/polyprompt/core/config"
	"github.com/leofalp/polyprompt/providers/ai"
	"github.com/leofalp/polyprompt/providers/registry"
)

func noEnv(string) (string, bool) { return "", false }

// testRegistry catalogs an OpenAI-shaped and an Anthropic-shaped provider,
// both pointing at baseURL.
func testRegistry(t *testing.T, baseURL string) *registry.Registry {
	t.Helper()
	reg, err := registry.New(
		registry.Descriptor{
			ID:           "oa",
			Name:         "OpenAI-compatible",
			Shape:        registry.ShapeOpenAI,
			Streaming:    registry.StreamDeltaJSON,
			Auth:         registry.Auth{Scheme: registry.AuthBearer},
			DefaultModel: "m-default",
			Endpoints:    []registry.Endpoint{{Purpose: "default", BaseURL: baseURL, ChatPath: "/v1/chat/completions"}},
			Supported:    ai.NewParamSet(ai.ParamTemperature, ai.ParamMaxTokens),
		},
		registry.Descriptor{
			ID:           "an",
			Name:         "Anthropic-style",
			Shape:        registry.ShapeAnthropic,
			Streaming:    registry.StreamEventTyped,
			Auth:         registry.Auth{Scheme: registry.AuthHeader, Name: "x-api-key"},
			DefaultModel: "claude-test",
			Endpoints:    []registry.Endpoint{{Purpose: "default", BaseURL: baseURL, ChatPath: "/v1/messages"}},
			Supported:    ai.NewParamSet(ai.ParamMaxTokens),
		},
	)
	if err != nil {
		t.Fatalf("registry.New: %v", err)
	}
	return reg
}

func newTestCoordinator(t *testing.T, server *httptest.Server, opts ...Option) *Coordinator {
	t.Helper()
	resolver := config.NewResolver(testRegistry(t, server.URL), nil, config.WithLookupEnv(noEnv))
	base := []Option{WithClients(NewClientCache(5 * time.Second)), WithRetryDelay(time.Millisecond)}
	return New(resolver, append(base, opts...)...)
}

func agent(id, credential string) config.AgentConfig {
	return config.AgentConfig{ID: id, Provider: "oa", Model: "m1", Credential: credential}
}

func chatCompletion(text string, withUsage bool) string {
	usage := ""
	if withUsage {
		usage = `,"usage":{"prompt_tokens":10,"completion_tokens":5}`
	}
	return fmt.Sprintf(`{"model":"m1","choices":[{"message":{"content":%q},"finish_reason":"stop"}]%s}`, text, usage)
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
