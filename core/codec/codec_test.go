package codec

import (
	"testing"

	"github.com/leofalp/polyprompt/core/config"
	"github.com/leofalp/polyprompt/providers/registry"
)

// effective builds an EffectiveConfig straight from the default catalog,
// bypassing credential lookup.
func effective(t *testing.T, providerID, purpose string) config.EffectiveConfig {
	t.Helper()
	descriptor, err := registry.Default().Describe(providerID)
	if err != nil {
		t.Fatalf("Describe(%s): %v", providerID, err)
	}
	endpoint, ok := descriptor.Endpoint(purpose)
	if !ok {
		t.Fatalf("%s has no endpoint %q", providerID, purpose)
	}
	shape, streaming, auth := descriptor.Wire(endpoint)
	return config.EffectiveConfig{
		Provider:   descriptor,
		Endpoint:   endpoint,
		BaseURL:    endpoint.BaseURL,
		Credential: "secret-key-123456",
		Model:      descriptor.DefaultModel,
		Auth:       auth,
		Shape:      shape,
		Streaming:  streaming,
	}
}
