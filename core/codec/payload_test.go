package codec

import (
	"encoding/json"
	"net/url"
	"strings"
	"testing"

	"github.com/leofalp/polyprompt/internal/utils"
	"github.com/leofalp/polyprompt/providers/ai"
	"github.com/leofalp/polyprompt/providers/registry"
)

func everyParam() ai.Params {
	return ai.Params{
		Temperature:      utils.Ptr(0.4),
		MaxTokens:        utils.Ptr(128),
		TopP:             utils.Ptr(0.9),
		TopK:             utils.Ptr(32),
		FrequencyPenalty: utils.Ptr(0.1),
		PresencePenalty:  utils.Ptr(0.2),
		Stop:             []string{"END"},
		Seed:             utils.Ptr(42),
		JSONMode:         utils.Ptr(true),
		Search:           utils.Ptr(true),
		Citations:        utils.Ptr(true),
		SearchRecency:    utils.Ptr("week"),
	}
}

// wireKey locates where each parameter lands in a decoded body.
func wireKey(shape registry.Shape, key ai.ParamKey, body map[string]any) bool {
	lookup := func(m map[string]any, name string) bool {
		_, ok := m[name]
		return ok
	}
	switch shape {
	case registry.ShapeOpenAI:
		names := map[ai.ParamKey]string{
			ai.ParamTemperature: "temperature", ai.ParamMaxTokens: "max_tokens", ai.ParamTopP: "top_p",
			ai.ParamTopK: "top_k", ai.ParamFrequencyPenalty: "frequency_penalty", ai.ParamPresencePenalty: "presence_penalty",
			ai.ParamStop: "stop", ai.ParamSeed: "seed", ai.ParamJSONMode: "response_format", ai.ParamSearch: "disable_search",
			ai.ParamCitations: "return_citations", ai.ParamSearchRecency: "search_recency_filter",
		}
		return lookup(body, names[key])
	case registry.ShapeAnthropic:
		names := map[ai.ParamKey]string{
			ai.ParamTemperature: "temperature", ai.ParamMaxTokens: "max_tokens", ai.ParamTopP: "top_p",
			ai.ParamTopK: "top_k", ai.ParamStop: "stop_sequences", ai.ParamSearch: "tools",
		}
		name, ok := names[key]
		return ok && lookup(body, name)
	case registry.ShapeGemini:
		if key == ai.ParamSearch {
			return lookup(body, "tools")
		}
		names := map[ai.ParamKey]string{
			ai.ParamTemperature: "temperature", ai.ParamMaxTokens: "maxOutputTokens", ai.ParamTopP: "topP",
			ai.ParamTopK: "topK", ai.ParamFrequencyPenalty: "frequencyPenalty", ai.ParamPresencePenalty: "presencePenalty",
			ai.ParamStop: "stopSequences", ai.ParamSeed: "seed", ai.ParamJSONMode: "responseMimeType",
		}
		config, _ := body["generationConfig"].(map[string]any)
		name, ok := names[key]
		return ok && config != nil && lookup(config, name)
	}
	return false
}

// TestTranslate_ExactlySupportedKeys sends every parameter to every cataloged
// provider and checks the body carries exactly the supported ones.
func TestTranslate_ExactlySupportedKeys(t *testing.T) {
	for _, descriptor := range registry.Default().List() {
		for _, endpoint := range descriptor.Endpoints {
			t.Run(descriptor.ID+"/"+endpoint.Purpose, func(t *testing.T) {
				cfg := effective(t, descriptor.ID, endpoint.Purpose)
				cfg.Params = everyParam()

				payload, err := Translate(ai.NewRequest("hi"), cfg, false)
				if err != nil {
					t.Fatalf("Translate: %v", err)
				}
				var body map[string]any
				if err := json.Unmarshal(payload.Body, &body); err != nil {
					t.Fatalf("body is not JSON: %v", err)
				}

				for _, key := range ai.AllParams {
					want := descriptor.Supports(key)
					if cfg.Shape == registry.ShapeAnthropic && key == ai.ParamMaxTokens {
						want = true // always sent, defaulting to 4096
					}
					if got := wireKey(cfg.Shape, key, body); got != want {
						t.Errorf("%s: present=%v, supported=%v", key, got, want)
					}
				}
			})
		}
	}
}

func TestTranslate_AuthPlacement(t *testing.T) {
	openaiCfg := effective(t, "openai", "")
	payload, err := Translate(ai.NewRequest("hi"), openaiCfg, false)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got := payload.Header.Get("Authorization"); got != "Bearer secret-key-123456" {
		t.Errorf("bearer header: %q", got)
	}
	if payload.URL != "https://api.openai.com/v1/chat/completions" {
		t.Errorf("URL: %s", payload.URL)
	}

	anthropicCfg := effective(t, "anthropic", "")
	payload, _ = Translate(ai.NewRequest("hi"), anthropicCfg, true)
	if payload.Header.Get("x-api-key") != "secret-key-123456" || payload.Header.Get("Authorization") != "" {
		t.Errorf("anthropic headers: %v", payload.Header)
	}
	if payload.Header.Get("anthropic-version") != "2023-06-01" {
		t.Errorf("static header missing: %v", payload.Header)
	}

	geminiCfg := effective(t, "gemini", "")
	geminiCfg.Model = "gemini-2.5-flash"
	payload, _ = Translate(ai.NewRequest("hi"), geminiCfg, true)
	parsed, err := url.Parse(payload.URL)
	if err != nil {
		t.Fatalf("URL: %v", err)
	}
	if parsed.Path != "/v1beta/models/gemini-2.5-flash:streamGenerateContent" {
		t.Errorf("path: %s", parsed.Path)
	}
	if parsed.Query().Get("alt") != "sse" || parsed.Query().Get("key") != "secret-key-123456" {
		t.Errorf("query: %s", parsed.RawQuery)
	}
	if payload.Header.Get("Authorization") != "" {
		t.Error("query auth must not also set a header")
	}
}

func TestTranslate_NoCredentialNoAuth(t *testing.T) {
	cfg := effective(t, "ollama", "")
	cfg.Credential = ""
	payload, err := Translate(ai.NewRequest("hi"), cfg, false)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if payload.Header.Get("Authorization") != "" {
		t.Errorf("unexpected auth header %q", payload.Header.Get("Authorization"))
	}
}

func TestTranslate_UnknownShape(t *testing.T) {
	cfg := effective(t, "openai", "")
	cfg.Shape = "soap"
	if _, err := Translate(ai.NewRequest("hi"), cfg, false); err == nil {
		t.Error("unknown shape should fail")
	}
}

func TestPayload_RedactedMasksCredential(t *testing.T) {
	for _, providerID := range []string{"openai", "anthropic", "gemini"} {
		payload, err := Translate(ai.NewRequest("hi"), effective(t, providerID, ""), false)
		if err != nil {
			t.Fatalf("Translate: %v", err)
		}
		redacted := payload.Redacted()
		dump := redacted.URL + " " + strings.Join(redacted.Header.Values("Authorization"), "") + redacted.Header.Get("x-api-key")
		if strings.Contains(dump, "secret-key-123456") {
			t.Errorf("%s: credential leaked in %q", providerID, dump)
		}
		if !strings.Contains(payload.URL+payload.Header.Get("Authorization")+payload.Header.Get("x-api-key"), "secret-key-123456") {
			t.Errorf("%s: Redacted must not modify the original", providerID)
		}
	}
}

// TestPayload_RedactedShortStaticAuthorization covers a catalog header that
// sets Authorization to a value shorter than the bearer prefix.
func TestPayload_RedactedShortStaticAuthorization(t *testing.T) {
	cfg := effective(t, "ollama", "")
	cfg.Credential = ""
	cfg.Provider.Headers = map[string]string{"Authorization": "abc"}
	payload, err := Translate(ai.NewRequest("hi"), cfg, false)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got := payload.Redacted().Header.Get("Authorization"); got != "Bearer ***" {
		t.Errorf("Authorization: got %q", got)
	}
}
