package openai

import (
	"encoding/json"
	"slices"
	"testing"

	"github.com/leofalp/polyprompt/internal/utils"
	"github.com/leofalp/polyprompt/providers/ai"
)

func decodeBody(t *testing.T, body []byte) map[string]any {
	t.Helper()
	var decoded map[string]any
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	return decoded
}

func TestTranslate_SystemFirstAndFlatParams(t *testing.T) {
	req := ai.Request{System: "be brief", Messages: []ai.Message{{Role: ai.RoleUser, Content: "hi"}}}
	params := ai.Params{Temperature: utils.Ptr(0.2), MaxTokens: utils.Ptr(64), Stop: []string{"END"}}

	body, err := Translate(req, params, "gpt-4o-mini", false)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	decoded := decodeBody(t, body)

	messages := decoded["messages"].([]any)
	if len(messages) != 2 || messages[0].(map[string]any)["role"] != "system" {
		t.Errorf("system prompt should come first: %v", messages)
	}
	if decoded["model"] != "gpt-4o-mini" || decoded["temperature"] != 0.2 || decoded["max_tokens"] != float64(64) {
		t.Errorf("unexpected body %v", decoded)
	}
	if _, ok := decoded["stream"]; ok {
		t.Error("stream must be absent for a non-streaming call")
	}
}

// TestTranslate_OnlySetKeysAppear checks that unset parameters never reach
// the wire, so a provider only sees what resolution handed over.
func TestTranslate_OnlySetKeysAppear(t *testing.T) {
	body, err := Translate(ai.NewRequest("x"), ai.Params{TopP: utils.Ptr(0.9)}, "m", false)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	decoded := decodeBody(t, body)

	var keys []string
	for key := range decoded {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	if !slices.Equal(keys, []string{"messages", "model", "top_p"}) {
		t.Errorf("unexpected keys %v", keys)
	}
}

func TestTranslate_SearchAndJSONExtensions(t *testing.T) {
	params := ai.Params{
		Search:        utils.Ptr(false),
		Citations:     utils.Ptr(true),
		SearchRecency: utils.Ptr("week"),
		JSONMode:      utils.Ptr(true),
	}
	body, err := Translate(ai.NewRequest("x"), params, "sonar", true)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	decoded := decodeBody(t, body)

	if decoded["disable_search"] != true {
		t.Errorf("search=false should map to disable_search=true, got %v", decoded["disable_search"])
	}
	if decoded["return_citations"] != true || decoded["search_recency_filter"] != "week" {
		t.Errorf("citation controls missing: %v", decoded)
	}
	if format := decoded["response_format"].(map[string]any); format["type"] != "json_object" {
		t.Errorf("unexpected response_format %v", format)
	}
	if decoded["stream"] != true {
		t.Error("stream flag missing")
	}
	if options := decoded["stream_options"].(map[string]any); options["include_usage"] != true {
		t.Errorf("stream usage not requested: %v", options)
	}
}
