package gemini

import (
	"encoding/json"
	"testing"

	"github.com/leofalp/polyprompt/internal/utils"
	"github.com/leofalp/polyprompt/providers/ai"
)

func TestTranslate_RolesSystemAndConfig(t *testing.T) {
	req := ai.Request{
		System: "be brief",
		Messages: []ai.Message{
			{Role: ai.RoleUser, Content: "hi"},
			{Role: ai.RoleAssistant, Content: "hello"},
			{Role: ai.RoleUser, Content: "again"},
		},
	}
	params := ai.Params{Temperature: utils.Ptr(0.3), MaxTokens: utils.Ptr(64), TopK: utils.Ptr(20), JSONMode: utils.Ptr(true)}

	body, err := Translate(req, params, "gemini-2.5-flash", false)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}

	var got generateRequest
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if got.SystemInstruction == nil || got.SystemInstruction.Parts[0].Text != "be brief" {
		t.Errorf("systemInstruction: %+v", got.SystemInstruction)
	}
	if len(got.Contents) != 3 || got.Contents[1].Role != "model" || got.Contents[2].Role != "user" {
		t.Errorf("contents: %+v", got.Contents)
	}
	config := got.GenerationConfig
	if config == nil {
		t.Fatal("generationConfig missing")
	}
	if *config.Temperature != 0.3 || *config.MaxOutputTokens != 64 || *config.TopK != 20 {
		t.Errorf("generationConfig: %+v", config)
	}
	if config.ResponseMimeType != "application/json" {
		t.Errorf("responseMimeType: %q", config.ResponseMimeType)
	}

	var raw map[string]any
	_ = json.Unmarshal(body, &raw)
	if _, ok := raw["model"]; ok {
		t.Error("model belongs in the URL, not the body")
	}
}

func TestTranslate_OmitsEmptyConfigAndAddsSearch(t *testing.T) {
	body, err := Translate(ai.NewRequest("q"), ai.Params{}, "m", true)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	var raw map[string]any
	_ = json.Unmarshal(body, &raw)
	if _, ok := raw["generationConfig"]; ok {
		t.Errorf("empty params should omit generationConfig: %s", body)
	}

	body, _ = Translate(ai.NewRequest("q"), ai.Params{Search: utils.Ptr(true)}, "m", false)
	var got generateRequest
	_ = json.Unmarshal(body, &got)
	if len(got.Tools) != 1 || got.Tools[0].GoogleSearch == nil {
		t.Errorf("search should add the googleSearch tool: %s", body)
	}
}
