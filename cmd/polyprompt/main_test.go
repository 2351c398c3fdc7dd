package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(append([]string{"--log-level", "error", "--env-file", filepath.Join(t.TempDir(), "none.env")}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestProvidersCommand_ListsCatalog(t *testing.T) {
	out, err := run(t, "providers")
	if err != nil {
		t.Fatalf("providers: %v", err)
	}
	for _, id := range []string{"openai", "anthropic", "gemini", "perplexity"} {
		if !strings.Contains(out, id) {
			t.Errorf("output misses %s:\n%s", id, out)
		}
	}
}

func TestAskCommand_DispatchesConfiguredAgents(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"model":"gpt-4o-mini","choices":[{"message":{"content":"Bonjour"},"finish_reason":"stop"}],"usage":{"prompt_tokens":5,"completion_tokens":1}}`))
	}))
	defer provider.Close()

	configPath := filepath.Join(t.TempDir(), "polyprompt.yaml")
	config := "dispatch:\n  retry_delay: 1ms\nagents:\n" +
		"  - id: fr\n    name: French\n    provider: openai\n    model: gpt-4o-mini\n    credential: test-key\n    base_url: " + provider.URL + "\n" +
		"  - id: broken\n    provider: openai\n    credential: wrong\n    base_url: " + provider.URL + "\n"
	if err := os.WriteFile(configPath, []byte(config), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	out, err := run(t, "--config", configPath, "ask", "-o", "json", "say hello")
	if err != nil {
		t.Fatalf("ask: %v\n%s", err, out)
	}
	var decoded struct {
		DispatchID string `json:"dispatch_id"`
		Targets    []struct {
			AgentID string  `json:"agent_id"`
			Status  string  `json:"status"`
			Cost    *float64 `json:"cost"`
			Result  struct {
				Text string `json:"text"`
			} `json:"result"`
		} `json:"targets"`
	}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("decoding output: %v\n%s", err, out)
	}
	if len(decoded.Targets) != 2 {
		t.Fatalf("expected both configured agents, got %+v", decoded.Targets)
	}
	fr, broken := decoded.Targets[0], decoded.Targets[1]
	if fr.Status != "success" || fr.Result.Text != "Bonjour" || fr.Cost == nil {
		t.Errorf("unexpected success target %+v", fr)
	}
	if broken.Status != "error" {
		t.Errorf("wrong credential should fail, got %s", broken.Status)
	}
}

func TestAskCommand_RequiresPrompt(t *testing.T) {
	if _, err := run(t, "ask", "--provider", "openai"); err == nil {
		t.Error("expected an error for an empty prompt")
	}
}

func TestParamFlags_OnlyChangedFlagsBecomeParams(t *testing.T) {
	var flags paramFlags
	cmd := &cobra.Command{Use: "x"}
	flags.register(cmd)
	if err := cmd.ParseFlags([]string{"--temperature", "0", "--json-mode", "--stop", "a,b"}); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}

	params := flags.params(cmd)
	if params.Temperature == nil || *params.Temperature != 0 {
		t.Errorf("an explicit zero temperature must be kept: %v", params.Temperature)
	}
	if params.JSONMode == nil || !*params.JSONMode {
		t.Error("json mode should be set")
	}
	if len(params.Stop) != 2 {
		t.Errorf("Stop: %v", params.Stop)
	}
	if params.MaxTokens != nil || params.Seed != nil || params.Search != nil {
		t.Error("unset flags must stay nil")
	}
}
