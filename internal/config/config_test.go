package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/keval-dev/keval/internal/config"
)

func TestLoadMinimal(t *testing.T) {
	cfg, err := config.Load("../../testdata/minimal.yaml")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Name != "smoke" {
		t.Errorf("expected name 'smoke', got %q", cfg.Name)
	}
	if cfg.Agent.Type != "claude" {
		t.Errorf("expected default agent type 'claude', got %q", cfg.Agent.Type)
	}
	if cfg.Dataset.QuestionKey != "question" || cfg.Dataset.AnswerKey != "answer" {
		t.Errorf("expected default dataset keys, got %q/%q", cfg.Dataset.QuestionKey, cfg.Dataset.AnswerKey)
	}
	if cfg.Execution.NumRepetitions != 1 {
		t.Errorf("expected 1 repetition, got %d", cfg.Execution.NumRepetitions)
	}
	if cfg.Execution.MaxConcurrent != 4 {
		t.Errorf("expected default max_concurrent 4, got %d", cfg.Execution.MaxConcurrent)
	}
	if cfg.Execution.Retry.MaxAttempts != 3 {
		t.Errorf("expected default 3 retry attempts, got %d", cfg.Execution.Retry.MaxAttempts)
	}
	if cfg.Output.Dir != "results" {
		t.Errorf("expected default output dir 'results', got %q", cfg.Output.Dir)
	}
}

func TestLoadFull(t *testing.T) {
	t.Setenv("KEVAL_TEST_API_KEY", "sk-test-123")

	cfg, err := config.Load("../../testdata/full.yaml")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Agent.Type != "sandbox" {
		t.Errorf("expected agent type 'sandbox', got %q", cfg.Agent.Type)
	}
	if cfg.Agent.Env["ANTHROPIC_API_KEY"] != "sk-test-123" {
		t.Errorf("expected interpolated agent env, got %q", cfg.Agent.Env["ANTHROPIC_API_KEY"])
	}
	if cfg.Judge.APIKey != "sk-test-123" {
		t.Errorf("expected interpolated judge api key, got %q", cfg.Judge.APIKey)
	}
	if len(cfg.MCPServers) != 2 {
		t.Fatalf("expected 2 mcp servers, got %d", len(cfg.MCPServers))
	}
	docs := cfg.MCPServers["docs"]
	if docs.Type != config.ServerStdio || docs.Command != "docs-mcp" {
		t.Errorf("unexpected docs server: %+v", docs)
	}
	search := cfg.MCPServers["search"]
	if search.Headers["Authorization"] != "Bearer sk-test-123" {
		t.Errorf("expected interpolated header, got %q", search.Headers["Authorization"])
	}
	if len(cfg.Conditions) != 3 {
		t.Errorf("expected 3 conditions, got %d", len(cfg.Conditions))
	}
	if got := cfg.Conditions["with_all"].MCPServers; len(got) != 2 {
		t.Errorf("expected 2 server refs on with_all, got %v", got)
	}
	if cfg.Execution.NumRepetitions != 3 {
		t.Errorf("expected 3 repetitions, got %d", cfg.Execution.NumRepetitions)
	}
	if cfg.Execution.Retry.InitialBackoffSeconds != 1.5 {
		t.Errorf("expected initial backoff 1.5, got %f", cfg.Execution.Retry.InitialBackoffSeconds)
	}
}

func TestLoadMissingEnvVars(t *testing.T) {
	content := `
name: envtest
dataset:
  path: data.jsonl
agent:
  model: m
  env:
    A: ${KEVAL_TEST_UNSET_ONE}
judge:
  model: j
  api_key: ${KEVAL_TEST_UNSET_TWO}
conditions:
  base:
    system_prompt: hi
`
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := config.Load(path)
	if err == nil {
		t.Fatal("expected error for unset env vars")
	}
	for _, name := range []string{"KEVAL_TEST_UNSET_ONE", "KEVAL_TEST_UNSET_TWO"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error %q does not name %s", err, name)
		}
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := config.Load("nonexistent.yaml")
	if err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadInvalid(t *testing.T) {
	_, err := config.Load("../../testdata/invalid.yaml")
	if err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "unknown agent type",
			yaml: "name: x\ndataset: {path: d}\nagent: {type: gemini, model: m}\njudge: {model: j}\nconditions: {c: {system_prompt: p}}\n",
			want: "agent.type",
		},
		{
			name: "sandbox without image",
			yaml: "name: x\ndataset: {path: d}\nagent: {type: sandbox, model: m}\njudge: {model: j}\nconditions: {c: {system_prompt: p}}\n",
			want: "agent.image",
		},
		{
			name: "no conditions",
			yaml: "name: x\ndataset: {path: d}\nagent: {model: m}\njudge: {model: j}\n",
			want: "no conditions",
		},
		{
			name: "condition without prompt",
			yaml: "name: x\ndataset: {path: d}\nagent: {model: m}\njudge: {model: j}\nconditions: {c: {}}\n",
			want: "system_prompt",
		},
		{
			name: "backoff multiplier below one",
			yaml: "name: x\ndataset: {path: d}\nagent: {model: m}\njudge: {model: j}\nconditions: {c: {system_prompt: p}}\nexecution: {retry: {backoff_multiplier: 0.5}}\n",
			want: "backoff_multiplier",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "cfg.yaml")
			if err := os.WriteFile(path, []byte(tc.yaml), 0o644); err != nil {
				t.Fatal(err)
			}
			_, err := config.Load(path)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestServerVariants(t *testing.T) {
	cases := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{name: "stdio ok", yaml: "type: stdio\ncommand: srv\n"},
		{name: "sse ok", yaml: "type: sse\nurl: https://example.com/sse\n"},
		{name: "http ok", yaml: "type: http\nurl: https://example.com/mcp\n"},
		{name: "stdio without command", yaml: "type: stdio\n", wantErr: "command is required"},
		{name: "stdio with url", yaml: "type: stdio\ncommand: srv\nurl: https://x\n", wantErr: "url is not allowed"},
		{name: "http without url", yaml: "type: http\n", wantErr: "url is required"},
		{name: "missing type", yaml: "command: srv\n", wantErr: "type is required"},
		{name: "unknown type", yaml: "type: websocket\nurl: https://x\n", wantErr: "unknown server type"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var s config.Server
			err := yaml.Unmarshal([]byte(tc.yaml), &s)
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error %q does not contain %q", err, tc.wantErr)
			}
		})
	}
}
