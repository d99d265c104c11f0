package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Name       string               `yaml:"name"`
	Version    string               `yaml:"version"`
	Dataset    Dataset              `yaml:"dataset"`
	Agent      Agent                `yaml:"agent"`
	Judge      Judge                `yaml:"judge"`
	MCPServers map[string]Server    `yaml:"mcp_servers"`
	Conditions map[string]Condition `yaml:"conditions"`
	Execution  Execution            `yaml:"execution"`
	Output     Output               `yaml:"output"`
}

type Dataset struct {
	Path        string `yaml:"path"`
	QuestionKey string `yaml:"question_key"`
	AnswerKey   string `yaml:"answer_key"`
}

type Agent struct {
	Type  string `yaml:"type"`
	Model string `yaml:"model"`
	// Binary overrides the CLI executable for the claude agent type.
	Binary string `yaml:"binary"`
	// Image and Env apply to the sandbox agent type.
	Image string            `yaml:"image"`
	Env   map[string]string `yaml:"env"`
	// BaseURL and APIKey apply to the openai agent type.
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

type Judge struct {
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	BaseURL     string  `yaml:"base_url"`
	APIKey      string  `yaml:"api_key"`
}

// Condition is a named experimental variant: a system prompt plus the MCP
// servers (by registry name) the agent is allowed to use.
type Condition struct {
	SystemPrompt string   `yaml:"system_prompt"`
	MCPServers   []string `yaml:"mcp_servers"`
}

type Retry struct {
	MaxAttempts           int     `yaml:"max_attempts"`
	InitialBackoffSeconds float64 `yaml:"initial_backoff_seconds"`
	BackoffMultiplier     float64 `yaml:"backoff_multiplier"`
}

type Execution struct {
	// NumSamples caps how many dataset samples are evaluated; 0 means all.
	NumSamples     int   `yaml:"num_samples"`
	NumRepetitions int   `yaml:"num_repetitions"`
	MaxConcurrent  int   `yaml:"max_concurrent"`
	Retry          Retry `yaml:"retry"`
}

type Output struct {
	Dir string `yaml:"dir"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if missing := missingEnvVars(raw); len(missing) > 0 {
		return nil, fmt.Errorf("config %s references unset environment variables: %s",
			path, strings.Join(missing, ", "))
	}
	interpolated, err := yaml.Marshal(interpolateEnv(raw))
	if err != nil {
		return nil, fmt.Errorf("re-encoding config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(interpolated, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Name == "" {
		return fmt.Errorf("name is required")
	}
	if cfg.Version == "" {
		cfg.Version = "1"
	}
	if cfg.Dataset.Path == "" {
		return fmt.Errorf("dataset.path is required")
	}
	if cfg.Dataset.QuestionKey == "" {
		cfg.Dataset.QuestionKey = "question"
	}
	if cfg.Dataset.AnswerKey == "" {
		cfg.Dataset.AnswerKey = "answer"
	}

	switch cfg.Agent.Type {
	case "":
		cfg.Agent.Type = "claude"
	case "claude", "sandbox", "openai":
	default:
		return fmt.Errorf("agent.type %q: must be claude, sandbox, or openai", cfg.Agent.Type)
	}
	if cfg.Agent.Model == "" {
		return fmt.Errorf("agent.model is required")
	}
	if cfg.Agent.Type == "sandbox" && cfg.Agent.Image == "" {
		return fmt.Errorf("agent.image is required for the sandbox agent")
	}

	if cfg.Judge.Model == "" {
		return fmt.Errorf("judge.model is required")
	}
	if cfg.Judge.Temperature < 0 {
		return fmt.Errorf("judge.temperature must be >= 0")
	}

	if len(cfg.Conditions) == 0 {
		return fmt.Errorf("no conditions defined")
	}
	for name, c := range cfg.Conditions {
		if c.SystemPrompt == "" {
			return fmt.Errorf("condition %q: system_prompt is required", name)
		}
	}

	if cfg.Execution.NumSamples < 0 {
		return fmt.Errorf("execution.num_samples must be >= 0")
	}
	if cfg.Execution.NumRepetitions == 0 {
		cfg.Execution.NumRepetitions = 1
	}
	if cfg.Execution.NumRepetitions < 1 {
		return fmt.Errorf("execution.num_repetitions must be at least 1")
	}
	if cfg.Execution.MaxConcurrent == 0 {
		cfg.Execution.MaxConcurrent = 4
	}
	if cfg.Execution.MaxConcurrent < 1 {
		return fmt.Errorf("execution.max_concurrent must be at least 1")
	}

	r := &cfg.Execution.Retry
	if r.MaxAttempts == 0 {
		r.MaxAttempts = 3
	}
	if r.MaxAttempts < 1 {
		return fmt.Errorf("execution.retry.max_attempts must be at least 1")
	}
	if r.InitialBackoffSeconds == 0 {
		r.InitialBackoffSeconds = 2
	}
	if r.InitialBackoffSeconds < 0 {
		return fmt.Errorf("execution.retry.initial_backoff_seconds must be >= 0")
	}
	if r.BackoffMultiplier == 0 {
		r.BackoffMultiplier = 2
	}
	if r.BackoffMultiplier < 1 {
		return fmt.Errorf("execution.retry.backoff_multiplier must be >= 1")
	}

	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "results"
	}
	return nil
}
