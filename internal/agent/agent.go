// Package agent defines the port for the system under evaluation and its
// concrete adapters: the claude CLI, the same CLI sandboxed in a container,
// and a plain OpenAI-compatible chat completion.
package agent

import (
	"context"

	"github.com/keval-dev/keval/internal/config"
)

// Query is one agent invocation: the sample's question, the condition's
// system prompt, and the MCP servers the condition allows (possibly none).
type Query struct {
	Question     string
	SystemPrompt string
	Servers      []config.NamedServer
}

type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Result is the agent's final answer. Internal reasoning and tool-call
// traces never appear here; only the response text and usage counts do.
type Result struct {
	Response   string  `json:"response"`
	Usage      Usage   `json:"usage"`
	CostUSD    float64 `json:"cost_usd,omitempty"`
	DurationMS int64   `json:"duration_ms,omitempty"`
	NumTurns   int     `json:"num_turns,omitempty"`
}

type Agent interface {
	Query(ctx context.Context, q Query) (*Result, error)
}

// Error is a failed agent invocation. Transient failures (timeouts, rate
// limits, process crashes) are retried by the caller; non-transient ones
// (invalid arguments) fail the unit immediately.
type Error struct {
	Reason    string
	Transient bool
}

func (e *Error) Error() string { return "agent: " + e.Reason }

// TransientError reports retryability to the retry decorator.
func (e *Error) TransientError() bool { return e.Transient }

// New builds the agent adapter selected by the run configuration.
func New(cfg config.Agent) (Agent, error) {
	switch cfg.Type {
	case "claude":
		return NewClaudeCLI(cfg), nil
	case "sandbox":
		return NewSandbox(cfg), nil
	case "openai":
		return NewOpenAI(cfg), nil
	}
	return nil, &Error{Reason: "unknown agent type " + cfg.Type}
}
