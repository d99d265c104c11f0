package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/keval-dev/keval/internal/config"
)

// ClaudeCLI drives the claude CLI in non-interactive mode. Each Query opens
// a fresh session, which is what independent evaluation units need.
type ClaudeCLI struct {
	Model  string
	Binary string
}

func NewClaudeCLI(cfg config.Agent) *ClaudeCLI {
	binary := cfg.Binary
	if binary == "" {
		binary = "claude"
	}
	return &ClaudeCLI{Model: cfg.Model, Binary: binary}
}

func (a *ClaudeCLI) Query(ctx context.Context, q Query) (*Result, error) {
	var mcpConfigPath string
	if len(q.Servers) > 0 {
		dir, err := os.MkdirTemp("", "keval-mcp-")
		if err != nil {
			return nil, &Error{Reason: fmt.Sprintf("creating mcp config dir: %v", err)}
		}
		defer os.RemoveAll(dir)
		mcpConfigPath = filepath.Join(dir, "mcp.json")
		if err := os.WriteFile(mcpConfigPath, MCPConfigJSON(q.Servers), 0o644); err != nil {
			return nil, &Error{Reason: fmt.Sprintf("writing mcp config: %v", err)}
		}
	}

	args := BuildArgs(a.Model, q.SystemPrompt, mcpConfigPath)
	cmd := exec.CommandContext(ctx, a.Binary, args...)
	cmd.Stdin = strings.NewReader(q.Question)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		reason := fmt.Sprintf("%s failed: %v", a.Binary, err)
		if s := strings.TrimSpace(stderr.String()); s != "" {
			reason += ": " + s
		}
		return nil, &Error{Reason: reason, Transient: true}
	}

	return ParseCLIResult(stdout.Bytes())
}

// BuildArgs assembles the CLI argument list for one query. The question is
// delivered on stdin, so it never needs shell-safe quoting.
func BuildArgs(model, systemPrompt, mcpConfigPath string) []string {
	args := []string{"-p", "--output-format", "json", "--model", model}
	if systemPrompt != "" {
		args = append(args, "--append-system-prompt", systemPrompt)
	}
	if mcpConfigPath != "" {
		// strict-mcp-config keeps user-level server config from leaking in.
		args = append(args, "--mcp-config", mcpConfigPath, "--strict-mcp-config")
	}
	return args
}

// MCPConfigJSON renders the condition's allowed servers in the CLI's
// mcpServers config format.
func MCPConfigJSON(servers []config.NamedServer) []byte {
	entries := make(map[string]any, len(servers))
	for _, s := range servers {
		switch s.Server.Type {
		case config.ServerStdio:
			entry := map[string]any{"command": s.Server.Command}
			if len(s.Server.Args) > 0 {
				entry["args"] = s.Server.Args
			}
			if len(s.Server.Env) > 0 {
				entry["env"] = s.Server.Env
			}
			entries[s.Name] = entry
		case config.ServerSSE, config.ServerHTTP:
			entry := map[string]any{"type": s.Server.Type, "url": s.Server.URL}
			if len(s.Server.Headers) > 0 {
				entry["headers"] = s.Server.Headers
			}
			entries[s.Name] = entry
		}
	}
	data, _ := json.Marshal(map[string]any{"mcpServers": entries})
	return data
}

type cliResult struct {
	Type         string  `json:"type"`
	Subtype      string  `json:"subtype"`
	IsError      bool    `json:"is_error"`
	Result       string  `json:"result"`
	DurationMS   int64   `json:"duration_ms"`
	NumTurns     int     `json:"num_turns"`
	TotalCostUSD float64 `json:"total_cost_usd"`
	Usage        Usage   `json:"usage"`
}

// ParseCLIResult decodes the CLI's --output-format json result document.
// Malformed output and is_error results are transient: the CLI call itself
// may succeed on re-invocation.
func ParseCLIResult(data []byte) (*Result, error) {
	var res cliResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, &Error{Reason: fmt.Sprintf("parsing CLI result: %v", err), Transient: true}
	}
	if res.IsError {
		reason := "CLI reported an error result"
		if res.Subtype != "" {
			reason += ": " + res.Subtype
		}
		return nil, &Error{Reason: reason, Transient: true}
	}
	return &Result{
		Response:   res.Result,
		Usage:      res.Usage,
		CostUSD:    res.TotalCostUSD,
		DurationMS: res.DurationMS,
		NumTurns:   res.NumTurns,
	}, nil
}
