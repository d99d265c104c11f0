package agent

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/moby/moby/api/types/container"
	"github.com/moby/moby/api/types/mount"
	"github.com/moby/moby/client"

	"github.com/keval-dev/keval/internal/config"
)

const sandboxTimeout = 10 * time.Minute

// Sandbox runs the claude CLI inside a container, isolating agent tool use
// from the host. Inputs and the result document are exchanged through a
// scratch directory mounted at /keval, so nothing depends on scraping the
// container's multiplexed log stream.
type Sandbox struct {
	Image string
	Model string
	Env   map[string]string
}

func NewSandbox(cfg config.Agent) *Sandbox {
	return &Sandbox{Image: cfg.Image, Model: cfg.Model, Env: cfg.Env}
}

func (a *Sandbox) Query(ctx context.Context, q Query) (*Result, error) {
	scratch, err := os.MkdirTemp("", "keval-sandbox-")
	if err != nil {
		return nil, &Error{Reason: fmt.Sprintf("creating scratch dir: %v", err)}
	}
	defer os.RemoveAll(scratch)

	files := map[string][]byte{
		"question.txt": []byte(q.Question),
		"run.sh":       []byte(SandboxScript(a.Model, q.SystemPrompt != "", len(q.Servers) > 0)),
	}
	if q.SystemPrompt != "" {
		files["system_prompt.txt"] = []byte(q.SystemPrompt)
	}
	if len(q.Servers) > 0 {
		files["mcp.json"] = MCPConfigJSON(q.Servers)
	}
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(scratch, name), data, 0o644); err != nil {
			return nil, &Error{Reason: fmt.Sprintf("writing %s: %v", name, err)}
		}
	}

	if err := a.runContainer(ctx, scratch); err != nil {
		return nil, err
	}

	resultData, err := os.ReadFile(filepath.Join(scratch, "result.json"))
	if err != nil {
		return nil, &Error{Reason: fmt.Sprintf("agent container produced no result: %v", err), Transient: true}
	}
	return ParseCLIResult(resultData)
}

func (a *Sandbox) runContainer(ctx context.Context, scratch string) error {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return &Error{Reason: fmt.Sprintf("creating docker client: %v", err)}
	}
	defer cli.Close()

	envSlice := make([]string, 0, len(a.Env))
	for k, v := range a.Env {
		envSlice = append(envSlice, k+"="+v)
	}

	initTrue := true
	hostCfg := &container.HostConfig{
		Mounts: []mount.Mount{
			{Type: mount.TypeBind, Source: scratch, Target: "/keval"},
		},
		Init: &initTrue,
	}
	containerCfg := &container.Config{
		Image:  a.Image,
		Cmd:    []string{"sh", "/keval/run.sh"},
		Env:    envSlice,
		Labels: map[string]string{"keval": "true"},
	}

	createResp, err := cli.ContainerCreate(ctx, client.ContainerCreateOptions{
		Config:     containerCfg,
		HostConfig: hostCfg,
	})
	if err != nil {
		return &Error{Reason: fmt.Sprintf("creating container: %v", err), Transient: true}
	}
	containerID := createResp.ID
	defer func() {
		cli.ContainerRemove(context.Background(), containerID, client.ContainerRemoveOptions{Force: true})
	}()

	if _, err := cli.ContainerStart(ctx, containerID, client.ContainerStartOptions{}); err != nil {
		return &Error{Reason: fmt.Sprintf("starting container: %v", err), Transient: true}
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, sandboxTimeout)
	defer cancel()

	waitResult := cli.ContainerWait(timeoutCtx, containerID, client.ContainerWaitOptions{
		Condition: container.WaitConditionNotRunning,
	})
	for {
		select {
		case err := <-waitResult.Error:
			if err != nil {
				cli.ContainerKill(context.Background(), containerID, client.ContainerKillOptions{Signal: "SIGKILL"})
				return &Error{Reason: fmt.Sprintf("agent container did not finish: %v", err), Transient: true}
			}
			// nil means nothing on this channel; keep waiting for the result.
		case status := <-waitResult.Result:
			if status.StatusCode != 0 {
				reason := fmt.Sprintf("agent container exited with code %d", status.StatusCode)
				if logs := a.tailLogs(cli, containerID); logs != "" {
					reason += ": " + logs
				}
				return &Error{Reason: reason, Transient: true}
			}
			return nil
		}
	}
}

func (a *Sandbox) tailLogs(cli *client.Client, containerID string) string {
	reader, err := cli.ContainerLogs(context.Background(), containerID, client.ContainerLogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Tail:       "20",
	})
	if err != nil {
		return ""
	}
	defer reader.Close()
	data, _ := io.ReadAll(reader)
	return strings.TrimSpace(string(data))
}

// SandboxScript renders the entrypoint executed inside the container. The
// question arrives via redirect and the prompt via command substitution, so
// neither is ever spliced into shell syntax.
func SandboxScript(model string, withSystemPrompt, withMCP bool) string {
	var b strings.Builder
	b.WriteString("#!/bin/sh\nset -e\n")
	b.WriteString("exec claude -p --output-format json --model " + shellQuote(model))
	if withSystemPrompt {
		b.WriteString(` --append-system-prompt "$(cat /keval/system_prompt.txt)"`)
	}
	if withMCP {
		b.WriteString(" --mcp-config /keval/mcp.json --strict-mcp-config")
	}
	b.WriteString(" </keval/question.txt >/keval/result.json\n")
	return b.String()
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
