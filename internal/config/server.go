package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Server transport kinds. The set is closed: anything else is rejected at
// config load time, never dispatched on dynamically.
const (
	ServerStdio = "stdio"
	ServerSSE   = "sse"
	ServerHTTP  = "http"
)

// Server is one MCP server declaration from the run's server registry.
// Which fields are meaningful depends on Type: stdio servers are launched as
// subprocesses (Command/Args/Env), sse and http servers are remote (URL/Headers).
type Server struct {
	Type    string            `yaml:"type"`
	Command string            `yaml:"command"`
	Args    []string          `yaml:"args"`
	Env     map[string]string `yaml:"env"`
	URL     string            `yaml:"url"`
	Headers map[string]string `yaml:"headers"`
}

func (s *Server) UnmarshalYAML(value *yaml.Node) error {
	type plain Server
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*s = Server(p)

	switch s.Type {
	case ServerStdio:
		if s.Command == "" {
			return fmt.Errorf("stdio server: command is required")
		}
		if s.URL != "" {
			return fmt.Errorf("stdio server: url is not allowed")
		}
	case ServerSSE, ServerHTTP:
		if s.URL == "" {
			return fmt.Errorf("%s server: url is required", s.Type)
		}
		if s.Command != "" {
			return fmt.Errorf("%s server: command is not allowed", s.Type)
		}
	case "":
		return fmt.Errorf("server type is required (stdio, sse, or http)")
	default:
		return fmt.Errorf("unknown server type %q (must be stdio, sse, or http)", s.Type)
	}
	return nil
}

// NamedServer pairs a registry name with its resolved transport config.
// Conditions reference servers by name; the planner resolves them.
type NamedServer struct {
	Name   string
	Server Server
}
