package mcp

import (
	"os"
	"slices"
	"strings"

	"github.com/thoreinstein/mcpcheck/internal/errors"
)

// Environment variables derived from a Server profile.
const (
	EnvDefaultModel     = "DEFAULT_MODEL"
	EnvLogLevel         = "LOG_LEVEL"
	EnvDisabledTools    = "DISABLED_TOOLS"
	EnvForceEnvOverride = "ZEN_MCP_FORCE_ENV_OVERRIDE"
)

// Server describes how to launch a local (stdio) MCP server.
type Server struct {
	// Name is a display name for the server.
	Name string `json:"name" mapstructure:"name" yaml:"name"`

	// Command is the executable to launch.
	Command string `json:"command" mapstructure:"command" yaml:"command"`

	// Args are passed to Command.
	Args []string `json:"args,omitempty" mapstructure:"args" yaml:"args,omitempty"`

	// Dir is the working directory of the process. Empty means the current
	// directory.
	Dir string `json:"dir,omitempty" mapstructure:"dir" yaml:"dir,omitempty"`

	// Env holds extra variables for the process. Values may reference the
	// parent environment as ${VAR}; secrets should always be given that way.
	Env map[string]string `json:"env,omitempty" mapstructure:"env" yaml:"env,omitempty"`

	// DisabledTools is exported to the server as a comma-separated list.
	DisabledTools []string `json:"disabled_tools,omitempty" mapstructure:"disabled_tools" yaml:"disabled_tools,omitempty"`

	// DefaultModel selects the server's default model ("auto" lets it pick).
	DefaultModel string `json:"default_model,omitempty" mapstructure:"default_model" yaml:"default_model,omitempty"`

	// LogLevel is the server's own log level.
	LogLevel string `json:"log_level,omitempty" mapstructure:"log_level" yaml:"log_level,omitempty"`

	// ForceEnvOverride makes the server prefer the injected environment over
	// its own .env files.
	ForceEnvOverride bool `json:"force_env_override,omitempty" mapstructure:"force_env_override" yaml:"force_env_override,omitempty"`
}

// Validate reports whether the profile can be launched.
func (s *Server) Validate() error {
	if s == nil {
		return errors.Wrap(errors.ErrInvalidConfig, "server profile is nil")
	}
	if strings.TrimSpace(s.Command) == "" {
		return errors.Wrap(errors.ErrInvalidConfig, "server.command is required")
	}
	return nil
}

// CommandLine renders the command and args for display.
func (s *Server) CommandLine() string {
	parts := make([]string, 0, len(s.Args)+1)
	for _, p := range append([]string{s.Command}, s.Args...) {
		if strings.ContainsAny(p, " \t\"'") {
			p = `"` + strings.ReplaceAll(p, `"`, `\"`) + `"`
		}
		parts = append(parts, p)
	}
	return strings.Join(parts, " ")
}

// Environ returns the environment for the server process: parent first, then
// the profile's Env entries with ${VAR} references expanded against parent,
// then the derived variables. Later entries replace earlier ones with the
// same key, and the relative order of parent entries is kept.
func (s *Server) Environ(parent []string) []string {
	env := newEnvList(parent)

	keys := make([]string, 0, len(s.Env))
	for k := range s.Env {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		env.set(k, os.Expand(s.Env[k], env.lookupParent))
	}

	if s.DefaultModel != "" {
		env.set(EnvDefaultModel, s.DefaultModel)
	}
	if s.LogLevel != "" {
		env.set(EnvLogLevel, s.LogLevel)
	}
	if len(s.DisabledTools) > 0 {
		env.set(EnvDisabledTools, strings.Join(s.DisabledTools, ","))
	}
	if s.ForceEnvOverride {
		env.set(EnvForceEnvOverride, "true")
	}

	return env.list()
}

// UnresolvedRefs lists ${VAR} references in Env that the parent environment
// does not define. Such servers usually start but fail on their first call.
func (s *Server) UnresolvedRefs(parent []string) []string {
	env := newEnvList(parent)
	var missing []string
	for _, v := range s.Env {
		os.Expand(v, func(name string) string {
			if _, ok := env.parent[name]; !ok && !slices.Contains(missing, name) {
				missing = append(missing, name)
			}
			return ""
		})
	}
	slices.Sort(missing)
	return missing
}

type envList struct {
	keys   []string
	values map[string]string
	parent map[string]string
}

func newEnvList(parent []string) *envList {
	e := &envList{
		values: make(map[string]string, len(parent)),
		parent: make(map[string]string, len(parent)),
	}
	for _, kv := range parent {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		e.parent[k] = v
		e.set(k, v)
	}
	return e
}

func (e *envList) set(k, v string) {
	if _, ok := e.values[k]; !ok {
		e.keys = append(e.keys, k)
	}
	e.values[k] = v
}

func (e *envList) lookupParent(name string) string {
	return e.parent[name]
}

func (e *envList) list() []string {
	out := make([]string, 0, len(e.keys))
	for _, k := range e.keys {
		out = append(out, k+"="+e.values[k])
	}
	return out
}
