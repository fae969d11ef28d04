package config

import (
	"os"
	"path/filepath"

	"github.com/thoreinstein/mcpcheck/internal/analysis"
	"github.com/thoreinstein/mcpcheck/internal/errors"
	"github.com/thoreinstein/mcpcheck/internal/mcp"
	"github.com/thoreinstein/mcpcheck/internal/paths"
	"github.com/thoreinstein/mcpcheck/internal/redact"
	"github.com/thoreinstein/mcpcheck/pkg/fileutil"
)

// fileHeader is written above the generated default config.
const fileHeader = `# mcpcheck configuration.
#
# Keep secrets out of this file. Reference them from the environment as
# ${VAR} in server.env, and set the login password with
# MCPCHECK_LOGIN_PASSWORD.
`

// File is the on-disk and printable shape of a Config. Durations are
// rendered as strings such as "15s".
type File struct {
	Server   mcp.Server   `json:"server" yaml:"server"`
	Timeouts FileTimeouts `json:"timeouts" yaml:"timeouts"`
	Login    FileLogin    `json:"login" yaml:"login"`
	Analysis FileAnalysis `json:"analysis" yaml:"analysis"`
}

// FileTimeouts mirrors Timeouts.
type FileTimeouts struct {
	Ping  string `json:"ping" yaml:"ping"`
	Tools string `json:"tools" yaml:"tools"`
	Call  string `json:"call" yaml:"call"`
}

// FileLogin mirrors Login.
type FileLogin struct {
	URL      string `json:"url" yaml:"url"`
	Email    string `json:"email" yaml:"email"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	Timeout  string `json:"timeout" yaml:"timeout"`
}

// FileAnalysis mirrors Analysis.
type FileAnalysis struct {
	ProjectDir string     `json:"project_dir" yaml:"project_dir"`
	OutDir     string     `json:"out_dir" yaml:"out_dir"`
	Format     string     `json:"format" yaml:"format"`
	Steps      []FileStep `json:"steps" yaml:"steps"`
}

// FileStep mirrors analysis.Step.
type FileStep struct {
	Name      string         `json:"name" yaml:"name"`
	Tool      string         `json:"tool" yaml:"tool"`
	Arguments map[string]any `json:"arguments,omitempty" yaml:"arguments,omitempty"`
	Timeout   string         `json:"timeout" yaml:"timeout"`
}

// File converts cfg to its printable shape. With redacted set, secret
// env values, the login password, and URL credentials are masked.
func (c *Config) File(redacted bool) *File {
	f := &File{
		Server: c.Server,
		Timeouts: FileTimeouts{
			Ping:  c.Timeouts.Ping.String(),
			Tools: c.Timeouts.Tools.String(),
			Call:  c.Timeouts.Call.String(),
		},
		Login: FileLogin{
			URL:      c.Login.URL,
			Email:    c.Login.Email,
			Password: c.Login.Password,
			Timeout:  c.Login.Timeout.String(),
		},
		Analysis: FileAnalysis{
			ProjectDir: c.Analysis.ProjectDir,
			OutDir:     c.Analysis.OutDir,
			Format:     c.Analysis.Format,
			Steps:      fileSteps(c.Analysis.Steps),
		},
	}

	if redacted {
		f.Server.Env = redact.Secrets(c.Server.Env)
		f.Login.URL = redact.URL(c.Login.URL)
		if f.Login.Password != "" {
			f.Login.Password = redact.Value(f.Login.Password)
		}
	}
	return f
}

func fileSteps(plan analysis.Plan) []FileStep {
	steps := make([]FileStep, len(plan))
	for i, s := range plan {
		steps[i] = FileStep{
			Name:      s.Name,
			Tool:      s.Tool,
			Arguments: s.Arguments,
			Timeout:   s.EffectiveTimeout().String(),
		}
	}
	return steps
}

// DefaultFile returns the contents written by WriteDefault: the built-in
// configuration plus a GEMINI_API_KEY passthrough example.
func DefaultFile() *File {
	cfg := Default()
	cfg.Server.Env = map[string]string{"GEMINI_API_KEY": "${GEMINI_API_KEY}"}
	return cfg.File(false)
}

// WriteDefault writes the default configuration to path, creating parent
// directories. An existing file is only replaced when force is set.
func WriteDefault(path string, force bool) error {
	if !force && fileExists(path) {
		return errors.WithHint(errors.Newf("config file already exists at %s", path), "Use --force to overwrite")
	}

	if err := paths.EnsureDir(filepath.Dir(path), 0); err != nil {
		return errors.Wrap(err, "creating config directory")
	}

	data, err := fileutil.Encode(fileutil.FormatYAML, DefaultFile())
	if err != nil {
		return err
	}
	data = append([]byte(fileHeader+"\n"), data...)

	if err := fileutil.WriteAtomic(path, data, fileutil.PrivatePerm); err != nil {
		return errors.Wrap(err, "writing config file")
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
