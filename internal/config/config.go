// Package config provides configuration management for mcpcheck using Viper.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/mcpcheck/internal/analysis"
	"github.com/thoreinstein/mcpcheck/internal/errors"
	"github.com/thoreinstein/mcpcheck/internal/mcp"
	"github.com/thoreinstein/mcpcheck/internal/paths"
	"github.com/thoreinstein/mcpcheck/pkg/fileutil"
)

// AppName is the application name used for config file naming.
const AppName = paths.AppName

// EnvPrefix prefixes every environment override, e.g. MCPCHECK_LOGIN_PASSWORD.
const EnvPrefix = "MCPCHECK"

// Default probe timeouts.
const (
	DefaultPingTimeout  = 10 * time.Second
	DefaultToolsTimeout = 15 * time.Second
	DefaultCallTimeout  = 20 * time.Second
	DefaultLoginTimeout = 30 * time.Second
)

// DefaultDisabledTools are the tools the reference server is told to hide.
var DefaultDisabledTools = []string{"analyze", "refactor", "testgen", "secaudit", "docgen", "tracer"}

// Config represents the top-level configuration structure.
type Config struct {
	Server   mcp.Server `mapstructure:"server"`
	Timeouts Timeouts   `mapstructure:"timeouts"`
	Login    Login      `mapstructure:"login"`
	Analysis Analysis   `mapstructure:"analysis"`
}

// Timeouts bounds each MCP probe.
type Timeouts struct {
	Ping  time.Duration `mapstructure:"ping"`
	Tools time.Duration `mapstructure:"tools"`
	Call  time.Duration `mapstructure:"call"`
}

// Login configures the HTTP login probe.
type Login struct {
	URL   string `mapstructure:"url"`
	Email string `mapstructure:"email"`
	// Password is normally supplied as MCPCHECK_LOGIN_PASSWORD.
	Password string        `mapstructure:"password"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// Analysis configures the analyze command.
type Analysis struct {
	ProjectDir string        `mapstructure:"project_dir"`
	OutDir     string        `mapstructure:"out_dir"`
	Format     string        `mapstructure:"format"`
	Steps      analysis.Plan `mapstructure:"steps"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: mcp.Server{
			Name:             "zen",
			Command:          "npx",
			Args:             []string{"zen-mcp-server-199bio"},
			DisabledTools:    DefaultDisabledTools,
			DefaultModel:     "auto",
			LogLevel:         "INFO",
			ForceEnvOverride: true,
		},
		Timeouts: Timeouts{
			Ping:  DefaultPingTimeout,
			Tools: DefaultToolsTimeout,
			Call:  DefaultCallTimeout,
		},
		Login: Login{
			Timeout: DefaultLoginTimeout,
		},
		Analysis: Analysis{
			Format: fileutil.FormatJSON,
			Steps:  analysis.DefaultPlan(),
		},
	}
}

// Init initializes Viper with default configuration.
// Call this once at application startup before accessing config values.
func Init() {
	viper.Reset()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// ./mcpcheck.yaml is checked by Load before this search path.
	viper.AddConfigPath(paths.ConfigDir())

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	d := Default()
	viper.SetDefault("server.name", d.Server.Name)
	viper.SetDefault("server.command", d.Server.Command)
	viper.SetDefault("server.args", d.Server.Args)
	viper.SetDefault("server.dir", "")
	viper.SetDefault("server.disabled_tools", d.Server.DisabledTools)
	viper.SetDefault("server.default_model", d.Server.DefaultModel)
	viper.SetDefault("server.log_level", d.Server.LogLevel)
	viper.SetDefault("server.force_env_override", d.Server.ForceEnvOverride)
	viper.SetDefault("timeouts.ping", d.Timeouts.Ping)
	viper.SetDefault("timeouts.tools", d.Timeouts.Tools)
	viper.SetDefault("timeouts.call", d.Timeouts.Call)
	viper.SetDefault("login.url", "")
	viper.SetDefault("login.email", "")
	viper.SetDefault("login.password", "")
	viper.SetDefault("login.timeout", d.Login.Timeout)
	viper.SetDefault("analysis.project_dir", "")
	viper.SetDefault("analysis.out_dir", "")
	viper.SetDefault("analysis.format", d.Analysis.Format)
	viper.SetDefault("analysis.steps", d.Analysis.Steps)
}

// Load reads the configuration file.
// If path is provided, it reads from that specific file; ./mcpcheck.yaml is
// preferred over the XDG config file otherwise. A missing file is only an
// error when path was given explicitly.
func Load(path string) (*Config, error) {
	switch {
	case path != "":
		viper.SetConfigFile(path)
	case fileExists(paths.ProjectConfigFileName):
		viper.SetConfigFile(paths.ProjectConfigFileName)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound) && path == "":
			// Implicit load with no file anywhere: defaults only.
		case path != "" && !fileExists(path):
			return nil, errors.Wrapf(errors.ErrNotFound, "config file %s", path)
		default:
			return nil, errors.Mark(errors.Wrap(err, "reading config file"), errors.ErrInvalidConfig)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "unmarshaling config"), errors.ErrInvalidConfig)
	}
	if used := viper.ConfigFileUsed(); used != "" {
		if err := restoreKeyCase(&cfg, used); err != nil {
			return nil, err
		}
	}

	if errs := Validate(&cfg); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return nil, errors.Mark(errors.Newf("validating config: %s", strings.Join(msgs, "; ")), errors.ErrInvalidConfig)
	}

	return &cfg, nil
}

// FileUsed returns the config file Load read, or "" when only defaults
// and the environment were used.
func FileUsed() string {
	return viper.ConfigFileUsed()
}

// caseSensitive holds the sections whose map keys are passed through
// verbatim: environment variable names and tool argument names.
type caseSensitive struct {
	Server struct {
		Env map[string]string `yaml:"env"`
	} `yaml:"server"`
	Analysis struct {
		Steps []struct {
			Arguments map[string]any `yaml:"arguments"`
		} `yaml:"steps"`
	} `yaml:"analysis"`
}

// restoreKeyCase re-reads server.env and the step arguments from path,
// since viper folds every map key to lower case.
func restoreKeyCase(cfg *Config, path string) error {
	data, err := fileutil.ReadLimited(path, fileutil.ConfigLimit)
	if err != nil {
		return errors.Mark(errors.Wrap(err, "reading config file"), errors.ErrInvalidConfig)
	}

	var raw caseSensitive
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return errors.Mark(errors.Wrap(err, "reading config file"), errors.ErrInvalidConfig)
	}

	if raw.Server.Env != nil {
		cfg.Server.Env = raw.Server.Env
	}
	if len(raw.Analysis.Steps) == len(cfg.Analysis.Steps) {
		for i, s := range raw.Analysis.Steps {
			if s.Arguments != nil {
				cfg.Analysis.Steps[i].Arguments = s.Arguments
			}
		}
	}
	return nil
}
