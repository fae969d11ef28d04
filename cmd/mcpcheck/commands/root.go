// Package commands implements the CLI commands for mcpcheck.
package commands

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpcheck/cmd"
	"github.com/thoreinstein/mcpcheck/internal/config"
	"github.com/thoreinstein/mcpcheck/internal/errors"
	"github.com/thoreinstein/mcpcheck/internal/logging"
	"github.com/thoreinstein/mcpcheck/internal/mcp"
)

// debugEnv raises verbosity when no -v flag is given.
const debugEnv = "MCPCHECK_DEBUG"

// Persistent flag values.
var (
	verbosity   int
	quiet       bool
	logFormat   string
	logFile     string
	configPath  string
	timeoutFlag time.Duration
)

// cfg is the loaded configuration. It is nil and configLoadErr is set when
// loading failed.
var (
	cfg           *config.Config
	configLoadErr error
)

// configOptional lists commands that run without a valid configuration.
var configOptional = map[string]bool{
	"help":    true,
	"version": true,
	"init":    true,
	"doctor":  true,
	"path":    true,
	"edit":    true,
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.CountVarP(&verbosity, "verbose", "v", "log more; repeat for debug (-vv) and wire traces (-vvv)")
	pf.BoolVarP(&quiet, "quiet", "q", false, "log errors only")
	pf.StringVar(&logFormat, "log-format", "text", "log format on stderr: text or json")
	pf.StringVar(&logFile, "log-file", "", "also append JSON logs to this file")
	pf.StringVar(&configPath, "config", "", "config file (default: ./mcpcheck.yaml, then the user config dir)")
	pf.DurationVar(&timeoutFlag, "timeout", 0, "probe timeout, overriding the per-command default")

	rootCmd.Version = cmd.Info().Version
	rootCmd.SetVersionTemplate("mcpcheck version {{.Version}}\n")

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

func initConfig() {
	config.Init()
	cfg, configLoadErr = config.Load(configPath)
}

var rootCmd = &cobra.Command{
	Use:   "mcpcheck",
	Short: "Probe MCP tool servers and login endpoints",
	Long: `mcpcheck launches an MCP tool server as a subprocess, sends it a single
JSON-RPC request over stdio, and reports what came back. It can also probe a
JWT admin login endpoint and run a multi-step analysis plan against a project.

Secrets are read from the environment or the config file and are redacted
whenever they are printed or logged.`,
	Example: `  # Write a starter config
  mcpcheck init

  # Check that the server starts and lists tools
  mcpcheck ping
  mcpcheck tools

  # Call a tool
  mcpcheck call version

  # Run every check
  mcpcheck doctor

  See Also: mcpcheck init, mcpcheck doctor, mcpcheck config`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setupLogging(cmd); err != nil {
			return err
		}
		return requireConfig(cmd, args)
	},
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// logSink is the open --log-file, closed when Execute returns.
var logSink *os.File

// setupLogging installs the logger chosen by -v, -q, --log-format,
// --log-file and MCPCHECK_DEBUG.
func setupLogging(cmd *cobra.Command) error {
	if quiet && verbosity > 0 {
		return errors.NewUserError(errors.New("cannot use --quiet and --verbose together"), "pick one of -q or -v")
	}

	format, err := logging.ParseFormat(logFormat)
	if err != nil {
		return errors.NewUserError(err, "use --log-format text or --log-format json")
	}

	level := slog.LevelError
	if !quiet {
		v := verbosity
		if v == 0 {
			v = logging.VerbosityFromEnv(os.Getenv(debugEnv))
		}
		level = logging.LevelFromVerbosity(v)
	}

	lc := logging.Config{Level: level, Format: format, Output: cmd.ErrOrStderr()}
	if logFile != "" {
		closeLogSink()
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return errors.NewUserError(errors.Wrap(err, "opening log file"), "check the --log-file path")
		}
		logSink = f
		lc.File = f
	}

	logger := logging.New(lc)
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.NewContext(ctx, logger))
	return nil
}

func closeLogSink() {
	if logSink != nil {
		_ = logSink.Close()
		logSink = nil
	}
}

// requireConfig reports a config load failure for commands that need one.
func requireConfig(cmd *cobra.Command, _ []string) error {
	if configOptional[cmd.Name()] {
		return nil
	}
	if configLoadErr != nil {
		return errors.NewConfigError(configLoadErr)
	}
	return nil
}

// probeTimeout returns the --timeout override, or def when it is unset.
func probeTimeout(def time.Duration) time.Duration {
	if timeoutFlag > 0 {
		return timeoutFlag
	}
	return def
}

// newClient returns an MCP client for the configured server.
func newClient() *mcp.Client {
	return mcp.NewClient(&cfg.Server)
}

// configFile returns the config file in effect, or "" for defaults only.
func configFile() string {
	if configPath != "" {
		return configPath
	}
	return config.FileUsed()
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	defer closeLogSink()
	return rootCmd.ExecuteContext(ctx)
}
