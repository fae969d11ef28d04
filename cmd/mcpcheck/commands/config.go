package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/mcpcheck/internal/config"
	"github.com/thoreinstein/mcpcheck/internal/editor"
	"github.com/thoreinstein/mcpcheck/internal/errors"
	"github.com/thoreinstein/mcpcheck/internal/paths"
)

var configJSON bool

// openEditor launches the editor for config edit. Tests replace it.
var openEditor = editor.Open

func init() {
	configCmd.PersistentFlags().BoolVar(&configJSON, "json", false,
		"output as JSON")
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configEditCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Show the configuration mcpcheck runs with: the config file merged with
MCPCHECK_* environment variables and built-in defaults.

Secret values are redacted. Without a subcommand, lists everything.`,
	Example: `  # Everything, as YAML
  mcpcheck config

  # One value
  mcpcheck config get timeouts.tools

  # Which file is in use
  mcpcheck config path

See Also: mcpcheck init, mcpcheck doctor`,
	Args: cobra.NoArgs,
	RunE: runConfigList,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configuration",
	Long:  `List all configuration values in YAML format, or JSON with --json.`,
	Args:  cobra.NoArgs,
	RunE:  runConfigList,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Long: `Get a single configuration value by key.

Supports dot notation for nested keys. List values are printed one per line
and nested sections as YAML.`,
	Example: `  mcpcheck config get server.command
  mcpcheck config get server.env.GEMINI_API_KEY`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigGet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Long: `Print the config file in use. When none was found, print where
mcpcheck init would create one.`,
	Args: cobra.NoArgs,
	RunE: runConfigPath,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the config file in $EDITOR",
	Long: `Open the config file in your editor, then reload and validate it.

Uses $EDITOR, then $VISUAL, then nano, then vi.`,
	Example: `  EDITOR="code --wait" mcpcheck config edit`,
	Args:    cobra.NoArgs,
	RunE:    runConfigEdit,
}

func runConfigList(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()
	f := cfg.File(true)
	if configJSON {
		return printJSON(w, f)
	}
	data, err := yaml.Marshal(f)
	if err != nil {
		return errors.Wrap(err, "marshaling config")
	}
	_, err = w.Write(data)
	return err
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()

	val, ok, err := lookupConfigKey(cfg, args[0])
	if err != nil {
		return err
	}
	if !ok {
		return errors.NewUserError(errors.Newf("unknown config key %q", args[0]), "Run: mcpcheck config list")
	}

	if configJSON {
		return printJSON(w, val)
	}
	return printConfigValue(w, val)
}

// lookupConfigKey resolves a dotted key against the redacted config. Keys
// match case-insensitively so env names can be given either way.
func lookupConfigKey(c *config.Config, key string) (any, bool, error) {
	data, err := yaml.Marshal(c.File(true))
	if err != nil {
		return nil, false, errors.Wrap(err, "marshaling config")
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, false, errors.Wrap(err, "reading config")
	}

	var cur any = tree
	for part := range strings.SplitSeq(key, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false, nil
		}
		next, found := m[part]
		if !found {
			for k, v := range m {
				if strings.EqualFold(k, part) {
					next, found = v, true
					break
				}
			}
		}
		if !found {
			return nil, false, nil
		}
		cur = next
	}
	return cur, true, nil
}

func printConfigValue(w io.Writer, val any) error {
	switch v := val.(type) {
	case []any:
		for _, item := range v {
			fmt.Fprintln(w, item)
		}
	case map[string]any:
		data, err := yaml.Marshal(v)
		if err != nil {
			return errors.Wrap(err, "marshaling value")
		}
		_, err = w.Write(data)
		return err
	case nil:
		fmt.Fprintln(w)
	default:
		fmt.Fprintln(w, v)
	}
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()
	if path := configFile(); path != "" {
		fmt.Fprintln(w, path)
		return nil
	}
	fmt.Fprintf(w, "%s (not created; run mcpcheck init)\n", paths.ConfigFile())
	return nil
}

func runConfigEdit(cmd *cobra.Command, _ []string) error {
	path := configFile()
	if path == "" {
		return errors.NewUserError(errors.Newf("config file not found at %s", paths.ConfigFile()), "Run: mcpcheck init")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Location: %s\n", path)
	streams := editor.StdStreams()
	streams.Out = cmd.OutOrStdout()
	streams.Err = cmd.ErrOrStderr()
	if err := openEditor(cmd.Context(), path, streams); err != nil {
		return errors.NewSystemError(err, "set $EDITOR to an installed editor")
	}

	config.Init()
	if _, err := config.Load(path); err != nil {
		return errors.NewConfigError(err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Configuration is valid")
	return nil
}
