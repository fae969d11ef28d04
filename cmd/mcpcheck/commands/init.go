package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpcheck/internal/config"
	"github.com/thoreinstein/mcpcheck/internal/errors"
	"github.com/thoreinstein/mcpcheck/internal/paths"
)

var (
	initPath    string
	initProject bool
	initForce   bool
)

func init() {
	initCmd.Flags().StringVar(&initPath, "path", "",
		"write the config file here instead of the user config dir")
	initCmd.Flags().BoolVar(&initProject, "project", false,
		"write ./"+paths.ProjectConfigFileName+" for this directory")
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false,
		"overwrite an existing config file")
	initCmd.MarkFlagsMutuallyExclusive("path", "project")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Long: `Write a commented default configuration for the zen MCP server.

The file goes to the user config dir unless --path or --project is given.
It never contains secrets: GEMINI_API_KEY is passed through from your
environment as ${GEMINI_API_KEY}, and the login password is read from
MCPCHECK_LOGIN_PASSWORD.`,
	Example: `  # User-wide config
  mcpcheck init

  # Per-project config
  mcpcheck init --project

  # Start over
  mcpcheck init --force

  See Also: mcpcheck config, mcpcheck doctor`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()

	path := paths.ConfigFile()
	switch {
	case initPath != "":
		expanded, err := paths.ExpandHome(initPath)
		if err != nil {
			return errors.NewSystemError(err, "check $HOME")
		}
		path = expanded
	case initProject:
		path = paths.ProjectConfigFileName
	}

	if err := config.WriteDefault(path, initForce); err != nil {
		if hints := errors.GetAllHints(err); len(hints) > 0 {
			return errors.NewUserError(err, "")
		}
		return errors.NewSystemError(err, "check that the directory is writable")
	}

	fmt.Fprintf(w, "Created %s\n", path)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Next steps:")
	fmt.Fprintln(w, "  export GEMINI_API_KEY=...")
	fmt.Fprintln(w, "  mcpcheck doctor")
	return nil
}
