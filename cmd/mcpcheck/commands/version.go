package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpcheck/cmd"
)

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version information",
	Long:  `Print the version, commit, build date, and Go version of mcpcheck.`,
	Args:  cobra.NoArgs,
	Run: func(c *cobra.Command, _ []string) {
		w := c.OutOrStdout()
		b := cmd.Info()
		fmt.Fprintf(w, "mcpcheck version %s\n", b.Version)
		fmt.Fprintf(w, "  commit: %s\n", b.Commit)
		fmt.Fprintf(w, "  built:  %s\n", b.Date)
		fmt.Fprintf(w, "  go:     %s\n", runtime.Version())
	},
}
