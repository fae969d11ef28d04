package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpcheck/internal/errors"
	"github.com/thoreinstein/mcpcheck/internal/jsonrpc"
	"github.com/thoreinstein/mcpcheck/internal/logging"
	"github.com/thoreinstein/mcpcheck/internal/mcp"
	"github.com/thoreinstein/mcpcheck/pkg/textutil"
)

func init() {
	rootCmd.AddCommand(pingCmd)
}

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Send a raw tools/list request and print the output",
	Long: `Launch the configured MCP server, send a single tools/list request, and
print the first 500 characters of its stdout and stderr along with the exit
code. The test passes when the process exits 0 within the timeout.

When the server exits with a non-zero code, mcpcheck exits with that code.`,
	Example: `  # Probe the configured server
  mcpcheck ping

  # Allow a slow first npx download
  mcpcheck ping --timeout 60s

See Also: mcpcheck tools, mcpcheck doctor`,
	Args: cobra.NoArgs,
	RunE: runPing,
}

func runPing(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()
	client := newClient()
	logger := logging.FromContext(cmd.Context())

	logger.Info("pinging server", "server", cfg.Server.Name, "command", cfg.Server.CommandLine())

	ex, err := client.Exchange(cmd.Context(), jsonrpc.NewListRequest(mcp.ListRequestID), probeTimeout(cfg.Timeouts.Ping))
	if ex != nil && !ex.TimedOut {
		fmt.Fprintln(w, headColor.Sprint("=== STDOUT ==="))
		fmt.Fprintln(w, textutil.Head(ex.Stdout, rawPreview))
		fmt.Fprintln(w)
		fmt.Fprintln(w, headColor.Sprint("=== STDERR ==="))
		fmt.Fprintln(w, textutil.Head(ex.Stderr, rawPreview))
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s\n", headColor.Sprintf("=== Return Code: %d ===", ex.ExitCode))
	}

	switch {
	case errors.Is(err, errors.ErrTimeout):
		fmt.Fprintln(w, "Process timed out")
	case err != nil:
		fmt.Fprintf(w, "Error: %v\n", err)
	}

	passed := err == nil && ex.Success()
	fmt.Fprintln(w)
	printVerdict(w, "Test", passed)

	if passed {
		return nil
	}
	if err == nil && ex.ExitCode > 0 {
		return errors.NewExitError(nil, ex.ExitCode)
	}
	return errors.NewExitError(nil, errors.ExitUser)
}
