package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpcheck/internal/errors"
	"github.com/thoreinstein/mcpcheck/internal/jsonrpc"
	"github.com/thoreinstein/mcpcheck/internal/mcp"
	"github.com/thoreinstein/mcpcheck/pkg/textutil"
)

// toolsShown is how many tools are listed without --all.
const toolsShown = 5

// descriptionWidth caps tool descriptions in the list.
const descriptionWidth = 60

var (
	toolsAll  bool
	toolsJSON bool
)

func init() {
	toolsCmd.Flags().BoolVar(&toolsAll, "all", false,
		"list every tool instead of the first five")
	toolsCmd.Flags().BoolVar(&toolsJSON, "json", false,
		"output the tool list as JSON")
	rootCmd.AddCommand(toolsCmd)
}

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the tools the server advertises",
	Long: `Send tools/list to the configured MCP server and print how many tools it
advertises, followed by the first five as "name: description".`,
	Example: `  # Summary of available tools
  mcpcheck tools

  # Everything, machine readable
  mcpcheck tools --all --json

See Also: mcpcheck call, mcpcheck ping`,
	Args: cobra.NoArgs,
	RunE: runTools,
}

func runTools(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()

	tools, ex, err := newClient().ListTools(cmd.Context(), probeTimeout(cfg.Timeouts.Tools))
	if err != nil {
		if toolsJSON {
			return errors.NewProbeError(err, "Run: mcpcheck ping")
		}
		printToolsFailure(w, ex, err)
		return errors.NewExitError(nil, errors.ExitUser)
	}

	if toolsJSON {
		return printJSON(w, tools)
	}

	fmt.Fprintf(w, "Return code: %d\n", ex.ExitCode)
	fmt.Fprintf(w, "Found %d available tools:\n", len(tools))
	shown := tools
	if !toolsAll && len(shown) > toolsShown {
		shown = shown[:toolsShown]
	}
	for _, tool := range shown {
		desc := tool.Description
		if desc == "" {
			desc = "no description"
		}
		fmt.Fprintf(w, "  - %s: %s\n", tool.Name, textutil.Fit(desc, descriptionWidth))
	}
	if rest := len(tools) - len(shown); rest > 0 {
		fmt.Fprintf(w, "  - ... and %d more\n", rest)
	}
	fmt.Fprintln(w)
	printVerdict(w, "Connection test", true)
	return nil
}

func printToolsFailure(w io.Writer, ex *mcp.Exchange, err error) {
	var rpcErr *jsonrpc.Error
	switch {
	case errors.Is(err, errors.ErrTimeout):
		fmt.Fprintln(w, "Request timed out")
	case errors.Is(err, errors.ErrNoTools):
		fmt.Fprintln(w, "No tool list in response")
		fmt.Fprintf(w, "Response: %s\n", textutil.Head(ex.Stdout, rawPreview))
	case errors.Is(err, errors.ErrMalformedResponse):
		fmt.Fprintln(w, "Failed to parse response")
		fmt.Fprintf(w, "Raw output: %s\n", textutil.Head(ex.Stdout, rawPreview))
	case errors.As(err, &rpcErr):
		fmt.Fprintf(w, "Server error %d: %s\n", rpcErr.Code, rpcErr.Message)
	default:
		fmt.Fprintf(w, "Test failed: %v\n", err)
	}
	if ex != nil && !ex.TimedOut && ex.Stderr != "" {
		fmt.Fprintln(w, "Error output:")
		fmt.Fprintln(w, textutil.Head(ex.Stderr, rawPreview))
	}
	fmt.Fprintln(w)
	printVerdict(w, "Connection test", false)
}
