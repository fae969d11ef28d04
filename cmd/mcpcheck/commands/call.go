package commands

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"strings"

	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpcheck/internal/errors"
	"github.com/thoreinstein/mcpcheck/internal/logging"
	"github.com/thoreinstein/mcpcheck/internal/mcp"
)

var (
	callArgs     []string
	callArgsJSON string
)

// isInteractive reports whether the tool picker can be shown. Tests
// replace it.
var isInteractive = func() bool {
	return logging.IsTTY(os.Stdin) && logging.IsTTY(os.Stdout)
}

// pickTool lets the user choose a tool. Tests replace it.
var pickTool = fuzzyPickTool

func init() {
	callCmd.Flags().StringArrayVar(&callArgs, "arg", nil,
		"tool argument as key=value (repeatable)")
	callCmd.Flags().StringVar(&callArgsJSON, "args-json", "",
		"tool arguments as a JSON object")
	rootCmd.AddCommand(callCmd)
}

var callCmd = &cobra.Command{
	Use:   "call [tool]",
	Short: "Call a single tool",
	Long: `Send tools/call for one tool and print its result. Arguments come from
repeated --arg key=value flags, a --args-json object, or both; --arg wins on
conflicts. Arguments are always sent as an object, never null.

Without a tool name on an interactive terminal, the tool list is fetched and
a fuzzy finder picks the tool.`,
	Example: `  # Ask the server for its version
  mcpcheck call version

  # Pass arguments
  mcpcheck call chat --arg prompt="Summarize this repo" --arg model=auto

  # Structured arguments
  mcpcheck call codereview --args-json '{"files":["main.go"],"focus":"security"}'

See Also: mcpcheck tools, mcpcheck analyze`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCall,
}

func runCall(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	client := newClient()

	toolArgs, err := parseToolArgs(callArgsJSON, callArgs)
	if err != nil {
		return errors.NewUserError(err, "arguments are key=value pairs or a JSON object")
	}

	var name string
	if len(args) == 1 {
		name = args[0]
	} else {
		if !isInteractive() {
			return errors.NewUserError(errors.New("tool name required"), "Run: mcpcheck tools")
		}
		tools, _, err := client.ListTools(cmd.Context(), probeTimeout(cfg.Timeouts.Tools))
		if err != nil {
			return errors.NewProbeError(err, "Run: mcpcheck ping")
		}
		tool, err := pickTool(tools)
		if err != nil {
			if errors.Is(err, fuzzyfinder.ErrAbort) {
				return nil
			}
			return errors.Wrap(err, "selecting tool")
		}
		name = tool.Name
	}

	fmt.Fprintf(w, "Calling %s...\n", name)
	res, err := client.CallTool(cmd.Context(), mcp.CallRequestID, name, toolArgs, probeTimeout(cfg.Timeouts.Call))
	switch {
	case errors.Is(err, errors.ErrTimeout):
		fmt.Fprintln(w, "Request timed out")
		printVerdict(w, "Call", false)
		return errors.NewExitError(nil, errors.ExitUser)
	case err != nil:
		fmt.Fprintf(w, "Call failed: %v\n", err)
		printDetails(w, err)
		printVerdict(w, "Call", false)
		return errors.NewExitError(nil, errors.ExitUser)
	case res.RPCError != nil:
		fmt.Fprintf(w, "Server error %d: %s\n", res.RPCError.Code, res.RPCError.Message)
		printVerdict(w, "Call", false)
		return errors.NewExitError(nil, errors.ExitUser)
	}

	fmt.Fprintln(w, "Response:")
	fmt.Fprintln(w, res.Text())
	fmt.Fprintln(w)
	printVerdict(w, "Call", true)
	return nil
}

// parseToolArgs merges a JSON object with key=value pairs. The result is
// never nil.
func parseToolArgs(rawJSON string, pairs []string) (map[string]any, error) {
	out := make(map[string]any)
	if strings.TrimSpace(rawJSON) != "" {
		var obj map[string]any
		if err := json.Unmarshal([]byte(rawJSON), &obj); err != nil {
			return nil, errors.Wrap(err, "parsing --args-json")
		}
		maps.Copy(out, obj)
	}
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, errors.Newf("invalid --arg %q: expected key=value", p)
		}
		out[key] = value
	}
	return out, nil
}

func fuzzyPickTool(tools []mcp.Tool) (*mcp.Tool, error) {
	if len(tools) == 0 {
		return nil, errors.ErrNoTools
	}
	idx, err := fuzzyfinder.Find(
		tools,
		func(i int) string {
			return tools[i].Name
		},
		fuzzyfinder.WithPreviewWindow(func(i, _, _ int) string {
			if i == -1 {
				return ""
			}
			t := tools[i]
			schema, _ := json.MarshalIndent(t.InputSchema, "", "  ")
			return fmt.Sprintf("Name: %s\n\n%s\n\nInput schema:\n%s", t.Name, t.Description, schema)
		}),
	)
	if err != nil {
		return nil, err
	}
	return &tools[idx], nil
}
