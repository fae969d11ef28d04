package commands

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/mcpcheck/internal/jsonrpc"
	"github.com/thoreinstein/mcpcheck/internal/paths"
)

// TestHelperProcess is not a real test. It is the fake MCP server that the
// config files written by writeConfig launch.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	defer os.Exit(0)

	args := os.Args
	for len(args) > 0 && args[0] != "--" {
		args = args[1:]
	}
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "no mode")
		os.Exit(2)
	}
	mode := args[1]

	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	var req struct {
		ID     int64              `json:"id"`
		Method string             `json:"method"`
		Params jsonrpc.CallParams `json:"params"`
	}
	if err := json.Unmarshal([]byte(line), &req); err != nil {
		fmt.Fprintln(os.Stderr, "bad request:", err)
		os.Exit(3)
	}

	reply := func(result string) {
		fmt.Printf(`{"jsonrpc":"2.0","id":%d,"result":%s}`+"\n", req.ID, result)
	}
	text := func(s string) {
		reply(fmt.Sprintf(`{"content":[{"type":"text","text":%q}]}`, s))
	}

	switch mode {
	case "zen":
		fmt.Fprintln(os.Stderr, "INFO zen starting")
		switch {
		case req.Method == "tools/list":
			reply(zenTools)
		case req.Params.Name == "version":
			text("zen-mcp-server version 5.8.0")
		case req.Params.Name == "broken":
			fmt.Printf(`{"jsonrpc":"2.0","id":%d,"error":{"code":-32602,"message":"Unknown tool: broken"}}`+"\n", req.ID)
		default:
			data, _ := json.Marshal(req.Params.Arguments)
			text(req.Params.Name + " " + string(data))
		}
	case "no-tools":
		reply(`{"capabilities":{}}`)
	case "garbage":
		fmt.Println("this is not json")
	case "cjk":
		fmt.Println(strings.Repeat("日志", 300))
	case "hang":
		time.Sleep(time.Minute)
	case "fail":
		fmt.Println("starting")
		fmt.Fprintln(os.Stderr, "GEMINI_API_KEY is not set")
		os.Exit(4)
	default:
		fmt.Fprintln(os.Stderr, "unknown mode", mode)
		os.Exit(2)
	}
}

const zenTools = `{"tools":[
{"name":"chat","description":"General chat and collaborative thinking partner for brainstorming and second opinions"},
{"name":"thinkdeep","description":"Multi-stage investigation and reasoning"},
{"name":"planner","description":"Interactive sequential planning"},
{"name":"consensus","description":"Multi-model consensus"},
{"name":"codereview","description":"Professional code review"},
{"name":"precommit","description":"Pre-commit validation"},
{"name":"version","description":"Server version and configuration"}]}`

// writeConfig writes a config file whose server is the helper process in
// the given mode. extra is appended verbatim.
func writeConfig(t *testing.T, mode, extra string) string {
	t.Helper()

	content := fmt.Sprintf(`server:
  name: helper
  command: %q
  args: ["-test.run=TestHelperProcess", "--", %q]
  env:
    GO_WANT_HELPER_PROCESS: "1"
%s`, os.Args[0], mode, extra)

	path := filepath.Join(t.TempDir(), "mcpcheck.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// resetFlags restores every flag variable, since rootCmd is shared
// between tests.
func resetFlags() {
	verbosity = 0
	quiet = false
	logFormat = "text"
	logFile = ""
	configPath = ""
	timeoutFlag = 0

	toolsAll = false
	toolsJSON = false
	callArgs = nil
	callArgsJSON = ""
	analyzeProject = ""
	analyzeOutDir = ""
	analyzeFormat = ""
	doctorJSON = false
	doctorQuiet = false
	doctorVerbose = false
	doctorFix = false
	configJSON = false
	initPath = ""
	initProject = false
	initForce = false
}

// clearContexts drops the context cobra caches on each command, since a
// subcommand only inherits the root's context while its own is nil.
func clearContexts(cmd *cobra.Command) {
	cmd.SetContext(nil) //nolint:staticcheck // nil makes cobra re-inherit
	for _, c := range cmd.Commands() {
		clearContexts(c)
	}
}

// executeCommand runs the root command with args in an isolated config
// environment and returns what it wrote to stdout.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	resetFlags()
	color.NoColor = true
	t.Setenv(paths.ConfigDirEnv, t.TempDir())
	t.Setenv("MCPCHECK_DEBUG", "")
	t.Chdir(t.TempDir())

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		clearContexts(rootCmd)
	})

	err := rootCmd.ExecuteContext(t.Context())
	return out.String(), err
}
