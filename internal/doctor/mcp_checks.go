package doctor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/thoreinstein/mcpcheck/internal/errors"
	"github.com/thoreinstein/mcpcheck/internal/jsonrpc"
	"github.com/thoreinstein/mcpcheck/internal/mcp"
	"github.com/thoreinstein/mcpcheck/pkg/textutil"
)

// maxToolNames caps the tool names listed in check details.
const maxToolNames = 20

// rawPreview bounds raw process output copied into details.
const rawPreview = 500

// ToolLister lists the tools of an MCP server. *mcp.Client satisfies it.
type ToolLister interface {
	ListTools(ctx context.Context, timeout time.Duration) ([]mcp.Tool, *mcp.Exchange, error)
}

// ToolCaller calls one tool on an MCP server. *mcp.Client satisfies it.
type ToolCaller interface {
	CallTool(ctx context.Context, id int64, name string, args map[string]any, timeout time.Duration) (*mcp.CallResult, error)
}

// ServerEnvCheck verifies that the server command resolves and that every
// ${VAR} reference in the server env is set.
type ServerEnvCheck struct {
	server   *mcp.Server
	environ  func() []string
	lookPath func(string) (string, error)
}

var _ Check = (*ServerEnvCheck)(nil)

// NewServerEnvCheck creates a server environment check.
func NewServerEnvCheck(server *mcp.Server) *ServerEnvCheck {
	return &ServerEnvCheck{
		server:   server,
		environ:  os.Environ,
		lookPath: exec.LookPath,
	}
}

// Name returns the unique identifier for this check.
func (c *ServerEnvCheck) Name() string {
	return "server-env"
}

// Category returns the grouping for this check.
func (c *ServerEnvCheck) Category() string {
	return "mcp"
}

// Run executes the check.
func (c *ServerEnvCheck) Run(_ context.Context) *CheckResult {
	if err := c.server.Validate(); err != nil {
		r := newResult(c, SeverityError, err.Error())
		r.FixHint = "set server.command in the config file"
		return r
	}

	resolved, err := c.lookPath(c.server.Command)
	if err != nil {
		r := newResult(c, SeverityError, fmt.Sprintf("command %q not found", c.server.Command))
		r.FixHint = "install it or set server.command to an absolute path"
		return r
	}

	missing := c.server.UnresolvedRefs(c.environ())
	if len(missing) > 0 {
		r := newResult(c, SeverityWarning, "unset variables referenced by server.env: "+strings.Join(missing, ", "))
		r.Details["command"] = resolved
		r.Details["unset"] = missing
		r.FixHint = "export " + missing[0] + " before running mcpcheck"
		return r
	}

	r := newResult(c, SeverityPass, "command resolves to "+resolved)
	r.Details["command"] = resolved
	return r
}

// ServerToolsCheck sends tools/list and expects at least one tool.
type ServerToolsCheck struct {
	lister  ToolLister
	timeout time.Duration
}

var _ Check = (*ServerToolsCheck)(nil)

// NewServerToolsCheck creates a tools/list check.
func NewServerToolsCheck(lister ToolLister, timeout time.Duration) *ServerToolsCheck {
	return &ServerToolsCheck{lister: lister, timeout: timeout}
}

// Name returns the unique identifier for this check.
func (c *ServerToolsCheck) Name() string {
	return "server-tools"
}

// Category returns the grouping for this check.
func (c *ServerToolsCheck) Category() string {
	return "mcp"
}

// Run executes the check.
func (c *ServerToolsCheck) Run(ctx context.Context) *CheckResult {
	tools, ex, err := c.lister.ListTools(ctx, c.timeout)
	if err != nil {
		r := exchangeFailure(c, "tools/list", c.timeout, ex, err)
		if errors.Is(err, errors.ErrTimeout) {
			r.FixHint = "check that the server starts on its own, or raise timeouts.tools"
		}
		return r
	}

	if len(tools) == 0 {
		r := newResult(c, SeverityError, "server advertises no tools")
		r.FixHint = "check server.disabled_tools and the server's own configuration"
		return r
	}

	names := make([]string, 0, min(len(tools), maxToolNames))
	for _, t := range tools[:min(len(tools), maxToolNames)] {
		names = append(names, t.Name)
	}

	r := newResult(c, SeverityPass, fmt.Sprintf("%d tools available", len(tools)))
	r.Details["count"] = len(tools)
	r.Details["tools"] = names
	if ex != nil {
		r.Details["response_time"] = ex.Duration.String()
	}
	return r
}

// VersionToolCheck calls the server's version tool. A reply that does not
// mention a version is only a warning, since many servers refuse tool calls
// until an API key is configured.
type VersionToolCheck struct {
	caller  ToolCaller
	tool    string
	timeout time.Duration
}

var _ Check = (*VersionToolCheck)(nil)

// NewVersionToolCheck creates a check that calls the "version" tool.
func NewVersionToolCheck(caller ToolCaller, timeout time.Duration) *VersionToolCheck {
	return &VersionToolCheck{caller: caller, tool: "version", timeout: timeout}
}

// Name returns the unique identifier for this check.
func (c *VersionToolCheck) Name() string {
	return "version-tool"
}

// Category returns the grouping for this check.
func (c *VersionToolCheck) Category() string {
	return "mcp"
}

// Run executes the check.
func (c *VersionToolCheck) Run(ctx context.Context) *CheckResult {
	res, err := c.caller.CallTool(ctx, mcp.CallRequestID, c.tool, map[string]any{}, c.timeout)
	if err != nil {
		var ex *mcp.Exchange
		if res != nil {
			ex = res.Exchange
		}
		r := exchangeFailure(c, "tools/call "+c.tool, c.timeout, ex, err)
		if errors.Is(err, errors.ErrTimeout) {
			r.FixHint = "raise timeouts.call or check the server logs"
		}
		return r
	}

	if res.Exchange != nil && strings.Contains(strings.ToLower(res.Exchange.Stdout), "version") {
		r := newResult(c, SeverityPass, c.tool+" tool answered")
		if text := strings.TrimSpace(res.Text()); text != "" && res.RPCError == nil {
			r.Details["output"] = textutil.Truncate(text, rawPreview)
		}
		return r
	}

	r := newResult(c, SeverityWarning, c.tool+" tool did not report a version; the server may require an API key")
	if res.RPCError != nil {
		r.Details["rpc_error"] = res.RPCError.Message
	}
	r.FixHint = "set the server's API key in the environment and reference it in server.env"
	return r
}

// exchangeFailure builds an error result for a failed MCP exchange.
func exchangeFailure(c Check, method string, timeout time.Duration, ex *mcp.Exchange, err error) *CheckResult {
	var rpcErr *jsonrpc.Error

	var msg string
	switch {
	case errors.Is(err, errors.ErrTimeout):
		msg = fmt.Sprintf("%s: no response within %s", method, timeout)
	case errors.Is(err, errors.ErrMalformedResponse):
		msg = method + ": response is not JSON-RPC"
	case errors.Is(err, errors.ErrNoTools):
		msg = method + ": response has no tool list"
	case errors.As(err, &rpcErr):
		msg = fmt.Sprintf("%s: server error %d: %s", method, rpcErr.Code, rpcErr.Message)
	default:
		msg = fmt.Sprintf("%s: %v", method, err)
	}

	r := newResult(c, SeverityError, msg)
	if details := errors.GetAllDetails(err); len(details) > 0 {
		r.Details["detail"] = textutil.Truncate(strings.Join(details, "\n"), rawPreview)
	}
	if ex != nil {
		r.Details["exit_code"] = ex.ExitCode
		if s := strings.TrimSpace(ex.Stdout); s != "" {
			r.Details["stdout"] = textutil.Truncate(s, rawPreview)
		}
		if s := strings.TrimSpace(ex.Stderr); s != "" {
			r.Details["stderr"] = textutil.Truncate(s, rawPreview)
		}
	}
	return r
}
