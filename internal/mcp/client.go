package mcp

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/thoreinstein/mcpcheck/internal/errors"
	"github.com/thoreinstein/mcpcheck/internal/jsonrpc"
	"github.com/thoreinstein/mcpcheck/internal/logging"
	"github.com/thoreinstein/mcpcheck/internal/redact"
)

// waitDelay bounds how long Wait blocks on output pipes after the process
// has been killed. Launchers like npx leave grandchildren holding the pipes.
const waitDelay = 2 * time.Second

// Exchange is the outcome of one request/response round trip with a server
// process. It is returned even when the round trip failed so callers can
// print whatever the process wrote.
type Exchange struct {
	Request  *jsonrpc.Request
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
	TimedOut bool

	// Response is the decoded response, nil when DecodeErr is set.
	Response  *jsonrpc.Response
	DecodeErr error
}

// Success reports whether the process exited cleanly.
func (e *Exchange) Success() bool {
	return !e.TimedOut && e.ExitCode == 0
}

// Client spawns a fresh server process for every request.
type Client struct {
	server  *Server
	environ func() []string
}

// NewClient returns a Client for the given server profile. The parent
// environment is read from os.Environ at each exchange.
func NewClient(server *Server) *Client {
	return &Client{
		server:  server,
		environ: os.Environ,
	}
}

// Server returns the profile the client launches.
func (c *Client) Server() *Server {
	return c.server
}

// Exchange launches the server, writes req to its stdin, closes stdin, and
// waits for the process to exit. If timeout elapses first the process is
// killed and the returned error matches errors.ErrTimeout.
func (c *Client) Exchange(ctx context.Context, req *jsonrpc.Request, timeout time.Duration) (*Exchange, error) {
	if err := c.server.Validate(); err != nil {
		return nil, err
	}

	logger := logging.FromContext(ctx).With("server", c.server.Name, "method", req.Method, "id", req.ID)

	var stdin bytes.Buffer
	if err := jsonrpc.Encode(&stdin, req); err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	env := c.server.Environ(c.environ())

	cmd := exec.CommandContext(runCtx, c.server.Command, c.server.Args...)
	cmd.Dir = c.server.Dir
	cmd.Env = env
	cmd.Stdin = &stdin
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Debug("spawning server", "command", c.server.CommandLine(), "dir", c.server.Dir, "timeout", timeout)
	logger.Log(ctx, logging.LevelTrace, "server environment", "env", strings.Join(redact.Environ(env), " "))
	logger.Log(ctx, logging.LevelTrace, "request", "payload", strings.TrimSpace(stdin.String()))

	start := time.Now()
	runErr := cmd.Run()

	ex := &Exchange{
		Request:  req,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
		ExitCode: cmd.ProcessState.ExitCode(),
	}

	switch {
	case runCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil:
		ex.TimedOut = true
		logger.Warn("server timed out and was killed", "timeout", timeout)
		return ex, errors.Wrapf(errors.ErrTimeout, "no response from %s within %s", c.server.Name, timeout)
	case ctx.Err() != nil:
		return ex, errors.Wrap(ctx.Err(), "exchange canceled")
	case runErr != nil:
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			return ex, errors.Wrapf(runErr, "starting %s", c.server.Command)
		}
	}

	logger.Debug("server exited", "code", ex.ExitCode, "duration", ex.Duration)
	logger.Log(ctx, logging.LevelTrace, "response", "stdout", ex.Stdout, "stderr", ex.Stderr)

	ex.Response, ex.DecodeErr = jsonrpc.Decode(stdout.Bytes())
	return ex, nil
}
