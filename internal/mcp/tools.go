package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/thoreinstein/mcpcheck/internal/errors"
	"github.com/thoreinstein/mcpcheck/internal/jsonrpc"
)

// Default request ids, matching what the server sees from a plain probe.
const (
	ListRequestID int64 = 1
	CallRequestID int64 = 2
)

// Tool is one entry of a tools/list result.
type Tool struct {
	Name        string         `json:"name"`
	Title       string         `json:"title,omitempty"`
	Description string         `json:"description,omitempty"`
	InputSchema map[string]any `json:"inputSchema,omitempty"`
}

// ListTools sends tools/list and returns the advertised tools. The
// exchange is returned whenever the process ran, including on error.
func (c *Client) ListTools(ctx context.Context, timeout time.Duration) ([]Tool, *Exchange, error) {
	ex, err := c.Exchange(ctx, jsonrpc.NewListRequest(ListRequestID), timeout)
	if err != nil {
		return nil, ex, err
	}
	if ex.DecodeErr != nil {
		return nil, ex, errors.Wrap(ex.DecodeErr, "decoding tools/list response")
	}
	if ex.Response.Error != nil {
		return nil, ex, errors.Wrap(ex.Response.Error, "tools/list")
	}

	var result struct {
		Tools *[]Tool `json:"tools"`
	}
	if !ex.Response.HasResult() {
		return nil, ex, errors.ErrNoTools
	}
	if err := ex.Response.DecodeResult(&result); err != nil {
		return nil, ex, err
	}
	if result.Tools == nil {
		return nil, ex, errors.ErrNoTools
	}
	return *result.Tools, ex, nil
}

// CallResult is the outcome of a tools/call request.
type CallResult struct {
	// Result is the decoded result, or the raw stdout string when the
	// output was not a JSON-RPC response.
	Result any

	// RPCError is set when the server answered with a JSON-RPC error.
	RPCError *jsonrpc.Error

	Exchange *Exchange
}

// Text joins the text content items of an MCP tool result. It returns the
// raw result rendering when the result has no text content.
func (r *CallResult) Text() string {
	switch v := r.Result.(type) {
	case string:
		return v
	case map[string]any:
		if items, ok := v["content"].([]any); ok {
			var parts []string
			for _, item := range items {
				m, ok := item.(map[string]any)
				if !ok {
					continue
				}
				if text, ok := m["text"].(string); ok {
					parts = append(parts, text)
				}
			}
			if len(parts) > 0 {
				return strings.Join(parts, "\n")
			}
		}
	}
	data, err := json.MarshalIndent(r.Result, "", "  ")
	if err != nil {
		return ""
	}
	return string(data)
}

// CallTool sends tools/call for name with args. A process that exits
// non-zero or prints nothing is an error carrying its stderr. Output that
// is not a JSON-RPC response is returned as a raw string result.
func (c *Client) CallTool(ctx context.Context, id int64, name string, args map[string]any, timeout time.Duration) (*CallResult, error) {
	ex, err := c.Exchange(ctx, jsonrpc.NewCallRequest(id, name, args), timeout)
	if err != nil {
		return &CallResult{Exchange: ex}, err
	}

	res := &CallResult{Exchange: ex}

	if ex.ExitCode != 0 || strings.TrimSpace(ex.Stdout) == "" {
		if stderr := strings.TrimSpace(ex.Stderr); stderr != "" {
			return res, errors.WithDetail(errors.Wrapf(errors.ErrProbeFailed, "%s exited with code %d", name, ex.ExitCode), stderr)
		}
		return res, errors.Wrapf(errors.ErrProbeFailed, "process failed with code %d", ex.ExitCode)
	}

	switch {
	case ex.DecodeErr != nil:
		res.Result = ex.Stdout
	case ex.Response.HasResult():
		var v any
		if err := json.Unmarshal(ex.Response.Result, &v); err != nil {
			res.Result = string(ex.Response.Result)
		} else {
			res.Result = v
		}
	case ex.Response.Error != nil:
		res.RPCError = ex.Response.Error
	default:
		res.Result = ex.Stdout
	}

	return res, nil
}
