// Package jsonrpc implements the single request/response JSON-RPC 2.0
// exchange used to probe MCP servers over stdio.
package jsonrpc

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/thoreinstein/mcpcheck/internal/errors"
	"github.com/thoreinstein/mcpcheck/pkg/textutil"
)

// Version is the protocol version string carried by every message.
const Version = "2.0"

// Method names understood by MCP tool servers.
const (
	MethodToolsList = "tools/list"
	MethodToolsCall = "tools/call"
)

// maxRawDetail bounds how much raw output is attached to a decode error.
const maxRawDetail = 500

// Request is a JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

// CallParams are the params of a tools/call request.
type CallParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// Response is a JSON-RPC 2.0 response. Exactly one of Result or Error is
// expected, but both are optional on the wire.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Error is a JSON-RPC error object.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("jsonrpc error %d: %s", e.Code, e.Message)
}

// NewListRequest builds a tools/list request with empty params.
func NewListRequest(id int64) *Request {
	return &Request{
		JSONRPC: Version,
		ID:      id,
		Method:  MethodToolsList,
		Params:  map[string]any{},
	}
}

// NewCallRequest builds a tools/call request. A nil args map is sent as {}.
func NewCallRequest(id int64, name string, args map[string]any) *Request {
	if args == nil {
		args = map[string]any{}
	}
	return &Request{
		JSONRPC: Version,
		ID:      id,
		Method:  MethodToolsCall,
		Params:  CallParams{Name: name, Arguments: args},
	}
}

// Encode writes req to w as a single newline-terminated line.
func Encode(w io.Writer, req *Request) error {
	data, err := json.Marshal(req)
	if err != nil {
		return errors.Wrap(err, "marshaling request")
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return errors.Wrap(err, "writing request")
	}
	return nil
}

// HasResult reports whether the response carries a non-null result.
func (r *Response) HasResult() bool {
	return len(r.Result) > 0 && !bytes.Equal(r.Result, []byte("null"))
}

// DecodeResult unmarshals the result into v.
func (r *Response) DecodeResult(v any) error {
	if !r.HasResult() {
		return errors.Wrap(errors.ErrMalformedResponse, "response has no result")
	}
	if err := json.Unmarshal(r.Result, v); err != nil {
		return errors.WithDetail(errors.Wrap(errors.ErrMalformedResponse, err.Error()), truncate(string(r.Result)))
	}
	return nil
}

// Decode extracts the response from raw process output. Servers commonly
// print log lines or notifications next to the response, so each line is
// tried in turn and the first JSON object that looks like a response wins.
// The whole text is tried last to accept pretty-printed responses.
func Decode(raw []byte) (*Response, error) {
	sc := bufio.NewScanner(bytes.NewReader(raw))
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 || line[0] != '{' {
			continue
		}
		if resp, ok := parse(line); ok {
			return resp, nil
		}
	}

	if resp, ok := parse(bytes.TrimSpace(raw)); ok {
		return resp, nil
	}

	return nil, errors.WithDetail(errors.ErrMalformedResponse, truncate(string(raw)))
}

func parse(data []byte) (*Response, bool) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, false
	}
	_, hasResult := probe["result"]
	_, hasError := probe["error"]
	_, hasVersion := probe["jsonrpc"]
	if !hasResult && !hasError && !hasVersion {
		return nil, false
	}
	// Notifications carry a method and no id; they are not the response.
	if _, isCall := probe["method"]; isCall && !hasResult && !hasError {
		return nil, false
	}

	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, false
	}
	return &resp, true
}

func truncate(s string) string {
	return textutil.Truncate(strings.TrimSpace(s), maxRawDetail)
}
