package commands

import (
	"testing"

	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/mcpcheck/internal/errors"
	"github.com/thoreinstein/mcpcheck/internal/mcp"
)

func TestParseToolArgs(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		pairs   []string
		want    map[string]any
		wantErr bool
	}{
		{
			name: "nothing is an empty object",
			want: map[string]any{},
		},
		{
			name:  "pairs",
			pairs: []string{"prompt=hello", "model=auto"},
			want:  map[string]any{"prompt": "hello", "model": "auto"},
		},
		{
			name:  "value keeps later equals signs",
			pairs: []string{"expr=a=b"},
			want:  map[string]any{"expr": "a=b"},
		},
		{
			name:  "pairs override json",
			json:  `{"prompt":"from json","depth":2}`,
			pairs: []string{"prompt=from flag"},
			want:  map[string]any{"prompt": "from flag", "depth": float64(2)},
		},
		{
			name: "json null",
			json: "null",
			want: map[string]any{},
		},
		{
			name:    "missing equals",
			pairs:   []string{"prompt"},
			wantErr: true,
		},
		{
			name:    "empty key",
			pairs:   []string{"=x"},
			wantErr: true,
		},
		{
			name:    "bad json",
			json:    "{",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseToolArgs(tt.json, tt.pairs)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCall(t *testing.T) {
	path := writeConfig(t, "zen", "")
	out, err := executeCommand(t, "call", "chat", "--arg", "prompt=hello", "--config", path)
	require.NoError(t, err)

	assert.Contains(t, out, "Calling chat...")
	assert.Contains(t, out, `chat {"prompt":"hello"}`)
	assert.Contains(t, out, "Call PASSED")
}

func TestCall_EmptyArgumentsSentAsObject(t *testing.T) {
	path := writeConfig(t, "zen", "")
	out, err := executeCommand(t, "call", "chat", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "chat {}")
}

func TestCall_Failures(t *testing.T) {
	tests := []struct {
		name    string
		mode    string
		tool    string
		args    []string
		wantOut string
	}{
		{"rpc error", "zen", "broken", nil, "Server error -32602: Unknown tool: broken"},
		{"process failure", "fail", "chat", nil, "GEMINI_API_KEY is not set"},
		{"timeout", "hang", "chat", []string{"--timeout", "200ms"}, "Request timed out"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.mode, "")
			out, err := executeCommand(t, append([]string{"call", tt.tool, "--config", path}, tt.args...)...)

			require.Error(t, err)
			assert.Equal(t, errors.ExitUser, errors.ExitCode(err))
			assert.Contains(t, out, tt.wantOut)
			assert.Contains(t, out, "Call FAILED")
		})
	}
}

func TestCall_NoToolWithoutTerminal(t *testing.T) {
	orig := isInteractive
	t.Cleanup(func() { isInteractive = orig })
	isInteractive = func() bool { return false }

	path := writeConfig(t, "zen", "")
	_, err := executeCommand(t, "call", "--config", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tool name required")
}

func TestCall_PicksTool(t *testing.T) {
	origInteractive, origPick := isInteractive, pickTool
	t.Cleanup(func() { isInteractive, pickTool = origInteractive, origPick })

	var offered []string
	isInteractive = func() bool { return true }
	pickTool = func(tools []mcp.Tool) (*mcp.Tool, error) {
		for _, tool := range tools {
			offered = append(offered, tool.Name)
		}
		return &tools[len(tools)-1], nil
	}

	path := writeConfig(t, "zen", "")
	out, err := executeCommand(t, "call", "--config", path)
	require.NoError(t, err)

	assert.Len(t, offered, 7)
	assert.Contains(t, out, "Calling version...")
	assert.Contains(t, out, "zen-mcp-server version 5.8.0")
}

func TestCall_PickerAborted(t *testing.T) {
	origInteractive, origPick := isInteractive, pickTool
	t.Cleanup(func() { isInteractive, pickTool = origInteractive, origPick })

	isInteractive = func() bool { return true }
	pickTool = func([]mcp.Tool) (*mcp.Tool, error) {
		return nil, fuzzyfinder.ErrAbort
	}

	path := writeConfig(t, "zen", "")
	out, err := executeCommand(t, "call", "--config", path)
	require.NoError(t, err)
	assert.NotContains(t, out, "Calling")
}
