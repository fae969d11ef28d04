package commands

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/mcpcheck/internal/errors"
)

func TestPing(t *testing.T) {
	tests := []struct {
		name     string
		mode     string
		args     []string
		wantCode int
		wantOut  []string
		notOut   []string
	}{
		{
			name:     "server answers",
			mode:     "zen",
			wantCode: 0,
			wantOut:  []string{"=== STDOUT ===", `"tools"`, "=== STDERR ===", "INFO zen starting", "=== Return Code: 0 ===", "Test PASSED"},
		},
		{
			name:     "server exits non-zero",
			mode:     "fail",
			wantCode: 4,
			wantOut:  []string{"starting", "GEMINI_API_KEY is not set", "=== Return Code: 4 ===", "Test FAILED"},
		},
		{
			name:     "timeout",
			mode:     "hang",
			args:     []string{"--timeout", "200ms"},
			wantCode: errors.ExitUser,
			wantOut:  []string{"Process timed out", "Test FAILED"},
			notOut:   []string{"=== STDOUT ==="},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.mode, "")
			out, err := executeCommand(t, append([]string{"ping", "--config", path}, tt.args...)...)

			assert.Equal(t, tt.wantCode, errors.ExitCode(err))
			for _, want := range tt.wantOut {
				assert.Contains(t, out, want)
			}
			for _, not := range tt.notOut {
				assert.NotContains(t, out, not)
			}
		})
	}
}

func TestPing_GarbageStillPasses(t *testing.T) {
	// ping only cares that the process ran; parsing is the tools command's job.
	path := writeConfig(t, "garbage", "")
	out, err := executeCommand(t, "ping", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "this is not json")
	assert.Contains(t, out, "Test PASSED")
}

func TestPing_MultiByteOutputCutOnCharacters(t *testing.T) {
	path := writeConfig(t, "cjk", "")
	out, err := executeCommand(t, "ping", "--config", path)
	require.NoError(t, err)

	assert.True(t, utf8.ValidString(out))
	assert.Contains(t, out, strings.Repeat("日志", rawPreview/2)+"\n")
	assert.NotContains(t, out, strings.Repeat("日志", rawPreview/2+1))
}
