package commands

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/mcpcheck/cmd"
)

func TestVersionCommand(t *testing.T) {
	out, err := executeCommand(t, "version")
	require.NoError(t, err)

	b := cmd.Info()
	assert.Contains(t, out, "mcpcheck version "+b.Version)
	assert.Contains(t, out, "commit: "+b.Commit)
	assert.Contains(t, out, "built:  "+b.Date)
	assert.Contains(t, out, runtime.Version())
}
