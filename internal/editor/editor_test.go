package editor

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommand(t *testing.T) {
	tests := []struct {
		name   string
		editor string
		visual string
		want   []string
	}{
		{"EDITOR wins", "nvim", "code", []string{"nvim"}},
		{"VISUAL fallback", "", "code", []string{"code"}},
		{"blank EDITOR treated as unset", "   ", "hx", []string{"hx"}},
		{"arguments split", "code --wait", "", []string{"code", "--wait"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("EDITOR", tt.editor)
			t.Setenv("VISUAL", tt.visual)
			assert.Equal(t, tt.want, Command())
		})
	}
}

func TestCommand_Fallback(t *testing.T) {
	t.Setenv("EDITOR", "")
	t.Setenv("VISUAL", "")

	want := "vi"
	if _, err := exec.LookPath("nano"); err == nil {
		want = "nano"
	}
	assert.Equal(t, []string{want}, Command())
}

func TestOpen(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a shell script as the editor")
	}

	dir := t.TempDir()
	script := filepath.Join(dir, "fake-editor.sh")
	out := filepath.Join(dir, "args.txt")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho \"$@\" > "+out+"\n"), 0o755))

	t.Setenv("EDITOR", script+" --wait")

	target := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(target, []byte("server: {}\n"), 0o600))

	var stdout, stderr bytes.Buffer
	require.NoError(t, Open(t.Context(), target, Streams{In: strings.NewReader(""), Out: &stdout, Err: &stderr}))

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "--wait "+target, strings.TrimSpace(string(got)))
}

func TestOpen_Failure(t *testing.T) {
	t.Setenv("EDITOR", "definitely-not-an-editor-binary")

	err := Open(t.Context(), "x.yaml", Streams{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "running editor")
}
