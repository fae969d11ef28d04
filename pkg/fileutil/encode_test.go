package fileutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `json:"name" yaml:"name" toml:"name"`
	Tools int    `json:"tools" yaml:"tools" toml:"tools"`
}

func TestEncode(t *testing.T) {
	v := sample{Name: "zen", Tools: 7}

	tests := []struct {
		format string
		want   string
	}{
		{FormatJSON, "{\n  \"name\": \"zen\",\n  \"tools\": 7\n}\n"},
		{"JSON", "{\n  \"name\": \"zen\",\n  \"tools\": 7\n}\n"},
		{FormatYAML, "name: zen\ntools: 7\n"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			got, err := Encode(tt.format, v)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestEncode_TOML(t *testing.T) {
	got, err := Encode(FormatTOML, sample{Name: "zen", Tools: 7})
	require.NoError(t, err)
	assert.Regexp(t, `^name = ['"]zen['"]\ntools = 7\n$`, string(got))
}

func TestEncode_Errors(t *testing.T) {
	_, err := Encode("xml", sample{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported format "xml"`)

	_, err = Encode(FormatYAML, map[string]any{"fn": func() {}})
	require.Error(t, err)

	_, err = Encode(FormatJSON, map[string]any{"ch": make(chan int)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "encoding json")
}

func TestValidFormat(t *testing.T) {
	for _, f := range []string{"json", "yaml", "toml", "YAML"} {
		assert.True(t, ValidFormat(f), f)
	}
	for _, f := range []string{"", "yml", "xml"} {
		assert.False(t, ValidFormat(f), f)
	}
	assert.Equal(t, []string{"json", "yaml", "toml"}, Formats())
}
