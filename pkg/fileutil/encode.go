package fileutil

import (
	"encoding/json"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/mcpcheck/internal/errors"
)

// Report and config encodings.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

var formats = []string{FormatJSON, FormatYAML, FormatTOML}

// Formats lists the supported encodings, JSON first.
func Formats() []string {
	return slices.Clone(formats)
}

// ValidFormat reports whether format names a supported encoding,
// ignoring case.
func ValidFormat(format string) bool {
	return slices.Contains(formats, strings.ToLower(format))
}

// Encode renders v in format. The output always ends in a newline and JSON
// is indented by two spaces.
func Encode(format string, v any) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch f := strings.ToLower(format); f {
	case FormatJSON:
		data, err = json.MarshalIndent(v, "", "  ")
	case FormatYAML:
		data, err = encodeYAML(v)
	case FormatTOML:
		data, err = toml.Marshal(v)
	default:
		return nil, errors.Newf("unsupported format %q, want one of %s", format, strings.Join(formats, ", "))
	}
	if err != nil {
		return nil, errors.Wrapf(err, "encoding %s", strings.ToLower(format))
	}

	if !strings.HasSuffix(string(data), "\n") {
		data = append(data, '\n')
	}
	return data, nil
}

// yaml.v3 panics on values it cannot represent, such as funcs.
func encodeYAML(v any) (data []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			data, err = nil, errors.Newf("%v", r)
		}
	}()
	return yaml.Marshal(v)
}
