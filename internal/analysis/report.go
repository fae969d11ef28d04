package analysis

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/thoreinstein/mcpcheck/internal/errors"
	"github.com/thoreinstein/mcpcheck/pkg/fileutil"
)

// ReportPrefix starts every report file name.
const ReportPrefix = "mcp-analysis-report-"

// Report collects the results of one analysis run.
type Report struct {
	RunID      string            `json:"run_id" yaml:"run_id" toml:"run_id"`
	Project    string            `json:"project" yaml:"project" toml:"project"`
	StartedAt  time.Time         `json:"started_at" yaml:"started_at" toml:"started_at"`
	FinishedAt time.Time         `json:"finished_at" yaml:"finished_at" toml:"finished_at"`
	Results    map[string]any    `json:"results" yaml:"results" toml:"results"`
	Failures   map[string]string `json:"failures,omitempty" yaml:"failures,omitempty" toml:"failures,omitempty"`
}

// Failed reports whether any step failed.
func (r *Report) Failed() bool {
	return len(r.Failures) > 0
}

// FileName returns the report file name for format, stamped with the
// run's finish time in Unix seconds.
func (r *Report) FileName(format string) string {
	return fmt.Sprintf("%s%d.%s", ReportPrefix, r.FinishedAt.Unix(), strings.ToLower(format))
}

// Write stores the report atomically in dir and returns its path.
func (r *Report) Write(dir, format string) (string, error) {
	if !fileutil.ValidFormat(format) {
		return "", errors.Newf("unsupported report format %q", format)
	}

	path := filepath.Join(dir, r.FileName(format))

	var v any = r
	if strings.EqualFold(format, fileutil.FormatTOML) {
		// TOML has no null.
		clean := *r
		clean.Results = dropNulls(r.Results)
		v = &clean
	}

	if err := fileutil.WriteEncoded(path, format, v, fileutil.PrivatePerm); err != nil {
		return "", errors.Wrapf(err, "writing report %s", path)
	}
	return path, nil
}

func dropNulls(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if v == nil {
			continue
		}
		out[k] = dropNullValue(v)
	}
	return out
}

func dropNullValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return dropNulls(t)
	case []any:
		out := make([]any, 0, len(t))
		for _, item := range t {
			if item != nil {
				out = append(out, dropNullValue(item))
			}
		}
		return out
	default:
		return v
	}
}
