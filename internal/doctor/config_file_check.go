package doctor

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/mcpcheck/internal/errors"
	"github.com/thoreinstein/mcpcheck/pkg/fileutil"
)

// privateMode is the loosest mode accepted for the config file.
const privateMode os.FileMode = 0o600

// ConfigFileCheck verifies the config file parses as YAML and is private
// to its owner. It repairs loose permissions under --fix.
type ConfigFileCheck struct {
	path      string
	needChmod bool
}

var (
	_ Check = (*ConfigFileCheck)(nil)
	_ Fixer = (*ConfigFileCheck)(nil)
)

// NewConfigFileCheck checks the file at path. An empty path means no file
// was loaded.
func NewConfigFileCheck(path string) *ConfigFileCheck {
	return &ConfigFileCheck{path: path}
}

func (c *ConfigFileCheck) Name() string     { return "config-file" }
func (c *ConfigFileCheck) Category() string { return "config" }

// Run stats, parses and inspects the mode of the config file.
func (c *ConfigFileCheck) Run(_ context.Context) *CheckResult {
	c.needChmod = false
	if c.path == "" {
		r := newResult(c, SeverityInfo, "no config file found, using built-in defaults")
		r.FixHint = "Run: mcpcheck init"
		return r
	}

	info, err := os.Stat(c.path)
	switch {
	case err != nil:
		return c.fail(fmt.Sprintf("cannot stat file: %v", err), "")
	case info.IsDir():
		return c.fail("expected a file but found a directory", "")
	}

	var (
		problems []string
		hints    []string
		status   = SeverityPass
	)

	if data, err := fileutil.ReadLimited(c.path, fileutil.ConfigLimit); err != nil {
		problems = append(problems, fmt.Sprintf("file is not readable: %v", err))
		status = SeverityError
	} else if err := yaml.Unmarshal(data, new(map[string]any)); err != nil {
		problems = append(problems, "invalid YAML: "+strings.TrimPrefix(err.Error(), "yaml: "))
		hints = append(hints, "fix the syntax error or regenerate with: mcpcheck init --force")
		status = SeverityError
	}

	mode := info.Mode().Perm()
	// Windows has no Unix permission bits.
	if runtime.GOOS != "windows" && mode&^privateMode != 0 {
		c.needChmod = true
		if mode&0o002 != 0 {
			problems = append(problems, fmt.Sprintf("file is world-writable (mode %04o)", mode))
		} else {
			problems = append(problems, fmt.Sprintf("file is readable by other users (mode %04o, expected %04o)", mode, privateMode))
		}
		hints = append(hints, fmt.Sprintf("chmod %o %s", privateMode, c.path))
		status = max(status, SeverityWarning)
	}

	if len(problems) == 0 {
		r := newResult(c, SeverityPass, "config file is valid and private")
		r.Details["path"] = c.path
		return r
	}

	r := newResult(c, status, strings.Join(problems, "; "))
	r.Details["path"] = c.path
	r.Details["mode"] = fmt.Sprintf("%04o", mode)
	r.Fixable = c.needChmod
	r.FixHint = strings.Join(hints, "; ")
	return r
}

func (c *ConfigFileCheck) fail(message, hint string) *CheckResult {
	r := newResult(c, SeverityError, message)
	r.Details["path"] = c.path
	r.FixHint = hint
	return r
}

// CanFix reports whether the last Run found loose permissions.
func (c *ConfigFileCheck) CanFix() bool {
	return c.needChmod
}

// Fix restricts the config file to its owner.
func (c *ConfigFileCheck) Fix(_ context.Context) []FixResult {
	res := FixResult{Path: c.path}
	if err := os.Chmod(c.path, privateMode); err != nil {
		res.Description = fmt.Sprintf("failed to chmod %04o: %v", privateMode, err)
		res.Error = errors.Wrapf(err, "chmod %s", c.path)
		return []FixResult{res}
	}
	c.needChmod = false
	res.Fixed = true
	res.Description = fmt.Sprintf("chmod %04o", privateMode)
	return []FixResult{res}
}
