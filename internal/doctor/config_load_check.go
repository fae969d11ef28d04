package doctor

import (
	"context"
	"strings"

	"github.com/thoreinstein/mcpcheck/internal/errors"
)

// ConfigLoadCheck reports whether the configuration loaded and validated.
// It carries the outcome of a load that already happened.
type ConfigLoadCheck struct {
	err error
}

var _ Check = (*ConfigLoadCheck)(nil)

// NewConfigLoadCheck creates a check for the given load error, nil when the
// configuration loaded cleanly.
func NewConfigLoadCheck(err error) *ConfigLoadCheck {
	return &ConfigLoadCheck{err: err}
}

// Name returns the unique identifier for this check.
func (c *ConfigLoadCheck) Name() string {
	return "config-load"
}

// Category returns the grouping for this check.
func (c *ConfigLoadCheck) Category() string {
	return "config"
}

// Run executes the check.
func (c *ConfigLoadCheck) Run(_ context.Context) *CheckResult {
	if c.err == nil {
		return newResult(c, SeverityPass, "configuration is valid")
	}

	r := newResult(c, SeverityError, c.err.Error())
	switch {
	case errors.Is(c.err, errors.ErrNotFound):
		r.FixHint = "Run: mcpcheck init"
	default:
		r.FixHint = "fix the listed fields, or rewrite the file with: mcpcheck init --force"
	}
	if details := errors.GetAllDetails(c.err); len(details) > 0 {
		r.Details["detail"] = strings.Join(details, "\n")
	}
	return r
}
