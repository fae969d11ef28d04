package doctor

import (
	"context"
	"time"

	"github.com/thoreinstein/mcpcheck/internal/logging"
)

// Check is a single diagnostic.
type Check interface {
	// Name identifies the check in output, e.g. "server-tools".
	Name() string
	// Category groups checks: "config", "mcp" or "http".
	Category() string
	Run(ctx context.Context) *CheckResult
}

// Runner runs checks in registration order. Checks never run concurrently
// because the MCP checks each spawn the same server.
type Runner struct {
	checks []Check
}

// NewRunner returns a Runner with checks registered.
func NewRunner(checks ...Check) *Runner {
	return &Runner{checks: checks}
}

// Add registers more checks after the existing ones.
func (r *Runner) Add(checks ...Check) {
	r.checks = append(r.checks, checks...)
}

// Run executes every check and collects the results.
func (r *Runner) Run(ctx context.Context) *Report {
	logger := logging.FromContext(ctx)
	report := &Report{
		Timestamp: time.Now().UTC(),
		Results:   make([]*CheckResult, 0, len(r.checks)),
	}

	for _, check := range r.checks {
		start := time.Now()
		result := check.Run(ctx)
		result.Duration = time.Since(start)

		logger.Debug("check finished",
			"check", result.Name,
			"status", result.Status.String(),
			"duration", result.Duration)

		report.Results = append(report.Results, result)
		report.Summary.add(result.Status)
	}
	return report
}

// Fix applies every registered Fixer that has work to do. It must follow
// Run, since fixers act on what their check found.
func (r *Runner) Fix(ctx context.Context) []FixResult {
	var results []FixResult
	for _, check := range r.checks {
		if f, ok := check.(Fixer); ok && f.CanFix() {
			results = append(results, f.Fix(ctx)...)
		}
	}
	return results
}

// Report is the outcome of one doctor run.
type Report struct {
	Timestamp time.Time      `json:"timestamp"`
	Results   []*CheckResult `json:"results"`
	Summary   Summary        `json:"summary"`
}

// HasErrors reports whether any check failed with SeverityError.
func (r *Report) HasErrors() bool {
	return r.Summary.Errors > 0
}

// HasWarnings reports whether any check ended in SeverityWarning.
func (r *Report) HasWarnings() bool {
	return r.Summary.Warnings > 0
}

// ExitCode is 2 with errors, 1 with only warnings and 0 otherwise.
func (r *Report) ExitCode() int {
	switch {
	case r.HasErrors():
		return 2
	case r.HasWarnings():
		return 1
	}
	return 0
}
