package doctor

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/zricethezav/gitleaks/v8/detect"

	"github.com/thoreinstein/mcpcheck/internal/redact"
	"github.com/thoreinstein/mcpcheck/pkg/fileutil"
)

// SecretFinding locates a secret without carrying its value.
type SecretFinding struct {
	RuleID      string `json:"rule_id"`
	Description string `json:"description"`
	Line        int    `json:"line"`
}

// SecretScanner finds secrets in text.
type SecretScanner func(content string) ([]SecretFinding, error)

var (
	detectorOnce sync.Once
	detector     *detect.Detector
	detectorErr  error
)

// GitleaksScanner scans with the gitleaks default rule set. The detector is
// built once per process.
func GitleaksScanner(content string) ([]SecretFinding, error) {
	detectorOnce.Do(func() {
		detector, detectorErr = detect.NewDetectorDefaultConfig()
	})
	if detectorErr != nil {
		return nil, detectorErr
	}

	found := detector.DetectString(content)
	out := make([]SecretFinding, 0, len(found))
	for _, f := range found {
		out = append(out, SecretFinding{
			RuleID:      f.RuleID,
			Description: f.Description,
			Line:        f.StartLine,
		})
	}
	return out, nil
}

// ConfigSecretsCheck warns about credentials written into the config file
// instead of being referenced from the environment.
type ConfigSecretsCheck struct {
	path string
	env  map[string]string
	scan SecretScanner
}

var _ Check = (*ConfigSecretsCheck)(nil)

// NewConfigSecretsCheck creates a check over the config file at path and the
// effective server env. scan defaults to GitleaksScanner when nil.
func NewConfigSecretsCheck(path string, env map[string]string, scan SecretScanner) *ConfigSecretsCheck {
	if scan == nil {
		scan = GitleaksScanner
	}
	return &ConfigSecretsCheck{path: path, env: env, scan: scan}
}

// Name returns the unique identifier for this check.
func (c *ConfigSecretsCheck) Name() string {
	return "config-secrets"
}

// Category returns the grouping for this check.
func (c *ConfigSecretsCheck) Category() string {
	return "config"
}

// Run executes the check.
func (c *ConfigSecretsCheck) Run(_ context.Context) *CheckResult {
	literal := c.literalEnvSecrets()

	var findings []SecretFinding
	if c.path != "" {
		data, err := fileutil.ReadLimited(c.path, fileutil.ConfigLimit)
		if err != nil {
			r := newResult(c, SeverityError, fmt.Sprintf("cannot read %s: %v", c.path, err))
			return r
		}
		findings, err = c.scan(string(data))
		if err != nil {
			r := newResult(c, SeverityError, fmt.Sprintf("secret scanner failed: %v", err))
			return r
		}
	}

	if len(literal) == 0 && len(findings) == 0 {
		msg := "no inline secrets found"
		if c.path == "" {
			msg = "no config file to scan; server.env holds no literal secrets"
		}
		return newResult(c, SeverityPass, msg)
	}

	var parts []string
	if len(findings) > 0 {
		lines := make([]string, 0, len(findings))
		for _, f := range findings {
			lines = append(lines, fmt.Sprintf("%s (line %d)", f.RuleID, f.Line))
		}
		parts = append(parts, fmt.Sprintf("%d secret(s) in %s: %s", len(findings), c.path, strings.Join(lines, ", ")))
	}
	if len(literal) > 0 {
		parts = append(parts, "server.env holds literal values for "+strings.Join(literal, ", "))
	}

	r := newResult(c, SeverityWarning, strings.Join(parts, "; "))
	if len(findings) > 0 {
		r.Details["findings"] = findings
	}
	if len(literal) > 0 {
		r.Details["literal_env"] = literal
	}
	r.FixHint = "move secrets to the environment and reference them as ${VAR}"
	return r
}

// literalEnvSecrets lists secret-looking server.env keys whose values are
// not plain ${VAR} references.
func (c *ConfigSecretsCheck) literalEnvSecrets() []string {
	var keys []string
	for k, v := range c.env {
		if v == "" || redact.IsReference(v) {
			continue
		}
		if redact.ShouldMask(k) || redact.ContainsTokenPrefix(v) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}
