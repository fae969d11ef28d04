package doctor

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/thoreinstein/mcpcheck/internal/errors"
	"github.com/thoreinstein/mcpcheck/internal/login"
	"github.com/thoreinstein/mcpcheck/internal/redact"
	"github.com/thoreinstein/mcpcheck/pkg/textutil"
)

// LoginSuggestions are printed when a login probe fails after a deploy.
var LoginSuggestions = []string{
	"wait 2-3 minutes for the deployment to finish",
	"check the deployment status of the admin service",
	"clear the browser cache before retrying in a browser",
}

// LoginProber posts credentials to a login endpoint. *login.Client
// satisfies it.
type LoginProber interface {
	Probe(ctx context.Context, url string, creds login.Credentials) (*login.Result, error)
}

// LoginCheck verifies that the admin login endpoint issues JWT credentials.
type LoginCheck struct {
	prober LoginProber
	url    string
	creds  login.Credentials
}

var _ Check = (*LoginCheck)(nil)

// NewLoginCheck creates a login check. An empty url skips the check.
func NewLoginCheck(prober LoginProber, url string, creds login.Credentials) *LoginCheck {
	return &LoginCheck{prober: prober, url: url, creds: creds}
}

// Name returns the unique identifier for this check.
func (c *LoginCheck) Name() string {
	return "login"
}

// Category returns the grouping for this check.
func (c *LoginCheck) Category() string {
	return "http"
}

// Run executes the check.
func (c *LoginCheck) Run(ctx context.Context) *CheckResult {
	if c.url == "" {
		r := newResult(c, SeverityInfo, "login.url not configured, skipped")
		return r
	}
	if c.creds.Email == "" || c.creds.Password == "" {
		r := newResult(c, SeverityWarning, "login credentials incomplete, skipped")
		r.FixHint = "set login.email in the config file and MCPCHECK_LOGIN_PASSWORD in the environment"
		return r
	}

	res, err := c.prober.Probe(ctx, c.url, c.creds)
	if err != nil {
		return c.failure(res, err)
	}

	if res.Passed() {
		r := newResult(c, SeverityPass, fmt.Sprintf("JWT login succeeded in %s", res.Duration.Round(time.Millisecond)))
		r.Details["url"] = redact.URL(c.url)
		return r
	}

	var msg string
	if !res.Success {
		msg = "login response reports success=false"
	} else {
		msg = "login response is missing: " + strings.Join(res.Missing(), ", ")
	}
	r := newResult(c, SeverityError, msg)
	r.Details["url"] = redact.URL(c.url)
	r.Details["checks"] = res.Checks
	r.FixHint = strings.Join(LoginSuggestions, "; ")
	return r
}

func (c *LoginCheck) failure(res *login.Result, err error) *CheckResult {
	var msg string
	switch {
	case errors.Is(err, errors.ErrTimeout):
		msg = "login request timed out"
	case errors.Is(err, errors.ErrNetwork):
		msg = "login endpoint unreachable"
	case errors.Is(err, errors.ErrHTTPStatus) && res != nil:
		msg = fmt.Sprintf("login returned HTTP %d %s", res.StatusCode, http.StatusText(res.StatusCode))
		if e, ok := res.Body["error"].(string); ok && e != "" {
			msg += ": " + e
		}
	case errors.Is(err, errors.ErrMalformedResponse):
		msg = "login response is not JSON"
	default:
		msg = err.Error()
	}

	r := newResult(c, SeverityError, msg)
	r.Details["url"] = redact.URL(c.url)
	if res != nil && res.Body == nil && res.Raw != "" {
		r.Details["raw"] = textutil.Truncate(strings.TrimSpace(res.Raw), rawPreview)
	}
	r.FixHint = strings.Join(LoginSuggestions, "; ")
	return r
}
