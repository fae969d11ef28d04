// Package login probes an admin login endpoint and checks that it issues
// JWT credentials.
package login

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/thoreinstein/mcpcheck/internal/errors"
	"github.com/thoreinstein/mcpcheck/internal/logging"
	"github.com/thoreinstein/mcpcheck/internal/redact"
	"github.com/thoreinstein/mcpcheck/pkg/textutil"
)

// DefaultTimeout bounds the whole request including reading the body.
const DefaultTimeout = 30 * time.Second

// maxBody caps how much of a response body is read.
const maxBody = 1 << 20

// ExpectedAuthType is the authType a healthy deployment reports.
const ExpectedAuthType = "JWT"

// plainFields are never masked even though their names look sensitive.
var plainFields = map[string]bool{
	"authType":  true,
	"tokenType": true,
	"expiresIn": true,
}

// Credentials are posted as the JSON login payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Check is the outcome of one field check on a login response.
type Check struct {
	Field  string `json:"field"`
	Passed bool   `json:"passed"`
	// Display is a printable, redacted rendering of the field value.
	Display string `json:"display"`
}

// Result is the outcome of a login probe.
type Result struct {
	URL        string         `json:"url"`
	StatusCode int            `json:"status_code"`
	Body       map[string]any `json:"body,omitempty"`
	Raw        string         `json:"-"`
	Success    bool           `json:"success"`
	Checks     []Check        `json:"checks,omitempty"`
	Duration   time.Duration  `json:"duration"`
}

// Passed reports whether the endpoint answered 200 with success set and
// every field check passing.
func (r *Result) Passed() bool {
	if r.StatusCode != http.StatusOK || !r.Success || len(r.Checks) == 0 {
		return false
	}
	for _, c := range r.Checks {
		if !c.Passed {
			return false
		}
	}
	return true
}

// Missing lists the fields whose checks failed.
func (r *Result) Missing() []string {
	var missing []string
	for _, c := range r.Checks {
		if !c.Passed {
			missing = append(missing, c.Field)
		}
	}
	return missing
}

// RedactedBody returns Body with token-like values masked, for printing.
func (r *Result) RedactedBody() map[string]any {
	return redactMap(r.Body)
}

// Client sends login probes.
type Client struct {
	http    *http.Client
	timeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.http = c
	}
}

// WithTimeout sets the request timeout. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 {
			cl.timeout = d
		}
	}
}

// NewClient creates a Client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		http:    &http.Client{},
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Probe posts creds to url and evaluates the response. A result is returned
// whenever a response was received, even when err is non-nil.
func (c *Client) Probe(ctx context.Context, url string, creds Credentials) (*Result, error) {
	logger := logging.FromContext(ctx).With("url", redact.URL(url))

	payload, err := json.Marshal(creds)
	if err != nil {
		return nil, errors.Wrap(err, "marshaling login payload")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "building login request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cache-Control", "no-cache")

	logger.Debug("posting login", "email", creds.Email, "timeout", c.timeout)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.Wrapf(errors.ErrTimeout, "no response within %s", c.timeout)
		}
		return nil, errors.Mark(errors.Wrap(err, "posting login"), errors.ErrNetwork)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "reading login response"), errors.ErrNetwork)
	}

	res := &Result{
		URL:        url,
		StatusCode: resp.StatusCode,
		Raw:        string(raw),
		Duration:   time.Since(start),
	}
	logger.Debug("login responded", "status", resp.StatusCode, "duration", res.Duration)

	var body map[string]any
	jsonErr := json.Unmarshal(raw, &body)
	if jsonErr == nil {
		res.Body = body
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return res, errors.Wrapf(errors.ErrHTTPStatus, "%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	if jsonErr != nil {
		return res, errors.WithDetail(errors.Wrap(errors.ErrMalformedResponse, "login response is not JSON"), truncate(res.Raw, 500))
	}

	res.Success, res.Checks = Evaluate(body)
	return res, nil
}

// Evaluate checks a decoded login response. It reports the success flag and
// one check per expected field in a fixed order.
func Evaluate(body map[string]any) (bool, []Check) {
	success := truthy(body["success"])

	checks := []Check{
		tokenCheck(body, "accessToken"),
		tokenCheck(body, "refreshToken"),
		{
			Field:   "authType",
			Passed:  body["authType"] == ExpectedAuthType,
			Display: display(body["authType"]),
		},
		{
			Field:   "user",
			Passed:  truthy(body["user"]),
			Display: display(body["user"]),
		},
		{
			Field:   "expiresIn",
			Passed:  truthy(body["expiresIn"]),
			Display: display(body["expiresIn"]),
		},
	}
	return success, checks
}

func tokenCheck(body map[string]any, field string) Check {
	v := body[field]
	c := Check{Field: field, Passed: truthy(v), Display: display(v)}
	if s, ok := v.(string); ok && s != "" {
		c.Display = redact.Value(s)
	}
	return c
}

// truthy follows JSON intuition: null, false, 0, "" and empty containers are false.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	case map[string]any:
		return len(t) > 0
	case []any:
		return len(t) > 0
	default:
		return true
	}
}

func display(v any) string {
	switch t := v.(type) {
	case nil:
		return "<missing>"
	case string:
		return t
	case map[string]any, []any:
		data, err := json.Marshal(redactValue("", t))
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(data)
	default:
		return fmt.Sprint(t)
	}
}

func redactMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = redactValue(k, v)
	}
	return out
}

func redactValue(key string, v any) any {
	switch t := v.(type) {
	case map[string]any:
		return redactMap(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = redactValue(key, item)
		}
		return out
	case string:
		if plainFields[key] {
			return t
		}
		return redact.Pair(key, t)
	default:
		return v
	}
}

func truncate(s string, n int) string {
	return textutil.Truncate(strings.TrimSpace(s), n)
}
