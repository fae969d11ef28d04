package doctor

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/thoreinstein/mcpcheck/internal/errors"
	"github.com/thoreinstein/mcpcheck/internal/login"
)

type fakeProber struct {
	res   *login.Result
	err   error
	calls int
}

func (f *fakeProber) Probe(_ context.Context, _ string, _ login.Credentials) (*login.Result, error) {
	f.calls++
	return f.res, f.err
}

func passingResult() *login.Result {
	body := map[string]any{
		"success":      true,
		"accessToken":  "aaaa1111",
		"refreshToken": "bbbb2222",
		"authType":     "JWT",
		"user":         map[string]any{"id": 1},
		"expiresIn":    float64(900),
	}
	success, checks := login.Evaluate(body)
	return &login.Result{StatusCode: http.StatusOK, Body: body, Success: success, Checks: checks}
}

func TestLoginCheck_Run(t *testing.T) {
	creds := login.Credentials{Email: "admin@example.com", Password: "pw"}
	const url = "https://admin.example.com/api/admin/login"

	missingRefresh := passingResult()
	delete(missingRefresh.Body, "refreshToken")
	missingRefresh.Success, missingRefresh.Checks = login.Evaluate(missingRefresh.Body)

	tests := []struct {
		name        string
		url         string
		creds       login.Credentials
		prober      *fakeProber
		wantStatus  Severity
		wantMessage string
		wantCalls   int
	}{
		{
			name:        "not configured",
			prober:      &fakeProber{},
			wantStatus:  SeverityInfo,
			wantMessage: "not configured",
		},
		{
			name:        "missing password",
			url:         url,
			creds:       login.Credentials{Email: "admin@example.com"},
			prober:      &fakeProber{},
			wantStatus:  SeverityWarning,
			wantMessage: "credentials incomplete",
		},
		{
			name:        "jwt login",
			url:         url,
			creds:       creds,
			prober:      &fakeProber{res: passingResult()},
			wantStatus:  SeverityPass,
			wantMessage: "JWT login succeeded",
			wantCalls:   1,
		},
		{
			name:        "missing field",
			url:         url,
			creds:       creds,
			prober:      &fakeProber{res: missingRefresh},
			wantStatus:  SeverityError,
			wantMessage: "missing: refreshToken",
			wantCalls:   1,
		},
		{
			name:  "unauthorized",
			url:   url,
			creds: creds,
			prober: &fakeProber{
				res: &login.Result{StatusCode: http.StatusUnauthorized, Body: map[string]any{"error": "Invalid credentials"}},
				err: errors.Wrap(errors.ErrHTTPStatus, "401 Unauthorized"),
			},
			wantStatus:  SeverityError,
			wantMessage: "HTTP 401 Unauthorized: Invalid credentials",
			wantCalls:   1,
		},
		{
			name:        "timeout",
			url:         url,
			creds:       creds,
			prober:      &fakeProber{err: errors.Wrap(errors.ErrTimeout, "no response within 30s")},
			wantStatus:  SeverityError,
			wantMessage: "timed out",
			wantCalls:   1,
		},
		{
			name:        "unreachable",
			url:         url,
			creds:       creds,
			prober:      &fakeProber{err: errors.Mark(errors.New("dial tcp: connection refused"), errors.ErrNetwork)},
			wantStatus:  SeverityError,
			wantMessage: "unreachable",
			wantCalls:   1,
		},
		{
			name:  "not json",
			url:   url,
			creds: creds,
			prober: &fakeProber{
				res: &login.Result{StatusCode: http.StatusOK, Raw: "<html>"},
				err: errors.Wrap(errors.ErrMalformedResponse, "login response is not JSON"),
			},
			wantStatus:  SeverityError,
			wantMessage: "not JSON",
			wantCalls:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewLoginCheck(tt.prober, tt.url, tt.creds)
			assert.Equal(t, "login", c.Name())
			assert.Equal(t, "http", c.Category())

			r := c.Run(t.Context())
			assert.Equal(t, tt.wantStatus, r.Status, r.Message)
			assert.Contains(t, r.Message, tt.wantMessage)
			assert.Equal(t, tt.wantCalls, tt.prober.calls)
			if tt.wantStatus == SeverityError {
				assert.Contains(t, r.FixHint, "wait 2-3 minutes")
			}
		})
	}
}
