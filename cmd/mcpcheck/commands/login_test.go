package commands

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/mcpcheck/internal/errors"
)

const (
	loginEmail    = "admin@example.com"
	loginPassword = "correct-horse"
	loginAccess   = "eyJhbGciOiJIUzI1NiJ9.access.signature"
)

func loginAPI(t *testing.T, body map[string]any) string {
	t.Helper()
	r := chi.NewRouter()
	r.Post("/api/admin/login", func(w http.ResponseWriter, r *http.Request) {
		var creds struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&creds)
		w.Header().Set("Content-Type", "application/json")
		if creds.Email != loginEmail || creds.Password != loginPassword {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "Invalid credentials"})
			return
		}
		_ = json.NewEncoder(w).Encode(body)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv.URL + "/api/admin/login"
}

func loginConfig(t *testing.T, url string) string {
	t.Helper()
	return writeConfig(t, "zen", fmt.Sprintf("login:\n  url: %q\n  email: %q\n  timeout: 5s\n", url, loginEmail))
}

func fullLogin() map[string]any {
	return map[string]any{
		"success":      true,
		"accessToken":  loginAccess,
		"refreshToken": "eyJhbGciOiJIUzI1NiJ9.refresh.signature",
		"authType":     "JWT",
		"expiresIn":    3600,
		"user":         map[string]any{"id": 1, "email": loginEmail},
	}
}

func TestLogin_Success(t *testing.T) {
	t.Setenv("MCPCHECK_LOGIN_PASSWORD", loginPassword)
	path := loginConfig(t, loginAPI(t, fullLogin()))

	out, err := executeCommand(t, "login", "--config", path)
	require.NoError(t, err)

	assert.Contains(t, out, "Status: 200")
	assert.Contains(t, out, `"authType": "JWT"`)
	assert.Contains(t, out, "Field checks:")
	assert.Contains(t, out, "✓ accessToken")
	assert.Contains(t, out, "login API: passed")
	assert.NotContains(t, out, loginAccess)
	assert.NotContains(t, out, loginPassword)
}

func TestLogin_MissingFields(t *testing.T) {
	t.Setenv("MCPCHECK_LOGIN_PASSWORD", loginPassword)
	body := fullLogin()
	delete(body, "refreshToken")
	body["authType"] = "session"
	path := loginConfig(t, loginAPI(t, body))

	out, err := executeCommand(t, "login", "--config", path)
	require.Error(t, err)
	assert.Equal(t, errors.ExitUser, errors.ExitCode(err))

	assert.Contains(t, out, "Missing fields:")
	assert.Contains(t, out, "✗ refreshToken")
	assert.Contains(t, out, "✗ authType")
	assert.Contains(t, out, "Suggestions:")
	assert.Contains(t, out, "Login FAILED")
}

func TestLogin_CreatedIsNotOK(t *testing.T) {
	t.Setenv("MCPCHECK_LOGIN_PASSWORD", loginPassword)
	r := chi.NewRouter()
	r.Post("/api/admin/login", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(fullLogin())
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	path := loginConfig(t, srv.URL+"/api/admin/login")

	out, err := executeCommand(t, "login", "--config", path)
	require.Error(t, err)

	assert.Contains(t, out, "Status: 201")
	assert.Contains(t, out, "Unexpected status 201, expected 200")
	assert.NotContains(t, out, "success=false")
	assert.NotContains(t, out, "Missing fields:")
	assert.Contains(t, out, "Login FAILED")
}

func TestLogin_Unauthorized(t *testing.T) {
	t.Setenv("MCPCHECK_LOGIN_PASSWORD", "wrong-password")
	path := loginConfig(t, loginAPI(t, fullLogin()))

	out, err := executeCommand(t, "login", "--config", path)
	require.Error(t, err)

	assert.Contains(t, out, "Status: 401")
	assert.Contains(t, out, "Invalid credentials")
	assert.Contains(t, out, "Login failed: 401 Unauthorized")
	assert.NotContains(t, out, "wrong-password")
}

func TestLogin_NotConfigured(t *testing.T) {
	path := writeConfig(t, "zen", "")
	_, err := executeCommand(t, "login", "--config", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "login.url is not configured")
}

func TestLogin_MissingPassword(t *testing.T) {
	t.Setenv("MCPCHECK_LOGIN_PASSWORD", "")
	path := loginConfig(t, "https://admin.example.com/api/admin/login")

	_, err := executeCommand(t, "login", "--config", path)
	require.Error(t, err)

	var exitErr *errors.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Contains(t, exitErr.Suggestion, "MCPCHECK_LOGIN_PASSWORD")
}
