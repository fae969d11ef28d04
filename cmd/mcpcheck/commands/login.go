package commands

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpcheck/internal/doctor"
	"github.com/thoreinstein/mcpcheck/internal/errors"
	"github.com/thoreinstein/mcpcheck/internal/login"
	"github.com/thoreinstein/mcpcheck/internal/redact"
	"github.com/thoreinstein/mcpcheck/pkg/textutil"
)

func init() {
	rootCmd.AddCommand(loginCmd)
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Probe the admin login endpoint",
	Long: `POST the configured credentials to login.url and check that the response
carries a JWT access token, a refresh token, the user, and an expiry.

The password is read from login.password, normally supplied through the
MCPCHECK_LOGIN_PASSWORD environment variable. Tokens are redacted in the
printed response.`,
	Example: `  # Probe with the password from the environment
  MCPCHECK_LOGIN_PASSWORD=... mcpcheck login

See Also: mcpcheck doctor`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

func runLogin(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()

	if cfg.Login.URL == "" {
		return errors.NewUserError(errors.New("login.url is not configured"), "set login.url in the config file")
	}
	if cfg.Login.Email == "" || cfg.Login.Password == "" {
		return errors.NewUserError(errors.New("login credentials incomplete"),
			"set login.email in the config file and MCPCHECK_LOGIN_PASSWORD in the environment")
	}

	fmt.Fprintf(w, "Testing login API at %s\n", redact.URL(cfg.Login.URL))
	fmt.Fprintf(w, "Time: %s\n\n", time.Now().Format(time.DateTime))

	client := login.NewClient(login.WithTimeout(probeTimeout(cfg.Login.Timeout)))
	res, err := client.Probe(cmd.Context(), cfg.Login.URL, login.Credentials{
		Email:    cfg.Login.Email,
		Password: cfg.Login.Password,
	})

	if res != nil {
		printLoginResult(w, res)
	}

	if err == nil && res.Passed() {
		fmt.Fprintln(w, "Summary:")
		fmt.Fprintf(w, "  login API: %s\n", passColor.Sprint("passed"))
		fmt.Fprintln(w, "  JWT authentication is enabled")
		return nil
	}

	switch {
	case err == nil:
		missing := res.Missing()
		switch {
		case len(missing) > 0:
			fmt.Fprintln(w, "Missing fields:")
			for _, f := range missing {
				fmt.Fprintf(w, "  %s %s\n", failColor.Sprint("✗"), f)
			}
		case !res.Success:
			fmt.Fprintln(w, "Login reported success=false")
		default:
			fmt.Fprintf(w, "Unexpected status %d, expected %d\n", res.StatusCode, http.StatusOK)
		}
	case errors.Is(err, errors.ErrTimeout):
		fmt.Fprintln(w, "Request timed out")
	case errors.Is(err, errors.ErrNetwork):
		fmt.Fprintf(w, "Network error: %v\n", err)
	case errors.Is(err, errors.ErrHTTPStatus):
		fmt.Fprintf(w, "Login failed: %v\n", err)
	case errors.Is(err, errors.ErrMalformedResponse):
		fmt.Fprintln(w, "Response is not JSON")
	default:
		fmt.Fprintf(w, "Error: %v\n", err)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Suggestions:")
	for i, s := range doctor.LoginSuggestions {
		fmt.Fprintf(w, "  %d. %s\n", i+1, s)
	}
	fmt.Fprintln(w)
	printVerdict(w, "Login", false)
	return errors.NewExitError(nil, errors.ExitUser)
}

func printLoginResult(w io.Writer, res *login.Result) {
	fmt.Fprintf(w, "Status: %d\n\n", res.StatusCode)

	if res.Body != nil {
		fmt.Fprintln(w, "Response:")
		_ = printJSON(w, res.RedactedBody())
		fmt.Fprintln(w)
	} else if res.Raw != "" {
		fmt.Fprintln(w, "Response (raw):")
		fmt.Fprintln(w, textutil.Head(res.Raw, rawPreview))
		fmt.Fprintln(w)
	}

	if len(res.Checks) == 0 {
		return
	}
	fmt.Fprintln(w, "Field checks:")
	for _, c := range res.Checks {
		mark := passColor.Sprint("✓")
		if !c.Passed {
			mark = failColor.Sprint("✗")
		}
		fmt.Fprintf(w, "  %s %s: %s\n", mark, c.Field, c.Display)
	}
	fmt.Fprintln(w)
}
