package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpcheck/internal/doctor"
	"github.com/thoreinstein/mcpcheck/internal/errors"
	"github.com/thoreinstein/mcpcheck/internal/login"
	"github.com/thoreinstein/mcpcheck/pkg/textutil"
)

var (
	doctorJSON    bool
	doctorQuiet   bool
	doctorVerbose bool
	doctorFix     bool
)

// secretScanner backs the config-secrets check. Tests replace it.
var secretScanner doctor.SecretScanner = doctor.GitleaksScanner

func init() {
	f := doctorCmd.Flags()
	f.BoolVar(&doctorJSON, "json", false, "print the report as JSON")
	f.BoolVar(&doctorQuiet, "quiet", false, "print nothing; rely on the exit code")
	f.BoolVar(&doctorVerbose, "verbose", false, "list passing checks and failure details too")
	f.BoolVar(&doctorFix, "fix", false, "tighten config file permissions when they are too open")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run every diagnostic check",
	Long: `Check the mcpcheck configuration, the configured MCP server, and the
login endpoint, in this order:

  config-load, config-file, config-secrets,
  server-env, server-tools, version-tool, login

Server and login checks are skipped when the configuration does not load.
By default only warnings and errors are listed; --verbose, --quiet and
--json pick another output and cannot be combined.

The exit code is 0 when nothing needs attention, 1 when the worst result
is a warning, and 2 when any check failed.`,
	Example: `  # Everything that needs attention
  mcpcheck doctor

  # Full output, fixing permissions on the way
  mcpcheck doctor --verbose --fix

See Also: mcpcheck ping, mcpcheck login`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

// doctorOutput is how the report is printed.
type doctorOutput int

const (
	outputProblems doctorOutput = iota
	outputVerbose
	outputQuiet
	outputJSON
)

// doctorOutputMode resolves --json, --quiet and --verbose into one mode.
func doctorOutputMode() (doctorOutput, error) {
	mode := outputProblems
	set := 0
	for _, f := range []struct {
		on   bool
		mode doctorOutput
	}{
		{doctorVerbose, outputVerbose},
		{doctorQuiet, outputQuiet},
		{doctorJSON, outputJSON},
	} {
		if f.on {
			mode = f.mode
			set++
		}
	}
	if set > 1 {
		return 0, errors.NewUserError(errors.New("--json, --quiet and --verbose cannot be combined"), "pick one output mode")
	}
	return mode, nil
}

// newDoctorRunner registers the checks for the current configuration.
func newDoctorRunner() *doctor.Runner {
	// A file that fails validation is still scanned for inline secrets.
	var env map[string]string
	if cfg != nil {
		env = cfg.Server.Env
	}
	runner := doctor.NewRunner(
		doctor.NewConfigLoadCheck(configLoadErr),
		doctor.NewConfigFileCheck(configFile()),
		doctor.NewConfigSecretsCheck(configFile(), env, secretScanner),
	)
	if cfg == nil {
		return runner
	}

	client := newClient()
	runner.Add(
		doctor.NewServerEnvCheck(&cfg.Server),
		doctor.NewServerToolsCheck(client, probeTimeout(cfg.Timeouts.Tools)),
		doctor.NewVersionToolCheck(client, probeTimeout(cfg.Timeouts.Call)),
		doctor.NewLoginCheck(
			login.NewClient(login.WithTimeout(probeTimeout(cfg.Login.Timeout))),
			cfg.Login.URL,
			login.Credentials{Email: cfg.Login.Email, Password: cfg.Login.Password},
		),
	)
	return runner
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	mode, err := doctorOutputMode()
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	runner := newDoctorRunner()
	report := runner.Run(cmd.Context())

	if doctorFix {
		fixes := runner.Fix(cmd.Context())
		if mode == outputProblems || mode == outputVerbose {
			printFixes(w, fixes)
		}
	}

	switch mode {
	case outputJSON:
		if err := printJSON(w, report); err != nil {
			return err
		}
	case outputQuiet:
	default:
		printDoctorText(w, report, mode == outputVerbose)
	}

	if code := report.ExitCode(); code != 0 {
		return errors.NewExitError(nil, code)
	}
	return nil
}

func printFixes(w io.Writer, fixes []doctor.FixResult) {
	for _, f := range fixes {
		if f.Fixed {
			fmt.Fprintf(w, "%s fixed %s: %s\n", passColor.Sprint("✓"), f.Path, f.Description)
		} else {
			fmt.Fprintf(w, "%s could not fix %s: %s\n", failColor.Sprint("✗"), f.Path, f.Description)
		}
	}
	if len(fixes) > 0 {
		fmt.Fprintln(w)
	}
}

// printDoctorText lists problems, or every result when all is set, then
// the summary line.
func printDoctorText(w io.Writer, report *doctor.Report, all bool) {
	listed := 0
	for _, r := range report.Results {
		problem := r.Status.Problem()
		if !all && !problem {
			continue
		}
		listed++

		fmt.Fprintf(w, "%s [%s] %s: %s\n", severityMark(r.Status), r.Category, r.Name, r.Message)
		if problem && r.FixHint != "" {
			fmt.Fprintf(w, "  hint: %s\n", r.FixHint)
		}
		if detail, _ := r.Details["detail"].(string); all && detail != "" {
			fmt.Fprintf(w, "  detail: %s\n", textutil.Fit(detail, rawPreview))
		}
	}
	if listed > 0 {
		fmt.Fprintln(w)
	}

	sum := report.Summary
	fmt.Fprintf(w, "Summary: %d passed, %d info, %d warnings, %d errors\n",
		sum.Passed, sum.Info, sum.Warnings, sum.Errors)
}

func severityMark(s doctor.Severity) string {
	switch s {
	case doctor.SeverityPass:
		return passColor.Sprint("✓")
	case doctor.SeverityInfo:
		return "ℹ"
	case doctor.SeverityWarning:
		return warnColor.Sprint("⚠")
	case doctor.SeverityError:
		return failColor.Sprint("✗")
	}
	return "?"
}
