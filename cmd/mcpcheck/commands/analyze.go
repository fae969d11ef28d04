package commands

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpcheck/internal/analysis"
	"github.com/thoreinstein/mcpcheck/internal/errors"
	"github.com/thoreinstein/mcpcheck/internal/mcp"
	"github.com/thoreinstein/mcpcheck/internal/paths"
	"github.com/thoreinstein/mcpcheck/pkg/fileutil"
)

var (
	analyzeProject string
	analyzeOutDir  string
	analyzeFormat  string
)

func init() {
	analyzeCmd.Flags().StringVar(&analyzeProject, "project", "",
		"project directory to analyze (default: analysis.project_dir, then the current directory)")
	analyzeCmd.Flags().StringVar(&analyzeOutDir, "out-dir", "",
		"directory for the report (default: analysis.out_dir, then the project directory)")
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "",
		"report format: "+strings.Join(fileutil.Formats(), ", ")+" (default: analysis.format)")
	rootCmd.AddCommand(analyzeCmd)
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the analysis plan against a project",
	Long: `Run each step of the analysis plan as a separate tools/call request, in
order. A failing step is reported and the run continues. Successful results
and failures are written to mcp-analysis-report-<unix>.<ext>.

The ${project_dir} placeholder in step arguments is replaced with the
absolute project directory.`,
	Example: `  # Analyze the current directory
  mcpcheck analyze

  # Analyze another project and write YAML
  mcpcheck analyze --project ~/src/shop --format yaml

See Also: mcpcheck call, mcpcheck config`,
	Args: cobra.NoArgs,
	RunE: runAnalyze,
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()

	project, err := resolveProjectDir()
	if err != nil {
		return err
	}

	format := analyzeFormat
	if format == "" {
		format = cfg.Analysis.Format
	}
	if !fileutil.ValidFormat(format) {
		return errors.NewUserError(errors.Newf("unsupported format %q", format), "valid formats: "+strings.Join(fileutil.Formats(), ", "))
	}

	outDir := analyzeOutDir
	if outDir == "" {
		outDir = cfg.Analysis.OutDir
	}
	if outDir == "" {
		outDir = project
	}
	outDir, err = paths.ExpandHome(outDir)
	if err != nil {
		return errors.NewSystemError(err, "check $HOME")
	}

	plan := cfg.Analysis.Steps.Expand(project)
	if timeoutFlag > 0 {
		for i := range plan {
			plan[i].Timeout = timeoutFlag
		}
	}

	fmt.Fprintf(w, "Analyzing %s with %s\n", project, cfg.Server.Name)
	runner := analysis.NewRunner(newClient(),
		analysis.OnStepStart(func(i, total int, step analysis.Step) {
			fmt.Fprintf(w, "\n%s\n", headColor.Sprintf("[%d/%d] %s (%s)", i+1, total, step.Key(), step.Tool))
		}),
		analysis.OnStepDone(func(out analysis.Outcome) {
			if out.Failed() {
				fmt.Fprintf(w, "%s %v\n", failColor.Sprint("failed:"), out.Err)
				return
			}
			fmt.Fprintln(w, (&mcp.CallResult{Result: out.Result}).Text())
		}),
	)

	report, runErr := runner.Run(cmd.Context(), plan, project)
	if report == nil {
		return errors.NewUserError(runErr, "check analysis.steps in the config file")
	}

	if err := paths.EnsureDir(outDir, paths.DefaultDirPerm); err != nil {
		return errors.NewSystemError(err, "check that the output directory is writable")
	}
	path, err := report.Write(outDir, format)
	if err != nil {
		return errors.NewSystemError(err, "check that the output directory is writable")
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Completed %d of %d steps\n", len(report.Results), len(plan))
	for _, name := range slices.Sorted(maps.Keys(report.Failures)) {
		fmt.Fprintf(w, "  %s %s\n", warnColor.Sprint("failed:"), name)
	}
	fmt.Fprintf(w, "Report saved to %s\n", path)

	if runErr != nil {
		return errors.NewSystemError(runErr, "the partial report was saved")
	}
	if report.Failed() {
		return errors.NewExitError(nil, errors.ExitUser)
	}
	return nil
}

func resolveProjectDir() (string, error) {
	dir := analyzeProject
	if dir == "" {
		dir = cfg.Analysis.ProjectDir
	}
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", errors.NewSystemError(err, "pass --project")
		}
		dir = wd
	}

	dir, err := paths.ExpandHome(dir)
	if err != nil {
		return "", errors.NewSystemError(err, "check $HOME")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.NewSystemError(err, "pass an absolute --project path")
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return "", errors.NewUserError(errors.Newf("project directory %s not found", abs), "pass --project")
	}
	return abs, nil
}
