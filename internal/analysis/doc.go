// Package analysis runs a fixed sequence of MCP tool calls against a
// project and collects the answers into a report.
//
// A [Plan] is an ordered list of steps. Each step names a tool, the
// arguments to pass, and how long to wait for the answer. String arguments
// may reference the project directory as ${project_dir}:
//
//	plan := analysis.DefaultPlan().Expand("/src/shop")
//	report, err := analysis.NewRunner(client).Run(ctx, plan, "/src/shop")
//	path, err := report.Write(dir, fileutil.FormatJSON)
//
// Steps run one after another. A failing step is recorded in
// [Report.Failures] and the run continues with the next step.
package analysis
