package analysis

import (
	"strings"
	"time"

	"github.com/thoreinstein/mcpcheck/internal/errors"
)

// ProjectDirPlaceholder is replaced with the project directory in string
// arguments by Plan.Expand.
const ProjectDirPlaceholder = "${project_dir}"

// DefaultStepTimeout applies to steps that do not set a timeout.
const DefaultStepTimeout = 30 * time.Second

// Step is one tool call in a plan.
type Step struct {
	// Name keys the step's result in the report. Defaults to Tool.
	Name      string         `mapstructure:"name" yaml:"name" json:"name"`
	Tool      string         `mapstructure:"tool" yaml:"tool" json:"tool"`
	Arguments map[string]any `mapstructure:"arguments" yaml:"arguments,omitempty" json:"arguments,omitempty"`
	Timeout   time.Duration  `mapstructure:"timeout" yaml:"timeout" json:"timeout"`
}

// Key returns the name the step is reported under.
func (s Step) Key() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Tool
}

// EffectiveTimeout returns the step timeout, or DefaultStepTimeout when unset.
func (s Step) EffectiveTimeout() time.Duration {
	if s.Timeout > 0 {
		return s.Timeout
	}
	return DefaultStepTimeout
}

// Plan is an ordered list of steps.
type Plan []Step

// Validate checks that every step names a tool and that step keys are unique.
func (p Plan) Validate() error {
	if len(p) == 0 {
		return errors.New("analysis plan has no steps")
	}
	seen := make(map[string]int, len(p))
	for i, s := range p {
		if strings.TrimSpace(s.Tool) == "" {
			return errors.Newf("step %d: tool is required", i+1)
		}
		if s.Timeout < 0 {
			return errors.Newf("step %q: timeout must not be negative", s.Key())
		}
		if prev, ok := seen[s.Key()]; ok {
			return errors.Newf("step %d: name %q already used by step %d", i+1, s.Key(), prev)
		}
		seen[s.Key()] = i + 1
	}
	return nil
}

// Expand returns a copy of the plan with ProjectDirPlaceholder replaced by
// projectDir in every string argument, including nested ones.
func (p Plan) Expand(projectDir string) Plan {
	r := strings.NewReplacer(ProjectDirPlaceholder, projectDir)
	out := make(Plan, len(p))
	for i, s := range p {
		s.Arguments = expandMap(r, s.Arguments)
		out[i] = s
	}
	return out
}

func expandMap(r *strings.Replacer, m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = expandValue(r, v)
	}
	return out
}

func expandValue(r *strings.Replacer, v any) any {
	switch t := v.(type) {
	case string:
		return r.Replace(t)
	case map[string]any:
		return expandMap(r, t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = expandValue(r, item)
		}
		return out
	case []string:
		out := make([]string, len(t))
		for i, item := range t {
			out[i] = r.Replace(item)
		}
		return out
	default:
		return v
	}
}

// DefaultPlan returns the built-in five step review: a version check, a
// broad overview, a deep architecture pass, a code review, and an
// improvement plan.
func DefaultPlan() Plan {
	return Plan{
		{
			Name:      "version",
			Tool:      "version",
			Arguments: map[string]any{},
			Timeout:   15 * time.Second,
		},
		{
			Name: "chat",
			Tool: "chat",
			Arguments: map[string]any{
				"prompt": `Give a complete overview of the project at ${project_dir}.

Cover:
1. Overall architecture and technology stack
2. How the code is organized
3. Whether the technology choices fit the problem
4. Strengths and distinguishing features

Keep the report concise but complete.`,
				"working_directory": ProjectDirPlaceholder,
			},
			Timeout: 60 * time.Second,
		},
		{
			Name: "thinkdeep",
			Tool: "thinkdeep",
			Arguments: map[string]any{
				"prompt": `Analyze the architecture and implementation of the project at ${project_dir} in depth.

Focus on:
1. Strengths and weaknesses of the frontend and backend architecture
2. Deployment and hosting model
3. Internationalization approach, if any
4. Data storage design
5. Performance and scalability

Provide concrete technical insights and improvement suggestions.`,
				"working_directory": ProjectDirPlaceholder,
			},
			Timeout: 90 * time.Second,
		},
		{
			Name: "codereview",
			Tool: "codereview",
			Arguments: map[string]any{
				"target": ProjectDirPlaceholder,
				"focus":  "architecture,performance,security,maintainability",
				"depth":  "comprehensive",
			},
			Timeout: 60 * time.Second,
		},
		{
			Name: "planner",
			Tool: "planner",
			Arguments: map[string]any{
				"prompt": `Based on an analysis of the project at ${project_dir}, draft a detailed improvement plan.

Include:
1. Short-term goals (1-2 months)
2. Mid-term improvements (3-6 months)
3. Long-term direction (6+ months)
4. Priorities and implementation order
5. Resource estimates

Make every item actionable.`,
				"working_directory": ProjectDirPlaceholder,
				"scope":             "comprehensive",
			},
			Timeout: 90 * time.Second,
		},
	}
}
