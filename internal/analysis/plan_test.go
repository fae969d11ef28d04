package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPlan(t *testing.T) {
	plan := DefaultPlan()
	require.NoError(t, plan.Validate())

	var keys []string
	var timeouts []time.Duration
	for _, s := range plan {
		keys = append(keys, s.Key())
		timeouts = append(timeouts, s.Timeout)
	}
	assert.Equal(t, []string{"version", "chat", "thinkdeep", "codereview", "planner"}, keys)
	assert.Equal(t, []time.Duration{
		15 * time.Second, 60 * time.Second, 90 * time.Second, 60 * time.Second, 90 * time.Second,
	}, timeouts)
}

func TestPlan_Expand(t *testing.T) {
	plan := Plan{{
		Tool: "chat",
		Arguments: map[string]any{
			"prompt":  "Review ${project_dir} and cost $5",
			"nested":  map[string]any{"path": "${project_dir}/src"},
			"list":    []any{"${project_dir}", 3},
			"strings": []string{"a", "${project_dir}"},
			"depth":   2,
		},
	}}

	got := plan.Expand("/work/shop")

	args := got[0].Arguments
	assert.Equal(t, "Review /work/shop and cost $5", args["prompt"])
	assert.Equal(t, map[string]any{"path": "/work/shop/src"}, args["nested"])
	assert.Equal(t, []any{"/work/shop", 3}, args["list"])
	assert.Equal(t, []string{"a", "/work/shop"}, args["strings"])
	assert.Equal(t, 2, args["depth"])

	// The source plan is untouched.
	assert.Equal(t, "Review ${project_dir} and cost $5", plan[0].Arguments["prompt"])
}

func TestPlan_Validate(t *testing.T) {
	tests := []struct {
		name    string
		plan    Plan
		wantErr string
	}{
		{
			name:    "empty",
			plan:    Plan{},
			wantErr: "no steps",
		},
		{
			name:    "missing tool",
			plan:    Plan{{Name: "a"}},
			wantErr: "tool is required",
		},
		{
			name:    "duplicate key",
			plan:    Plan{{Tool: "chat"}, {Name: "chat", Tool: "thinkdeep"}},
			wantErr: `name "chat" already used by step 1`,
		},
		{
			name:    "negative timeout",
			plan:    Plan{{Tool: "chat", Timeout: -time.Second}},
			wantErr: "must not be negative",
		},
		{
			name: "same tool twice with distinct names",
			plan: Plan{{Name: "first", Tool: "chat"}, {Name: "second", Tool: "chat"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.plan.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestStep_EffectiveTimeout(t *testing.T) {
	assert.Equal(t, DefaultStepTimeout, Step{}.EffectiveTimeout())
	assert.Equal(t, 5*time.Second, Step{Timeout: 5 * time.Second}.EffectiveTimeout())
}
