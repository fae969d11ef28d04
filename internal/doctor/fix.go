package doctor

import "context"

// Fixer is implemented by checks that can repair what they found.
// CanFix and Fix are only meaningful after Run.
type Fixer interface {
	CanFix() bool
	Fix(ctx context.Context) []FixResult
}

// FixResult describes one attempted repair.
type FixResult struct {
	Path        string `json:"path"`
	Fixed       bool   `json:"fixed"`
	Description string `json:"description"`
	Error       error  `json:"-"`
}
