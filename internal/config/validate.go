package config

import (
	"net/url"
	"regexp"
	"time"

	"github.com/thoreinstein/mcpcheck/internal/errors"
	"github.com/thoreinstein/mcpcheck/pkg/fileutil"
)

// Validation errors for configuration fields.
var (
	// ErrRequired indicates a mandatory field is empty.
	ErrRequired = errors.New("required")

	// ErrNonPositive indicates a timeout that is zero or negative.
	ErrNonPositive = errors.New("must be positive")

	// ErrInvalidURL indicates a URL that is not absolute http(s).
	ErrInvalidURL = errors.New("invalid URL")

	// ErrInvalidFormat indicates an unknown report format.
	ErrInvalidFormat = errors.New("invalid format")

	// ErrInvalidEnvName indicates a server.env key that is not a valid
	// variable name.
	ErrInvalidEnvName = errors.New("invalid environment variable name")

	// ErrInvalidPlan indicates an analysis plan that cannot run.
	ErrInvalidPlan = errors.New("invalid analysis plan")
)

var envNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks a Config for validity.
// Returns nil if valid, or a slice of validation errors.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{errors.New("config is nil")}
	}

	var errs []error
	add := func(field string, value any, err error) {
		errs = append(errs, &FieldError{Field: field, Value: value, Err: err})
	}

	if cfg.Server.Command == "" {
		add("server.command", cfg.Server.Command, ErrRequired)
	}
	for k := range cfg.Server.Env {
		if !envNamePattern.MatchString(k) {
			add("server.env", k, ErrInvalidEnvName)
		}
	}

	for _, t := range []struct {
		field string
		d     time.Duration
	}{
		{"timeouts.ping", cfg.Timeouts.Ping},
		{"timeouts.tools", cfg.Timeouts.Tools},
		{"timeouts.call", cfg.Timeouts.Call},
		{"login.timeout", cfg.Login.Timeout},
	} {
		if t.d <= 0 {
			add(t.field, t.d, ErrNonPositive)
		}
	}

	if cfg.Login.URL != "" {
		if err := validateURL(cfg.Login.URL); err != nil {
			add("login.url", cfg.Login.URL, err)
		}
	}

	if !fileutil.ValidFormat(cfg.Analysis.Format) {
		add("analysis.format", cfg.Analysis.Format, ErrInvalidFormat)
	}
	if err := cfg.Analysis.Steps.Validate(); err != nil {
		add("analysis.steps", len(cfg.Analysis.Steps), errors.Mark(err, ErrInvalidPlan))
	}

	return errs
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return ErrInvalidURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrInvalidURL
	}
	if u.Host == "" {
		return ErrInvalidURL
	}
	return nil
}

// FieldError represents an error for a specific config field.
type FieldError struct {
	Field string
	Value any
	Err   error
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
