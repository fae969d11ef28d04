// Package redact masks credentials before they reach the terminal, a log
// file, or a report.
package redact

import (
	"net/url"
	"regexp"
	"slices"
	"strings"
)

// Mask replaces values too short to keep a visible suffix.
const Mask = "********"

// Key names containing any of these, ignoring case, hold secrets.
var secretKeyMarkers = []string{"TOKEN", "KEY", "SECRET", "PASSWORD", "AUTH", "CREDENTIAL", "PRIVATE"}

var (
	// Well-known credential formats: GitHub tokens, OpenAI and Anthropic
	// keys, AWS access keys, Google API keys, JWTs and Slack tokens.
	tokenPattern = regexp.MustCompile(`^(gh[pousr]_|sk-|AKIA|AIza|eyJ|xox[abpr]-)`)

	referencePattern = regexp.MustCompile(`^\$\{[A-Za-z_][A-Za-z0-9_]*\}$`)
)

// ShouldMask reports whether a key name suggests a secret value.
func ShouldMask(key string) bool {
	upper := strings.ToUpper(key)
	return slices.ContainsFunc(secretKeyMarkers, func(m string) bool {
		return strings.Contains(upper, m)
	})
}

// ContainsTokenPrefix reports whether value starts like a known credential.
func ContainsTokenPrefix(value string) bool {
	return tokenPattern.MatchString(value)
}

// IsReference reports whether value is exactly one ${VAR} reference.
func IsReference(value string) bool {
	return referencePattern.MatchString(value)
}

// Value keeps the last four characters of value, enough to tell two
// credentials apart. Short values are replaced by Mask.
func Value(value string) string {
	if len(value) <= 4 {
		return Mask
	}
	return "****" + value[len(value)-4:]
}

// Pair masks value when its key or its content look secret. ${VAR}
// references are kept since they name a secret without holding it.
func Pair(key, value string) string {
	switch {
	case IsReference(value):
		return value
	case ShouldMask(key), ContainsTokenPrefix(value):
		return Value(value)
	}
	return value
}

// Secrets returns a masked copy of env.
func Secrets(env map[string]string) map[string]string {
	if env == nil {
		return nil
	}
	out := make(map[string]string, len(env))
	for k, v := range env {
		out[k] = Pair(k, v)
	}
	return out
}

// Environ masks a KEY=VALUE list such as exec.Cmd.Env.
func Environ(env []string) []string {
	out := make([]string, 0, len(env))
	for _, kv := range env {
		if k, v, ok := strings.Cut(kv, "="); ok {
			kv = k + "=" + Pair(k, v)
		}
		out = append(out, kv)
	}
	return out
}

// URL hides the userinfo password and the values of secret-looking query
// parameters. Unparseable input is returned unchanged.
func URL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || raw == "" {
		return raw
	}

	if u.RawQuery != "" {
		q := u.Query()
		changed := false
		for k, vs := range q {
			if !ShouldMask(k) {
				continue
			}
			for i := range vs {
				vs[i] = Value(vs[i])
			}
			changed = true
		}
		if changed {
			u.RawQuery = q.Encode()
		}
	}
	return u.Redacted()
}
