// Package paths resolves where mcpcheck keeps its configuration.
//
// The package wraps github.com/adrg/xdg for cross-platform XDG Base Directory
// Specification compliance. On Linux and macOS, paths follow XDG conventions
// (~/.config).
//
//	paths.ConfigFile()  // ~/.config/mcpcheck/config.yaml
//
// Setting MCPCHECK_CONFIG_DIR replaces the config directory entirely, which
// is mostly useful for tests and for running several profiles side by side.
package paths
