package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/cockroachdb/errors"
)

const (
	// AppName names the per-user config directory.
	AppName = "mcpcheck"

	// ConfigDirEnv replaces the config directory when set.
	ConfigDirEnv = "MCPCHECK_CONFIG_DIR"

	// ConfigFileName is looked up in the config directory.
	ConfigFileName = "config.yaml"

	// ProjectConfigFileName is looked up in the working directory first.
	ProjectConfigFileName = "mcpcheck.yaml"

	// DefaultDirPerm keeps created directories private.
	DefaultDirPerm os.FileMode = 0o700
)

// ErrHomeDirNotFound is returned when $HOME cannot be determined.
var ErrHomeDirNotFound = errors.New("home directory not found")

// ConfigHome is the XDG config home: ~/.config on Linux,
// ~/Library/Application Support on macOS, %LOCALAPPDATA% on Windows.
func ConfigHome() string {
	return xdg.ConfigHome
}

// ConfigDir is $MCPCHECK_CONFIG_DIR, or <ConfigHome>/mcpcheck.
func ConfigDir() string {
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		return dir
	}
	return filepath.Join(ConfigHome(), AppName)
}

// ConfigFile is the user config file, <ConfigDir>/config.yaml.
func ConfigFile() string {
	return filepath.Join(ConfigDir(), ConfigFileName)
}

// ResolveHome returns the user's home directory.
func ResolveHome() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Mark(errors.Wrap(err, "resolving home directory"), ErrHomeDirNotFound)
	}
	return home, nil
}

// ExpandHome expands "~" and "~/..." to the home directory. Other paths,
// including "~user", are returned unchanged.
func ExpandHome(path string) (string, error) {
	rest, ok := strings.CutPrefix(path, "~")
	if !ok || (rest != "" && !strings.HasPrefix(rest, "/")) {
		return path, nil
	}
	home, err := ResolveHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, rest), nil
}

// EnsureDir creates path and its parents. A zero perm means DefaultDirPerm.
func EnsureDir(path string, perm os.FileMode) error {
	if perm == 0 {
		perm = DefaultDirPerm
	}
	return errors.Wrapf(os.MkdirAll(path, perm), "creating %s", path)
}
