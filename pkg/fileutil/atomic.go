package fileutil

import (
	"os"
	"path/filepath"

	"github.com/thoreinstein/mcpcheck/internal/errors"
)

// PrivatePerm is the mode for reports and config files. Both can carry
// tool output or credentials.
const PrivatePerm os.FileMode = 0o600

// WriteAtomic replaces path with data. The bytes go to a temp file in the
// same directory, which is synced and renamed over path, so readers see
// either the old or the new content. The parent directory must exist.
func WriteAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}

	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return errors.Wrap(err, "writing temp file")
	}
	if err := tmp.Chmod(perm); err != nil {
		return errors.Wrap(err, "setting permissions")
	}
	if err := tmp.Sync(); err != nil {
		return errors.Wrap(err, "syncing temp file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "closing temp file")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrapf(err, "replacing %s", path)
	}
	committed = true
	return nil
}

// WriteEncoded encodes v in format and writes it atomically to path.
func WriteEncoded(path, format string, v any, perm os.FileMode) error {
	data, err := Encode(format, v)
	if err != nil {
		return err
	}
	return WriteAtomic(path, data, perm)
}
