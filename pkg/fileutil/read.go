package fileutil

import (
	"fmt"
	"io"
	"os"

	"github.com/thoreinstein/mcpcheck/internal/errors"
)

// ConfigLimit bounds reads of config files.
const ConfigLimit int64 = 1 << 20

// ErrTooLarge marks reads that hit the size limit.
var ErrTooLarge = errors.New("file too large")

// TooLargeError reports which file exceeded which limit.
type TooLargeError struct {
	Path  string
	Limit int64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("%s exceeds %d bytes", e.Path, e.Limit)
}

// Is lets errors.Is match ErrTooLarge.
func (e *TooLargeError) Is(target error) bool {
	return target == ErrTooLarge
}

// ReadLimited reads path, failing with a *TooLargeError when it holds more
// than limit bytes.
func ReadLimited(path string, limit int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	if info, err := f.Stat(); err == nil && info.Size() > limit {
		return nil, &TooLargeError{Path: path, Limit: limit}
	}

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	if int64(len(data)) > limit {
		return nil, &TooLargeError{Path: path, Limit: limit}
	}
	return data, nil
}
