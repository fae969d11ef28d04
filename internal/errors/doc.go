// Package errors is mcpcheck's single errors import.
//
// It re-exports the wrapping helpers of github.com/cockroachdb/errors, so
// details such as the raw text of a malformed response travel with the
// error, and defines the probe failure sentinels:
//
//	if errors.Is(err, errors.ErrTimeout) {
//		// the server process was killed
//	}
//
// Commands return an [ExitError] to choose the process exit code and to
// add a suggestion line under the message. main prints nothing for an
// ExitError with a nil Err, which commands use once they have printed
// their own failure output.
package errors
