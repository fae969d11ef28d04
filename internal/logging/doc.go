// Package logging builds mcpcheck's slog loggers.
//
// Logs go to stderr, apart from probe output on stdout. The text [Handler]
// colors its output on terminals and masks attribute values that look like
// credentials, so the environment handed to an MCP server can be logged at
// [LevelTrace] without leaking keys. JSON output, including the --log-file
// sink, masks the same attributes through [RedactAttr].
//
//	logger := logging.New(logging.Config{
//		Level: logging.LevelFromVerbosity(verbosity),
//		File:  f,
//	})
//	ctx = logging.NewContext(ctx, logger)
//	logging.FromContext(ctx).Info("spawning server", "command", cmd)
package logging
