// Package fileutil holds the small file helpers mcpcheck needs around its
// config file and analysis reports: bounded reads, encoding in one of the
// supported report formats, and atomic replacement of the target file.
package fileutil
