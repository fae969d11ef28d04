// Package main is the entry point for the mcpcheck CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/thoreinstein/mcpcheck/cmd/mcpcheck/commands"
	"github.com/thoreinstein/mcpcheck/internal/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := commands.Execute(ctx)
	stop()

	if err != nil {
		report(err)
		os.Exit(errors.ExitCode(err))
	}
}

// report prints err, its hints and any suggestion to stderr.
func report(err error) {
	var exitErr *errors.ExitError
	if errors.As(err, &exitErr) && exitErr.Silent() {
		return
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	for _, hint := range errors.GetAllHints(err) {
		fmt.Fprintf(os.Stderr, "  hint: %s\n", hint)
	}
	if exitErr != nil && exitErr.Suggestion != "" {
		fmt.Fprintf(os.Stderr, "  %s\n", exitErr.Suggestion)
	}
}
