package logging

import (
	"io"
	"os"

	"golang.org/x/term"
)

// IsTTY reports whether w is a terminal. Anything with an Fd method, such
// as *os.File, is checked.
func IsTTY(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}

// SupportsColor reports whether ANSI colors should be written to w.
func SupportsColor(w io.Writer) bool {
	return colorAllowed(IsTTY(w), os.LookupEnv)
}

// colorAllowed applies the environment overrides: NO_COLOR (no-color.org)
// and TERM=dumb disable color, CLICOLOR_FORCE enables it without a TTY.
func colorAllowed(tty bool, lookup func(string) (string, bool)) bool {
	if _, ok := lookup("NO_COLOR"); ok {
		return false
	}
	if term, _ := lookup("TERM"); term == "dumb" {
		return false
	}
	if force, ok := lookup("CLICOLOR_FORCE"); ok && force != "" && force != "0" {
		return true
	}
	return tty
}
