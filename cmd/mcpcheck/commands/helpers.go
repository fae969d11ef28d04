package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/thoreinstein/mcpcheck/internal/errors"
)

// rawPreview caps how much raw process output is echoed.
const rawPreview = 500

var (
	passColor = color.New(color.FgGreen, color.Bold)
	failColor = color.New(color.FgRed, color.Bold)
	warnColor = color.New(color.FgYellow)
	headColor = color.New(color.FgCyan, color.Bold)
)

// printVerdict prints the closing PASSED/FAILED line of a probe.
func printVerdict(w io.Writer, name string, passed bool) {
	if passed {
		fmt.Fprintf(w, "%s %s\n", name, passColor.Sprint("PASSED"))
		return
	}
	fmt.Fprintf(w, "%s %s\n", name, failColor.Sprint("FAILED"))
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return errors.Wrap(err, "encoding JSON")
	}
	return nil
}

// printDetails prints the details attached to err, indented.
func printDetails(w io.Writer, err error) {
	for _, d := range errors.GetAllDetails(err) {
		for line := range strings.SplitSeq(strings.TrimRight(d, "\n"), "\n") {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}
}
