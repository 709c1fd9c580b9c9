package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	header  = color.New(color.Bold, color.FgCyan)
	warning = color.New(color.FgYellow)
)

// printf prints a message with a newline.
func printf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprintf(w, format+"\n", a...)
}

// warningf prints a highlighted warning with a newline.
func warningf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	warning.Fprintf(w, "Warning: "+format+"\n", a...)
}

func headerf(format string, a ...interface{}) string {
	return header.Sprintf(format, a...)
}
