// Package output provides terminal output formatting utilities for the hed
// CLI. This package is designed to have minimal dependencies to avoid import
// cycles.
package output

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// PrintError writes a red "error:" diagnostic to out, followed by a
// "caused by:" line when err is non-nil.
func PrintError(out io.Writer, msg string, err error) {
	printDiagnostic(out, color.New(color.FgRed, color.Bold), "error", msg, err)
}

// PrintWarning writes a yellow "warning:" diagnostic to out, with the same
// shape as PrintError.
func PrintWarning(out io.Writer, msg string, err error) {
	printDiagnostic(out, color.New(color.FgYellow, color.Bold), "warning", msg, err)
}

func printDiagnostic(out io.Writer, c *color.Color, label, msg string, err error) {
	title := c.SprintFunc()
	fmt.Fprintf(out, "%s %s\n", title(label+":"), msg)

	if err != nil {
		fmt.Fprintf(out, "%s %s\n", title("caused by:"), err.Error())
	}
}
