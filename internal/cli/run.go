package cli

import (
	"fmt"
	"io"
)

// Exit codes of the assetrank command.
const (
	ExitOK               = 0
	ExitError            = 1
	ExitNoRecommendation = 2
)

// Handler runs the command. The main package sets it in init so tests can
// drive the CLI in-process through Run.
var Handler func(args []string, stdout, stderr io.Writer) int

func Run(args []string, stdout, stderr io.Writer) int {
	if Handler == nil {
		fmt.Fprintln(stderr, "internal error: assetrank handler not configured")
		return ExitError
	}
	return Handler(args, stdout, stderr)
}
