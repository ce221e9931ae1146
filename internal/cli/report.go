package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"

	"github.com/matzehuels/srcfetch/pkg/errors"
)

// Exit codes returned by [Report].
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitInterrupted = 130 // Standard shell convention for SIGINT
)

// Report prints err for the user and returns the process exit code.
//
// A missing pom.xml or repository is reported on out as
// "File not found: <path>", matching what scripts built around the tool
// expect. Interruptions print nothing. Anything else goes to errOut.
func Report(out, errOut io.Writer, err error) int {
	if err == nil {
		return ExitOK
	}
	if stderrors.Is(err, context.Canceled) {
		return ExitInterrupted
	}
	if path, ok := errors.MissingPath(err); ok {
		fmt.Fprintln(out, "File not found:", path)
		return ExitFailure
	}
	printError(errOut, "%s", errors.UserMessage(err))
	if code := errors.GetCode(err); code != "" {
		fmt.Fprintln(errOut, "  "+StyleDim.Render(err.Error()))
	}
	return ExitFailure
}
