package mvn

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"

	srcerrors "github.com/matzehuels/srcfetch/pkg/errors"
)

// DefaultBinary is the Maven executable looked up on PATH.
const DefaultBinary = "mvn"

// waitDelay bounds how long Run waits for output pipes after the process is
// killed on context cancellation.
const waitDelay = 5 * time.Second

// Result is the captured outcome of one tool invocation.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Runner executes the external build tool.
//
// A non-zero exit is reported through Result.ExitCode with a nil error.
// Errors are reserved for failures to run the tool at all and for context
// cancellation.
type Runner interface {
	Run(ctx context.Context, args []string) (Result, error)
}

// ExecRunner implements Runner with os/exec.
type ExecRunner struct {
	Binary string // Executable name or path; DefaultBinary when empty
}

// Run executes the binary with args and waits for it to exit.
func (r ExecRunner) Run(ctx context.Context, args []string) (Result, error) {
	bin := r.Binary
	if bin == "" {
		bin = DefaultBinary
	}

	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.WaitDelay = waitDelay
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err == nil {
		return res, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		res.ExitCode = -1
		return res, ctxErr
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	res.ExitCode = -1
	return res, srcerrors.Wrap(srcerrors.ErrCodeExternalTool, err, "run %s", bin)
}

// goalArgs returns the mvn arguments for running goal against pom in batch
// mode. Batch mode keeps ANSI colours out of the output.
func goalArgs(pom, goal string) []string {
	return []string{"-B", "-f", pom, goal}
}

var _ Runner = ExecRunner{}
