package pip

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/harekrishnarai/pipcheck/pkg/log"
)

// Result is the captured outcome of one package manager invocation
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Runner executes a command and captures its output. A nonzero exit status is
// reported through Result.ExitCode; an error means the command could not run.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
}

// ExecRunner runs commands as subprocesses. Arguments are handed to the
// process as they are, no shell is involved.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// pip prints progress bars and colors only for terminals, keep it that way
	cmd.Env = append(os.Environ(), "PIP_NO_COLOR=1", "PIP_PROGRESS_BAR=off")

	log.Debug("running package manager", "cmd", name, "args", args)

	err := cmd.Run()
	res := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}

	if ctx.Err() != nil {
		return res, ctx.Err()
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		err = nil
	}
	if err != nil {
		return res, fmt.Errorf("%w: %s: %v", ErrNotRunnable, name, err)
	}

	log.Debug("package manager finished", "exit", res.ExitCode, "stdout", len(res.Stdout), "stderr", len(res.Stderr))
	return res, nil
}
