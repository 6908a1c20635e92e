package executor

import (
	"bytes"
	"context"
	"errors"
	"os/exec"

	kilnerrors "github.com/arthur-debert/kiln/pkg/errors"
)

// RunResult holds the observable outcome of one command
type RunResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// CommandRunner executes one build command to completion. The command
// text is opaque: it is handed to the shell verbatim, never parsed.
// An error is returned only when the process could not be launched;
// a non-zero exit comes back in the result.
type CommandRunner interface {
	Run(ctx context.Context, command, dir string) (RunResult, error)
}

// ShellRunner runs commands through `sh -c`
type ShellRunner struct{}

// NewShellRunner creates the default runner
func NewShellRunner() ShellRunner {
	return ShellRunner{}
}

// Run implements CommandRunner
func (ShellRunner) Run(ctx context.Context, command, dir string) (RunResult, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := RunResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, kilnerrors.Wrapf(err, kilnerrors.ErrCommandSpawn,
			"failed to launch command: %s", command)
	}
	return result, nil
}
