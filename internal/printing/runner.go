package printing

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultCommandTimeout bounds a single platform print tool invocation.
// Spooler submission is fast; anything slower indicates a wedged spooler.
const DefaultCommandTimeout = 30 * time.Second

// Runner executes platform print tools via os/exec with a timeout
// and captured output.
type Runner struct {
	timeout time.Duration
	logger  *zap.Logger
}

// NewRunner creates a runner with the given per-command timeout.
// A zero timeout selects DefaultCommandTimeout.
func NewRunner(timeout time.Duration, logger *zap.Logger) *Runner {
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{timeout: timeout, logger: logger}
}

// Run executes name with args and returns captured stdout and stderr.
// Failures come back as typed errors:
//   - ToolMissingError when the binary is not on PATH
//   - TimeoutError when the timeout elapses first
//   - CommandError for non-zero exits and start failures
func (r *Runner) Run(ctx context.Context, name string, args ...string) (stdout, stderr string, err error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(timeoutCtx, name, args...)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	start := time.Now()
	runErr := cmd.Run()
	duration := time.Since(start)

	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	exitCode := 0
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			// Command failed to start or other error
			exitCode = -1
		}
	}

	r.logger.Debug("command executed",
		zap.String("command", name),
		zap.Strings("args", args),
		zap.Duration("duration", duration),
		zap.Int("exit_code", exitCode),
		zap.Int("stdout_size", len(stdout)),
		zap.Int("stderr_size", len(stderr)),
	)

	if runErr == nil {
		return stdout, stderr, nil
	}

	if errors.Is(runErr, exec.ErrNotFound) {
		return stdout, stderr, &ToolMissingError{Tool: name, Err: runErr}
	}

	if timeoutCtx.Err() == context.DeadlineExceeded {
		return stdout, stderr, &TimeoutError{
			Command: commandLine(name, args),
			Timeout: r.timeout.String(),
		}
	}

	return stdout, stderr, &CommandError{
		Command:  commandLine(name, args),
		ExitCode: exitCode,
		Stderr:   stderr,
		Stdout:   stdout,
		Err:      runErr,
	}
}

func commandLine(name string, args []string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}
