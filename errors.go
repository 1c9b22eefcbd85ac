package spawn

import (
	"context"
	"fmt"
	"io/fs"
	osexec "os/exec"
	"strings"

	"github.com/jmgilman/go/errors"
)

// ExecError describes a process that could not be launched or that exited
// with a non-zero code. It is always returned wrapped in a PlatformError;
// use errors.As to reach it.
type ExecError struct {
	// Command is the full command that was executed (including arguments)
	Command []string

	// ExitCode is the exit code returned by the command, or -1 if it never
	// started or was terminated by a signal
	ExitCode int

	// Err is the underlying error from the execution
	Err error

	// launch is set when the process was never created.
	launch bool
}

// Error implements the error interface.
func (e *ExecError) Error() string {
	line := strings.Join(e.Command, " ")
	if e.launch {
		return fmt.Sprintf("failed to start command: %s: %v", line, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("exit code %d for command: %s: %v", e.ExitCode, line, e.Err)
	}
	return fmt.Sprintf("exit code %d for command: %s", e.ExitCode, line)
}

// Unwrap returns the underlying error.
func (e *ExecError) Unwrap() error {
	return e.Err
}

// launchError reports a process the OS failed to create.
func launchError(req Request, err error) error {
	code := errors.CodeExecutionFailed
	if errors.Is(err, osexec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		code = errors.CodeNotFound
	}
	return errors.WrapWithContext(
		&ExecError{Command: req.argv(), ExitCode: -1, Err: err, launch: true},
		code,
		"failed to launch process",
		map[string]interface{}{"command": req.CommandLine()},
	)
}

// exitError reports a process that terminated with a non-zero code.
func exitError(req Request, exitCode int, err error) error {
	code := errors.CodeExecutionFailed
	if errors.Is(err, context.DeadlineExceeded) {
		code = errors.CodeTimeout
	}
	return errors.WrapWithContext(
		&ExecError{Command: req.argv(), ExitCode: exitCode, Err: err},
		code,
		"process failed",
		map[string]interface{}{"command": req.CommandLine(), "exit_code": exitCode},
	)
}

// streamError reports a failure while moving output between the child and
// its destinations.
func streamError(req Request, what string, err error) error {
	return errors.WrapWithContext(
		err,
		errors.CodeExecutionFailed,
		"failed to route "+what,
		map[string]interface{}{"command": req.CommandLine()},
	)
}

// fileError reports a log file that could not be prepared or closed.
func fileError(err error, path, message string) error {
	code := errors.CodeInternal
	if errors.Is(err, fs.ErrPermission) {
		code = errors.CodeForbidden
	}
	return errors.WrapWithContext(err, code, message, map[string]interface{}{"path": path})
}
