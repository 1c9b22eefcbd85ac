package spawn

import "context"

// CommandWrapper wraps a Runner to provide a command-specific interface.
// It uses a fixed program name for every call, making it convenient for
// tools that are called frequently with different arguments (e.g., git, docker).
type CommandWrapper struct {
	runner Runner
	cmd    string
	opts   Options
}

// NewWrapper creates a new CommandWrapper that runs cmd through runner.
// The runner parameter can be any implementation of the Runner interface,
// including mocks for testing.
func NewWrapper(runner Runner, cmd string) *CommandWrapper {
	return &CommandWrapper{
		runner: runner,
		cmd:    cmd,
	}
}

// WithOptions returns a copy of the wrapper whose calls carry opts.
func (w *CommandWrapper) WithOptions(opts Options) *CommandWrapper {
	return &CommandWrapper{
		runner: w.runner,
		cmd:    w.cmd,
		opts:   opts.clone(),
	}
}

// Run executes the wrapped command with the given arguments.
func (w *CommandWrapper) Run(ctx context.Context, args ...string) (*Result, error) {
	return w.runner.Spawn(ctx, w.cmd, args, w.opts)
}

// Start launches the wrapped command with the given arguments.
func (w *CommandWrapper) Start(ctx context.Context, args ...string) (*Process, error) {
	return w.runner.Start(ctx, w.cmd, args, w.opts)
}

// Output runs the wrapped command capturing stdout and returns it.
func (w *CommandWrapper) Output(ctx context.Context, args ...string) (string, error) {
	opts := w.opts.clone()
	opts.Capture = append(opts.Capture, Stdout)

	result, err := w.runner.Spawn(ctx, w.cmd, args, opts)
	if err != nil {
		return "", err
	}
	return result.Stdout, nil
}
