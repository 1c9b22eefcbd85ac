package spawn

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jmgilman/go/fs/billy"
)

//go:generate go run github.com/matryer/moq@latest -out mocks/runner.go -pkg mocks . Runner

// Runner is the main interface for executing commands.
//
// rest accepts the call shapes documented on Resolve: optional args as a
// []string followed by optional Options.
type Runner interface {
	// Spawn runs the command and blocks until it terminates.
	Spawn(ctx context.Context, command string, rest ...any) (*Result, error)

	// Start launches the command and returns the live process. The result
	// is available from Process.Wait.
	Start(ctx context.Context, command string, rest ...any) (*Process, error)
}

// Result is the outcome of a command that ran to completion.
type Result struct {
	// ExitCode is the exit code returned by the command
	ExitCode int

	// Stdout is the captured standard output, if stdout was captured
	Stdout string

	// Stderr is the captured standard error, if stderr was captured
	Stderr string

	capturedStdout bool
	capturedStderr bool
}

// Captured reports whether s was in the capture set, which tells an empty
// capture apart from no capture.
func (r *Result) Captured(s Stream) bool {
	if s == Stdout {
		return r.capturedStdout
	}
	return r.capturedStderr
}

// Spawner is the concrete implementation of the Runner interface.
// Its defaults are fixed at creation; invocations never modify them, so a
// Spawner is safe for concurrent use.
type Spawner struct {
	defaults Options
	fs       FileSystem
	console  console
	logger   *slog.Logger
}

// New creates a new Spawner with the given options.
func New(opts ...Option) *Spawner {
	s := &Spawner{
		fs:      billy.NewLocal(),
		console: newConsole(os.Stdout, os.Stderr),
		logger:  slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Defaults returns a copy of the options every invocation is merged over.
func (s *Spawner) Defaults() Options {
	return s.defaults.clone()
}

// Spawn runs the command and blocks until it terminates.
func (s *Spawner) Spawn(ctx context.Context, command string, rest ...any) (*Result, error) {
	p, err := s.Start(ctx, command, rest...)
	if err != nil {
		return nil, err
	}
	return p.Wait()
}

// Start launches the command and returns the live process.
func (s *Spawner) Start(ctx context.Context, command string, rest ...any) (*Process, error) {
	req, err := Resolve(s.defaults, command, rest...)
	if err != nil {
		return nil, err
	}
	return s.start(ctx, req)
}

// announce prints the command line before a console-routed run.
func (s *Spawner) announce(req Request) {
	w := s.console.stdout.locked
	_, _ = fmt.Fprintln(w, ">>> Will execute: "+req.CommandLine())
	if req.Options.Cwd != "" {
		_, _ = fmt.Fprintln(w, "        from dir: "+req.Options.Cwd)
	}
}

var defaultSpawner = New()

// Spawn runs the command with the package default Spawner.
func Spawn(ctx context.Context, command string, rest ...any) (*Result, error) {
	return defaultSpawner.Spawn(ctx, command, rest...)
}

// Start launches the command with the package default Spawner.
func Start(ctx context.Context, command string, rest ...any) (*Process, error) {
	return defaultSpawner.Start(ctx, command, rest...)
}
