package spawn

import (
	"context"
	"io"
	"os"
	osexec "os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/jmgilman/go/errors"
	"golang.org/x/sync/errgroup"
)

// Process is a running command. It completes exactly once, with either a
// Result or an error.
type Process struct {
	req   Request
	cmd   *osexec.Cmd
	stdin io.WriteCloser

	done   chan struct{}
	once   sync.Once
	result *Result
	err    error
}

// PID returns the process id of the child.
func (p *Process) PID() int {
	return p.cmd.Process.Pid
}

// Request returns the resolved request the process was started from.
func (p *Process) Request() Request {
	return p.req
}

// Stdin returns the child's input stream when the stdin disposition is an
// explicit Pipe and no Input was given, nil otherwise. The caller must close
// it for children that read until EOF.
func (p *Process) Stdin() io.WriteCloser {
	return p.stdin
}

// Signal sends sig to the child.
func (p *Process) Signal(sig os.Signal) error {
	return p.cmd.Process.Signal(sig)
}

// Kill terminates the child immediately.
func (p *Process) Kill() error {
	return p.cmd.Process.Kill()
}

// Done is closed once the process has terminated and its output has been
// routed.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the process completes and returns its outcome. It may be
// called any number of times.
func (p *Process) Wait() (*Result, error) {
	<-p.done
	return p.result, p.err
}

func (p *Process) complete(result *Result, err error) {
	p.once.Do(func() {
		p.result, p.err = result, err
		close(p.done)
	})
}

// cancelGrace is how long routed output may keep flowing after the context
// is done. Descendants of a killed child can hold its pipes open; once the
// grace period ends the spawner stops reading them.
const cancelGrace = 250 * time.Millisecond

// start routes the streams, launches the child, and hands the rest of the
// lifecycle to a waiter goroutine.
func (s *Spawner) start(ctx context.Context, req Request) (*Process, error) {
	rt, err := routeStreams(req, s.fs, s.console)
	if err != nil {
		return nil, err
	}

	cmd, err := s.command(ctx, req)
	if err != nil {
		_ = rt.closeFile()
		return nil, err
	}

	p := &Process{
		req:  req,
		cmd:  cmd,
		done: make(chan struct{}),
	}

	pipes, err := wireOutput(cmd, rt)
	if err != nil {
		_ = rt.closeFile()
		return nil, err
	}

	stdinPipe, err := wireStdin(cmd, rt.stdin)
	if err != nil {
		pipes.closeAll()
		_ = rt.closeFile()
		return nil, err
	}

	if rt.banner {
		s.announce(req)
	}

	if err := cmd.Start(); err != nil {
		pipes.closeAll()
		_ = rt.closeFile()
		s.logger.DebugContext(ctx, "process failed to launch", "command", req.Command, "args", req.Args, "error", err)
		return nil, launchError(req, err)
	}
	pipes.closeWriters()
	s.logger.DebugContext(ctx, "process started", "command", req.Command, "args", req.Args, "pid", cmd.Process.Pid)

	var g errgroup.Group
	for _, op := range pipes {
		g.Go(func() error {
			defer func() { _ = op.r.Close() }()
			if err := op.copy(op.r); err != nil {
				if ctx.Err() != nil && errors.Is(err, os.ErrClosed) {
					return nil
				}
				return streamError(req, op.name, err)
			}
			return nil
		})
	}

	var closers []io.Closer
	for _, op := range pipes {
		closers = append(closers, op.r)
	}
	if stdinPipe != nil {
		if req.Options.Input != "" {
			closers = append(closers, stdinPipe)
			g.Go(func() error {
				return writeInput(stdinPipe, req.Options.Input)
			})
		} else {
			p.stdin = stdinPipe
		}
	}

	stop := make(chan struct{})
	go abandonOnCancel(ctx, stop, closers)

	go func() {
		routeErr := g.Wait()
		close(stop)
		result, err := s.finish(ctx, req, rt, cmd, routeErr)
		p.complete(result, err)
	}()

	return p, nil
}

// abandonOnCancel closes the spawner's ends of the child's pipes once ctx is
// done and the grace period has passed, unless stop is closed first.
func abandonOnCancel(ctx context.Context, stop <-chan struct{}, closers []io.Closer) {
	select {
	case <-stop:
		return
	case <-ctx.Done():
	}

	timer := time.NewTimer(cancelGrace)
	defer timer.Stop()

	select {
	case <-stop:
	case <-timer.C:
		for _, c := range closers {
			_ = c.Close()
		}
	}
}

// finish waits for the child after its streams have drained and maps the
// outcome onto a Result or an error.
func (s *Spawner) finish(ctx context.Context, req Request, rt *routing, cmd *osexec.Cmd, routeErr error) (*Result, error) {
	waitErr := cmd.Wait()
	closeErr := rt.closeFile()

	exitCode := -1
	if cmd.ProcessState != nil {
		exitCode = cmd.ProcessState.ExitCode()
	}
	s.logger.DebugContext(ctx, "process exited", "command", req.Command, "pid", cmd.Process.Pid, "exit_code", exitCode)

	if routeErr != nil {
		return nil, routeErr
	}

	var exitErr *osexec.ExitError
	if waitErr != nil && !errors.As(waitErr, &exitErr) && !errors.Is(waitErr, osexec.ErrWaitDelay) {
		return nil, streamError(req, "stdin", waitErr)
	}

	if exitCode != 0 {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, exitError(req, exitCode, ctxErr)
		}
		if !req.Options.ignoreFail() {
			return nil, exitError(req, exitCode, waitErr)
		}
	}

	if closeErr != nil {
		return nil, fileError(closeErr, rt.file.Name(), "failed to close log file")
	}

	result := &Result{ExitCode: exitCode}
	if rt.stdout.capture != nil {
		result.Stdout = rt.stdout.capture.String()
		result.capturedStdout = true
	}
	if rt.stderr.capture != nil {
		result.Stderr = rt.stderr.capture.String()
		result.capturedStderr = true
	}
	return result, nil
}

// command builds the os/exec command for req.
func (s *Spawner) command(ctx context.Context, req Request) (*osexec.Cmd, error) {
	opts := req.Options

	name, args := req.Command, req.Args
	if opts.Shell != "" {
		name, args = opts.Shell, []string{"-c", req.CommandLine()}
	}

	cmd := osexec.CommandContext(ctx, name, args...)
	cmd.Dir = opts.Cwd
	cmd.Env = opts.Env
	// Bounds the copy of a Reader stdin that a descendant keeps open.
	cmd.WaitDelay = cancelGrace
	if opts.Argv0 != "" {
		cmd.Args[0] = opts.Argv0
	}

	attr, err := sysProcAttr(opts)
	if err != nil {
		return nil, err
	}
	cmd.SysProcAttr = attr

	return cmd, nil
}

// wireStdin applies the stdin disposition and returns the pipe to write to,
// if any.
func wireStdin(cmd *osexec.Cmd, d Disposition) (io.WriteCloser, error) {
	switch d.kind {
	case kindPipe:
		w, err := cmd.StdinPipe()
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "failed to create stdin pipe")
		}
		return w, nil
	case kindInherit:
		cmd.Stdin = os.Stdin
	case kindReader:
		cmd.Stdin = d.r
	case kindIgnore:
		cmd.Stdin = nil
	default:
		return nil, errors.Newf(errors.CodeInvalidInput, "invalid stdin disposition %s", d)
	}
	return nil, nil
}

// outputPipe is a pipe whose read end the spawner copies from on behalf of
// one or both output streams.
type outputPipe struct {
	name string
	r, w *os.File
	copy func(io.Reader) error
}

type outputPipes []*outputPipe

// closeWriters releases the parent's copies of the write ends once the child
// holds them.
func (ps outputPipes) closeWriters() {
	for _, p := range ps {
		_ = p.w.Close()
	}
}

func (ps outputPipes) closeAll() {
	for _, p := range ps {
		_ = p.r.Close()
		_ = p.w.Close()
	}
}

// wireOutput applies the stdout and stderr dispositions. Piped streams and
// writers that are not files get a pipe read by the spawner; a writer shared
// by both streams gets a single pipe so their output stays interleaved.
func wireOutput(cmd *osexec.Cmd, rt *routing) (outputPipes, error) {
	var pipes outputPipes
	var shared *outputPipe

	for _, route := range []*streamRoute{&rt.stdout, &rt.stderr} {
		target, parent := &cmd.Stdout, os.Stdout
		if route.stream == Stderr {
			target, parent = &cmd.Stderr, os.Stderr
		}

		d := route.disposition
		switch d.kind {
		case kindInherit:
			*target = parent
			continue
		case kindIgnore:
			*target = nil
			continue
		case kindWriter:
			if f, ok := d.w.(*os.File); ok {
				*target = f
				continue
			}
			if shared != nil && sameWriter(rt.stdout.disposition.w, d.w) {
				shared.name = "output"
				*target = shared.w
				continue
			}
		case kindPipe:
		default:
			pipes.closeAll()
			return nil, errors.Newf(errors.CodeInvalidInput, "%s cannot be used for %s", d, route.stream)
		}

		r, w, err := os.Pipe()
		if err != nil {
			pipes.closeAll()
			return nil, errors.Wrapf(err, errors.CodeInternal, "failed to create %s pipe", route.stream)
		}
		op := &outputPipe{name: string(route.stream), r: r, w: w, copy: route.pump}
		if d.kind == kindWriter {
			op.copy = copyTo(d.w)
			if route.stream == Stdout {
				shared = op
			}
		}
		pipes = append(pipes, op)
		*target = w
	}

	return pipes, nil
}

// writeInput writes the input and closes stdin. A child that exits without
// reading its input is not an error.
func writeInput(w io.WriteCloser, input string) error {
	_, err := io.WriteString(w, input)
	closeErr := w.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil || errors.Is(err, syscall.EPIPE) || errors.Is(err, os.ErrClosed) {
		return nil
	}
	return errors.Wrap(err, errors.CodeExecutionFailed, "failed to write stdin")
}

// closeFile closes the log file, if one was prepared.
func (rt *routing) closeFile() error {
	if rt.file == nil {
		return nil
	}
	return rt.file.Close()
}
