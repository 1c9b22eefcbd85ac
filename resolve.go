package spawn

import (
	"slices"
	"strings"

	"github.com/jmgilman/go/errors"
)

// Request is a fully resolved invocation: the program, its arguments, and the
// options merged over the spawner's defaults.
type Request struct {
	Command string
	Args    []string
	Options Options
}

// CommandLine returns the program and its space-joined arguments.
func (r Request) CommandLine() string {
	if len(r.Args) == 0 {
		return r.Command
	}
	return r.Command + " " + strings.Join(r.Args, " ")
}

// argv returns the program followed by its arguments.
func (r Request) argv() []string {
	return append([]string{r.Command}, r.Args...)
}

// Resolve normalizes the accepted call shapes into a Request:
//
//	Resolve(defaults, "ls")
//	Resolve(defaults, "ls", []string{"-la"})
//	Resolve(defaults, "ls", Options{Cwd: "/tmp"})
//	Resolve(defaults, "ls", []string{"-la"}, Options{Cwd: "/tmp"})
//
// A *Options is accepted wherever Options is, and a nil value is treated as
// absent. Resolve does not modify defaults or the caller's values.
func Resolve(defaults Options, command string, rest ...any) (Request, error) {
	if command == "" {
		return Request{}, errors.New(errors.CodeInvalidInput, "command must not be empty")
	}
	if len(rest) > 2 {
		return Request{}, errors.Newf(errors.CodeInvalidInput, "expected at most args and options, got %d values", len(rest))
	}

	var (
		args     []string
		opts     Options
		seenOpts bool
	)
	for i, v := range rest {
		switch x := v.(type) {
		case nil:
		case []string:
			if i != 0 {
				return Request{}, errors.New(errors.CodeInvalidInput, "args must be the first value after the command")
			}
			args = slices.Clone(x)
		case Options:
			if seenOpts {
				return Request{}, errors.New(errors.CodeInvalidInput, "options given more than once")
			}
			opts, seenOpts = x, true
		case *Options:
			if seenOpts {
				return Request{}, errors.New(errors.CodeInvalidInput, "options given more than once")
			}
			seenOpts = true
			if x != nil {
				opts = *x
			}
		default:
			return Request{}, errors.Newf(errors.CodeInvalidInput, "unsupported argument of type %T", v)
		}
	}

	merged := defaults.merge(opts)
	if err := finalize(&merged); err != nil {
		return Request{}, err
	}

	return Request{
		Command: command,
		Args:    args,
		Options: merged,
	}, nil
}

// merge overlays every field set in over onto a copy of o. A pointer field
// set to false still overrides a true default.
func (o Options) merge(over Options) Options {
	m := o.clone()
	over = over.clone()

	if over.Cwd != "" {
		m.Cwd = over.Cwd
	}
	if over.ToConsole != nil {
		m.ToConsole = over.ToConsole
	}
	if over.ToFile != "" {
		m.ToFile = over.ToFile
	}
	if over.IgnoreFail != nil {
		m.IgnoreFail = over.IgnoreFail
	}
	if len(over.Capture) > 0 {
		m.Capture = over.Capture
	}
	if over.OnStdout != nil {
		m.OnStdout = over.OnStdout
	}
	if over.OnStderr != nil {
		m.OnStderr = over.OnStderr
	}
	if over.Input != "" {
		m.Input = over.Input
	}
	if over.Shell != "" {
		m.Shell = over.Shell
	}
	if over.Env != nil {
		m.Env = over.Env
	}
	if over.Argv0 != "" {
		m.Argv0 = over.Argv0
	}
	if over.Detached != nil {
		m.Detached = over.Detached
	}
	if over.UID != nil {
		m.UID = over.UID
	}
	if over.GID != nil {
		m.GID = over.GID
	}
	if over.Stdio != nil {
		m.Stdio = over.Stdio
	}

	return m
}

// finalize applies the routing defaults to merged options.
//
// Console output defaults on only when neither stdout capture nor an OnStdout
// callback was requested; OnStderr alone does not turn it off. A log file
// always turns console output off.
func finalize(o *Options) error {
	capture, err := normalizeCapture(o.Capture)
	if err != nil {
		return err
	}
	o.Capture = capture

	if o.Stdio != nil {
		if err := o.Stdio.validate(); err != nil {
			return err
		}
	}

	if o.ToConsole == nil && len(o.Capture) == 0 && o.OnStdout == nil {
		o.ToConsole = Bool(true)
	}
	if o.ToFile != "" {
		o.ToConsole = Bool(false)
	}
	return nil
}

// normalizeCapture deduplicates the capture list into stdout, stderr order.
func normalizeCapture(capture []Stream) ([]Stream, error) {
	if len(capture) == 0 {
		return nil, nil
	}

	var out []Stream
	for _, s := range []Stream{Stdout, Stderr} {
		if slices.Contains(capture, s) {
			out = append(out, s)
		}
	}
	for _, s := range capture {
		if s != Stdout && s != Stderr {
			return nil, errors.Newf(errors.CodeInvalidInput, "unknown capture stream %q", s)
		}
	}
	return out, nil
}
