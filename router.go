package spawn

import (
	"io"
	"os"
	"path/filepath"

	"github.com/jmgilman/go/fs/core"
)

// streamRoute is the wiring of one output stream: the disposition handed to
// the OS and, when piped, the destinations each chunk is delivered to.
type streamRoute struct {
	stream      Stream
	disposition Disposition

	// toConsole is set when the stream goes straight to the console sink.
	toConsole bool

	callback func([]byte)
	capture  *captureBuffer
	console  io.Writer
}

// routing is the full stdio plan of one invocation.
type routing struct {
	stdin  Disposition
	stdout streamRoute
	stderr streamRoute

	// file is the prepared log file backing both streams, if any.
	file core.File

	// banner is set when the command line is announced on the console.
	banner bool
}

// routeStreams derives the stdio plan for req. The log file, when requested,
// is prepared before anything else so a failure stops the invocation before
// a process exists.
func routeStreams(req Request, fsys FileSystem, con console) (*routing, error) {
	opts := req.Options
	rt := &routing{stdin: Ignore()}

	if opts.ToFile != "" {
		f, err := prepareFile(fsys, opts.ToFile)
		if err != nil {
			return nil, err
		}
		rt.file = f
	}

	rt.stdout = routeStream(Stdout, opts, rt.file, con.sink(Stdout))
	rt.stderr = routeStream(Stderr, opts, rt.file, con.sink(Stderr))
	rt.banner = rt.stdout.toConsole

	if opts.Input != "" {
		rt.stdin = Pipe()
	}

	if opts.Stdio != nil {
		rt.stdin = opts.Stdio.Stdin
		rt.stdout.override(opts.Stdio.Stdout, opts.toConsole(), con.sink(Stdout))
		rt.stderr.override(opts.Stdio.Stderr, opts.toConsole(), con.sink(Stderr))
		rt.banner = false
	}

	return rt, nil
}

// routeStream applies the per-stream precedence: log file, then direct
// console, then pipe. Capture and callback destinations are independent of
// the disposition.
func routeStream(s Stream, opts Options, file io.Writer, con sink) streamRoute {
	rt := streamRoute{
		stream:   s,
		callback: opts.callback(s),
	}
	if opts.captures(s) {
		rt.capture = &captureBuffer{}
	}

	switch {
	case file != nil:
		rt.disposition = Writer(file)
	case opts.toConsole() && rt.callback == nil && rt.capture == nil:
		rt.disposition = Writer(con.direct())
		rt.toConsole = true
	default:
		rt.disposition = Pipe()
		if opts.toConsole() {
			rt.console = con.locked
		}
	}

	return rt
}

// override replaces the derived disposition. Chunks reach the console only
// if the override pipes the stream and console output is on.
func (r *streamRoute) override(d Disposition, toConsole bool, con sink) {
	r.disposition = d
	r.toConsole = false
	r.console = nil
	if d.IsPipe() && toConsole {
		r.console = con.locked
	}
}

// prepareFile creates the parent directories of path, removes any existing
// file, and opens a fresh one for append.
func prepareFile(fsys FileSystem, path string) (core.File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fileError(err, path, "failed to resolve log file path")
	}

	if err := fsys.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return nil, fileError(err, abs, "failed to create log file directory")
	}

	exists, err := fsys.Exists(abs)
	if err != nil {
		return nil, fileError(err, abs, "failed to check log file")
	}
	if exists {
		if err := fsys.Remove(abs); err != nil {
			return nil, fileError(err, abs, "failed to remove previous log file")
		}
	}

	f, err := fsys.OpenFile(abs, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fileError(err, abs, "failed to open log file")
	}
	return f, nil
}
