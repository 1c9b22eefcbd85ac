package spawn

import (
	"bytes"
	"io"
	"os"
	"strings"
	"sync"
)

// chunkSize is the read size used for piped streams.
const chunkSize = 32 * 1024

// syncWriter serialises writes to a writer shared by concurrent streams and
// invocations.
type syncWriter struct {
	w  io.Writer
	mu *sync.Mutex
}

// Write writes p to the underlying writer while holding the lock.
func (sw *syncWriter) Write(p []byte) (int, error) {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	n, err := sw.w.Write(p)
	if err == nil && n != len(p) {
		err = io.ErrShortWrite
	}
	return n, err
}

// sink is one console destination.
type sink struct {
	raw    io.Writer
	locked io.Writer
}

// direct returns the writer handed to the OS when a stream goes straight to
// the console. Files are passed as-is so the child inherits the descriptor.
func (s sink) direct() io.Writer {
	if _, ok := s.raw.(*os.File); ok {
		return s.raw
	}
	return s.locked
}

// console holds the parent's stdout and stderr sinks.
type console struct {
	stdout sink
	stderr sink
}

// newConsole wraps the given writers. A writer used for both streams shares
// one lock.
func newConsole(stdout, stderr io.Writer) console {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	outMu := &sync.Mutex{}
	errMu := outMu
	if !sameWriter(stdout, stderr) {
		errMu = &sync.Mutex{}
	}

	return console{
		stdout: sink{raw: stdout, locked: &syncWriter{w: stdout, mu: outMu}},
		stderr: sink{raw: stderr, locked: &syncWriter{w: stderr, mu: errMu}},
	}
}

// sameWriter compares writers whose dynamic types may not be comparable.
func sameWriter(a, b io.Writer) (same bool) {
	defer func() {
		_ = recover()
	}()
	return a == b
}

func (c console) sink(s Stream) sink {
	if s == Stdout {
		return c.stdout
	}
	return c.stderr
}

// captureBuffer accumulates the chunks of one stream in arrival order.
type captureBuffer struct {
	chunks []string
}

func (cb *captureBuffer) append(chunk []byte) {
	cb.chunks = append(cb.chunks, string(chunk))
}

// String joins the captured chunks.
func (cb *captureBuffer) String() string {
	return strings.Join(cb.chunks, "")
}

// dispatch delivers one chunk to every active destination of the route:
// callback first, then the capture buffer, then the console.
func (r *streamRoute) dispatch(chunk []byte) error {
	if r.callback != nil {
		r.callback(bytes.Clone(chunk))
	}
	if r.capture != nil {
		r.capture.append(chunk)
	}
	if r.console != nil {
		if _, err := r.console.Write(chunk); err != nil {
			return err
		}
	}
	return nil
}

// pump reads src until EOF, dispatching each chunk in order. After a
// destination fails the remaining output is drained so the child never
// blocks on a full pipe.
func (r *streamRoute) pump(src io.Reader) error {
	buf := make([]byte, chunkSize)
	for {
		n, err := src.Read(buf)
		if n > 0 {
			if derr := r.dispatch(buf[:n]); derr != nil {
				_, _ = io.Copy(io.Discard, src)
				return derr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// copyTo returns a copier that writes a whole stream to w. After a write
// fails the rest is drained so the child never blocks on a full pipe.
func copyTo(w io.Writer) func(io.Reader) error {
	return func(src io.Reader) error {
		if _, err := io.Copy(w, src); err != nil {
			_, _ = io.Copy(io.Discard, src)
			return err
		}
		return nil
	}
}
