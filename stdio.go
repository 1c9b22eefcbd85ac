package spawn

import (
	"fmt"
	"io"
	"strings"

	"github.com/jmgilman/go/errors"
)

type dispositionKind int

const (
	kindPipe dispositionKind = iota
	kindInherit
	kindIgnore
	kindWriter
	kindReader
)

// Disposition is the destination assigned to one of the child's standard
// streams when it is created. The zero value is Pipe.
type Disposition struct {
	kind dispositionKind
	w    io.Writer
	r    io.Reader
}

// Pipe connects the stream to the spawner so chunks can be routed to
// callbacks, capture buffers, and the console.
func Pipe() Disposition {
	return Disposition{kind: kindPipe}
}

// Inherit connects the stream to the parent's own standard stream.
func Inherit() Disposition {
	return Disposition{kind: kindInherit}
}

// Ignore connects the stream to the null device.
func Ignore() Disposition {
	return Disposition{kind: kindIgnore}
}

// Writer sends an output stream to w.
func Writer(w io.Writer) Disposition {
	return Disposition{kind: kindWriter, w: w}
}

// Reader feeds the input stream from r.
func Reader(r io.Reader) Disposition {
	return Disposition{kind: kindReader, r: r}
}

// IsPipe reports whether d is Pipe.
func (d Disposition) IsPipe() bool {
	return d.kind == kindPipe
}

// String returns the disposition name.
func (d Disposition) String() string {
	switch d.kind {
	case kindInherit:
		return "inherit"
	case kindIgnore:
		return "ignore"
	case kindWriter:
		return "writer"
	case kindReader:
		return "reader"
	default:
		return "pipe"
	}
}

// parseDisposition maps the names accepted in option maps.
func parseDisposition(name string) (Disposition, error) {
	switch strings.ToLower(name) {
	case "pipe":
		return Pipe(), nil
	case "inherit":
		return Inherit(), nil
	case "ignore":
		return Ignore(), nil
	default:
		return Disposition{}, fmt.Errorf("unknown stdio disposition %q", name)
	}
}

// Stdio is an explicit (stdin, stdout, stderr) wiring. When set on Options it
// replaces the wiring derived from ToConsole, ToFile and Capture.
type Stdio struct {
	Stdin  Disposition
	Stdout Disposition
	Stderr Disposition
}

// StdioAll returns a Stdio using d for all three streams.
func StdioAll(d Disposition) *Stdio {
	return &Stdio{Stdin: d, Stdout: d, Stderr: d}
}

// validate rejects writers on stdin and readers on the output streams.
func (s *Stdio) validate() error {
	if s.Stdin.kind == kindWriter {
		return errors.New(errors.CodeInvalidInput, "writer cannot be used for stdin")
	}
	if s.Stdout.kind == kindReader {
		return errors.New(errors.CodeInvalidInput, "reader cannot be used for stdout")
	}
	if s.Stderr.kind == kindReader {
		return errors.New(errors.CodeInvalidInput, "reader cannot be used for stderr")
	}
	return nil
}
