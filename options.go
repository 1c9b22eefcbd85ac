package spawn

import (
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/jmgilman/go/fs/core"
)

// Stream identifies one of the child's output streams.
type Stream string

const (
	// Stdout is the child's standard output.
	Stdout Stream = "stdout"

	// Stderr is the child's standard error.
	Stderr Stream = "stderr"
)

// DefaultShell is the shell used when a caller asks for shell execution
// without naming one.
const DefaultShell = "/bin/sh"

// Options configures a single invocation.
//
// Options passed to a call are merged over the spawner's defaults: every field
// the caller sets wins, unset fields fall back to the defaults.
type Options struct {
	// Cwd is the working directory of the child.
	Cwd string `mapstructure:"cwd"`

	// ToConsole routes output to the console. When nil it resolves to true
	// unless Capture or OnStdout is set.
	ToConsole *bool `mapstructure:"toConsole"`

	// ToFile sends stdout and stderr to a log file. Missing parent
	// directories are created and any previous file is replaced. Setting it
	// turns console routing off.
	ToFile string `mapstructure:"toFile"`

	// IgnoreFail returns a Result for non-zero exit codes instead of an
	// error. Launch errors are never ignored.
	IgnoreFail *bool `mapstructure:"ignoreFail"`

	// Capture lists the streams collected into the Result.
	Capture []Stream `mapstructure:"capture"`

	// OnStdout receives every stdout chunk. Setting it pipes stdout.
	OnStdout func([]byte) `mapstructure:"onStdout"`

	// OnStderr receives every stderr chunk. Setting it pipes stderr.
	OnStderr func([]byte) `mapstructure:"onStderr"`

	// Input is written to the child's stdin right after launch, then stdin
	// is closed.
	Input string `mapstructure:"input"`

	// Shell runs the command line through the named shell with -c.
	Shell string `mapstructure:"shell"`

	// Env replaces the child's environment (KEY=VALUE). Nil inherits the
	// parent environment.
	Env []string `mapstructure:"env"`

	// Argv0 overrides the argv[0] seen by the child.
	Argv0 string `mapstructure:"argv0"`

	// Detached starts the child in its own session.
	Detached *bool `mapstructure:"detached"`

	// UID and GID set the credentials of the child.
	UID *uint32 `mapstructure:"uid"`
	GID *uint32 `mapstructure:"gid"`

	// Stdio overrides the derived stream wiring wholesale.
	Stdio *Stdio `mapstructure:"stdio"`
}

// Bool returns a pointer to v, for the boolean fields of Options.
func Bool(v bool) *bool {
	return &v
}

// Uint32 returns a pointer to v, for UID and GID.
func Uint32(v uint32) *uint32 {
	return &v
}

// captures reports whether s is in the capture set.
func (o Options) captures(s Stream) bool {
	return slices.Contains(o.Capture, s)
}

// callback returns the chunk callback registered for s.
func (o Options) callback(s Stream) func([]byte) {
	if s == Stdout {
		return o.OnStdout
	}
	return o.OnStderr
}

// toConsole reports the resolved console flag.
func (o Options) toConsole() bool {
	return isSet(o.ToConsole)
}

func (o Options) ignoreFail() bool {
	return isSet(o.IgnoreFail)
}

func (o Options) detached() bool {
	return isSet(o.Detached)
}

func isSet(b *bool) bool {
	return b != nil && *b
}

// Option is a function that configures a Spawner at creation time.
type Option func(*Spawner)

// WithDefaults returns an Option that sets the defaults every invocation is
// merged over. The value is copied; later changes by the caller have no effect.
func WithDefaults(defaults Options) Option {
	return func(s *Spawner) {
		s.defaults = defaults.clone()
	}
}

// WithFS returns an Option that sets the filesystem used to prepare log files.
func WithFS(fsys FileSystem) Option {
	return func(s *Spawner) {
		s.fs = fsys
	}
}

// WithConsole returns an Option that sets the console sinks. A nil writer
// discards that stream.
func WithConsole(stdout, stderr io.Writer) Option {
	return func(s *Spawner) {
		s.console = newConsole(stdout, stderr)
	}
}

// WithLogger returns an Option that sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Spawner) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// FileSystem is the subset of core.FS needed to prepare a log file.
type FileSystem interface {
	MkdirAll(path string, perm os.FileMode) error
	Exists(name string) (bool, error)
	Remove(name string) error
	OpenFile(name string, flag int, perm os.FileMode) (core.File, error)
}

// clone returns a copy of o that shares no slices or pointers with it.
func (o Options) clone() Options {
	c := o
	c.Capture = slices.Clone(o.Capture)
	c.Env = slices.Clone(o.Env)
	c.ToConsole = cloneBool(o.ToConsole)
	c.IgnoreFail = cloneBool(o.IgnoreFail)
	c.Detached = cloneBool(o.Detached)
	if o.UID != nil {
		c.UID = Uint32(*o.UID)
	}
	if o.GID != nil {
		c.GID = Uint32(*o.GID)
	}
	if o.Stdio != nil {
		stdio := *o.Stdio
		c.Stdio = &stdio
	}
	return c
}

func cloneBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	return Bool(*b)
}
