// Package spawn runs external commands and returns once they terminate,
// routing their output to the console, capture buffers, a log file, or
// callbacks.
//
// The package wraps the standard library's os/exec with a single call that
// yields either a Result or an error. The Spawner type implements the Runner
// interface; code that launches processes should accept a Runner so tests can
// substitute the generated mock in the mocks package.
//
// # Basic Usage
//
// Run a command. With no capture or callback requested, output goes straight
// to the console and the command line is announced first:
//
//	result, err := spawn.Spawn(ctx, "echo", []string{"hello world"})
//	// >>> Will execute: echo hello world
//	// hello world
//	fmt.Println(result.ExitCode) // 0
//
// # Call Shapes
//
// After the command, Spawn and Start accept optional args followed by optional
// Options:
//
//	spawn.Spawn(ctx, "ls")
//	spawn.Spawn(ctx, "ls", []string{"-la"})
//	spawn.Spawn(ctx, "pwd", spawn.Options{Cwd: "/tmp"})
//	spawn.Spawn(ctx, "ls", []string{"-la"}, spawn.Options{Cwd: "/tmp"})
//
// Resolve performs the same normalization without running anything.
//
// # Output Routing
//
// Each of stdout and stderr is routed independently:
//
//   - ToFile sends both streams to one log file. Parent directories are
//     created and any previous file is replaced. Console output is off.
//   - Otherwise, with console output on and neither a callback nor capture
//     for the stream, the child writes directly to the console.
//   - Otherwise the stream is piped and every chunk is delivered to the
//     callback, the capture buffer, and the console, each when active.
//
// Console output defaults on unless Capture or OnStdout is set:
//
//	result, err := spawn.Spawn(ctx, "echo", []string{"hello world"},
//		spawn.Options{Capture: []spawn.Stream{spawn.Stdout}})
//	fmt.Printf("%q\n", result.Stdout) // "hello world\n"
//
// Capture and console output combine when ToConsole is set explicitly:
//
//	spawn.Spawn(ctx, "make", spawn.Options{
//		Capture:   []spawn.Stream{spawn.Stdout, spawn.Stderr},
//		ToConsole: spawn.Bool(true),
//	})
//
// An explicit Stdio replaces the derived wiring for all three streams:
//
//	spawn.Spawn(ctx, "vim", spawn.Options{Stdio: spawn.StdioAll(spawn.Inherit())})
//
// # Configuration
//
// A Spawner carries defaults that every invocation is merged over; the
// options given to a call win field by field:
//
//	s := spawn.New(
//		spawn.WithDefaults(spawn.Options{Env: []string{"NO_COLOR=1"}}),
//		spawn.WithLogger(logger),
//	)
//
// Defaults can be read from a YAML file with LoadDefaults, and option maps
// from other configuration systems can be decoded with ParseOptions:
//
//	opts, err := spawn.LoadDefaults(billy.NewLocal(), "/etc/myapp/spawn.yaml")
//
// # Error Handling
//
// All errors are platform errors from github.com/jmgilman/go/errors. A process
// that fails to launch or exits non-zero carries an *ExecError:
//
//	_, err := spawn.Spawn(ctx, "sh", []string{"-c", "exit 3"})
//	var execErr *spawn.ExecError
//	if errors.As(err, &execErr) {
//		fmt.Println(execErr.ExitCode) // 3
//	}
//
// IgnoreFail turns non-zero exits into a Result carrying the exit code. It
// never hides launch errors such as a missing executable.
//
// # Process Control
//
// Start returns the live process alongside its pending result:
//
//	p, err := spawn.Start(ctx, "sleep", []string{"60"})
//	if err != nil {
//		return err
//	}
//	_ = p.Signal(syscall.SIGTERM)
//	result, err := p.Wait()
//
// Cancelling ctx kills the child. Output pipes that its descendants still
// hold open are abandoned shortly afterwards.
//
// # Command Wrappers
//
// For commands that are executed frequently, create a wrapper that fixes the
// program name:
//
//	git := spawn.NewWrapper(spawn.New(), "git")
//	out, err := git.Output(ctx, "rev-parse", "HEAD")
package spawn
