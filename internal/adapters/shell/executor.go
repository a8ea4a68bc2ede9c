// Package shell executes plan commands in a pseudo-terminal.
package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/creack/pty"
	"go.trai.ch/deja/internal/core/domain"
	"go.trai.ch/deja/internal/core/ports"
	"go.trai.ch/zerr"
)

// Executor implements ports.Executor using os/exec and a pty. Running
// commands under a pty keeps their output colored and line buffered the way
// an interactive run would be.
type Executor struct {
	logger ports.Logger
}

// NewExecutor creates a pty-backed executor.
func NewExecutor(logger ports.Logger) *Executor {
	return &Executor{
		logger: logger,
	}
}

// Execute renders the invocation and runs the resulting argv in the
// invocation's directory. The command sees exactly the given environment and
// its executable is resolved against that environment's PATH, not the
// process's. Output is streamed to stdout as it is produced and mirrored to
// the log line by line; a pty merges the process streams, so everything
// arrives on stdout.
func (e *Executor) Execute(
	ctx context.Context,
	invocation *domain.Invocation,
	env []string,
	stdout, _ io.Writer,
) error {
	argv, err := domain.RenderCommand(invocation.Plan, invocation.Parameters)
	if err != nil {
		return err
	}

	if env == nil {
		// A nil exec.Cmd environment inherits the full process environment,
		// which would bypass the caller's allow listing.
		env = []string{}
	}

	outLog := &logWriter{logger: e.logger}
	proc, err := start(ctx, argv, invocation.Dir, env, stdout, outLog)
	if err != nil {
		return zerr.With(
			zerr.Wrap(errors.Join(domain.ErrExecutionFailed, err), "failed to start the command"),
			"command", argv[0])
	}

	if err := proc.wait(); err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return zerr.With(
			zerr.Wrap(errors.Join(domain.ErrExecutionFailed, err), "command failed"),
			"exit_code", exitCode)
	}

	return nil
}

// process is a started command and its output pump.
type process struct {
	cmd    *exec.Cmd
	ioDone <-chan struct{}
}

// wait blocks until the command exits and its output is drained.
func (p *process) wait() error {
	err := p.cmd.Wait()
	<-p.ioDone
	return err
}

// start launches argv in a pty and pumps its output into stdout and the log
// until the pty closes.
func start(
	ctx context.Context,
	argv []string,
	dir string,
	env []string,
	stdout io.Writer,
	log *logWriter,
) (*process, error) {
	name := argv[0]

	executable := name
	if !filepath.IsAbs(name) {
		if lp, err := lookPath(name, env); err == nil {
			executable = lp
		}
	}

	cmd := exec.CommandContext(ctx, executable, argv[1:]...) //nolint:gosec // the plan's command is user provided
	if len(cmd.Args) > 0 {
		// exec.CommandContext puts the resolved path into Args[0]; keep the
		// name as invoked.
		cmd.Args[0] = name
	}
	cmd.Dir = dir
	cmd.Env = env

	ptmx, err := pty.Start(cmd)
	if err != nil {
		return nil, err
	}

	output := io.MultiWriter(log, stdout)
	ioDone := make(chan struct{})
	go func() {
		defer close(ioDone)
		defer func() { _ = log.Close() }()
		defer func() { _ = ptmx.Close() }()
		_, _ = io.Copy(output, ptmx)
	}()

	return &process{cmd: cmd, ioDone: ioDone}, nil
}

// logWriter mirrors process output to the log one line at a time. Partial
// lines are buffered until their newline arrives; Close flushes whatever
// remains.
type logWriter struct {
	logger ports.Logger
	buf    []byte
}

func (w *logWriter) Write(p []byte) (n int, err error) {
	w.buf = append(w.buf, p...)

	for {
		line, rest, found := bytes.Cut(w.buf, []byte{'\n'})
		if !found {
			return len(p), nil
		}
		w.logLine(line)
		w.buf = rest
	}
}

func (w *logWriter) Close() error {
	if len(w.buf) > 0 {
		w.logLine(w.buf)
		w.buf = nil
	}
	return nil
}

func (w *logWriter) logLine(line []byte) {
	// A pty terminates lines with \r\n.
	w.logger.Info(strings.TrimSuffix(string(line), "\r"))
}

// lookPath resolves file against the PATH entry of env, so resolution
// honors the command's environment rather than the process's.
func lookPath(file string, env []string) (string, error) {
	searchPath := envValue(env, "PATH")
	if searchPath == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(searchPath) {
		if dir == "" {
			dir = "." // POSIX reads an empty PATH element as the current directory
		}
		candidate := filepath.Join(dir, file)
		if isExecutable(candidate) {
			return candidate, nil
		}
	}
	return "", exec.ErrNotFound
}

// envValue returns the value of key in a KEY=value environment list, or ""
// when the key is absent.
func envValue(env []string, key string) string {
	for _, kv := range env {
		if v, ok := strings.CutPrefix(kv, key+"="); ok {
			return v
		}
	}
	return ""
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	mode := info.Mode()
	return !mode.IsDir() && mode&0o111 != 0
}
