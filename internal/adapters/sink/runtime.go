package sink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/creack/pty"
	"go.trai.ch/xs/internal/core/domain"
	"go.trai.ch/xs/internal/core/ports"
	"go.trai.ch/zerr"
)

// RuntimeSink runs modules with a JavaScript runtime under a pseudo-terminal.
// The module is materialized as a temporary .mjs file that is removed after the run.
type RuntimeSink struct {
	command []string
	logger  ports.Logger
	output  io.Writer
	tempDir string
}

// RuntimeOption configures a RuntimeSink.
type RuntimeOption func(*RuntimeSink)

// WithOutput copies the runtime output to w in addition to the logger.
func WithOutput(w io.Writer) RuntimeOption {
	return func(s *RuntimeSink) {
		s.output = w
	}
}

// WithTempDir places module files in dir instead of the system temp directory.
func WithTempDir(dir string) RuntimeOption {
	return func(s *RuntimeSink) {
		s.tempDir = dir
	}
}

// NewRuntimeSink creates a sink running modules with command, for example ["node"].
// The module path is appended to the command arguments.
func NewRuntimeSink(command []string, logger ports.Logger, opts ...RuntimeOption) *RuntimeSink {
	s := &RuntimeSink{command: command, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Execute writes the annotated module to a temp file and runs it.
func (s *RuntimeSink) Execute(ctx context.Context, module domain.Module) error {
	if len(s.command) == 0 {
		return fmt.Errorf("%w: %w", domain.ErrExecution, domain.ErrRuntimeNotConfigured)
	}

	path, err := s.materialize(module)
	if err != nil {
		return zerr.With(fmt.Errorf("%w: %w", domain.ErrExecution, err), "module", module.SourceURL)
	}
	defer func() {
		_ = os.Remove(path)
	}()

	args := append(append([]string{}, s.command[1:]...), path)
	cmd := exec.CommandContext(ctx, s.command[0], args...) //nolint:gosec // runtime command is configured by the user
	cmd.Env = os.Environ()

	if err := s.run(cmd); err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		execErr := zerr.With(fmt.Errorf("%w: %w", domain.ErrExecution, err), "module", module.SourceURL)
		return zerr.With(execErr, "exit_code", exitCode)
	}
	return nil
}

func (s *RuntimeSink) materialize(module domain.Module) (string, error) {
	f, err := os.CreateTemp(s.tempDir, "xs-*.mjs")
	if err != nil {
		return "", err
	}
	if _, err := f.WriteString(module.Annotated()); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

// run starts cmd in a PTY and streams its merged output to the logger.
func (s *RuntimeSink) run(cmd *exec.Cmd) error {
	logOut := &logWriter{logger: s.logger}
	var out io.Writer = logOut
	if s.output != nil {
		out = io.MultiWriter(logOut, s.output)
	}

	ptmx, err := pty.Start(cmd)
	if errors.Is(err, pty.ErrUnsupported) {
		cmd.Stdout = out
		cmd.Stderr = out
		err = cmd.Run()
		_ = logOut.Close()
		return err
	}
	if err != nil {
		return zerr.Wrap(err, "failed to start pty")
	}

	ioDone := make(chan struct{})
	go func() {
		defer close(ioDone)
		defer func() { _ = ptmx.Close() }()
		defer func() { _ = logOut.Close() }()
		_, _ = io.Copy(out, ptmx)
	}()

	err = cmd.Wait()
	<-ioDone
	return err
}

// logWriter forwards complete lines to the logger.
type logWriter struct {
	logger ports.Logger
	buf    []byte
}

func (w *logWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.logLine(w.buf[:i])
		w.buf = w.buf[i+1:]
	}
	return len(p), nil
}

func (w *logWriter) Close() error {
	if len(w.buf) > 0 {
		w.logLine(w.buf)
		w.buf = nil
	}
	return nil
}

func (w *logWriter) logLine(line []byte) {
	// PTYs may introduce \r.
	w.logger.Info(strings.TrimSuffix(string(line), "\r"))
}
