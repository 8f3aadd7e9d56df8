// Package child runs external tools as blocking subprocesses.
package child

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
)

// Command describes a single subprocess invocation.
type Command struct {
	Path string
	Args []string
	Dir  string
	Env  []string
	// Stdout and Stderr optionally receive a live copy of the output.
	Stdout io.Writer
	Stderr io.Writer
}

func (c Command) String() string {
	return strings.Join(append([]string{c.Path}, c.Args...), " ")
}

type Result struct {
	Stdout []byte
	Stderr []byte
}

// Runner executes a command and succeeds only on a zero exit status. label
// names the tool for error attribution.
type Runner interface {
	Run(ctx context.Context, cmd Command, label string) (Result, error)
}

// Error reports a failed subprocess. Started is false when the process never
// ran; ExitCode is -1 then, and also when a signal ended the process.
type Error struct {
	Label    string
	Command  string
	Started  bool
	ExitCode int
	Stderr   string
	Err      error
}

func (e *Error) Error() string {
	var b strings.Builder
	if !e.Started || e.ExitCode < 0 {
		fmt.Fprintf(&b, "failed to execute `%s`: %v", e.Label, e.Err)
	} else {
		fmt.Fprintf(&b, "failed to execute `%s`: exited with status %d", e.Label, e.ExitCode)
	}
	fmt.Fprintf(&b, "\n  full command: %s", e.Command)
	if e.Stderr != "" {
		fmt.Fprintf(&b, "\n  stderr: %s", e.Stderr)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// CmdRunner runs commands on the local host.
type CmdRunner struct {
	Log zerolog.Logger
}

func (r CmdRunner) Run(ctx context.Context, command Command, label string) (Result, error) {
	cmd := exec.CommandContext(ctx, command.Path, command.Args...)
	if command.Dir != "" {
		cmd.Dir = command.Dir
	}
	if len(command.Env) > 0 {
		cmd.Env = append(os.Environ(), command.Env...)
	}

	var stdoutBuf, stderrBuf bytes.Buffer

	stdoutWriter := io.Writer(&stdoutBuf)
	if command.Stdout != nil {
		stdoutWriter = io.MultiWriter(&stdoutBuf, command.Stdout)
	}
	stderrWriter := io.Writer(&stderrBuf)
	if command.Stderr != nil {
		stderrWriter = io.MultiWriter(&stderrBuf, command.Stderr)
	}

	cmd.Stdout = stdoutWriter
	cmd.Stderr = stderrWriter

	r.Log.Debug().Str("label", label).Str("command", command.String()).Msg("running")
	err := cmd.Run()
	result := Result{Stdout: stdoutBuf.Bytes(), Stderr: stderrBuf.Bytes()}
	if err == nil {
		return result, nil
	}

	runErr := &Error{
		Label:    label,
		Command:  command.String(),
		ExitCode: -1,
		Stderr:   strings.TrimSpace(stderrBuf.String()),
		Err:      err,
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		runErr.Started = true
		runErr.ExitCode = exitErr.ExitCode()
	}
	r.Log.Debug().Str("label", label).Bool("started", runErr.Started).Int("exit_code", runErr.ExitCode).Msg("command failed")
	return result, runErr
}

var _ Runner = CmdRunner{}
