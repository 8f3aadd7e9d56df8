// Package toolkit runs resolved WebAssembly tools against build outputs.
package toolkit

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"wasmkit/internal/child"
	"wasmkit/internal/tools"
)

// ErrToolUnavailable is returned by operations that cannot be skipped when
// their tool could not be found or installed.
var ErrToolUnavailable = errors.New("tool unavailable")

// Resolver locates a tool executable.
type Resolver interface {
	Resolve(ctx context.Context, tool tools.Tool, installPermitted bool) (tools.Resolution, error)
}

// Notifier receives user-facing progress lines.
type Notifier interface {
	Info(format string, args ...any)
}

// Options configures a Toolkit.
type Options struct {
	Notifier Notifier
	Logger   zerolog.Logger
	// Stdout and Stderr receive live subprocess output when set.
	Stdout io.Writer
	Stderr io.Writer
}

// Toolkit resolves tools and runs them one invocation at a time.
type Toolkit struct {
	resolver Resolver
	runner   child.Runner
	notify   Notifier
	log      zerolog.Logger
	stdout   io.Writer
	stderr   io.Writer
}

// New returns a Toolkit.
func New(resolver Resolver, runner child.Runner, opts Options) *Toolkit {
	notify := opts.Notifier
	if notify == nil {
		notify = discardNotifier{}
	}
	return &Toolkit{
		resolver: resolver,
		runner:   runner,
		notify:   notify,
		log:      opts.Logger,
		stdout:   opts.Stdout,
		stderr:   opts.Stderr,
	}
}

// find resolves tool for an optional step. Informational outcomes produce a
// skip notice and ok=false.
func (t *Toolkit) find(ctx context.Context, tool tools.Tool, installPermitted bool) (string, bool, error) {
	res, err := t.resolver.Resolve(ctx, tool, installPermitted)
	if err != nil {
		return "", false, err
	}
	switch res.Outcome {
	case tools.Found:
		return res.Path, true, nil
	case tools.CannotInstall:
		t.notify.Info("Skipping %s as no downloading was requested", tool)
		return "", false, nil
	case tools.PlatformNotSupported:
		t.notify.Info("Skipping %s because it is not supported on this platform", tool)
		return "", false, nil
	default:
		return "", false, fmt.Errorf("%s: unexpected resolution outcome %s", tool, res.Outcome)
	}
}

// require resolves tool for a step that cannot be skipped.
func (t *Toolkit) require(ctx context.Context, tool tools.Tool, installPermitted bool) (string, error) {
	res, err := t.resolver.Resolve(ctx, tool, installPermitted)
	if err != nil {
		return "", err
	}
	switch res.Outcome {
	case tools.Found:
		return res.Path, nil
	case tools.CannotInstall:
		return "", fmt.Errorf("%w: %s is not installed and downloading was not permitted", ErrToolUnavailable, tool)
	case tools.PlatformNotSupported:
		return "", fmt.Errorf("%w: no precompiled %s for this platform; install it manually", ErrToolUnavailable, tool)
	default:
		return "", fmt.Errorf("%s: unexpected resolution outcome %s", tool, res.Outcome)
	}
}

func (t *Toolkit) run(ctx context.Context, tool tools.Tool, bin string, args []string, dir string) error {
	_, err := t.runner.Run(ctx, child.Command{
		Path:   bin,
		Args:   args,
		Dir:    dir,
		Stdout: t.stdout,
		Stderr: t.stderr,
	}, tool.String())
	return err
}

type discardNotifier struct{}

func (discardNotifier) Info(string, ...any) {}
