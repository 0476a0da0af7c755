package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"reflect"
	"syscall"

	"github.com/pkg/errors"
)

// Runner is implemented by config types that carry their own entry
// point.
type Runner interface {
	Run() error
}

// ContextRunner is a Runner that takes a context.
type ContextRunner interface {
	Run(ctx context.Context) error
}

// ExitCoder customizes the process exit code used by RunFatal.
type ExitCoder interface {
	ExitCode() int
}

// Validator is implemented by config types that check cross-field
// invariants after all layers have merged. Its error is returned to the
// caller unchanged.
type Validator interface {
	Validate() error
}

func validate(target reflect.Value) error {
	if target.CanAddr() {
		if v, ok := target.Addr().Interface().(Validator); ok {
			return v.Validate()
		}
	}
	if v, ok := target.Interface().(Validator); ok {
		return v.Validate()
	}
	return nil
}

// Result is the outcome of one parse: the merged config and any error.
type Result[T any] struct {
	Config *T
	Err    error

	builder *Builder[T]
}

// Run executes the config's Runner or ContextRunner. A help request
// prints usage and returns nil; any other parse error is returned
// without running.
func (r Result[T]) Run() error {
	return r.RunWithContext(context.Background())
}

func (r Result[T]) RunWithContext(ctx context.Context) error {
	if r.Err != nil {
		if errors.Is(r.Err, ErrHelp) {
			r.builder.WriteHelp(r.helpWriter())
			return nil
		}
		return r.Err
	}
	switch runner := interface{}(r.Config).(type) {
	case ContextRunner:
		return runner.Run(ctx)
	case Runner:
		return runner.Run()
	default:
		return errors.Errorf("config type %T does not implement Runner or ContextRunner", r.Config)
	}
}

// RunWithSigCancel is RunWithContext with a context canceled on SIGINT
// or SIGTERM. The signal handler is only installed when the config's Run
// accepts a context; a plain Runner keeps the default signal disposition.
func (r Result[T]) RunWithSigCancel() error {
	ctx, stop := r.sigCancelIfSupported(context.Background())
	defer stop()
	return r.RunWithContext(ctx)
}

// RunFatal runs and then exits the process: 0 on success, and on error
// it prints the error first. An ExitCoder error chooses the exit code;
// anything else exits 1.
func (r Result[T]) RunFatal() {
	r.runFatal(context.Background())
}

func (r Result[T]) RunFatalWithContext(ctx context.Context) {
	r.runFatal(ctx)
}

func (r Result[T]) RunFatalWithSigCancel() {
	ctx, stop := r.sigCancelIfSupported(context.Background())
	defer stop()
	r.runFatal(ctx)
}

// sigCancelIfSupported wraps ctx with signal cancellation only for
// configs whose Run accepts a context. A Runner without one could never
// observe the cancellation, so replacing the default SIGINT/SIGTERM
// disposition would just make the process uninterruptible.
func (r Result[T]) sigCancelIfSupported(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := interface{}(r.Config).(ContextRunner); !ok {
		return ctx, func() {}
	}
	return ContextWithSigCancel(ctx)
}

// osExit is swapped out by tests.
var osExit = os.Exit

func (r Result[T]) runFatal(ctx context.Context) {
	err := r.RunWithContext(ctx)
	if err == nil {
		osExit(0)
		return
	}
	fmt.Fprintf(r.errWriter(), "error: %s\n", err)
	code := 1
	var ec ExitCoder
	if errors.As(err, &ec) {
		code = ec.ExitCode()
	}
	osExit(code)
}

func (r Result[T]) errWriter() io.Writer {
	if r.builder != nil && r.builder.core.errWriter != nil {
		return r.builder.core.errWriter
	}
	return os.Stderr
}

func (r Result[T]) helpWriter() io.Writer {
	if r.builder != nil && r.builder.core.helpWriter != nil {
		return r.builder.core.helpWriter
	}
	return r.errWriter()
}

// ContextWithSigCancel returns a context canceled on SIGINT or SIGTERM.
func ContextWithSigCancel(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
}
