package framework

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/golang/glog"
)

type namedRunnable struct {
	Runnable
	name string
}

func (r *namedRunnable) Name() string {
	return r.name
}

// NamedRun attaches a name to runnable, used in logs and errors.
func NamedRun(name string, runnable Runnable) Runnable {
	return &namedRunnable{name: name, Runnable: runnable}
}

// NameOf returns the name of a Named runnable or def.
func NameOf(runnable Runnable, def string) string {
	if named, ok := runnable.(Named); ok {
		if name := named.Name(); name != "" {
			return name
		}
	}
	return def
}

type result struct {
	name string
	err  error
}

// Runner starts Runnables in the background and waits for all of them.
// A bridge daemon uses it to serve every transport at once.
type Runner struct {
	Context context.Context
	Runners []Runnable

	cancel   context.CancelFunc
	resultCh chan result
	exitCh   chan struct{}
}

// NewRunner creates a runner with a default background context.
func NewRunner() *Runner {
	return NewRunnerWith(context.Background())
}

// NewRunnerWith creates a runner whose Runnables stop with ctx.
func NewRunnerWith(ctx context.Context) *Runner {
	ctx, cancel := context.WithCancel(ctx)
	return &Runner{
		Context:  ctx,
		cancel:   cancel,
		resultCh: make(chan result, 1),
		exitCh:   make(chan struct{}),
	}
}

// HandleSignals stops the Runnables on CtrlC or SIGTERM. A second signal
// makes Wait return ErrForcedExit.
func (r *Runner) HandleSignals() *Runner {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		glog.Infof("%v: stopping", sig)
		r.Stop()
		sig = <-sigCh
		glog.Errorf("%v: force exit", sig)
		close(r.exitCh)
	}()
	return r
}

// Stop cancels the context of all Runnables.
func (r *Runner) Stop() {
	r.cancel()
}

// Go starts runners with the context of the Runner.
func (r *Runner) Go(runners ...Runnable) *Runner {
	return r.GoWith(r.Context, runners...)
}

// GoWith starts runners with ctx.
func (r *Runner) GoWith(ctx context.Context, runners ...Runnable) *Runner {
	for _, runner := range runners {
		name := NameOf(runner, fmt.Sprintf("#%d", len(r.Runners)))
		r.Runners = append(r.Runners, runner)
		go func(runner Runnable, name string) {
			glog.V(4).Infof("runner %s started", name)
			err := runner.Run(ctx)
			glog.V(4).Infof("runner %s stopped: %v", name, err)
			r.resultCh <- result{name: name, err: err}
		}(runner, name)
	}
	return r
}

// Wait waits for every started Runnable. Cancellation is not a failure;
// other errors are collected as *RunError in an *AggregatedError.
func (r *Runner) Wait() error {
	var errs AggregatedError
	for range r.Runners {
		select {
		case <-r.exitCh:
			return ErrForcedExit
		case res := <-r.resultCh:
			if res.err != nil && res.err != context.Canceled {
				errs.Add(&RunError{Name: res.name, Err: res.err})
				// one failed transport takes the rest down
				r.Stop()
			}
		}
	}
	return errs.Aggregate()
}

// WaitOrFail waits in main and exits on error.
func (r *Runner) WaitOrFail() {
	if err := r.Wait(); err != nil {
		log.Fatalln(err)
	}
}

// RunWithContextCancel runs fn which does not accept a context.
// onCancel is called when ctx is done first and must make fn return.
func RunWithContextCancel(ctx context.Context, onCancel func(), fn func() error) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- fn()
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	if onCancel != nil {
		onCancel()
	}
	<-errCh
	return ctx.Err()
}

// RunWithContext runs fn without a cancel callback.
func RunWithContext(ctx context.Context, fn func() error) error {
	return RunWithContextCancel(ctx, nil, fn)
}

// RunWithContextCloser runs fn and closes closer exactly once, either on
// cancel or after fn returns.
func RunWithContextCloser(ctx context.Context, closer io.Closer, fn func() error) error {
	var once sync.Once
	closeFn := func() {
		once.Do(func() {
			if err := closer.Close(); err != nil {
				glog.V(4).Infof("close: %v", err)
			}
		})
	}
	defer closeFn()
	return RunWithContextCancel(ctx, closeFn, fn)
}
