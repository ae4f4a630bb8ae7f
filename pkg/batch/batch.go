// Package batch runs one compiled query against many independent inputs on
// a bounded worker pool.
//
// A compiled query holds no per-run state, so the same *compiler.Query can
// serve every worker at once.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/sandrolain/gojunqi/pkg/compiler"
)

// Runnable is the part of *compiler.Query the runner needs.
type Runnable interface {
	Run(ctx context.Context, data interface{}, params compiler.Params) ([]interface{}, error)
}

// Result is the outcome of running the query against one input.
type Result struct {
	// Index is the position of the input in the slice passed to Run.
	Index  int
	Values []interface{}
	Err    error
}

// Runner executes queries on an ants worker pool.
type Runner struct {
	pool   *ants.Pool
	logger *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger used to report worker panics.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates a runner with the given number of workers. workers <= 0 uses
// GOMAXPROCS.
func New(workers int, opts ...Option) (*Runner, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	r := &Runner{logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	pool, err := ants.NewPool(workers, ants.WithPanicHandler(func(v any) {
		r.logger.Error("batch worker panic", "panic", v)
	}))
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	r.pool = pool
	return r, nil
}

// Workers returns the pool capacity.
func (r *Runner) Workers() int {
	return r.pool.Cap()
}

// Run executes q against every input and returns one Result per input, in
// input order. A failing input does not stop the others; its error is kept
// in its Result.
func (r *Runner) Run(ctx context.Context, q Runnable, inputs [][]interface{}, params compiler.Params) []Result {
	results := make([]Result, len(inputs))
	var wg sync.WaitGroup
	for i, input := range inputs {
		results[i].Index = i
		wg.Add(1)
		err := r.pool.Submit(func() {
			defer wg.Done()
			defer func() {
				if p := recover(); p != nil {
					results[i].Err = fmt.Errorf("input %d: panic: %v", i, p)
				}
			}()
			results[i].Values, results[i].Err = q.Run(ctx, input, params)
		})
		if err != nil {
			wg.Done()
			results[i].Err = fmt.Errorf("input %d: submit: %w", i, err)
		}
	}
	wg.Wait()
	return results
}

// Release stops the pool, waiting up to timeout for running tasks.
func (r *Runner) Release(timeout time.Duration) error {
	return r.pool.ReleaseTimeout(timeout)
}
