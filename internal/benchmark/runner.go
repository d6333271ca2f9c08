package benchmark

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"
)

// Clock is the time source a Runner samples around each case.
type Clock interface {
	Now() time.Time
}

// SystemClock reads time.Now, which carries a monotonic reading.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Observer is notified after each case has been timed.
type Observer func(Result)

// Runner defines the interface for running benchmark cases.
type Runner interface {
	Run(ctx context.Context, cases []Case) ([]Result, error)
}

var _ Runner = (*SequentialRunner)(nil)

// SequentialRunner times cases one after another on the calling goroutine.
type SequentialRunner struct {
	clock    Clock
	repeat   int
	out      io.Writer
	observer Observer
}

// Option configures a SequentialRunner.
type Option func(*SequentialRunner)

// WithClock replaces the system clock.
func WithClock(c Clock) Option {
	return func(r *SequentialRunner) { r.clock = c }
}

// WithRepeat sets how many times each case runs inside one timing window.
func WithRepeat(n int) Option {
	return func(r *SequentialRunner) {
		if n > 0 {
			r.repeat = n
		}
	}
}

// WithOutput sets where result lines are written as each case finishes.
func WithOutput(w io.Writer) Option {
	return func(r *SequentialRunner) { r.out = w }
}

// WithObserver registers a callback invoked with every result.
func WithObserver(fn Observer) Option {
	return func(r *SequentialRunner) { r.observer = fn }
}

func NewRunner(opts ...Option) *SequentialRunner {
	r := &SequentialRunner{clock: SystemClock{}, repeat: 1, out: io.Discard}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes each case in order and returns the measurements collected so far.
// The first failing case stops the run.
func (r *SequentialRunner) Run(ctx context.Context, cases []Case) ([]Result, error) {
	results := make([]Result, 0, len(cases))
	for _, c := range cases {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		res, err := r.runCase(c)
		if err != nil {
			return results, fmt.Errorf("benchmark %q failed: %w", c.Name, err)
		}
		results = append(results, res)

		if _, err := fmt.Fprintln(r.out, FormatLine(res)); err != nil {
			return results, fmt.Errorf("failed to write result: %w", err)
		}
		if r.observer != nil {
			r.observer(res)
		}
		slog.Debug("benchmark case finished", "name", res.Name, "seconds", res.Seconds, "iterations", res.Iterations)
	}
	return results, nil
}

func (r *SequentialRunner) runCase(c Case) (Result, error) {
	start := r.clock.Now()
	for i := 0; i < r.repeat; i++ {
		if err := c.Fn(); err != nil {
			return Result{}, err
		}
	}
	elapsed := r.clock.Now().Sub(start)

	// A wall clock stepped backwards must not produce a negative duration.
	if elapsed < 0 {
		elapsed = 0
	}
	total := elapsed.Seconds()
	return Result{
		Name:         c.Name,
		Group:        c.Group,
		Iterations:   r.repeat,
		Seconds:      total / float64(r.repeat),
		TotalSeconds: total,
	}, nil
}

// FormatLine renders a result as "<label>: <seconds>".
func FormatLine(r Result) string {
	return r.Name + ": " + FormatSeconds(r.Seconds)
}

// FormatSeconds prints seconds with the shortest exact decimal representation.
func FormatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', -1, 64)
}
