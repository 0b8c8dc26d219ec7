// Package sched runs long computations in bounded chunks, yielding to the
// host between chunks & aborting runs that have been superseded.
package sched

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
)

var (
	// ErrStaleRun is returned when a newer run has started since this one began.
	// Callers should treat it as a silent abort.
	ErrStaleRun = fmt.Errorf("run superseded by a newer request")
)

// Status of a task after one chunk.
type Status int

const (
	Continue Status = iota
	Done
)

// DefaultBudget is the number of work units a chunk may consume.
const DefaultBudget = 2000

// Task is resumable work. RunChunk does at most roughly budget units of
// work then returns, keeping its own progress so the next call resumes.
type Task interface {
	RunChunk(budget int) Status
}

// Func adapts a function to a Task.
type Func func(budget int) Status

// RunChunk calls f
func (f Func) RunChunk(budget int) Status {
	return f(budget)
}

// Once wraps a function that can't be split as a single chunk task.
func Once(fn func()) Task {
	done := false
	return Func(func(budget int) Status {
		if !done {
			fn()
			done = true
		}
		return Done
	})
}

// Chain runs tasks one after another as a single task. Each chunk runs
// at most one chunk of one task.
func Chain(tasks ...Task) Task {
	i := 0
	return Func(func(budget int) Status {
		if i < len(tasks) && tasks[i].RunChunk(budget) == Done {
			i++
		}
		if i >= len(tasks) {
			return Done
		}
		return Continue
	})
}

// Guard hands out monotonically increasing run tokens. Only the newest
// token is valid.
type Guard struct {
	token atomic.Uint64
}

// Begin starts a new run, invalidating every earlier token.
func (g *Guard) Begin() uint64 {
	return g.token.Add(1)
}

// Valid returns if token is still the newest.
func (g *Guard) Valid(token uint64) bool {
	return g.token.Load() == token
}

// Runner drives tasks chunk by chunk.
type Runner struct {
	// Budget per chunk, DefaultBudget if <= 0.
	Budget int

	// Yield is called between chunks, eg. to let a UI breathe. Optional.
	Yield func()

	Guard *Guard
	Log   *zap.Logger
}

// Run drives t to completion. Before every chunk the token is checked
// against the guard (if any) & the context for cancellation.
func (r *Runner) Run(ctx context.Context, token uint64, t Task) error {
	budget := r.Budget
	if budget <= 0 {
		budget = DefaultBudget
	}

	for chunks := 0; ; chunks++ {
		if r.Guard != nil && !r.Guard.Valid(token) {
			if r.Log != nil {
				r.Log.Debug("aborting stale run", zap.Uint64("token", token), zap.Int("chunks", chunks))
			}
			return ErrStaleRun
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if t.RunChunk(budget) == Done {
			return nil
		}
		if r.Yield != nil {
			r.Yield()
		}
	}
}

// Loop is a resumable for loop over [0, n).
type Loop struct {
	I int
}

// Step calls fn for successive indexes until n is reached or budget runs
// out, decrementing budget per call. Returns true once the loop is complete.
func (l *Loop) Step(n int, budget *int, fn func(i int)) bool {
	for ; l.I < n; l.I++ {
		if *budget <= 0 {
			return false
		}
		fn(l.I)
		*budget--
	}
	return true
}

// Reset rewinds the loop to zero.
func (l *Loop) Reset() {
	l.I = 0
}
