package sched

import (
	"context"
	"errors"
	"testing"
)

// counter is a task that counts to n, budget units at a time.
type counter struct {
	n    int
	loop Loop
	seen []int
}

func (c *counter) RunChunk(budget int) Status {
	if c.loop.Step(c.n, &budget, func(i int) { c.seen = append(c.seen, i) }) {
		return Done
	}
	return Continue
}

func TestRunnerCompletes(t *testing.T) {
	task := &counter{n: 25}
	yields := 0
	r := &Runner{Budget: 10, Yield: func() { yields++ }, Guard: &Guard{}}

	err := r.Run(context.Background(), r.Guard.Begin(), task)
	if err != nil {
		t.Fatal(err)
	}
	if len(task.seen) != 25 {
		t.Errorf("expected 25 units got %d", len(task.seen))
	}
	for i, v := range task.seen {
		if v != i {
			t.Fatalf("expected unit %d got %d", i, v)
		}
	}
	if yields != 2 {
		t.Errorf("expected 2 yields got %d", yields)
	}
}

func TestRunnerAbortsStaleRun(t *testing.T) {
	g := &Guard{}
	task := &counter{n: 100}
	token := g.Begin()

	r := &Runner{Budget: 10, Guard: g}
	r.Yield = func() {
		if len(task.seen) == 30 {
			g.Begin() // a newer request arrives
		}
	}

	err := r.Run(context.Background(), token, task)
	if !errors.Is(err, ErrStaleRun) {
		t.Fatalf("expected ErrStaleRun got %v", err)
	}
	if len(task.seen) != 30 {
		t.Errorf("expected abort after 30 units got %d", len(task.seen))
	}
}

func TestRunnerContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &Runner{}
	err := r.Run(ctx, 0, &counter{n: 10})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled got %v", err)
	}
}

func TestGuardMonotonic(t *testing.T) {
	g := &Guard{}
	a := g.Begin()
	b := g.Begin()
	if b <= a {
		t.Errorf("tokens should increase: %d then %d", a, b)
	}
	if g.Valid(a) || !g.Valid(b) {
		t.Error("only the newest token should be valid")
	}
}

func TestChain(t *testing.T) {
	order := []string{}
	task := Chain(
		Once(func() { order = append(order, "a") }),
		&counter{n: 5},
		Once(func() { order = append(order, "b") }),
	)

	r := &Runner{Budget: 2}
	if err := r.Run(context.Background(), 0, task); err != nil {
		t.Fatal(err)
	}
	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Errorf("unexpected order %v", order)
	}
}
