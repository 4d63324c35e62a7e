package workers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
)

type state int

const (
	pending state = iota
	running
	finished
)

var errCycle = errors.New("workers depend on each other in a cycle")

type worker struct {
	f     func(context.Context) error
	after []string
	state state
}

// Engine runs named workers concurrently. A worker added with dependencies
// starts once all of them have finished successfully. When any worker fails,
// the others are canceled and workers that haven't started never do.
type Engine struct {
	mu      sync.Mutex
	workers map[string]*worker
	order   []string
}

func NewEngine() *Engine {
	return &Engine{workers: map[string]*worker{}}
}

func (eng *Engine) Add(name string, f func(context.Context) error, after ...string) {
	eng.mu.Lock()
	defer eng.mu.Unlock()

	if _, ok := eng.workers[name]; !ok {
		eng.order = append(eng.order, name)
	}
	eng.workers[name] = &worker{f: f, after: after}
}

// Start runs every worker and returns once they have all finished or been
// skipped. It returns the first worker error.
func (eng *Engine) Start(ctx context.Context) error {
	eng.mu.Lock()
	for _, name := range eng.order {
		for _, dep := range eng.workers[name].after {
			if _, ok := eng.workers[dep]; !ok {
				eng.mu.Unlock()
				return fmt.Errorf("worker '%s' depends on unknown worker '%s'", name, dep)
			}
		}
	}
	eng.mu.Unlock()

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	g := new(errgroup.Group)
	type event struct {
		name string
		err  error
	}
	events := make(chan event)

	run := func(name string) {
		w := eng.workers[name]
		w.state = running
		f := w.f

		g.Go(func() error {
			slog.Info("start", "worker", name)
			err := f(ctx)
			if err != nil {
				slog.Error("worker failed", "worker", name, "error", err)
				cancel(err)
			} else {
				slog.Info("done", "worker", name)
			}
			events <- event{name, err}
			return err
		})
	}

	// startReady starts every pending worker whose dependencies are done.
	startReady := func() {
		eng.mu.Lock()
		defer eng.mu.Unlock()

	outer:
		for _, name := range eng.order {
			w := eng.workers[name]
			if w.state != pending {
				continue
			}
			for _, dep := range w.after {
				if eng.workers[dep].state != finished {
					continue outer
				}
			}
			run(name)
		}
	}

	// skipPending drops every worker that hasn't started, returning how many.
	skipPending := func() int {
		eng.mu.Lock()
		defer eng.mu.Unlock()

		var n int
		for _, name := range eng.order {
			if w := eng.workers[name]; w.state == pending {
				w.state = finished
				slog.Info("skipped", "worker", name)
				n++
			}
		}
		return n
	}

	remaining := len(eng.order)
	startReady()
	var failed bool
	for remaining > 0 {
		if !eng.anyRunning() {
			cancel(errCycle)
			return errCycle
		}
		ev := <-events
		remaining--

		eng.mu.Lock()
		eng.workers[ev.name].state = finished
		eng.mu.Unlock()

		if ev.err != nil && !failed {
			failed = true
			remaining -= skipPending()
		}
		if !failed {
			startReady()
		}
	}

	return g.Wait()
}

func (eng *Engine) anyRunning() bool {
	eng.mu.Lock()
	defer eng.mu.Unlock()

	for _, w := range eng.workers {
		if w.state == running {
			return true
		}
	}
	return false
}
