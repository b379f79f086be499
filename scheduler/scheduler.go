// Package scheduler implements spec §4.7: it launches every event-driven
// source once, re-fires every cron-scheduled source at its computed next
// time, owns the lifetime of the tasks it spawns, and supports cooperative
// cancellation. Modelled on the teacher's patterns/graph executeLevel
// goroutine-plus-WaitGroup idiom, but driven by a single control loop
// instead of topological levels — there are no levels here, only an
// unbounded set of independently re-firing roots.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/senoroctopus/octopus/graph"
	"github.com/senoroctopus/octopus/providers/observability"
)

// Scheduler runs a built DAG's source roots: event-driven sources are
// launched once at startup; cron-scheduled sources are re-fired each time
// their computed next-fire time elapses. Cancellation is cooperative: tasks
// observe ctx and sink workers observe the same ctx passed to
// DAG.StartBatchWorkers.
type Scheduler struct {
	dag   *graph.DAG
	clock graph.Clock

	mu              sync.Mutex
	cancel          context.CancelFunc
	cancelRequested bool

	tasks sync.WaitGroup
}

// New builds a Scheduler for dag, using clock for all time observations
// (pass graph.NewRealClock() outside tests).
func New(dag *graph.DAG, clock graph.Clock) *Scheduler {
	return &Scheduler{dag: dag, clock: clock}
}

// Run implements spec §4.7's main loop. It returns at once for a DAG with no
// roots; otherwise it returns when ctx is cancelled or Cancel is called,
// after every in-flight task has returned. Source
// failures never abort the loop — they are caught by the supervisor and
// reported via the observability channel attached to ctx.
func (s *Scheduler) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.mu.Lock()
	s.cancel = cancel
	alreadyCancelled := s.cancelRequested
	s.mu.Unlock()
	if alreadyCancelled {
		cancel()
	}
	if len(s.dag.Roots) == 0 {
		return nil
	}

	s.dag.StartBatchWorkers(ctx, s.clock, func(n *graph.Node, err error) {
		s.reportFailure(ctx, "batch flush failed", n, err)
	})

	var eventDriven, scheduled []*graph.Node
	schedules := make(map[string]cron.Schedule, len(s.dag.Roots))
	for _, src := range s.dag.Roots {
		if src.Schedule == "" {
			eventDriven = append(eventDriven, src)
			continue
		}
		sched, err := cron.ParseStandard(src.Schedule)
		if err != nil {
			return fmt.Errorf("scheduler: source %q: invalid schedule %q: %w", src.Name, src.Schedule, err)
		}
		schedules[src.Name] = sched
		scheduled = append(scheduled, src)
	}

	for _, src := range eventDriven {
		s.spawn(ctx, src)
	}

	nextFire := make(map[string]time.Time, len(scheduled))

	for {
		if ctx.Err() != nil {
			break
		}

		now := s.clock.Now()
		for _, src := range scheduled {
			fire, hasFire := nextFire[src.Name]
			if hasFire && !fire.After(now) {
				s.spawn(ctx, src)
				delete(nextFire, src.Name)
				hasFire = false
			}
			if !hasFire {
				nextFire[src.Name] = schedules[src.Name].Next(now)
			}
		}

		sleepFor := time.Hour
		if len(nextFire) > 0 {
			soonest := earliestFire(nextFire)
			if d := soonest.Sub(s.clock.Now()); d < sleepFor {
				sleepFor = d
			}
		}
		if sleepFor < 0 {
			sleepFor = 0
		}

		timer := s.clock.NewTimer(sleepFor)
		select {
		case <-ctx.Done():
			timer.Stop()
		case <-timer.C():
		}
	}

	s.tasks.Wait()
	return nil
}

// Cancel stops a running (or not-yet-started) scheduler. If Run is already
// executing, its internal context is cancelled immediately, unblocking the
// select in its control loop. If Run has not started yet, the cancellation
// is recorded and applied as soon as Run creates its internal context.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelRequested = true
	if s.cancel != nil {
		s.cancel()
	}
}

// spawn launches src.RunSource as a supervised task: panics and errors are
// caught and reported, never propagated out of the scheduler loop, per
// spec §4.7's log_exceptions.
func (s *Scheduler) spawn(ctx context.Context, src *graph.Node) {
	s.tasks.Add(1)
	go func() {
		defer s.tasks.Done()
		defer s.recoverPanic(ctx, src)

		if err := src.RunSource(ctx, s.clock); err != nil {
			s.reportFailure(ctx, "source task failed", src, err)
		}
	}()
}

func (s *Scheduler) recoverPanic(ctx context.Context, src *graph.Node) {
	if r := recover(); r != nil {
		s.reportFailure(ctx, "source task panicked", src, fmt.Errorf("panic: %v", r))
	}
}

func (s *Scheduler) reportFailure(ctx context.Context, msg string, n *graph.Node, err error) {
	if provider := observability.ObserverFromContext(ctx); provider != nil {
		provider.Error(ctx, msg,
			observability.String("node", n.Name),
			observability.Error(err),
		)
	}
}

func earliestFire(nextFire map[string]time.Time) time.Time {
	var earliest time.Time
	first := true
	for _, t := range nextFire {
		if first || t.Before(earliest) {
			earliest = t
			first = false
		}
	}
	return earliest
}
