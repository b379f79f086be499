package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/senoroctopus/octopus/event"
	"github.com/senoroctopus/octopus/graph"
	"github.com/senoroctopus/octopus/plugin"
	"github.com/senoroctopus/octopus/stream"
)

// fakeClock mirrors graph's test fake: a manually-advanced Clock, duplicated
// here since graph's is package-private and the scheduler needs its own
// deterministic time source.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

func newFakeClock(start time.Time) *fakeClock { return &fakeClock{now: start} }

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) NewTimer(d time.Duration) graph.ClockTimer {
	f.mu.Lock()
	t := &fakeTimer{fire: f.now.Add(d), c: make(chan time.Time, 1)}
	fireNow := !t.fire.After(f.now)
	if !fireNow {
		f.timers = append(f.timers, t)
	}
	f.mu.Unlock()
	if fireNow {
		t.c <- f.Now()
	}
	return t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	now := f.now
	var due, remaining []*fakeTimer
	for _, t := range f.timers {
		if !t.fire.After(now) {
			due = append(due, t)
		} else {
			remaining = append(remaining, t)
		}
	}
	f.timers = remaining
	f.mu.Unlock()

	for _, t := range due {
		select {
		case t.c <- now:
		default:
		}
	}
}

type fakeTimer struct {
	fire time.Time
	c    chan time.Time
}

func (t *fakeTimer) C() <-chan time.Time { return t.c }
func (t *fakeTimer) Stop() bool          { return true }

func buildSchedule(t *testing.T, sourceSection map[string]any, sourcePlugin plugin.SourceCallable) *graph.DAG {
	t.Helper()
	registry := plugin.NewRegistry()
	if err := registry.Register(plugin.Plugin{ID: "src.test", Role: plugin.RoleSource, Source: sourcePlugin}); err != nil {
		t.Fatalf("registering source: %v", err)
	}
	if err := registry.Register(plugin.Plugin{
		ID:   "sink.drain",
		Role: plugin.RoleSink,
		Sink: func(ctx context.Context, upstream stream.Stream, config map[string]any) error {
			return stream.Drain(upstream)
		},
	}); err != nil {
		t.Fatalf("registering sink: %v", err)
	}

	section := map[string]any{"plugin": "src.test", "flow": "-> snk"}
	for k, v := range sourceSection {
		section[k] = v
	}
	config := map[string]map[string]any{
		"src": section,
		"snk": {"plugin": "sink.drain", "flow": "src ->"},
	}
	dag, err := graph.Build(config, registry)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return dag
}

// TestScheduler_EmptyDAGReturnsImmediately covers spec §8's boundary
// behaviour: a scheduler with no roots returns promptly without error.
func TestScheduler_EmptyDAGReturnsImmediately(t *testing.T) {
	sched := New(&graph.DAG{}, newFakeClock(time.Unix(0, 0).UTC()))

	done := make(chan error, 1)
	go func() { done <- sched.Run(context.Background()) }()

	sched.Cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not return for an empty DAG")
	}
}

// TestScheduler_EventDrivenSourceRunsOnce checks that an unscheduled source
// is launched exactly once at startup, never re-fired.
func TestScheduler_EventDrivenSourceRunsOnce(t *testing.T) {
	var runs int32
	dag := buildSchedule(t, nil, func(ctx context.Context, config map[string]any) (stream.Stream, error) {
		atomic.AddInt32(&runs, 1)
		return stream.FromSlice([]event.Event{event.New("a", 1)}), nil
	})

	clock := newFakeClock(time.Unix(0, 0).UTC())
	sched := New(dag, clock)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sched.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not return after cancellation")
	}

	if got := atomic.LoadInt32(&runs); got != 1 {
		t.Fatalf("event-driven source ran %d times, want 1", got)
	}
}

// TestScheduler_CronSourceFiresOnComputedSchedule checks that a
// cron-scheduled source fires when its next-fire time elapses, and again
// at the following computed time — not before.
func TestScheduler_CronSourceFiresOnComputedSchedule(t *testing.T) {
	fires := make(chan time.Time, 8)
	dag := buildSchedule(t, map[string]any{"schedule": "* * * * *"},
		func(ctx context.Context, config map[string]any) (stream.Stream, error) {
			fires <- time.Time{}
			return stream.FromSlice(nil), nil
		})

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := newFakeClock(start)
	sched := New(dag, clock)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- sched.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	select {
	case <-fires:
		t.Fatal("source fired before its first scheduled minute elapsed")
	default:
	}

	clock.Advance(60 * time.Second)
	select {
	case <-fires:
	case <-time.After(2 * time.Second):
		t.Fatal("source did not fire at its first scheduled minute")
	}

	clock.Advance(60 * time.Second)
	select {
	case <-fires:
	case <-time.After(2 * time.Second):
		t.Fatal("source did not fire at its second scheduled minute")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not return after cancellation")
	}
}

// TestScheduler_CancelStopsTheLoopPromptly checks that Cancel unblocks a
// scheduler that would otherwise be sleeping for up to an hour with no
// scheduled sources due.
func TestScheduler_CancelStopsTheLoopPromptly(t *testing.T) {
	dag := buildSchedule(t, map[string]any{"schedule": "0 0 1 1 *"}, // once a year
		func(ctx context.Context, config map[string]any) (stream.Stream, error) {
			return stream.FromSlice(nil), nil
		})

	clock := newFakeClock(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	sched := New(dag, clock)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sched.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not return promptly after cancellation while sleeping")
	}
}
