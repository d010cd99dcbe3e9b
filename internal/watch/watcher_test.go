package watch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/git-pkgs/mvnwatch/internal/core"
	"github.com/git-pkgs/mvnwatch/internal/metrics"
	"github.com/git-pkgs/mvnwatch/internal/notify"
	"github.com/git-pkgs/mvnwatch/internal/semver"
)

type fetchResult struct {
	vs  *core.VersionSet
	err error
}

// fakeSource replays a scripted sequence of results per coordinate,
// repeating the last one once the script is exhausted.
type fakeSource struct {
	mu      sync.Mutex
	scripts map[core.Coordinate][]fetchResult
	calls   map[core.Coordinate]int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		scripts: make(map[core.Coordinate][]fetchResult),
		calls:   make(map[core.Coordinate]int),
	}
}

func (f *fakeSource) script(c core.Coordinate, results ...fetchResult) {
	f.scripts[c] = results
}

func (f *fakeSource) FetchVersions(_ context.Context, c core.Coordinate) (*core.VersionSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	script := f.scripts[c]
	if len(script) == 0 {
		return nil, nil
	}
	i := f.calls[c]
	f.calls[c]++
	if i >= len(script) {
		i = len(script) - 1
	}
	return script[i].vs, script[i].err
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notify.Event
	err    error
}

func (r *recordingNotifier) Notify(_ context.Context, event notify.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return r.err
}

func (r *recordingNotifier) all() []notify.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Event(nil), r.events...)
}

// noSleep counts delay calls without sleeping.
func noSleep(count *int) func(context.Context, time.Duration) error {
	return func(ctx context.Context, _ time.Duration) error {
		*count++
		return nil
	}
}

// stopAfter cancels the run after n cycles by failing the n-th sleep.
func stopAfter(n int) func(context.Context, time.Duration) error {
	count := 0
	return func(ctx context.Context, _ time.Duration) error {
		count++
		if count >= n {
			return context.Canceled
		}
		return nil
	}
}

func versions(latest string, all ...string) *core.VersionSet {
	return &core.VersionSet{Latest: latest, Versions: all}
}

func TestAwait_NotifiesAfterRetry(t *testing.T) {
	c := core.Coordinate{Group: "g", Artifact: "a"}
	source := newFakeSource()
	source.script(c,
		fetchResult{vs: versions("1.0", "1.0")},
		fetchResult{vs: versions("2.0", "1.0", "2.0")},
	)

	sink := &recordingNotifier{}
	sleeps := 0
	w := New(source, sink, core.NewSeenStore(), WithSleep(noSleep(&sleeps)))

	if err := w.Await(context.Background(), c, "2.0"); err != nil {
		t.Fatalf("Await failed: %v", err)
	}

	events := sink.all()
	if len(events) != 1 {
		t.Fatalf("got %d notifications, want 1", len(events))
	}
	if events[0].Version != "2.0" || events[0].Coordinate() != "g:a" {
		t.Errorf("unexpected event: %+v", events[0])
	}
	if sleeps != 1 {
		t.Errorf("slept %d times, want exactly 1 retry delay", sleeps)
	}
}

func TestAwait_AbsentThenFound(t *testing.T) {
	c := core.Coordinate{Group: "g", Artifact: "a"}
	source := newFakeSource()
	source.script(c,
		fetchResult{},
		fetchResult{vs: versions("1.0", "1.0")},
	)

	sink := &recordingNotifier{}
	sleeps := 0
	w := New(source, sink, core.NewSeenStore(), WithSleep(noSleep(&sleeps)))

	if err := w.Await(context.Background(), c, "1.0"); err != nil {
		t.Fatalf("Await failed: %v", err)
	}
	if len(sink.all()) != 1 {
		t.Fatalf("got %d notifications, want 1", len(sink.all()))
	}
}

func TestAwait_FetchErrorPropagates(t *testing.T) {
	c := core.Coordinate{Group: "g", Artifact: "a"}
	fetchErr := &core.FetchError{Coordinate: c, Err: errors.New("boom")}
	source := newFakeSource()
	source.script(c, fetchResult{err: fetchErr})

	sink := &recordingNotifier{}
	sleeps := 0
	w := New(source, sink, core.NewSeenStore(), WithSleep(noSleep(&sleeps)))

	err := w.Await(context.Background(), c, "1.0")
	if !errors.Is(err, fetchErr) {
		t.Fatalf("Await error = %v, want the fetch error", err)
	}
	if len(sink.all()) != 0 {
		t.Error("no notification expected on fetch failure")
	}
	if sleeps != 0 {
		t.Error("await must fail immediately, not retry")
	}
}

func TestAwait_Cancelled(t *testing.T) {
	c := core.Coordinate{Group: "g", Artifact: "a"}
	source := newFakeSource()
	source.script(c, fetchResult{vs: versions("1.0", "1.0")})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := New(source, &recordingNotifier{}, core.NewSeenStore())
	err := w.Await(ctx, c, "9.9")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Await error = %v, want context.Canceled", err)
	}
}

func TestRun_IdempotentAcrossCycles(t *testing.T) {
	c := core.Coordinate{Group: "g", Artifact: "a"}
	source := newFakeSource()
	source.script(c, fetchResult{vs: versions("2.0", "1.0", "2.0")})

	sink := &recordingNotifier{}
	w := New(source, sink, core.NewSeenStore(),
		WithTargetSource(StaticTargets(Target{Coordinate: c})),
		WithSleep(stopAfter(2)),
	)

	if err := w.Run(context.Background()); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run returned %v", err)
	}

	events := sink.all()
	if len(events) != 2 {
		t.Fatalf("got %d notifications across 2 cycles, want 2", len(events))
	}
	if events[0].Version != "1.0" || events[1].Version != "2.0" {
		t.Errorf("events out of repository order: %v, %v", events[0].Version, events[1].Version)
	}
}

func TestRun_FaultIsolation(t *testing.T) {
	bad := core.Coordinate{Group: "g1", Artifact: "a1"}
	good := core.Coordinate{Group: "g2", Artifact: "a2"}

	source := newFakeSource()
	source.script(bad, fetchResult{err: &core.FetchError{Coordinate: bad, Err: errors.New("connection refused")}})
	source.script(good, fetchResult{vs: versions("1.0", "1.0")})

	sink := &recordingNotifier{}
	w := New(source, sink, core.NewSeenStore(),
		WithTargetSource(StaticTargets(Target{Coordinate: bad}, Target{Coordinate: good})),
		WithSleep(stopAfter(1)),
	)

	if err := w.Run(context.Background()); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run returned %v", err)
	}

	events := sink.all()
	if len(events) != 1 {
		t.Fatalf("got %d notifications, want 1 from the healthy coordinate", len(events))
	}
	if events[0].Coordinate() != "g2:a2" {
		t.Errorf("event from %s, want g2:a2", events[0].Coordinate())
	}
}

func TestRun_FirstCycleBaseline(t *testing.T) {
	c := core.Coordinate{Group: "g", Artifact: "a"}
	source := newFakeSource()
	source.script(c, fetchResult{vs: versions("3.0", "1.0", "2.0", "3.0")})

	sink := &recordingNotifier{}
	w := New(source, sink, core.NewSeenStore(),
		WithTargetSource(StaticTargets(Target{Coordinate: c})),
		WithSleep(stopAfter(1)),
	)

	_ = w.Run(context.Background())

	events := sink.all()
	if len(events) != 3 {
		t.Fatalf("got %d notifications on first cycle, want 3", len(events))
	}
	for i, want := range []string{"1.0", "2.0", "3.0"} {
		if events[i].Version != want {
			t.Errorf("events[%d].Version = %q, want %q", i, events[i].Version, want)
		}
	}
}

func TestRun_NotifierFailureDoesNotRenotify(t *testing.T) {
	c := core.Coordinate{Group: "g", Artifact: "a"}
	source := newFakeSource()
	source.script(c, fetchResult{vs: versions("1.0", "1.0")})

	sink := &recordingNotifier{err: errors.New("sink down")}
	w := New(source, sink, core.NewSeenStore(),
		WithTargetSource(StaticTargets(Target{Coordinate: c})),
		WithSleep(stopAfter(3)),
	)

	if err := w.Run(context.Background()); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run returned %v", err)
	}

	// The failed delivery stays marked seen, so it is attempted once.
	if got := len(sink.all()); got != 1 {
		t.Fatalf("got %d delivery attempts, want 1", got)
	}
}

func TestRun_ConstraintFilters(t *testing.T) {
	c := core.Coordinate{Group: "g", Artifact: "a"}
	source := newFakeSource()
	source.script(c, fetchResult{vs: versions("2.0.0", "1.0.0", "2.0.0", "20240115")})

	sink := &recordingNotifier{}
	w := New(source, sink, core.NewSeenStore(),
		WithTargetSource(StaticTargets(Target{
			Coordinate: c,
			Constraint: semver.MustParseConstraint(">=2.0.0"),
		})),
		WithSleep(stopAfter(1)),
	)

	_ = w.Run(context.Background())

	events := sink.all()
	if len(events) != 1 {
		t.Fatalf("got %d notifications, want 1", len(events))
	}
	if events[0].Version != "2.0.0" {
		t.Errorf("notified %q, want 2.0.0", events[0].Version)
	}
}

func TestRun_TargetsReReadEachCycle(t *testing.T) {
	first := core.Coordinate{Group: "g1", Artifact: "a1"}
	second := core.Coordinate{Group: "g2", Artifact: "a2"}

	source := newFakeSource()
	source.script(first, fetchResult{vs: versions("1.0", "1.0")})
	source.script(second, fetchResult{vs: versions("1.0", "1.0")})

	cycle := 0
	targets := TargetsFunc(func() ([]Target, error) {
		cycle++
		if cycle == 1 {
			return []Target{{Coordinate: first}}, nil
		}
		return []Target{{Coordinate: first}, {Coordinate: second}}, nil
	})

	sink := &recordingNotifier{}
	w := New(source, sink, core.NewSeenStore(),
		WithTargetSource(targets),
		WithSleep(stopAfter(2)),
	)

	_ = w.Run(context.Background())

	events := sink.all()
	if len(events) != 2 {
		t.Fatalf("got %d notifications, want 2", len(events))
	}
	seen := map[string]bool{}
	for _, e := range events {
		seen[e.Coordinate()] = true
	}
	if !seen["g1:a1"] || !seen["g2:a2"] {
		t.Errorf("missing coordinate in events: %v", seen)
	}
}

func TestRun_TargetSourceErrorSkipsCycle(t *testing.T) {
	c := core.Coordinate{Group: "g", Artifact: "a"}
	source := newFakeSource()
	source.script(c, fetchResult{vs: versions("1.0", "1.0")})

	cycle := 0
	targets := TargetsFunc(func() ([]Target, error) {
		cycle++
		if cycle == 1 {
			return nil, errors.New("config unreadable")
		}
		return []Target{{Coordinate: c}}, nil
	})

	sink := &recordingNotifier{}
	w := New(source, sink, core.NewSeenStore(),
		WithTargetSource(targets),
		WithSleep(stopAfter(2)),
	)

	if err := w.Run(context.Background()); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run returned %v", err)
	}
	if len(sink.all()) != 1 {
		t.Fatalf("got %d notifications, want 1 from the recovered cycle", len(sink.all()))
	}
}

func TestRun_SkippedCycleNotCounted(t *testing.T) {
	c := core.Coordinate{Group: "g", Artifact: "a"}
	source := newFakeSource()
	source.script(c, fetchResult{vs: versions("1.0", "1.0")})

	cycle := 0
	targets := TargetsFunc(func() ([]Target, error) {
		cycle++
		if cycle == 1 {
			return nil, errors.New("config unreadable")
		}
		return []Target{{Coordinate: c}}, nil
	})

	w := New(source, &recordingNotifier{}, core.NewSeenStore(),
		WithTargetSource(targets),
		WithSleep(stopAfter(2)),
	)

	before := testutil.ToFloat64(metrics.CyclesTotal)
	_ = w.Run(context.Background())

	// Only the second pass ran a cycle; the failed target read must
	// not count as one.
	if got := testutil.ToFloat64(metrics.CyclesTotal) - before; got != 1 {
		t.Fatalf("cycles counted = %v, want 1", got)
	}
}

func TestRun_NoTargetSource(t *testing.T) {
	w := New(newFakeSource(), &recordingNotifier{}, core.NewSeenStore())
	if err := w.Run(context.Background()); err == nil {
		t.Fatal("expected error when no target source is configured")
	}
}
