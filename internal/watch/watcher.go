// Package watch drives the polling loops that detect new artifact
// versions: a one-shot await of a specific version, and a continuous
// watch over many coordinates with per-coordinate failure isolation.
package watch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/git-pkgs/mvnwatch/client"
	"github.com/git-pkgs/mvnwatch/internal/core"
	"github.com/git-pkgs/mvnwatch/internal/metrics"
	"github.com/git-pkgs/mvnwatch/internal/notify"
	"github.com/git-pkgs/mvnwatch/internal/semver"
)

// DefaultInterval is the pause between poll cycles.
const DefaultInterval = time.Minute

// Source fetches the published versions for a coordinate. A nil
// VersionSet with a nil error means the artifact has no published
// metadata yet.
type Source interface {
	FetchVersions(ctx context.Context, c core.Coordinate) (*core.VersionSet, error)
}

// Target is one watched coordinate, optionally restricted to versions
// matching a semver constraint.
type Target struct {
	Coordinate core.Coordinate
	Constraint *semver.Constraint
}

// TargetSource supplies the watch list. It is consulted once per
// cycle, so changes take effect without a restart.
type TargetSource interface {
	Targets() ([]Target, error)
}

// TargetsFunc adapts a function to the TargetSource interface.
type TargetsFunc func() ([]Target, error)

func (f TargetsFunc) Targets() ([]Target, error) {
	return f()
}

// StaticTargets returns a TargetSource with a fixed watch list.
func StaticTargets(targets ...Target) TargetSource {
	return TargetsFunc(func() ([]Target, error) {
		return targets, nil
	})
}

// Logger receives diagnostic output. It must never alter control flow.
type Logger interface {
	Printf(format string, v ...any)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// Watcher polls a Source and notifies on previously-unseen versions.
type Watcher struct {
	source   Source
	notifier notify.Notifier
	seen     *core.SeenStore
	targets  TargetSource
	interval time.Duration
	sleep    func(context.Context, time.Duration) error
	log      Logger
	urls     client.URLBuilder
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithInterval sets the pause between poll cycles and await retries.
func WithInterval(d time.Duration) Option {
	return func(w *Watcher) {
		w.interval = d
	}
}

// WithTargetSource sets the watch list supplier used by Run.
func WithTargetSource(ts TargetSource) Option {
	return func(w *Watcher) {
		w.targets = ts
	}
}

// WithLogger sets the diagnostic sink.
func WithLogger(l Logger) Option {
	return func(w *Watcher) {
		w.log = l
	}
}

// WithSleep replaces the delay function, letting tests run without
// real sleeps.
func WithSleep(fn func(context.Context, time.Duration) error) Option {
	return func(w *Watcher) {
		w.sleep = fn
	}
}

// WithURLs sets the URL builder used to enrich notification events
// with registry, download, and documentation links.
func WithURLs(u client.URLBuilder) Option {
	return func(w *Watcher) {
		w.urls = u
	}
}

// New creates a Watcher. The seen store is owned by the caller and
// scopes deduplication to its own lifetime.
func New(source Source, notifier notify.Notifier, seen *core.SeenStore, opts ...Option) *Watcher {
	w := &Watcher{
		source:   source,
		notifier: notifier,
		seen:     seen,
		interval: DefaultInterval,
		sleep:    sleepContext,
		log:      nopLogger{},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Await polls until the given version of the coordinate is published,
// then emits exactly one notification and returns. Absence of the
// artifact or the version is a normal transient state; any fetch
// failure terminates the wait immediately.
func (w *Watcher) Await(ctx context.Context, c core.Coordinate, version string) error {
	for {
		vs, err := w.fetch(ctx, c)
		if err != nil {
			return err
		}
		if vs != nil && vs.Contains(version) {
			w.seen.Mark(c, version)
			w.emit(ctx, c, version, vs.Latest)
			return nil
		}
		if err := w.sleep(ctx, w.interval); err != nil {
			return err
		}
	}
}

// Run watches all configured targets until the context is cancelled.
// Each cycle re-reads the target list, fans out one task per
// coordinate, and reports every version not seen before. A fetch
// failure in one task never affects its siblings or the cycle.
func (w *Watcher) Run(ctx context.Context) error {
	if w.targets == nil {
		return errors.New("watch: no target source configured")
	}

	for {
		targets, err := w.targets.Targets()
		if err != nil {
			w.log.Printf("reading targets: %v", err)
		} else {
			w.cycle(ctx, targets)
			metrics.CyclesTotal.Inc()
		}

		if err := w.sleep(ctx, w.interval); err != nil {
			return err
		}
	}
}

func (w *Watcher) cycle(ctx context.Context, targets []Target) {
	var wg sync.WaitGroup
	for _, t := range targets {
		wg.Add(1)
		go func(t Target) {
			defer wg.Done()
			if err := w.check(ctx, t); err != nil {
				w.log.Printf("watch %s: %v", t.Coordinate, err)
			}
		}(t)
	}
	wg.Wait()
}

func (w *Watcher) check(ctx context.Context, t Target) error {
	vs, err := w.fetch(ctx, t.Coordinate)
	if err != nil {
		return err
	}
	if vs == nil {
		// Not published yet; try again next cycle.
		return nil
	}

	for _, version := range vs.Versions {
		if t.Constraint != nil && !t.Constraint.Matches(version) {
			continue
		}
		if !w.seen.Mark(t.Coordinate, version) {
			continue
		}
		w.emit(ctx, t.Coordinate, version, vs.Latest)
	}
	return nil
}

func (w *Watcher) fetch(ctx context.Context, c core.Coordinate) (*core.VersionSet, error) {
	start := time.Now()
	vs, err := w.source.FetchVersions(ctx, c)
	metrics.FetchDuration.Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		metrics.FetchesTotal.WithLabelValues(metrics.ResultError).Inc()
	case vs == nil:
		metrics.FetchesTotal.WithLabelValues(metrics.ResultAbsent).Inc()
	default:
		metrics.FetchesTotal.WithLabelValues(metrics.ResultOK).Inc()
	}
	return vs, err
}

// emit delivers one notification. Delivery failures are logged; the
// version stays marked seen.
func (w *Watcher) emit(ctx context.Context, c core.Coordinate, version, latest string) {
	metrics.NotificationsTotal.Inc()

	event := notify.Event{
		Group:    c.Group,
		Artifact: c.Artifact,
		Version:  version,
		Latest:   latest,
		PURL:     fmt.Sprintf("pkg:maven/%s/%s@%s", c.Group, c.Artifact, version),
	}
	if w.urls != nil {
		event.Links = client.BuildURLs(w.urls, c.String(), version)
	}

	if err := w.notifier.Notify(ctx, event); err != nil {
		metrics.NotifyErrorsTotal.Inc()
		w.log.Printf("notify %s %s: %v", c, version, err)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
