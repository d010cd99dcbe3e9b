// Package mvnwatch polls Maven repositories for new artifact versions
// and notifies interested sinks when a previously-unseen version
// appears.
//
// Basic usage:
//
//	import "github.com/git-pkgs/mvnwatch"
//
//	repo := mvnwatch.NewRepository("", nil) // Maven Central
//	store := mvnwatch.NewSeenStore()
//	hub := mvnwatch.NewHub(mvnwatch.NewConsole(os.Stdout))
//
//	w := mvnwatch.NewWatcher(repo, hub, store,
//		mvnwatch.WithInterval(time.Minute),
//		mvnwatch.WithTargetSource(mvnwatch.StaticTargets(
//			mvnwatch.Target{Coordinate: mvnwatch.Coordinate{Group: "com.google.guava", Artifact: "guava"}},
//		)),
//	)
//	err := w.Run(ctx)
//
// One-shot waiting for a specific version:
//
//	coord, version, _ := mvnwatch.ParseAwaitTarget("com.google.guava:guava:33.0.0-jre")
//	err := w.Await(ctx, coord, version)
package mvnwatch

import (
	"github.com/git-pkgs/mvnwatch/client"
	"github.com/git-pkgs/mvnwatch/internal/core"
	"github.com/git-pkgs/mvnwatch/internal/maven"
	"github.com/git-pkgs/mvnwatch/internal/notify"
	"github.com/git-pkgs/mvnwatch/internal/watch"
)

// Re-export types from internal/core
type (
	// Coordinate identifies a Maven artifact independent of version.
	Coordinate = core.Coordinate

	// VersionSet is the result of a successful metadata fetch.
	VersionSet = core.VersionSet

	// SeenStore tracks already-notified (coordinate, version) pairs.
	SeenStore = core.SeenStore

	// InvalidCoordinateError reports a malformed coordinate string.
	InvalidCoordinateError = core.InvalidCoordinateError

	// FetchError reports a transport, protocol, or parse failure.
	FetchError = core.FetchError
)

// Re-export types from internal/watch
type (
	// Watcher polls a repository and notifies on unseen versions.
	Watcher = watch.Watcher

	// Source fetches published versions for a coordinate.
	Source = watch.Source

	// Target is one watched coordinate.
	Target = watch.Target

	// TargetSource supplies the watch list once per cycle.
	TargetSource = watch.TargetSource

	// TargetsFunc adapts a function to the TargetSource interface.
	TargetsFunc = watch.TargetsFunc

	// WatchOption configures a Watcher.
	WatchOption = watch.Option

	// BreakerSource wraps a Source with a repository circuit breaker.
	BreakerSource = watch.BreakerSource
)

// Re-export types from internal/notify
type (
	// Event describes a newly observed artifact version.
	Event = notify.Event

	// Notifier delivers an event to a sink.
	Notifier = notify.Notifier

	// Hub dispatches events to multiple notifiers.
	Hub = notify.Hub
)

// Re-export types from client
type (
	// Client is an HTTP client for repository metadata endpoints.
	Client = client.Client

	// ClientOption configures a Client.
	ClientOption = client.Option

	// URLBuilder constructs URLs for a repository.
	URLBuilder = client.URLBuilder

	// HTTPError represents a non-2xx HTTP response.
	HTTPError = client.HTTPError
)

// Repository fetches artifact version metadata from a Maven repository.
type Repository = maven.Repository

// DefaultRepositoryURL is the Maven Central base URL.
const DefaultRepositoryURL = maven.DefaultURL

// Coordinate parsing.
var (
	ParseCoordinate  = core.ParseCoordinate
	ParseWatchTarget = core.ParseWatchTarget
	ParseAwaitTarget = core.ParseAwaitTarget
	ParsePURL        = core.ParsePURL
	ParseTarget      = core.ParseTarget
)

// NewSeenStore returns an empty seen-version store.
func NewSeenStore() *SeenStore {
	return core.NewSeenStore()
}

// NewRepository creates a repository client. An empty baseURL selects
// Maven Central; a nil client uses DefaultClient.
func NewRepository(baseURL string, c *Client) *Repository {
	return maven.New(baseURL, c)
}

// NewWatcher creates a Watcher over the given source.
func NewWatcher(source Source, notifier Notifier, seen *SeenStore, opts ...WatchOption) *Watcher {
	return watch.New(source, notifier, seen, opts...)
}

// Watcher options.
var (
	WithInterval     = watch.WithInterval
	WithTargetSource = watch.WithTargetSource
	WithLogger       = watch.WithLogger
	WithURLs         = watch.WithURLs
)

// StaticTargets returns a TargetSource with a fixed watch list.
var StaticTargets = watch.StaticTargets

// NewBreakerSource wraps a source with a per-repository circuit breaker.
var NewBreakerSource = watch.NewBreakerSource

// Notification sinks.
var (
	NewHub     = notify.NewHub
	NewConsole = notify.NewConsole
	NewWebhook = notify.NewWebhook
)

// DefaultClient returns a client with sensible defaults:
// 30s timeout, 3 retries with exponential backoff, retry on 429 and
// 5xx responses.
func DefaultClient() *Client {
	return client.DefaultClient()
}

// NewClient creates a new client with the given options.
func NewClient(opts ...ClientOption) *Client {
	return client.NewClient(opts...)
}

// Client options.
var (
	WithTimeout    = client.WithTimeout
	WithMaxRetries = client.WithMaxRetries
	WithUserAgent  = client.WithUserAgent
)

// BuildURLs returns a map of all non-empty URLs for an artifact.
// Keys are "registry", "download", "docs", and "purl".
func BuildURLs(urls URLBuilder, name, version string) map[string]string {
	return client.BuildURLs(urls, name, version)
}
