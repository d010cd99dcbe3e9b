package watch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenk/backoff"
	circuit "github.com/rubyist/circuitbreaker"

	"github.com/git-pkgs/mvnwatch/internal/core"
)

// ErrRepositoryUnavailable is returned while the circuit for a
// repository is open.
var ErrRepositoryUnavailable = errors.New("repository unavailable")

// BreakerSource wraps a Source with a circuit breaker so that a dead
// repository trips open instead of being hammered every cycle. While
// the circuit is open, fetches fail fast with a *core.FetchError; the
// watch loop isolates those like any other fetch failure.
type BreakerSource struct {
	source  Source
	name    string
	breaker *circuit.Breaker
}

// NewBreakerSource wraps source with a breaker that trips after 5
// consecutive failures and recovers with exponential backoff. name
// identifies the repository in error messages, typically its host.
func NewBreakerSource(source Source, name string) *BreakerSource {
	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = 30 * time.Second
	expBackoff.MaxInterval = 5 * time.Minute
	expBackoff.Multiplier = 2.0
	expBackoff.Reset()

	opts := &circuit.Options{
		BackOff:    expBackoff,
		ShouldTrip: circuit.ThresholdTripFunc(5),
	}

	return &BreakerSource{
		source:  source,
		name:    name,
		breaker: circuit.NewBreakerWithOptions(opts),
	}
}

func (b *BreakerSource) FetchVersions(ctx context.Context, c core.Coordinate) (*core.VersionSet, error) {
	if !b.breaker.Ready() {
		return nil, &core.FetchError{
			Coordinate: c,
			Err:        fmt.Errorf("circuit open for %s: %w", b.name, ErrRepositoryUnavailable),
		}
	}

	var vs *core.VersionSet
	err := b.breaker.Call(func() error {
		var fetchErr error
		vs, fetchErr = b.source.FetchVersions(ctx, c)
		return fetchErr
	}, 0)

	if err != nil {
		return nil, err
	}
	return vs, nil
}

// State returns "open" or "closed" for health reporting.
func (b *BreakerSource) State() string {
	if b.breaker.Tripped() {
		return "open"
	}
	return "closed"
}
