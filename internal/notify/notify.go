// Package notify delivers new-version events to one or more sinks.
package notify

import (
	"context"
	"errors"
)

// Event describes a newly observed artifact version.
type Event struct {
	Group    string            `json:"group"`
	Artifact string            `json:"artifact"`
	Version  string            `json:"version"`
	Latest   string            `json:"latest,omitempty"`
	PURL     string            `json:"purl,omitempty"`
	Links    map[string]string `json:"links,omitempty"`
}

// Coordinate returns the "group:artifact" form of the event's subject.
func (e Event) Coordinate() string {
	return e.Group + ":" + e.Artifact
}

// Notifier delivers an event to a sink. Delivery failures are reported
// to the caller but must not carry any other side effects; the watch
// loop treats them as non-fatal.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// Hub dispatches events to multiple notifiers. Every sink sees every
// event; errors are collected rather than short-circuiting delivery.
type Hub struct {
	notifiers []Notifier
}

// NewHub creates a Hub with the given notifiers.
func NewHub(notifiers ...Notifier) *Hub {
	return &Hub{notifiers: notifiers}
}

// Notify sends an event to all registered notifiers and returns the
// joined delivery errors, if any.
func (h *Hub) Notify(ctx context.Context, event Event) error {
	var errs []error
	for _, n := range h.notifiers {
		if err := n.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
