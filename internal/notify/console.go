package notify

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// Console writes one line per event to a writer, typically stdout.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsole creates a console sink.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) Notify(_ context.Context, event Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := fmt.Fprintf(c.w, "new version %s %s\n", event.Coordinate(), event.Version)
	return err
}
