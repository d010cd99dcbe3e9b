package core

import "fmt"

// InvalidCoordinateError reports a malformed coordinate or target
// string. It is a configuration error and is surfaced before any
// polling begins.
type InvalidCoordinateError struct {
	Input  string
	Reason string
}

func (e *InvalidCoordinateError) Error() string {
	return fmt.Sprintf("invalid coordinate %q: %s", e.Input, e.Reason)
}

// FetchError reports a transport, protocol, or metadata parse failure
// while fetching versions for a coordinate. A "not found" response is
// not a FetchError; it means the artifact has no published metadata yet.
type FetchError struct {
	Coordinate Coordinate
	URL        string
	Err        error
}

func (e *FetchError) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("fetch %s (%s): %v", e.Coordinate, e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.Coordinate, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
