package feed

import (
	"errors"
	"fmt"
)

var (
	// ErrSkip marks a line that is dropped without being an error: wrong
	// field count or an empty code.
	ErrSkip = errors.New("line skipped")
	// ErrFormat marks a timestamp that does not follow YYYYMMDDHHMM.
	ErrFormat = errors.New("malformed timestamp")
	// ErrOpen marks a data file that could not be opened.
	ErrOpen = errors.New("data file cannot be opened")
)

// ParseError reports a non-numeric value in a numeric column.
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// DiscoveryError reports a feed directory that is missing or unreadable.
type DiscoveryError struct {
	Path string
	Err  error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("discover %s: %v", e.Path, e.Err)
}

func (e *DiscoveryError) Unwrap() error { return e.Err }
