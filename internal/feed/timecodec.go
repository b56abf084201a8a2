package feed

import (
	"fmt"
	"time"
)

const (
	compactLayout = "200601021504"
	displayLayout = "2006-01-02 15:04"
)

// Decompact converts a file timestamp such as 202407091230 into the display
// form 2024-07-09 12:30.
func Decompact(raw string) (string, error) {
	t, err := time.Parse(compactLayout, raw)
	if err != nil {
		return "", fmt.Errorf("decompact %q: %w", raw, ErrFormat)
	}
	return t.Format(displayLayout), nil
}

// ParseDisplay reads a display timestamp back into a wall-clock time in the
// local zone, which is how the publication time is bound for storage.
func ParseDisplay(s string) (time.Time, error) {
	t, err := time.ParseInLocation(displayLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse display time %q: %w", s, ErrFormat)
	}
	return t, nil
}

// FormatDisplay renders t in the display form.
func FormatDisplay(t time.Time) string {
	return t.Format(displayLayout)
}
