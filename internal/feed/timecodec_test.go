package feed

import (
	"errors"
	"testing"
	"time"
)

func TestDecompact(t *testing.T) {
	got, err := Decompact("202407091230")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "2024-07-09 12:30" {
		t.Fatalf("unexpected value: %s", got)
	}
}

func TestDecompactMalformed(t *testing.T) {
	for _, raw := range []string{"", "2024070912", "20240709123", "2024070912300", "20241309123x", "202413091230"} {
		got, err := Decompact(raw)
		if !errors.Is(err, ErrFormat) {
			t.Fatalf("expected ErrFormat for %q, got %v", raw, err)
		}
		if got != "" {
			t.Fatalf("expected empty result for %q, got %q", raw, got)
		}
	}
}

func TestParseDisplay(t *testing.T) {
	got, err := ParseDisplay("2024-07-09 12:30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2024, 7, 9, 12, 30, 0, 0, time.Local)
	if !got.Equal(want) {
		t.Fatalf("unexpected time: %v", got)
	}
	if FormatDisplay(got) != "2024-07-09 12:30" {
		t.Fatalf("unexpected round trip: %s", FormatDisplay(got))
	}
	if _, err := ParseDisplay("202407091230"); !errors.Is(err, ErrFormat) {
		t.Fatalf("expected ErrFormat, got %v", err)
	}
}
