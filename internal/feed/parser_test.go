package feed

import (
	"errors"
	"testing"
)

func TestParseLine(t *testing.T) {
	p := NewParser("")
	rec, err := p.ParseLine("A001,202407091200,60,2,0.5,12.75")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := DataRecord{Code: "A001", ValidTime: "202407091200", IntervalMinutes: 60, Grade: 2, SuppressFlag: 0.5, Threshold: 12.75}
	if rec.Code != want.Code || rec.ValidTime != want.ValidTime || rec.IntervalMinutes != want.IntervalMinutes ||
		rec.Grade != want.Grade || rec.SuppressFlag != want.SuppressFlag || rec.Threshold != want.Threshold {
		t.Fatalf("unexpected record: %#v", rec)
	}
	if rec.WarningTypeID != nil {
		t.Fatalf("expected no warning type id")
	}
}

func TestParseLineTrimsTokens(t *testing.T) {
	rec, err := NewParser(",").ParseLine(" A001 , 202407091200 , 60 , 2 , 0 , 12.5\r")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != "A001" || rec.Threshold != 12.5 {
		t.Fatalf("unexpected record: %#v", rec)
	}
}

func TestParseLineSkipsWrongArity(t *testing.T) {
	p := NewParser(",")
	lines := []string{
		"",
		"A001",
		"A001,202407091200,60,2,0.5",
		"A001,202407091200,60,2,0.5,12.75,extra",
		",202407091200,60,2,0.5,12.75",
	}
	for _, line := range lines {
		if _, err := p.ParseLine(line); !errors.Is(err, ErrSkip) {
			t.Fatalf("expected ErrSkip for %q, got %v", line, err)
		}
	}
}

func TestParseLineNumericFailure(t *testing.T) {
	tests := []struct {
		line  string
		field string
	}{
		{"A001,202407091200,sixty,2,0,1", "interval"},
		{"A001,202407091200,60,2.5,0,1", "grade"},
		{"A001,202407091200,60,2,x,1", "suppress"},
		{"A001,202407091200,60,2,0,", "threshold"},
	}
	for _, tt := range tests {
		_, err := NewParser(",").ParseLine(tt.line)
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Fatalf("expected ParseError for %q, got %v", tt.line, err)
		}
		if perr.Field != tt.field {
			t.Fatalf("expected field %s, got %s", tt.field, perr.Field)
		}
		if errors.Is(err, ErrSkip) {
			t.Fatalf("numeric failure must not be a skip")
		}
	}
}

func TestParseLineCustomDelimiter(t *testing.T) {
	rec, err := NewParser("|").ParseLine("B7|202407091200|30|1|0|3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != "B7" || rec.IntervalMinutes != 30 {
		t.Fatalf("unexpected record: %#v", rec)
	}
}
