package logging

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("warnsync", "debug", "json", &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	log.Warn("Testing")
	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("expected json output: %v (%s)", err, buf.String())
	}
	if got["service"] != "warnsync" {
		t.Fatalf("unexpected service: %v", got["service"])
	}
	if got["level"] != "warning" {
		t.Fatalf("unexpected level: %v", got["level"])
	}
	if got["msg"] != "Testing" {
		t.Fatalf("unexpected msg: %v", got["msg"])
	}
}

func TestNewLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("warnsync", "warn", "text", &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	log.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected info to be filtered, got %s", buf.String())
	}
}

func TestNewRejectsBadSettings(t *testing.T) {
	if _, err := New("warnsync", "loud", "text", nil); err == nil {
		t.Fatalf("expected error for bad level")
	}
	if _, err := New("warnsync", "info", "xml", nil); err == nil {
		t.Fatalf("expected error for bad format")
	}
}
