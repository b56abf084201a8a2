package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"warnsync/internal/feed"
	"warnsync/internal/logging"
	"warnsync/internal/poller"
)

type stubStatus struct {
	st poller.Status
}

func (s stubStatus) Status() poller.Status { return s.st }

type stubRecords struct {
	records []feed.DataRecord
	err     error
	lastID  int
}

func (s *stubRecords) SelectByType(ctx context.Context, typeID int) ([]feed.DataRecord, error) {
	s.lastID = typeID
	return s.records, s.err
}

func testServer(records *stubRecords, defaultType *int) http.Handler {
	st := stubStatus{st: poller.Status{Marker: "/feed/20240709/202407091230.csv", LastOutcome: poller.OutcomeSynced, Syncs: 1}}
	return newStatusServer(st, records, defaultType, logging.Discard()).routes()
}

func TestHealth(t *testing.T) {
	h := testServer(&stubRecords{}, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/health", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	testServer(&stubRecords{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got poller.Status
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Marker != "/feed/20240709/202407091230.csv" || got.LastOutcome != poller.OutcomeSynced || got.Syncs != 1 {
		t.Fatalf("unexpected status %+v", got)
	}
}

func TestRecords(t *testing.T) {
	typeID := 54
	tests := []struct {
		name        string
		target      string
		defaultType *int
		err         error
		wantStatus  int
		wantID      int
	}{
		{name: "explicit type", target: "/records?type=7", wantStatus: http.StatusOK, wantID: 7},
		{name: "default type", target: "/records", defaultType: &typeID, wantStatus: http.StatusOK, wantID: 54},
		{name: "missing type", target: "/records", wantStatus: http.StatusBadRequest},
		{name: "bad type", target: "/records?type=x", wantStatus: http.StatusBadRequest},
		{name: "storage failure", target: "/records?type=7", err: errors.New("down"), wantStatus: http.StatusBadGateway, wantID: 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubRecords{err: tt.err, records: []feed.DataRecord{{Code: "A01", ValidTime: "2024-07-09 12:30", IntervalMinutes: 60, Grade: 2, Threshold: 15.5}}}
			rec := httptest.NewRecorder()
			testServer(stub, tt.defaultType).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.target, nil))
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			if tt.wantID != 0 && stub.lastID != tt.wantID {
				t.Fatalf("expected type %d, got %d", tt.wantID, stub.lastID)
			}
			if rec.Code != http.StatusOK {
				return
			}
			var body struct {
				Count   int               `json:"count"`
				Records []feed.DataRecord `json:"records"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Count != 1 || body.Records[0].Code != "A01" {
				t.Fatalf("unexpected body %+v", body)
			}
		})
	}
}
