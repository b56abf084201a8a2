package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"warnsync/internal/feed"
	"warnsync/internal/poller"
)

type statusSource interface {
	Status() poller.Status
}

type recordSource interface {
	SelectByType(ctx context.Context, typeID int) ([]feed.DataRecord, error)
}

type statusServer struct {
	status      statusSource
	records     recordSource
	defaultType *int
	log         logrus.FieldLogger
	server      *http.Server
}

func newStatusServer(status statusSource, records recordSource, defaultType *int, log logrus.FieldLogger) *statusServer {
	return &statusServer{status: status, records: records, defaultType: defaultType, log: log}
}

func (s *statusServer) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", handleHealth)
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/records", s.handleRecords)
	return mux
}

// Start serves in the background until Shutdown.
func (s *statusServer) Start(addr string) {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	s.log.WithField("addr", addr).Info("status server listening")
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.WithError(err).Error("status server stopped")
		}
	}()
}

func (s *statusServer) Shutdown(ctx context.Context) {
	if s.server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		s.log.WithError(err).Warn("status server shutdown")
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *statusServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, s.status.Status())
}

func (s *statusServer) handleRecords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	typeID, err := s.typeParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	records, err := s.records.SelectByType(r.Context(), typeID)
	if err != nil {
		s.log.WithError(err).Warn("records query failed")
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	if records == nil {
		records = []feed.DataRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"type": typeID, "count": len(records), "records": records})
}

func (s *statusServer) typeParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("type")
	if raw == "" {
		if s.defaultType != nil {
			return *s.defaultType, nil
		}
		return 0, errors.New("type is required")
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("type must be an integer")
	}
	return id, nil
}
