// Package server is the reference backend: a JSON API over SQLite that the
// tracker writes to and replays its offline queue against.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"

	"github.com/penwyp/go-health-monitor/internal/core/model"
	"github.com/penwyp/go-health-monitor/internal/storage"
	"github.com/penwyp/go-health-monitor/internal/util"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

type Config struct {
	Addr   string
	DBPath string
	Clock  util.Clock
}

type Server struct {
	httpServer *http.Server
	storage    *storage.SQLiteStorage
	clock      util.Clock
}

func NewServer(cfg *Config) (*Server, error) {
	stor, err := storage.NewSQLiteStorage(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	clock := cfg.Clock
	if clock == nil {
		clock = util.GetTimeProvider()
	}

	s := &Server{storage: stor, clock: clock}
	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/users/{id}/metadata", s.handleMetadata)
	mux.HandleFunc("PUT /api/users/{id}/weight", s.handleWeight)
	mux.HandleFunc("PUT /api/users/{id}/height", s.handleHeight)
	mux.HandleFunc("POST /api/users/{id}/water", s.handleWater)
	mux.HandleFunc("POST /api/users/{id}/fasting", s.handleFasting)
	return logRequests(mux)
}

// Start serves until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		util.LogInfo("Starting health server", util.F("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return s.Stop()
	}
}

func (s *Server) Stop() error {
	if s.storage != nil {
		defer s.storage.Close()
	}
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMetadata(w http.ResponseWriter, r *http.Request) {
	md, err := s.storage.Metadata(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, md)
}

func (s *Server) handleWeight(w http.ResponseWriter, r *http.Request) {
	var update model.WeightUpdate
	if !decodeBody(w, r, &update) {
		return
	}
	rec, err := s.storage.UpsertWeight(r.PathValue("id"), update, s.clock.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

type heightRequest struct {
	Height float64 `json:"height"`
}

func (s *Server) handleHeight(w http.ResponseWriter, r *http.Request) {
	var req heightRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.storage.SetHeight(r.PathValue("id"), req.Height, s.clock.Now()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (s *Server) handleWater(w http.ResponseWriter, r *http.Request) {
	var log model.WaterLog
	if !decodeBody(w, r, &log) {
		return
	}
	inserted, err := s.storage.AddWater(r.PathValue("id"), log, s.clock.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, createdStatus(inserted), map[string]bool{"inserted": inserted})
}

func (s *Server) handleFasting(w http.ResponseWriter, r *http.Request) {
	var rec model.FastingRecord
	if !decodeBody(w, r, &rec) {
		return
	}
	inserted, err := s.storage.AddFasting(r.PathValue("id"), rec, s.clock.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, createdStatus(inserted), map[string]bool{"inserted": inserted})
}

func createdStatus(inserted bool) int {
	if inserted {
		return http.StatusCreated
	}
	return http.StatusOK
}

func decodeBody(w http.ResponseWriter, r *http.Request, target interface{}) bool {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "failed to read body"})
		return false
	}
	if err := sonic.Unmarshal(data, target); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("invalid JSON: %v", err)})
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrInvalidRecord):
		status = http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound):
		status = http.StatusNotFound
	default:
		util.LogError("Request failed", util.F("error", err.Error()))
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	body, err := sonic.Marshal(data)
	if err != nil {
		util.LogErrorf("Failed to encode response: %v", err)
		http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		util.LogDebug("Handled request",
			util.F("method", r.Method),
			util.F("path", r.URL.Path),
			util.F("status", rec.status),
			util.F("duration", time.Since(start).String()))
	})
}
