// Package httpapi exposes the pipeline's pull surface over net/http (spec.md
// §6): status, sensor/track/detection reads, and dataset creation/export.
// ServeMux wiring, the loggingResponseWriter status capture, and
// LoggingMiddleware are grounded on the teacher's internal/api/server.go and
// root server.go, adapted from sqlite-backed handlers to orchestrator/
// extractor-backed ones.
package httpapi

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shridharbhandiwad/radix-go/internal/extractor"
	"github.com/shridharbhandiwad/radix-go/internal/pipeline"
	"github.com/shridharbhandiwad/radix-go/internal/schema"
)

// Server wires the pipeline orchestrator and dataset registry to HTTP.
type Server struct {
	orch     *pipeline.Orchestrator
	datasets *extractor.Registry
	mux      *http.ServeMux
}

// NewServer builds an httpapi.Server over an already-running orchestrator
// and dataset registry.
func NewServer(orch *pipeline.Orchestrator, datasets *extractor.Registry) *Server {
	return &Server{orch: orch, datasets: datasets}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

// LoggingMiddleware logs method, path, status, and duration for every
// request, matching the teacher's internal/api.LoggingMiddleware.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf("[%d] %s %s %vms", lrw.statusCode, r.Method, r.URL.RequestURI(),
			float64(time.Since(start).Nanoseconds())/1e6)
	})
}

// ServeMux builds (once) and returns the server's route table.
func (s *Server) ServeMux() *http.ServeMux {
	if s.mux != nil {
		return s.mux
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/sensors", s.handleSensors)
	mux.HandleFunc("/api/tracks", s.handleTracks)
	mux.HandleFunc("/api/detections", s.handleDetections)
	mux.HandleFunc("/api/datasets", s.handleDatasets)
	mux.HandleFunc("/api/datasets/", s.handleDatasetExport)
	s.mux = mux
	return mux
}

// Handler returns the fully wrapped handler (routes + logging middleware)
// ready to pass to an *http.Server.
func (s *Server) Handler() http.Handler {
	return LoggingMiddleware(s.ServeMux())
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("httpapi: failed to encode response: %v", err)
	}
}

func (s *Server) writeJSONError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// handleStatus answers GET /api/status (spec.md §6 get_status).
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, s.orch.Status())
}

// handleSensors answers GET /api/sensors (spec.md §6 list_sensors).
func (s *Server) handleSensors(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, s.orch.Sensors())
}

// handleTracks answers GET /api/tracks (spec.md §6 list_tracks).
func (s *Server) handleTracks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, s.orch.Tracks())
}

// handleDetections answers GET /api/detections?limit= (spec.md §6
// recent_detections).
func (s *Server) handleDetections(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		v, err := strconv.Atoi(l)
		if err != nil || v < 0 {
			s.writeJSONError(w, http.StatusBadRequest, "invalid 'limit' parameter")
			return
		}
		limit = v
	}
	s.writeJSON(w, http.StatusOK, s.orch.RecentDetections(limit))
}

// createDatasetRequest is the JSON payload for POST /api/datasets.
type createDatasetRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Format      string `json:"format"`
	Limit       int    `json:"limit"`
}

// handleDatasets routes GET (list) and POST (create) on /api/datasets
// (spec.md §6 list_datasets / create_dataset).
func (s *Server) handleDatasets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.writeJSON(w, http.StatusOK, s.datasets.List())
	case http.MethodPost:
		s.createDataset(w, r)
	default:
		s.writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) createDataset(w http.ResponseWriter, r *http.Request) {
	var req createDatasetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}
	if req.Name == "" {
		s.writeJSONError(w, http.StatusBadRequest, "name is required")
		return
	}
	format := schema.DatasetFormat(req.Format)
	switch format {
	case schema.DatasetTabular, schema.DatasetSequence, schema.DatasetGraph:
	default:
		s.writeJSONError(w, http.StatusBadRequest, "format must be one of tabular, sequence, graph")
		return
	}

	detections := s.orch.RecentDetections(req.Limit)
	desc := s.datasets.CreateDataset(req.Name, req.Description, detections, format)
	s.writeJSON(w, http.StatusCreated, desc)
}

// handleDatasetExport answers GET /api/datasets/{id}/export?format= (spec.md
// §6 export_dataset). The dataset's recorded Format is the default; a
// 'format' query parameter overrides it. The export projects the
// orchestrator's current detection ring and active tracks at request time,
// not the detections the dataset was created over.
func (s *Server) handleDatasetExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/api/datasets/")
	path = strings.Trim(path, "/")
	parts := strings.Split(path, "/")
	if len(parts) != 2 || parts[1] != "export" {
		s.writeJSONError(w, http.StatusNotFound, "not found")
		return
	}
	id := parts[0]
	desc, ok := s.datasets.Get(id)
	if !ok {
		s.writeJSONError(w, http.StatusNotFound, "dataset not found")
		return
	}

	format := desc.Format
	if f := r.URL.Query().Get("format"); f != "" {
		format = schema.DatasetFormat(f)
	}

	detections := s.orch.RecentDetections(0)
	tracks := s.orch.Tracks()

	switch format {
	case schema.DatasetTabular:
		s.writeJSON(w, http.StatusOK, extractor.Tabular(detections))
	case schema.DatasetSequence:
		s.writeJSON(w, http.StatusOK, extractor.Sequence(tracks, extractor.DefaultWindowSize, extractor.DefaultStride))
	case schema.DatasetGraph:
		s.writeJSON(w, http.StatusOK, extractor.BuildGraph(tracks, extractor.DefaultProximityThresholdM))
	default:
		s.writeJSONError(w, http.StatusBadRequest, "unsupported export format")
	}
}
