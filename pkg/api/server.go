// Package api exposes the observability HTTP surface: Prometheus metrics,
// health and read-only run history. Configuration stays on the CLI.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/logguard/logguard/internal/metrics"
	"github.com/logguard/logguard/pkg/store"
)

// Server serves metrics and run-history endpoints
type Server struct {
	store  store.Store
	router *mux.Router
}

// NewServer creates an observability server over the run-history store
func NewServer(st store.Store) *Server {
	s := &Server{
		store:  st,
		router: mux.NewRouter(),
	}

	s.router.Handle("/metrics", metrics.Handler()).Methods("GET")
	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/api/runs", s.handleListRuns).Methods("GET")
	s.router.HandleFunc("/api/runs/{id}", s.handleGetRun).Methods("GET")

	return s
}

// Router returns the HTTP handler
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.HealthCheck(); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	runs := s.store.GetAllRuns()
	writeJSON(w, runs)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	run, err := s.store.GetRun(id)
	if err == store.ErrRunNotFound {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, run)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
