// Package fakebackend serves the visibility backend's endpoints from memory.
// It backs the demo command and end-to-end tests; predictions come from a
// fixed formula instead of a trained model.
package fakebackend

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/ngmaloney/divevis/internal/models"
)

// Server is an in-memory backend
type Server struct {
	router   chi.Router
	logger   *zap.Logger
	now      func() time.Time
	requests atomic.Int64

	mu    sync.Mutex
	dives []models.DiveRecord
}

// New creates a fake backend with an empty dive log
func New(logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		logger: logger.Named("fakebackend"),
		now:    time.Now,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.countRequests)

	r.Post("/predict", s.handlePredict)
	r.Post("/weather", s.handleWeather)
	r.Get("/dives", s.handleListDives)
	r.Post("/dives", s.handleCreateDive)
	r.Put("/dives/{id}", s.handleUpdateDive)
	r.Get("/dives_data", s.handleLogbook)

	s.router = r
	return s
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Requests returns how many requests the server has handled
func (s *Server) Requests() int {
	return int(s.requests.Load())
}

// Seed appends dives as if they had been posted, in order.
func (s *Server) Seed(dives ...models.DiveRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dives = append(s.dives, dives...)
}

// Dives returns a copy of the stored dives in insertion order
func (s *Server) Dives() []models.DiveRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.DiveRecord, len(s.dives))
	copy(out, s.dives)
	return out
}

func (s *Server) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		s.logger.Debug("Request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", r.Header.Get("X-Request-ID")))
		next.ServeHTTP(w, r)
	})
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
