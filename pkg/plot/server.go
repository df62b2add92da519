// Package plot serves the computed charts over HTTP as JSON and CSV.
package plot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/raykavin/vitaltrend/pkg/chart"
	"github.com/raykavin/vitaltrend/pkg/logger"
	"github.com/raykavin/vitaltrend/pkg/medication"
	"github.com/raykavin/vitaltrend/pkg/regimen"
)

// ErrChartNotFound is returned by a ChartProvider for unknown chart ids
var ErrChartNotFound = errors.New("chart not found")

// ChartProvider supplies the data served
type ChartProvider interface {
	Chart(ctx context.Context, id string) (chart.Chart, error)
	ChartIDs() []string
	Segments(ctx context.Context) ([]regimen.Segment, error)
	MedicationLevels(ctx context.Context) ([]medication.Level, error)
}

// Server exposes a ChartProvider over HTTP
type Server struct {
	port     int
	provider ChartProvider
	log      logger.Logger
	started  time.Time
}

// Option defines a function type for configuring a Server instance
type Option func(*Server)

// WithPort sets the HTTP server port
func WithPort(port int) Option {
	return func(s *Server) {
		s.port = port
	}
}

// WithLogger sets the request logger
func WithLogger(log logger.Logger) Option {
	return func(s *Server) {
		s.log = log
	}
}

// NewServer creates a server for provider
func NewServer(provider ChartProvider, options ...Option) *Server {
	server := &Server{
		port:     8080,
		provider: provider,
		log:      logger.Nop(),
		started:  time.Now(),
	}
	for _, option := range options {
		option(server)
	}
	return server
}

// Handler returns the router with every route registered
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", s.handleHealth).Methods("GET").Name("health")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/charts", s.handleChartIDs).Methods("GET").Name("chart-ids")
	api.HandleFunc("/charts/{id}", s.handleChart).Methods("GET").Name("chart")
	api.HandleFunc("/charts/{id}/csv", s.handleChartCSV).Methods("GET").Name("chart-csv")
	api.HandleFunc("/segments", s.handleSegments).Methods("GET").Name("segments")
	api.HandleFunc("/medication-levels", s.handleMedicationLevels).Methods("GET").Name("medication-levels")

	r.Use(s.logRequest)

	return r
}

// Start serves until ctx is done, then shuts the server down
func (s *Server) Start(ctx context.Context) error {
	httpServer := &http.Server{
		Handler:      s.Handler(),
		Addr:         fmt.Sprintf(":%d", s.port),
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		s.log.Infof("Charts available at http://localhost:%d/api/charts", s.port)
		errs <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}

func (s *Server) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		begin := time.Now()
		next.ServeHTTP(w, r)
		s.log.WithFields(map[string]any{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(begin).String(),
		}).Debug("request served")
	})
}
