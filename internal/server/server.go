// Package server exposes rotor solves and vehicle runs over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/san-kum/rotorsim/internal/automation"
	"github.com/san-kum/rotorsim/internal/config"
	"github.com/san-kum/rotorsim/internal/integrators"
	"github.com/san-kum/rotorsim/internal/metrics"
	"github.com/san-kum/rotorsim/internal/rotor"
	"github.com/san-kum/rotorsim/internal/storage"
)

// DefaultMaxSteps caps the step count a request may ask for.
const DefaultMaxSteps = 5000

// session is a built rotor and its warm-start inflow.
type session struct {
	mu     sync.Mutex
	cfg    *config.Config
	rotor  *rotor.Rotor
	inflow []float64
}

type Server struct {
	logger   *log.Logger
	registry *prometheus.Registry
	solver   *metrics.Solver
	vehicle  *metrics.Vehicle
	store    *storage.Store
	maxSteps int

	mu       sync.Mutex
	sessions map[string]*session

	router *mux.Router
}

type Option func(*Server)

func WithLogger(l *log.Logger) Option { return func(s *Server) { s.logger = l } }

// WithStore enables saving runs and the /runs routes.
func WithStore(st *storage.Store) Option { return func(s *Server) { s.store = st } }

func WithMaxSteps(n int) Option { return func(s *Server) { s.maxSteps = n } }

func New(opts ...Option) *Server {
	s := &Server{
		logger:   log.Default(),
		registry: prometheus.NewRegistry(),
		maxSteps: DefaultMaxSteps,
		sessions: make(map[string]*session),
	}
	for _, o := range opts {
		o(s)
	}
	s.registry.MustRegister(collectors.NewGoCollector())
	s.solver = metrics.NewSolver(s.registry)
	s.vehicle = metrics.NewVehicle(s.registry)
	s.routes()
	return s
}

func (s *Server) routes() {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/presets", s.handlePresets).Methods(http.MethodGet)
	r.HandleFunc("/rotor/calc", s.handleRotorCalc).Methods(http.MethodPost)
	r.HandleFunc("/rotor/sweep", s.handleRotorSweep).Methods(http.MethodPost)
	r.HandleFunc("/sim/run", s.handleSimRun).Methods(http.MethodPost)
	r.HandleFunc("/runs", s.handleRuns).Methods(http.MethodGet)
	r.HandleFunc("/runs/{id}", s.handleRun).Methods(http.MethodGet)
	r.HandleFunc("/runs/{id}/report", s.handleRunReport).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	r.Use(s.logRequests)
	s.router = r
}

func (s *Server) Handler() http.Handler { return s.router }

// Registry is the registry served on /metrics.
func (s *Server) Registry() *prometheus.Registry { return s.registry }

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "elapsed", time.Since(start))
	})
}

// session returns the rotor for a preset, building it on first use.
func (s *Server) session(preset string) (*session, error) {
	if preset == "" {
		preset = "tn626"
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[preset]; ok {
		return sess, nil
	}
	cfg, err := config.GetPreset(preset)
	if err != nil {
		return nil, err
	}
	_, _, r, err := cfg.BuildRotor(config.BuildOptions{Logger: s.logger, Recorder: s.solver})
	if err != nil {
		return nil, err
	}
	sess := &session{cfg: cfg, rotor: r}
	s.sessions[preset] = sess
	return sess, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("encode response", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// statusFor maps domain errors to client errors.
func statusFor(err error) int {
	switch {
	case errors.Is(err, config.ErrUnknownPreset), errors.Is(err, config.ErrInvalid),
		errors.Is(err, rotor.ErrNonPositiveSpeed), errors.Is(err, automation.ErrUnknownParam),
		errors.Is(err, integrators.ErrUnknownMethod),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrRunNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

var errBadRequest = errors.New("bad request")

func decode(r *http.Request, v any) error {
	if r.ContentLength == 0 {
		return nil
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", errBadRequest, err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePresets(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, config.ListPresets())
}
