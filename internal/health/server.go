// Package health exposes the oracle's liveness and readiness endpoints.
// /ready gates traffic on the loaded ML artifact and the event bus.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	defaultPort  = "8080"
	checkTimeout = 3 * time.Second
	stopTimeout  = 5 * time.Second
)

// Checker is one readiness dependency, such as the model artifact or the
// event bus connection.
type Checker interface {
	Name() string
	Check(ctx context.Context) error
}

// HealthResponse is the body of /health and /live.
type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp,omitempty"`
	Version   string `json:"version,omitempty"`
	Commit    string `json:"commit,omitempty"`
}

// ReadyResponse carries the per-dependency outcome of /ready.
type ReadyResponse struct {
	Status   string            `json:"status"`
	Service  string            `json:"service"`
	Checks   map[string]string `json:"checks,omitempty"`
	Duration string            `json:"duration,omitempty"`
}

// Config wires the server to the running prediction service.
type Config struct {
	ServiceName string
	Version     string
	Commit      string
	// Port falls back to HEALTH_PORT, then 8080
	Port   string
	Logger *logrus.Logger
	Checks []Checker
	// Metrics, when set, is mounted on /metrics
	Metrics http.Handler
}

// Server answers container health checks for the prediction service. It reports
// not ready until SetReady(true), and again once shutdown begins.
type Server struct {
	cfg      Config
	ready    atomic.Bool
	srv      *http.Server
	listener net.Listener
}

// NewServer builds a server that is not yet listening.
func NewServer(cfg Config) *Server {
	if cfg.Port == "" {
		cfg.Port = os.Getenv("HEALTH_PORT")
	}
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	return &Server{cfg: cfg}
}

// SetReady toggles whether /ready may report ok.
func (s *Server) SetReady(ready bool) { s.ready.Store(ready) }

// IsReady reports the flag set by SetReady.
func (s *Server) IsReady() bool { return s.ready.Load() }

// Handler routes the health endpoints.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/live", s.handleLive)
	mux.HandleFunc("/ready", s.handleReady)
	if s.cfg.Metrics != nil {
		mux.Handle("/metrics", s.cfg.Metrics)
	}
	return mux
}

// Start binds the port and serves until ctx is cancelled. A bind failure is
// returned to the caller rather than logged from the serving goroutine.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", ":"+s.cfg.Port)
	if err != nil {
		return fmt.Errorf("health server listen on %s: %w", s.cfg.Port, err)
	}
	s.listener = ln
	s.srv = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.log().WithFields(logrus.Fields{
		"addr":    ln.Addr().String(),
		"service": s.cfg.ServiceName,
	}).Info("Health server listening")

	go func() {
		if err := s.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.log().WithError(err).Error("Health server stopped")
		}
	}()
	go func() {
		<-ctx.Done()
		if err := s.Shutdown(); err != nil {
			s.log().WithError(err).Warn("Health server shutdown")
		}
	}()
	return nil
}

// Addr is the bound address once Start has succeeded.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown marks the service not ready and drains in-flight requests.
func (s *Server) Shutdown() error {
	s.SetReady(false)
	if s.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	return s.srv.Shutdown(ctx)
}

func (s *Server) log() *logrus.Entry {
	logger := s.cfg.Logger
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return logger.WithField("component", "health")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Service:   s.cfg.ServiceName,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   s.cfg.Version,
		Commit:    s.cfg.Commit,
	})
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Service: s.cfg.ServiceName})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	results, healthy := s.runChecks(r.Context())

	resp := ReadyResponse{
		Status:   "ok",
		Service:  s.cfg.ServiceName,
		Checks:   results,
		Duration: time.Since(start).String(),
	}
	code := http.StatusOK
	if !healthy {
		resp.Status = "not_ready"
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, resp)
}

// runChecks evaluates the ready flag and every dependency under one shared
// deadline. The "service" entry reflects SetReady.
func (s *Server) runChecks(ctx context.Context) (map[string]string, bool) {
	results := map[string]string{"service": "ok"}
	healthy := s.IsReady()
	if !healthy {
		results["service"] = "not_ready"
	}

	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()
	for _, c := range s.cfg.Checks {
		if err := c.Check(ctx); err != nil {
			results[c.Name()] = "error: " + err.Error()
			healthy = false
			continue
		}
		results[c.Name()] = "ok"
	}
	return results, healthy
}

func writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
