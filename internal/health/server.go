// Package health serves liveness, readiness and evaluation status for the scheduled backtest.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/digit-edge/internal/metrics"
)

// Check states reported by /ready
const (
	CheckOK       = "ok"
	CheckPending  = "pending"
	CheckStale    = "stale"
	CheckFailed   = "failed"
	CheckNotReady = "not_ready"
)

// DatabasePinger defines the interface for checking database connectivity.
type DatabasePinger interface {
	Ping(ctx context.Context) error
}

// Evaluation is the outcome of one scheduled backtest evaluation
type Evaluation struct {
	Started        time.Time `json:"started"`
	Finished       time.Time `json:"finished"`
	Periods        int       `json:"periods"`
	BetPeriods     int       `json:"bet_periods"`
	DroppedDraws   int       `json:"dropped_draws"`
	ROI            float64   `json:"roi"`
	Recommendation string    `json:"recommendation,omitempty"`
	Error          string    `json:"error,omitempty"`
}

// Status is the /status payload
type Status struct {
	Service     string      `json:"service"`
	Version     string      `json:"version,omitempty"`
	Runs        int         `json:"runs"`
	Failures    int         `json:"failures"`
	LastAttempt *Evaluation `json:"last_attempt,omitempty"`
	LastSuccess *Evaluation `json:"last_success,omitempty"`
}

// ReadyResponse is the /ready payload
type ReadyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Config holds the configuration for the health server.
type Config struct {
	ServiceName string
	Version     string
	Port        string
	Logger      *logrus.Logger
	DB          DatabasePinger
	// MaxStaleness fails readiness when the last successful evaluation is older; 0 disables
	MaxStaleness time.Duration
	// Metrics is served at MetricsPath; the process-wide registry when nil
	Metrics     http.Handler
	MetricsPath string
}

// Server reports whether the evaluation loop is alive and producing results
type Server struct {
	cfg    Config
	now    func() time.Time
	server *http.Server

	mu          sync.RWMutex
	started     bool
	runs        int
	failures    int
	lastAttempt *Evaluation
	lastSuccess *Evaluation
}

// NewServer creates a new health server.
func NewServer(cfg Config) *Server {
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.Handler()
	}
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = "/metrics"
	}
	return &Server{cfg: cfg, now: time.Now}
}

// SetReady marks the scheduler as running.
func (s *Server) SetReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = ready
}

// RecordEvaluation stores the outcome of an evaluation; a non-empty Error marks a failure
func (s *Server) RecordEvaluation(ev Evaluation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs++
	s.lastAttempt = &ev
	if ev.Error != "" {
		s.failures++
		return
	}
	s.lastSuccess = &ev
}

// Status returns a snapshot of the evaluation history
func (s *Server) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Status{
		Service:     s.cfg.ServiceName,
		Version:     s.cfg.Version,
		Runs:        s.runs,
		Failures:    s.failures,
		LastAttempt: s.lastAttempt,
		LastSuccess: s.lastSuccess,
	}
}

// evaluationCheck is ok until an evaluation fails or the last success ages past MaxStaleness
func (s *Server) evaluationCheck() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch {
	case s.lastAttempt == nil:
		return CheckPending, true
	case s.lastAttempt.Error != "":
		return CheckFailed + ": " + s.lastAttempt.Error, false
	case s.cfg.MaxStaleness > 0 && s.now().Sub(s.lastSuccess.Finished) > s.cfg.MaxStaleness:
		return CheckStale, false
	default:
		return CheckOK, true
	}
}

// Handler returns the routed endpoints
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleLive)
	mux.HandleFunc("/live", s.handleLive)
	mux.HandleFunc("/ready", s.handleReady)
	mux.HandleFunc("/status", s.handleStatus)
	mux.Handle(s.cfg.MetricsPath, s.cfg.Metrics)
	return mux
}

// Start serves in the background until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         ":" + s.cfg.Port,
		Handler:      s.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		s.cfg.Logger.WithField("port", s.cfg.Port).Info("Health server starting")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.cfg.Logger.WithError(err).Error("Health server error")
		}
	}()
	go func() {
		<-ctx.Done()
		_ = s.Shutdown()
	}()
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  CheckOK,
		"service": s.cfg.ServiceName,
		"time":    s.now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string, 3)
	ready := true

	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if started {
		checks["scheduler"] = CheckOK
	} else {
		checks["scheduler"] = CheckNotReady
		ready = false
	}

	if s.cfg.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := s.cfg.DB.Ping(ctx); err != nil {
			checks["database"] = CheckFailed + ": " + err.Error()
			ready = false
		} else {
			checks["database"] = CheckOK
		}
	}

	state, ok := s.evaluationCheck()
	checks["evaluation"] = state
	ready = ready && ok

	resp := ReadyResponse{Status: CheckOK, Checks: checks}
	code := http.StatusOK
	if !ready {
		resp.Status = CheckNotReady
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, resp)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Status())
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
