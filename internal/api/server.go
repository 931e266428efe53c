package api

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/deweni2/telegram-video-bot/internal/pkg/logger"
)

const (
	jsonContentType = "application/json"

	healthPath  = "/healthz"
	metricsPath = "/metrics"
)

// PoolStats is the worker pool view reported by the health endpoint.
type PoolStats interface {
	InFlight() int
	Size() int
}

// Server is the optional ops endpoint: health and Prometheus metrics.
type Server struct {
	srv     *http.Server
	pool    PoolStats
	started time.Time
}

type healthResponse struct {
	Status            string `json:"status"`
	DownloadsInFlight int    `json:"downloads_in_flight"`
	Workers           int    `json:"workers"`
	UptimeSeconds     int64  `json:"uptime_seconds"`
}

// NewServer creates the ops server. pool may be nil.
func NewServer(listenAddr string, reg *prometheus.Registry, pool PoolStats) *Server {
	s := &Server{pool: pool, started: time.Now()}

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Get(healthPath, s.healthHandler)
	r.Handle(metricsPath, promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	s.srv = &http.Server{
		Addr:              listenAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler returns the HTTP handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return err
	}
	logger.Log.WithField("addr", ln.Addr().String()).Info("Ops server listening")
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.WithError(err).Error("Ops server stopped")
		}
	}()
	return nil
}

// Shutdown stops accepting connections and waits for active requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) healthHandler(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(s.started).Seconds()),
	}
	if s.pool != nil {
		resp.DownloadsInFlight = s.pool.InFlight()
		resp.Workers = s.pool.Size()
	}

	w.Header().Set("Content-Type", jsonContentType)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Log.WithError(err).Debug("Failed to write health response")
	}
}
