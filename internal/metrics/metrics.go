package metrics

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the feed engine.
type Metrics struct {
	TicksTotal    prometheus.Counter
	AnalysesTotal prometheus.Counter
	SignalsTotal  *prometheus.CounterVec // labels: type
	DroppedTotal  prometheus.Counter
	WSClients     prometheus.Gauge
	TickDuration  prometheus.Histogram
}

// NewMetrics registers and returns all Prometheus metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		TicksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "feedd_ticks_total",
			Help: "Total scheduler ticks processed",
		}),
		AnalysesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "feedd_analyses_total",
			Help: "Total market analyses computed",
		}),
		SignalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feedd_signals_total",
			Help: "Total signals generated (by type)",
		}, []string{"type"}),
		DroppedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "feedd_dropped_updates_total",
			Help: "Updates dropped due to slow consumers",
		}),
		WSClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "feedd_ws_clients",
			Help: "Currently connected websocket clients",
		}),
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "feedd_tick_duration_seconds",
			Help:    "Tick processing latency (append + analyze + maybe-signal)",
			Buckets: []float64{0.000001, 0.000005, 0.00001, 0.00005, 0.0001, 0.0005, 0.001},
		}),
	}

	prometheus.MustRegister(
		m.TicksTotal,
		m.AnalysesTotal,
		m.SignalsTotal,
		m.DroppedTotal,
		m.WSClients,
		m.TickDuration,
	)

	return m
}

// HealthStatus represents the feed engine's health.
type HealthStatus struct {
	mu sync.RWMutex

	FeedActive   bool
	LastTickTime time.Time
	StartedAt    time.Time
}

// NewHealthStatus returns a default health status.
func NewHealthStatus() *HealthStatus {
	return &HealthStatus{StartedAt: time.Now()}
}

func (h *HealthStatus) SetFeedActive(v bool) {
	h.mu.Lock()
	h.FeedActive = v
	h.mu.Unlock()
}

func (h *HealthStatus) SetLastTickTime(t time.Time) {
	h.mu.Lock()
	h.LastTickTime = t
	h.mu.Unlock()
}

// ServeHTTP handles the /healthz endpoint.
func (h *HealthStatus) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	tickAge := ""
	if !h.LastTickTime.IsZero() {
		tickAge = time.Since(h.LastTickTime).Round(time.Millisecond).String()
	}

	status := struct {
		Status     string `json:"status"`
		Uptime     string `json:"uptime"`
		FeedActive bool   `json:"feed_active"`
		LastTick   string `json:"last_tick_time"`
		TickAge    string `json:"tick_age"`
	}{
		Status:     "ok",
		Uptime:     time.Since(h.StartedAt).Round(time.Second).String(),
		FeedActive: h.FeedActive,
		LastTick:   h.LastTickTime.Format(time.RFC3339),
		TickAge:    tickAge,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status)
}

// Server runs an HTTP server exposing /metrics and /healthz.
type Server struct {
	addr string
	srv  *http.Server
}

// NewServer creates a metrics and health server.
func NewServer(addr string, health *HealthStatus) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", health.ServeHTTP)

	return &Server{
		addr: addr,
		srv:  &http.Server{Addr: addr, Handler: mux},
	}
}

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		log.Printf("[metrics] server listening on %s", s.addr)
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("[metrics] server error: %v", err)
		}
	}()
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) {
	s.srv.Shutdown(ctx)
}
