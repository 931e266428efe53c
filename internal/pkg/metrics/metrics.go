package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/deweni2/telegram-video-bot/internal/core/domain"
)

const namespace = "video_bot"

// Metrics holds the Prometheus collectors of the bot on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	UpdatesTotal      *prometheus.CounterVec
	RequestsTotal     *prometheus.CounterVec
	DeliveriesTotal   *prometheus.CounterVec
	DownloadDuration  *prometheus.HistogramVec
	DownloadsInFlight prometheus.Gauge
}

var _ domain.MetricsInterface = (*Metrics)(nil)

// NewMetrics registers all collectors, plus the Go and process collectors, on a new registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		UpdatesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "updates_total",
				Help:      "Telegram updates received, by route",
			},
			[]string{"route"},
		),
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Link requests handled, by outcome",
			},
			[]string{"outcome"},
		),
		DeliveriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "deliveries_total",
				Help:      "Successful deliveries, by mode",
			},
			[]string{"mode"},
		),
		DownloadDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "download_duration_seconds",
				Help:      "Time spent in the extraction engine",
				Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
			},
			[]string{"status"},
		),
		DownloadsInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "downloads_in_flight",
			Help:      "Downloads currently running on the worker pool",
		}),
	}
}

func (m *Metrics) IncUpdate(route string) {
	m.UpdatesTotal.WithLabelValues(route).Inc()
}

func (m *Metrics) IncRequest(outcome string) {
	m.RequestsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncDelivery(mode domain.DeliveryMode) {
	m.DeliveriesTotal.WithLabelValues(mode.String()).Inc()
}

func (m *Metrics) ObserveDownload(d time.Duration, ok bool) {
	status := "ok"
	if !ok {
		status = "error"
	}
	m.DownloadDuration.WithLabelValues(status).Observe(d.Seconds())
}

func (m *Metrics) SetDownloadsInFlight(n int) {
	m.DownloadsInFlight.Set(float64(n))
}
