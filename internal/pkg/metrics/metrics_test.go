package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/deweni2/telegram-video-bot/internal/core/domain"
)

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics()

	m.IncUpdate("link")
	m.IncUpdate("link")
	m.IncUpdate("command")
	m.IncRequest(domain.OutcomeDelivered)
	m.IncDelivery(domain.DeliveryVideo)
	m.IncDelivery(domain.DeliveryDocument)
	m.IncDelivery(domain.DeliveryDocument)

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"link updates", testutil.ToFloat64(m.UpdatesTotal.WithLabelValues("link")), 2},
		{"command updates", testutil.ToFloat64(m.UpdatesTotal.WithLabelValues("command")), 1},
		{"delivered requests", testutil.ToFloat64(m.RequestsTotal.WithLabelValues(domain.OutcomeDelivered)), 1},
		{"video deliveries", testutil.ToFloat64(m.DeliveriesTotal.WithLabelValues("video")), 1},
		{"document deliveries", testutil.ToFloat64(m.DeliveriesTotal.WithLabelValues("document")), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestMetrics_GaugeAndHistogram(t *testing.T) {
	m := NewMetrics()

	m.SetDownloadsInFlight(3)
	if got := testutil.ToFloat64(m.DownloadsInFlight); got != 3 {
		t.Errorf("downloads_in_flight = %v, want 3", got)
	}

	m.ObserveDownload(2*time.Second, true)
	m.ObserveDownload(time.Second, false)
	if n := testutil.CollectAndCount(m.DownloadDuration); n != 2 {
		t.Errorf("download_duration_seconds series = %d, want 2", n)
	}
}

func TestMetrics_SeparateRegistries(t *testing.T) {
	a, b := NewMetrics(), NewMetrics()
	a.IncRequest(domain.OutcomeNoLink)
	if got := testutil.ToFloat64(b.RequestsTotal.WithLabelValues(domain.OutcomeNoLink)); got != 0 {
		t.Errorf("registries leak between instances: %v", got)
	}
}
