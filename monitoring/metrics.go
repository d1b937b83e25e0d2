package monitoring

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by route, method and status code",
		},
		[]string{"route", "method", "code"},
	)

	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	itemOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "item_operations_total",
			Help: "Total ticket store operations",
		},
		[]string{"operation", "status"},
	)

	itemsStored = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "items_stored",
			Help: "Number of tickets currently held by the store",
		},
	)

	eventPublishes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_publish_total",
			Help: "Realtime ticket event publishes",
		},
		[]string{"status"},
	)
)

// Monitor records service metrics. The zero value is ready to use.
type Monitor struct{}

func NewMonitor() *Monitor {
	return &Monitor{}
}

// TrackRequest records one HTTP response.
func (m *Monitor) TrackRequest(route, method string, code int, duration time.Duration) {
	httpRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	httpDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

// TrackItemOperation records the outcome of a store operation.
func (m *Monitor) TrackItemOperation(operation, status string) {
	itemOperations.WithLabelValues(operation, status).Inc()
}

func (m *Monitor) SetItemsStored(n int) {
	itemsStored.Set(float64(n))
}

func (m *Monitor) AddItemsStored(delta int) {
	itemsStored.Add(float64(delta))
}

func (m *Monitor) TrackPublish(status string) {
	eventPublishes.WithLabelValues(status).Inc()
}

// Serve exposes the default registry on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown", "error", err)
		}
	}()

	slog.Info("Metrics server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
