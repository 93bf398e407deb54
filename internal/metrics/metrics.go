// Package metrics provides a sink that fans metric writes out to every
// configured metrics backend.
package metrics

import (
	"time"

	"github.com/txplain-labs/txplain/internal/config"
	"github.com/txplain-labs/txplain/internal/metrics/metricsTypes"
	"github.com/txplain-labs/txplain/internal/metrics/prometheus"
	"go.uber.org/zap"
)

type MetricsSinkConfig struct{}

type MetricsSink struct {
	config  *MetricsSinkConfig
	clients []metricsTypes.IMetricsClient
}

// InitMetricsSinksFromConfig constructs the metrics clients enabled by the
// global config.
func InitMetricsSinksFromConfig(cfg *config.Config, l *zap.Logger) ([]metricsTypes.IMetricsClient, error) {
	clients := make([]metricsTypes.IMetricsClient, 0)

	if cfg.PrometheusConfig.Enabled {
		pmc, err := prometheus.NewPrometheusMetricsClient(&prometheus.PrometheusMetricsConfig{
			Metrics: metricsTypes.MetricTypes,
		}, l)
		if err != nil {
			return nil, err
		}
		clients = append(clients, pmc)
	}

	return clients, nil
}

func NewMetricsSink(cfg *MetricsSinkConfig, clients []metricsTypes.IMetricsClient) (*MetricsSink, error) {
	return &MetricsSink{
		config:  cfg,
		clients: clients,
	}, nil
}

// Incr increments a counter on every configured client. A nil sink is a
// no-op so components can run without metrics wired up (e.g. in tests).
func (ms *MetricsSink) Incr(name string, labels []metricsTypes.MetricsLabel, value float64) {
	if ms == nil {
		return
	}
	for _, c := range ms.clients {
		_ = c.Incr(name, labels, value)
	}
}

func (ms *MetricsSink) Gauge(name string, value float64, labels []metricsTypes.MetricsLabel) {
	if ms == nil {
		return
	}
	for _, c := range ms.clients {
		_ = c.Gauge(name, value, labels)
	}
}

func (ms *MetricsSink) Timing(name string, value time.Duration, labels []metricsTypes.MetricsLabel) {
	if ms == nil {
		return
	}
	for _, c := range ms.clients {
		_ = c.Timing(name, value, labels)
	}
}

func (ms *MetricsSink) Flush() {
	if ms == nil {
		return
	}
	for _, c := range ms.clients {
		c.Flush()
	}
}
