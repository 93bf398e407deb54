// Package providerPool implements ordered failover across a list of
// untrusted read-only Ethereum endpoints. Each read probes candidates in
// order and executes against the first live one; there is no caching, no
// retry within a candidate and no sticky affinity across calls.
package providerPool

import (
	"context"
	"errors"
	"fmt"

	"github.com/txplain-labs/txplain/internal/metrics"
	"github.com/txplain-labs/txplain/internal/metrics/metricsTypes"
	"github.com/txplain-labs/txplain/pkg/clients/ethereum"
	"go.uber.org/zap"
)

// AllProvidersUnavailableError is returned when every candidate in the pool
// failed either its liveness probe or the requested operation.
type AllProvidersUnavailableError struct {
	Operation string
	Attempts  int
	LastErr   error
}

func (e *AllProvidersUnavailableError) Error() string {
	return fmt.Sprintf("all %d providers unavailable for '%s': %v", e.Attempts, e.Operation, e.LastErr)
}

func (e *AllProvidersUnavailableError) Unwrap() error {
	return e.LastErr
}

type Pool struct {
	Logger *zap.Logger

	clients     []*ethereum.Client
	metricsSink *metrics.MetricsSink
}

// NewProviderPool creates a pool over an ordered list of clients. The order
// is the failover order; the list is fixed at startup.
func NewProviderPool(clients []*ethereum.Client, ms *metrics.MetricsSink, l *zap.Logger) *Pool {
	return &Pool{
		Logger:      l,
		clients:     clients,
		metricsSink: ms,
	}
}

func (p *Pool) NumProviders() int {
	return len(p.clients)
}

// Read scans the pool in order. For each candidate it issues a cheap
// liveness probe (current block height) and, on success, runs op against
// that same candidate, returning its result immediately. An empty or nil
// result from a live candidate is final; further candidates are not
// consulted. Probe or operation failure advances to the next candidate.
func Read[T any](ctx context.Context, p *Pool, operation string, op func(ctx context.Context, client *ethereum.Client) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for _, client := range p.clients {
		height, err := client.GetBlockNumber(ctx)
		if err != nil {
			p.Logger.Sugar().Debugw("provider failed liveness probe",
				zap.String("provider", client.BaseUrl),
				zap.String("operation", operation),
				zap.Error(err),
			)
			p.metricsSink.Incr(metricsTypes.Metric_Incr_ProviderProbeFailed, []metricsTypes.MetricsLabel{
				{Name: "operation", Value: operation},
			}, 1)
			lastErr = err
			continue
		}
		p.metricsSink.Gauge(metricsTypes.Metric_Gauge_CurrentBlockHeight, float64(height), nil)

		result, err := op(ctx, client)
		if err != nil {
			p.Logger.Sugar().Debugw("provider failed operation",
				zap.String("provider", client.BaseUrl),
				zap.String("operation", operation),
				zap.Error(err),
			)
			lastErr = err
			continue
		}
		return result, nil
	}

	p.Logger.Sugar().Errorw("all providers unavailable",
		zap.String("operation", operation),
		zap.Int("attempts", len(p.clients)),
		zap.Error(lastErr),
	)
	p.metricsSink.Incr(metricsTypes.Metric_Incr_ProviderExhausted, []metricsTypes.MetricsLabel{
		{Name: "operation", Value: operation},
	}, 1)
	return zero, &AllProvidersUnavailableError{
		Operation: operation,
		Attempts:  len(p.clients),
		LastErr:   lastErr,
	}
}

// IsAllProvidersUnavailable reports whether err is a pool-exhaustion error.
func IsAllProvidersUnavailable(err error) bool {
	var unavailable *AllProvidersUnavailableError
	return errors.As(err, &unavailable)
}
