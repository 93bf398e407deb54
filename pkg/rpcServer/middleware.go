package rpcServer

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/txplain-labs/txplain/internal/metrics/metricsTypes"
	"go.uber.org/zap"
)

const requestIdHeader = "X-Request-Id"

// statusRecorder captures the status code written by a handler for logging
// and metrics.
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (sr *statusRecorder) WriteHeader(statusCode int) {
	sr.statusCode = statusCode
	sr.ResponseWriter.WriteHeader(statusCode)
}

// withObservability tags every request with an id, logs it and records
// request count and duration metrics.
func (rpc *RpcServer) withObservability(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestId := r.Header.Get(requestIdHeader)
		if requestId == "" {
			requestId = uuid.New().String()
		}
		w.Header().Set(requestIdHeader, requestId)

		recorder := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(recorder, r)
		duration := time.Since(start)

		rpc.metricsSink.Incr(metricsTypes.Metric_Incr_HttpRequest, []metricsTypes.MetricsLabel{
			{Name: "method", Value: r.Method},
			{Name: "path", Value: r.URL.Path},
			{Name: "status_code", Value: fmt.Sprintf("%d", recorder.statusCode)},
		}, 1)
		rpc.metricsSink.Timing(metricsTypes.Metric_Timing_HttpDuration, duration, []metricsTypes.MetricsLabel{
			{Name: "method", Value: r.Method},
			{Name: "path", Value: r.URL.Path},
		})

		rpc.Logger.Sugar().Infow("http request",
			zap.String("requestId", requestId),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("statusCode", recorder.statusCode),
			zap.Duration("duration", duration),
		)
	})
}
