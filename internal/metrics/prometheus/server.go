package prometheus

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type PrometheusServerConfig struct {
	Port int
}

// PrometheusServer exposes the scrape endpoint on its own port, separate
// from the public API.
type PrometheusServer struct {
	config     *PrometheusServerConfig
	logger     *zap.Logger
	httpServer *http.Server
}

func NewPrometheusServer(cfg *PrometheusServerConfig, l *zap.Logger) *PrometheusServer {
	return &PrometheusServer{
		config: cfg,
		logger: l,
	}
}

// Start serves /metrics in the background until a value arrives on quit.
func (ps *PrometheusServer) Start(quit chan bool) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	ps.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", ps.config.Port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		ps.logger.Sugar().Infow("starting prometheus server",
			zap.Int("port", ps.config.Port),
		)
		if err := ps.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			ps.logger.Sugar().Errorw("prometheus server error", zap.Error(err))
		}
	}()

	go func() {
		<-quit
		if err := ps.httpServer.Close(); err != nil {
			ps.logger.Sugar().Errorw("prometheus server close error", zap.Error(err))
		}
	}()
	return nil
}
