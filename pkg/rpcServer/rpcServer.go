// Package rpcServer exposes the explanation and payment verification
// operations over a small JSON HTTP API.
package rpcServer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/cors"
	"github.com/txplain-labs/txplain/internal/config"
	"github.com/txplain-labs/txplain/internal/metrics"
	"github.com/txplain-labs/txplain/pkg/explainer"
	"github.com/txplain-labs/txplain/pkg/paymentVerifier"
	"go.uber.org/zap"
)

type RpcServerConfig struct {
	HttpPort int
}

type RpcServer struct {
	Logger *zap.Logger

	rpcConfig    *RpcServerConfig
	globalConfig *config.Config
	explainer    *explainer.Explainer
	verifier     *paymentVerifier.PaymentVerifier
	metricsSink  *metrics.MetricsSink

	httpServer *http.Server
}

func NewRpcServer(
	rpcConfig *RpcServerConfig,
	e *explainer.Explainer,
	pv *paymentVerifier.PaymentVerifier,
	gcfg *config.Config,
	ms *metrics.MetricsSink,
	l *zap.Logger,
) *RpcServer {
	return &RpcServer{
		Logger:       l,
		rpcConfig:    rpcConfig,
		globalConfig: gcfg,
		explainer:    e,
		verifier:     pv,
		metricsSink:  ms,
	}
}

// Handler builds the full middleware-wrapped route tree. Exposed for tests.
func (rpc *RpcServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/explain", rpc.handleExplain)
	mux.HandleFunc("GET /v1/payment/{hash}", rpc.handleVerifyPayment)
	mux.HandleFunc("GET /v1/health", rpc.handleHealth)

	return cors.Default().Handler(rpc.withObservability(mux))
}

// Start begins serving and blocks until the listener fails or Shutdown is
// called.
func (rpc *RpcServer) Start(ctx context.Context) error {
	rpc.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", rpc.rpcConfig.HttpPort),
		Handler:           rpc.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	rpc.Logger.Sugar().Infow("starting http rpc server",
		zap.Int("port", rpc.rpcConfig.HttpPort),
	)
	if err := rpc.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests within the context deadline.
func (rpc *RpcServer) Shutdown(ctx context.Context) error {
	if rpc.httpServer == nil {
		return nil
	}
	return rpc.httpServer.Shutdown(ctx)
}

func (rpc *RpcServer) writeJson(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		rpc.Logger.Sugar().Errorw("failed to encode response body", zap.Error(err))
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (rpc *RpcServer) writeError(w http.ResponseWriter, statusCode int, message string) {
	rpc.writeJson(w, statusCode, &errorResponse{Error: message})
}
