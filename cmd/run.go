package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"github.com/txplain-labs/txplain/internal/config"
	"github.com/txplain-labs/txplain/internal/logger"
	"github.com/txplain-labs/txplain/internal/metrics"
	"github.com/txplain-labs/txplain/internal/metrics/prometheus"
	"github.com/txplain-labs/txplain/internal/version"
	"github.com/txplain-labs/txplain/pkg/clients/ethereum"
	"github.com/txplain-labs/txplain/pkg/explainer"
	"github.com/txplain-labs/txplain/pkg/fetcher"
	"github.com/txplain-labs/txplain/pkg/paymentVerifier"
	"github.com/txplain-labs/txplain/pkg/providerPool"
	"github.com/txplain-labs/txplain/pkg/rpcServer"
	"github.com/txplain-labs/txplain/pkg/shutdown"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the txplain API server",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.NewConfig()

		l, _ := logger.NewLogger(&logger.LoggerConfig{Debug: cfg.Debug})

		if err := cfg.Validate(); err != nil {
			l.Sugar().Fatalw("Invalid configuration", zap.Error(err))
		}

		l.Sugar().Infow("txplain",
			zap.String("version", version.GetVersion()),
			zap.String("commit", version.GetCommit()),
			zap.String("chain", cfg.Chain.String()),
			zap.Int("providers", len(cfg.EthereumRpcConfig.Urls)),
		)

		metricsClients, err := metrics.InitMetricsSinksFromConfig(cfg, l)
		if err != nil {
			l.Sugar().Fatalw("Failed to setup metrics clients", zap.Error(err))
		}

		sink, err := metrics.NewMetricsSink(&metrics.MetricsSinkConfig{}, metricsClients)
		if err != nil {
			l.Sugar().Fatalw("Failed to setup metrics sink", zap.Error(err))
		}

		clients := make([]*ethereum.Client, 0, len(cfg.EthereumRpcConfig.Urls))
		for _, url := range cfg.EthereumRpcConfig.Urls {
			clients = append(clients, ethereum.NewClient(&ethereum.EthereumClientConfig{
				BaseUrl:    url,
				HttpClient: ethereum.DefaultHttpClient(),
			}, l))
		}

		pool := providerPool.NewProviderPool(clients, sink, l)
		f := fetcher.NewFetcher(pool, l)
		pv := paymentVerifier.NewPaymentVerifier(pool, cfg, sink, l)
		e := explainer.NewExplainer(f, pv, cfg, sink, l)

		rpc := rpcServer.NewRpcServer(&rpcServer.RpcServerConfig{
			HttpPort: cfg.RpcConfig.HttpPort,
		}, e, pv, cfg, sink, l)

		go func() {
			if err := rpc.Start(context.Background()); err != nil {
				l.Sugar().Fatalw("Failed to start RPC server", zap.Error(err))
			}
		}()

		promChan := make(chan bool)
		if cfg.PrometheusConfig.Enabled {
			pServer := prometheus.NewPrometheusServer(&prometheus.PrometheusServerConfig{
				Port: cfg.PrometheusConfig.Port,
			}, l)
			if err := pServer.Start(promChan); err != nil {
				l.Sugar().Fatalw("Failed to start prometheus server", zap.Error(err))
			}
		}

		l.Sugar().Info("Started txplain")

		gracefulShutdown := shutdown.CreateGracefulShutdownChannel()

		done := make(chan bool)
		shutdown.ListenForShutdown(gracefulShutdown, done, func() {
			l.Sugar().Info("Shutting down...")
			ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
			defer cancel()
			if err := rpc.Shutdown(ctx); err != nil {
				l.Sugar().Errorw("Failed to shut down RPC server", zap.Error(err))
			}
			if cfg.PrometheusConfig.Enabled {
				promChan <- true
			}
		}, time.Second*5, l)
	},
}
