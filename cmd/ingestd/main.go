// Command ingestd runs the trading-data ingestion and indexing service:
// it accepts wire-format feeds over TCP and a local Unix socket, applies
// them to the in-memory OrderBook/TradeBook tables in batches, and writes
// latency metrics to CSV and Prometheus.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	_ "go.uber.org/automaxprocs"

	"github.com/vineetd/tradebook-ingestd/internal/config"
	"github.com/vineetd/tradebook-ingestd/internal/ingest"
	"github.com/vineetd/tradebook-ingestd/internal/logging"
	"github.com/vineetd/tradebook-ingestd/internal/metrics"
	"github.com/vineetd/tradebook-ingestd/internal/table"
	"github.com/vineetd/tradebook-ingestd/internal/transport"
)

func main() {
	debug := flag.Bool("debug", false, "enable debug logging (overrides INGEST_LOG_LEVEL)")
	flag.Parse()

	cfg, err := config.Load(nil)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if *debug {
		cfg.LogLevel = "debug"
	}
	cfg.Print()

	logger := logging.New(logging.Config{
		Level:  logging.Level(cfg.LogLevel),
		Format: logging.Format(cfg.LogFormat),
		Dir:    cfg.LogDirectory,
	})
	cfg.LogConfig(logger)

	maxProcs := runtime.GOMAXPROCS(0)
	logger.Info().Int("gomaxprocs", maxProcs).Msg("automaxprocs sized to container CPU limit")

	orderBook := table.New(table.OrderBookSchema)
	tradeBook := table.New(table.TradeBookSchema)

	channel := ingest.NewChannel(cfg.IngestQueueCapacity, cfg.ChannelBurstRate)
	batcher := ingest.NewBatcher(channel, ingest.BatcherConfig{
		BatchSize:      cfg.BatchSize,
		BatchTimeoutMs: cfg.BatchTimeoutMs,
	})
	applier := ingest.NewApplier(orderBook, tradeBook)

	pipeline, err := metrics.NewPipeline(metrics.Config{
		Directory:       cfg.MetricsDirectory,
		FlushInterval:   cfg.MetricsFlushInterval,
		SummaryInterval: cfg.MetricsSummaryInterval,
	}, channel.Depth)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to start metrics pipeline")
	}
	if cfg.EnableMetrics {
		pipeline.Start()
	} else {
		logger.Info().Msg("metrics pipeline disabled by configuration, counters kept in-process only")
	}

	engine := ingest.NewEngine(batcher, applier, pipeline, nil)
	events := engine.Subscribe(64)
	go drainBatchApplied(events, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	transportCfg := transport.Config{ReadBufferBytes: cfg.TCPBufferSize}
	tcpAddr := fmt.Sprintf(":%d", cfg.TCPPort)
	tcpListener, err := transport.NewTCPListener(tcpAddr, transportCfg, channel, pipeline, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to start tcp listener")
	}
	pipeTransportCfg := transportCfg
	pipeTransportCfg.MaxConnections = cfg.MaxPipeConns
	pipeListener, err := transport.NewPipeListener(cfg.PipeSocketPath(), pipeTransportCfg, channel, pipeline, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to start pipe listener")
	}

	go func() {
		if err := tcpListener.Serve(ctx); err != nil {
			logger.Error().Err(err).Msg("tcp listener stopped")
		}
	}()
	go func() {
		if err := pipeListener.Serve(ctx); err != nil {
			logger.Error().Err(err).Msg("pipe listener stopped")
		}
	}()

	if cfg.EnableMetrics {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			logger.Info().Str("addr", cfg.PrometheusAddr).Msg("prometheus endpoint listening")
			if err := http.ListenAndServe(cfg.PrometheusAddr, mux); err != nil && err != http.ErrServerClosed {
				logger.Error().Err(err).Msg("prometheus http server stopped")
			}
		}()
	}

	go engine.Run()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	logger.Info().Msg("shutdown signal received, draining")

	const drainTimeout = 10 * time.Second
	_ = tcpListener.Shutdown(drainTimeout)
	_ = pipeListener.Shutdown(drainTimeout)
	cancel()
	channel.Close()

	pipeline.Dispose()
	logger.Info().Msg("shutdown complete")
}

// drainBatchApplied consumes BatchApplied events so the engine's publish
// never blocks. A real GUI subscriber would replace this with a grid
// invalidation callback; headless operation just logs a debug summary.
func drainBatchApplied(events <-chan ingest.BatchApplied, logger zerolog.Logger) {
	for ev := range events {
		logger.Debug().
			Int("total", ev.Total).
			Int("rejected", ev.Rejected).
			Int64("batch_latency_ms", ev.BatchLatencyMs).
			Msg("batch applied")
	}
}
