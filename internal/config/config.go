// Package config loads runtime configuration from environment variables
// (and an optional .env file), the way the teacher's LoadConfig does.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Config holds all server configuration.
//
// Tags:
//
//	env: Environment variable name
//	envDefault: Default value if not set
type Config struct {
	// Transport (spec.md §6)
	TCPPort       int    `env:"INGEST_TCP_PORT" envDefault:"9999"`
	PipeName      string `env:"INGEST_PIPE_NAME" envDefault:"TradingDataPipe"`
	TCPBufferSize int    `env:"INGEST_TCP_BUFFER_SIZE" envDefault:"8192"`
	MaxPipeConns  int    `env:"INGEST_MAX_PIPE_CONNS" envDefault:"4"`

	// Resource limits (from container)
	CPULimit    float64 `env:"INGEST_CPU_LIMIT" envDefault:"1.0"`
	MemoryLimit int64   `env:"INGEST_MEMORY_LIMIT" envDefault:"536870912"` // 512MB

	// Ingestion channel / batching (spec.md §6)
	IngestQueueCapacity int `env:"INGEST_QUEUE_CAPACITY" envDefault:"0"` // 0 = unbounded
	ChannelBurstRate    int `env:"INGEST_CHANNEL_BURST_RATE" envDefault:"0"`
	BatchSize           int `env:"INGEST_BATCH_SIZE" envDefault:"1000"`
	BatchTimeoutMs      int `env:"INGEST_BATCH_TIMEOUT_MS" envDefault:"100"`

	// UI refresh cadence (spec.md §6): MaxRefreshFPS is the configured
	// value, UIUpdateIntervalMs is derived by Validate as 1000/FPS.
	MaxRefreshFPS      int `env:"INGEST_MAX_REFRESH_FPS" envDefault:"60"`
	UIUpdateIntervalMs int `env:"-"`

	// Table capacity
	MaxSlotsPerTable int `env:"INGEST_MAX_SLOTS_PER_TABLE" envDefault:"2000000"`

	// Metrics (spec.md §6)
	EnableMetrics          bool          `env:"INGEST_ENABLE_METRICS" envDefault:"true"`
	MetricsDirectory       string        `env:"INGEST_METRICS_DIRECTORY" envDefault:"Metrics"`
	MetricsFlushInterval   time.Duration `env:"INGEST_METRICS_FLUSH_INTERVAL" envDefault:"1s"`
	MetricsSummaryInterval time.Duration `env:"INGEST_METRICS_SUMMARY_INTERVAL" envDefault:"10s"`
	PrometheusAddr         string        `env:"INGEST_PROMETHEUS_ADDR" envDefault:":9100"`

	// Logging (spec.md §6)
	LogLevel     string `env:"INGEST_LOG_LEVEL" envDefault:"info"`
	LogFormat    string `env:"LOG_FORMAT" envDefault:"json"`
	LogDirectory string `env:"INGEST_LOG_DIRECTORY" envDefault:"Logs"`

	// Environment
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
}

// Load reads configuration from an optional .env file and environment
// variables. Priority: ENV vars > .env file > defaults. logger may be nil
// during early startup before the structured logger exists.
func Load(logger *zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if logger != nil {
			logger.Info().Msg("no .env file found (using environment variables only)")
		} else {
			fmt.Println("info: no .env file found (using environment variables only)")
		}
	} else if logger != nil {
		logger.Info().Msg("loaded configuration from .env file")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if logger != nil {
		logger.Info().Msg("configuration loaded and validated successfully")
	}
	return cfg, nil
}

// Validate checks configuration for errors and derives UIUpdateIntervalMs
// from MaxRefreshFPS, matching spec.md §6's enumerated ranges.
func (c *Config) Validate() error {
	if c.TCPPort < 1 || c.TCPPort > 65535 {
		return fmt.Errorf("INGEST_TCP_PORT must be in 1..65535, got %d", c.TCPPort)
	}
	if c.PipeName == "" {
		return fmt.Errorf("INGEST_PIPE_NAME must not be empty")
	}
	if c.BatchSize < 1 || c.BatchSize > 10000 {
		return fmt.Errorf("INGEST_BATCH_SIZE must be in 1..10000, got %d", c.BatchSize)
	}
	if c.BatchTimeoutMs < 1 || c.BatchTimeoutMs > 10000 {
		return fmt.Errorf("INGEST_BATCH_TIMEOUT_MS must be in 1..10000, got %d", c.BatchTimeoutMs)
	}
	if c.MaxRefreshFPS < 1 || c.MaxRefreshFPS > 120 {
		return fmt.Errorf("INGEST_MAX_REFRESH_FPS must be in 1..120, got %d", c.MaxRefreshFPS)
	}
	c.UIUpdateIntervalMs = 1000 / c.MaxRefreshFPS
	if c.MaxSlotsPerTable < 1 {
		return fmt.Errorf("INGEST_MAX_SLOTS_PER_TABLE must be > 0, got %d", c.MaxSlotsPerTable)
	}
	if c.TCPBufferSize < 1 {
		return fmt.Errorf("INGEST_TCP_BUFFER_SIZE must be > 0, got %d", c.TCPBufferSize)
	}
	if c.MaxPipeConns < 1 {
		return fmt.Errorf("INGEST_MAX_PIPE_CONNS must be > 0, got %d", c.MaxPipeConns)
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("INGEST_LOG_LEVEL must be one of: debug, info, warn, error (got: %s)", c.LogLevel)
	}
	validLogFormats := map[string]bool{"json": true, "text": true, "pretty": true}
	if !validLogFormats[c.LogFormat] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, text, pretty (got: %s)", c.LogFormat)
	}
	return nil
}

// PipeSocketPath resolves PipeName to a concrete Unix domain socket path.
// The REDESIGN FLAG in spec.md substitutes a Unix domain socket for the
// platform-native named pipe; PipeName stays the configured channel name,
// and this is the one place that turns it into a filesystem path.
func (c *Config) PipeSocketPath() string {
	return filepath.Join(os.TempDir(), c.PipeName+".sock")
}

// Print logs configuration for debugging in human-readable form. For
// production use LogConfig with structured logging.
func (c *Config) Print() {
	fmt.Println("=== Ingestion Service Configuration ===")
	fmt.Printf("Environment:       %s\n", c.Environment)
	fmt.Printf("TCP Port:          %d\n", c.TCPPort)
	fmt.Printf("Pipe Name:         %s (%s)\n", c.PipeName, c.PipeSocketPath())
	fmt.Println("\n=== Resource Limits ===")
	fmt.Printf("CPU Limit:         %.1f cores\n", c.CPULimit)
	fmt.Printf("Memory Limit:      %d MB\n", c.MemoryLimit/(1024*1024))
	fmt.Println("\n=== Ingestion ===")
	fmt.Printf("Queue Capacity:    %d\n", c.IngestQueueCapacity)
	fmt.Printf("Batch Size:        %d\n", c.BatchSize)
	fmt.Printf("Batch Timeout:     %d ms\n", c.BatchTimeoutMs)
	fmt.Printf("Max Refresh FPS:   %d (ui interval %d ms)\n", c.MaxRefreshFPS, c.UIUpdateIntervalMs)
	fmt.Printf("Max Slots/Table:   %d\n", c.MaxSlotsPerTable)
	fmt.Println("\n=== Metrics ===")
	fmt.Printf("Enabled:           %t\n", c.EnableMetrics)
	fmt.Printf("Metrics Dir:       %s\n", c.MetricsDirectory)
	fmt.Printf("Flush Interval:    %s\n", c.MetricsFlushInterval)
	fmt.Printf("Summary Interval:  %s\n", c.MetricsSummaryInterval)
	fmt.Printf("Prometheus Addr:   %s\n", c.PrometheusAddr)
	fmt.Println("\n=== Logging ===")
	fmt.Printf("Level:             %s\n", c.LogLevel)
	fmt.Printf("Format:            %s\n", c.LogFormat)
	fmt.Printf("Directory:         %s\n", c.LogDirectory)
	fmt.Println("========================================")
}

// LogConfig logs configuration using structured logging.
func (c *Config) LogConfig(logger zerolog.Logger) {
	logger.Info().
		Str("environment", c.Environment).
		Int("tcp_port", c.TCPPort).
		Str("pipe_name", c.PipeName).
		Str("pipe_socket_path", c.PipeSocketPath()).
		Float64("cpu_limit", c.CPULimit).
		Int64("memory_limit_mb", c.MemoryLimit/(1024*1024)).
		Int("ingest_queue_capacity", c.IngestQueueCapacity).
		Int("batch_size", c.BatchSize).
		Int("batch_timeout_ms", c.BatchTimeoutMs).
		Int("max_refresh_fps", c.MaxRefreshFPS).
		Int("ui_update_interval_ms", c.UIUpdateIntervalMs).
		Int("max_slots_per_table", c.MaxSlotsPerTable).
		Bool("enable_metrics", c.EnableMetrics).
		Str("metrics_directory", c.MetricsDirectory).
		Dur("metrics_flush_interval", c.MetricsFlushInterval).
		Dur("metrics_summary_interval", c.MetricsSummaryInterval).
		Str("log_level", c.LogLevel).
		Str("log_format", c.LogFormat).
		Str("log_directory", c.LogDirectory).
		Msg("ingestion service configuration loaded")
}
