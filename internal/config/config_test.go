package config

import "testing"

func defaultValidConfig() *Config {
	return &Config{
		TCPPort:          9999,
		PipeName:         "TradingDataPipe",
		BatchSize:        1000,
		BatchTimeoutMs:   100,
		MaxRefreshFPS:    60,
		MaxSlotsPerTable: 2_000_000,
		TCPBufferSize:    8192,
		MaxPipeConns:     4,
		LogLevel:         "info",
		LogFormat:        "json",
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	if err := defaultValidConfig().Validate(); err != nil {
		t.Fatalf("want valid config to pass, got %v", err)
	}
}

func TestValidateDerivesUIUpdateIntervalFromFPS(t *testing.T) {
	cfg := defaultValidConfig()
	cfg.MaxRefreshFPS = 60
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.UIUpdateIntervalMs != 1000/60 {
		t.Fatalf("want UIUpdateIntervalMs=%d, got %d", 1000/60, cfg.UIUpdateIntervalMs)
	}
}

func TestValidateRejectsOutOfRangeTCPPort(t *testing.T) {
	cfg := defaultValidConfig()
	cfg.TCPPort = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("want error for TCPPort=0")
	}
	cfg.TCPPort = 70000
	if err := cfg.Validate(); err == nil {
		t.Fatal("want error for TCPPort=70000")
	}
}

func TestValidateRejectsEmptyPipeName(t *testing.T) {
	cfg := defaultValidConfig()
	cfg.PipeName = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("want error for empty PipeName")
	}
}

func TestValidateRejectsOutOfRangeMaxRefreshFPS(t *testing.T) {
	cfg := defaultValidConfig()
	cfg.MaxRefreshFPS = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("want error for MaxRefreshFPS=0")
	}
	cfg.MaxRefreshFPS = 121
	if err := cfg.Validate(); err == nil {
		t.Fatal("want error for MaxRefreshFPS=121")
	}
}

func TestValidateRejectsNonPositiveBatchSize(t *testing.T) {
	cfg := defaultValidConfig()
	cfg.BatchSize = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("want error for BatchSize=0")
	}
}

func TestValidateRejectsOversizedBatchSize(t *testing.T) {
	cfg := defaultValidConfig()
	cfg.BatchSize = 10001
	if err := cfg.Validate(); err == nil {
		t.Fatal("want error for BatchSize=10001")
	}
}

func TestValidateRejectsUnknownLogLevel(t *testing.T) {
	cfg := defaultValidConfig()
	cfg.LogLevel = "verbose"
	if err := cfg.Validate(); err == nil {
		t.Fatal("want error for an unrecognized log level")
	}
}

func TestValidateRejectsUnknownLogFormat(t *testing.T) {
	cfg := defaultValidConfig()
	cfg.LogFormat = "xml"
	if err := cfg.Validate(); err == nil {
		t.Fatal("want error for an unrecognized log format")
	}
}

func TestValidateRejectsNonPositiveMaxSlots(t *testing.T) {
	cfg := defaultValidConfig()
	cfg.MaxSlotsPerTable = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("want error for a non-positive MaxSlotsPerTable")
	}
}

func TestPipeSocketPathDerivesFromPipeName(t *testing.T) {
	cfg := defaultValidConfig()
	got := cfg.PipeSocketPath()
	if got == "" {
		t.Fatal("want a non-empty socket path")
	}
}
