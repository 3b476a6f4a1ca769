package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"
)

// Config holds all service settings, populated from environment variables.
// Per-run parameters (site catalog path, output paths, date range) are CLI
// flags on the retrieval command, not environment config.
type Config struct {
	// NWM retrospective archive.
	NWMBaseURL    string
	ProductSuffix string // e.g. "CHRTOUT_DOMAIN1.comp"
	FetchTimeout  time.Duration

	// External services.
	NLDIBaseURL string
	NLDITimeout time.Duration
	NWISBaseURL string
	NWISTimeout time.Duration

	// Batch execution.
	Workers     int // worker pool size; default NumCPU-1
	TaskTimeout time.Duration
	ScratchDir  string

	// Observability.
	HTTPAddr        string // empty disables the /metrics listener
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	ResolverCacheSize int
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	workers, err := parsePositiveInt("WORKERS", defaultWorkers())
	if err != nil {
		return nil, err
	}

	fetchTimeout, err := parseDuration("FETCH_TIMEOUT", time.Minute)
	if err != nil {
		return nil, err
	}
	taskTimeout, err := parseDuration("TASK_TIMEOUT", 2*time.Minute)
	if err != nil {
		return nil, err
	}
	nldiTimeout, err := parseDuration("NLDI_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}
	nwisTimeout, err := parseDuration("NWIS_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	cacheSize, err := parsePositiveInt("RESOLVER_CACHE_SIZE", 1000)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		NWMBaseURL:    envOrDefault("NWM_BASE_URL", "https://thredds.rda.ucar.edu/thredds/fileServer/files/g/ds345.0/model_output"),
		ProductSuffix: envOrDefault("NWM_PRODUCT_SUFFIX", "CHRTOUT_DOMAIN1.comp"),
		FetchTimeout:  fetchTimeout,

		NLDIBaseURL: envOrDefault("NLDI_BASE_URL", "https://api.water.usgs.gov/nldi"),
		NLDITimeout: nldiTimeout,
		NWISBaseURL: envOrDefault("NWIS_BASE_URL", "https://waterservices.usgs.gov/nwis"),
		NWISTimeout: nwisTimeout,

		Workers:     workers,
		TaskTimeout: taskTimeout,
		ScratchDir:  envOrDefault("SCRATCH_DIR", os.TempDir()),

		HTTPAddr:        os.Getenv("HTTP_ADDR"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		ResolverCacheSize: cacheSize,
	}

	if cfg.NWMBaseURL == "" {
		return nil, errors.New("NWM_BASE_URL is required")
	}
	if cfg.ProductSuffix == "" {
		return nil, errors.New("NWM_PRODUCT_SUFFIX is required")
	}
	if cfg.NLDIBaseURL == "" {
		return nil, errors.New("NLDI_BASE_URL is required")
	}

	return cfg, nil
}

// defaultWorkers reserves one unit of hardware parallelism for the
// coordinating goroutine.
func defaultWorkers() int {
	n := runtime.NumCPU() - 1
	if n < 1 {
		n = 1
	}
	return n
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parsePositiveInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return n, nil
}

func parseDuration(key string, fallback time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}
