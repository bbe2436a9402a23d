package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress          string
	DatabaseURI         string
	LogLevel            string
	PointsEnabled       bool
	PointsRate          decimal.Decimal
	PriceTolerance      decimal.Decimal
	LockTimeout         time.Duration
	CheckoutMaxAttempts int
	PointsRetryInterval time.Duration
	WorkerPoolSize      int
	PointsRetryBatch    int
	ShutdownTimeout     time.Duration
}

const (
	defaultRunAddress          = ":8080"
	defaultLogLevel            = "info"
	defaultPointsEnabled       = true
	defaultPointsRate          = "1"
	defaultPriceTolerance      = "0.01"
	defaultLockTimeout         = 3 * time.Second
	defaultCheckoutMaxAttempts = 3
	defaultPointsRetryInterval = 30 * time.Second
	defaultWorkerPoolSize      = 2
	defaultPointsRetryBatch    = 32
	defaultShutdownTimeout     = 10 * time.Second
)

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:          getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:         getString(lookup, "DATABASE_URI", ""),
		LogLevel:            getString(lookup, "LOG_LEVEL", defaultLogLevel),
		PointsEnabled:       getBool(lookup, "POINTS_ENABLED", defaultPointsEnabled),
		LockTimeout:         getDuration(lookup, "LOCK_TIMEOUT", defaultLockTimeout),
		CheckoutMaxAttempts: getInt(lookup, "CHECKOUT_MAX_ATTEMPTS", defaultCheckoutMaxAttempts),
		PointsRetryInterval: getDuration(lookup, "POINTS_RETRY_INTERVAL", defaultPointsRetryInterval),
		WorkerPoolSize:      getInt(lookup, "WORKER_POOL_SIZE", defaultWorkerPoolSize),
		PointsRetryBatch:    getInt(lookup, "POINTS_RETRY_BATCH", defaultPointsRetryBatch),
		ShutdownTimeout:     getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
	}

	if uriFile, ok := lookup("DATABASE_URI_FILE"); ok && uriFile != "" {
		content, err := os.ReadFile(uriFile)
		if err != nil {
			return nil, fmt.Errorf("read database uri file: %w", err)
		}
		cfg.DatabaseURI = strings.TrimSpace(string(content))
	}

	fs := flag.NewFlagSet("gopherpos", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		pointsRateStr      = getString(lookup, "POINTS_RATE", defaultPointsRate)
		toleranceStr       = getString(lookup, "PRICE_TOLERANCE", defaultPriceTolerance)
		lockTimeoutStr     = cfg.LockTimeout.String()
		retryIntervalStr   = cfg.PointsRetryInterval.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	fs.BoolVar(&cfg.PointsEnabled, "points", cfg.PointsEnabled, "Accrue loyalty points for member checkouts")
	fs.StringVar(&pointsRateStr, "points-rate", pointsRateStr, "Points awarded per currency unit")
	fs.StringVar(&toleranceStr, "price-tolerance", toleranceStr, "Accepted difference between quoted and computed totals")
	fs.StringVar(&lockTimeoutStr, "lock-timeout", lockTimeoutStr, "Maximum wait for stock row locks")
	fs.IntVar(&cfg.CheckoutMaxAttempts, "max-attempts", cfg.CheckoutMaxAttempts, "Order number attempts per checkout")
	fs.StringVar(&retryIntervalStr, "points-retry-interval", retryIntervalStr, "Interval between pending points sweeps")
	fs.IntVar(&cfg.WorkerPoolSize, "worker-pool", cfg.WorkerPoolSize, "Number of concurrent points workers")
	fs.IntVar(&cfg.PointsRetryBatch, "points-batch", cfg.PointsRetryBatch, "Maximum orders per points sweep")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.PointsRate, err = decimal.NewFromString(pointsRateStr); err != nil {
		return nil, fmt.Errorf("invalid points rate: %w", err)
	}

	if cfg.PriceTolerance, err = decimal.NewFromString(toleranceStr); err != nil {
		return nil, fmt.Errorf("invalid price tolerance: %w", err)
	}

	if cfg.LockTimeout, err = time.ParseDuration(lockTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid lock timeout: %w", err)
	}

	if cfg.PointsRetryInterval, err = time.ParseDuration(retryIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid points retry interval: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if cfg.PointsRate.IsNegative() {
		return nil, fmt.Errorf("points rate must not be negative")
	}

	if cfg.PriceTolerance.IsNegative() {
		cfg.PriceTolerance = decimal.Zero
	}

	if cfg.CheckoutMaxAttempts <= 0 {
		cfg.CheckoutMaxAttempts = defaultCheckoutMaxAttempts
	}

	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = defaultWorkerPoolSize
	}

	if cfg.PointsRetryBatch <= 0 {
		cfg.PointsRetryBatch = defaultPointsRetryBatch
	}

	if cfg.PointsRetryInterval <= 0 {
		cfg.PointsRetryInterval = defaultPointsRetryInterval
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.LockTimeout < 0 {
		cfg.LockTimeout = 0
	}

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	return cfg, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getBool(lookup envLookup, key string, def bool) bool {
	if v, ok := lookup(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
