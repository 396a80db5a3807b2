package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	DataFile string
	Port     string
	Env      string

	// YieldHourlyRate is the simulation compound rate per hour (0.5 = 50%/h).
	YieldHourlyRate float64
	// YieldTickInterval is how often the accrual engine sweeps.
	YieldTickInterval time.Duration
	// CashOverdraft allows deposits to drive the Cash balance negative.
	CashOverdraft bool
}

func Load() (*Config, error) {
	cfg := &Config{
		DataFile:          "pixbank.json",
		Port:              "8080",
		Env:               "development",
		YieldHourlyRate:   0.5,
		YieldTickInterval: 10 * time.Second,
		CashOverdraft:     true,
	}

	if v := os.Getenv("DATA_FILE"); v != "" {
		cfg.DataFile = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("ENVIRONMENT"); v != "" {
		cfg.Env = v
	}
	if v := os.Getenv("YIELD_HOURLY_RATE"); v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil || rate < 0 {
			return nil, fmt.Errorf("invalid YIELD_HOURLY_RATE %q", v)
		}
		cfg.YieldHourlyRate = rate
	}
	if v := os.Getenv("YIELD_TICK_INTERVAL"); v != "" {
		interval, err := time.ParseDuration(v)
		if err != nil || interval <= 0 {
			return nil, fmt.Errorf("invalid YIELD_TICK_INTERVAL %q", v)
		}
		cfg.YieldTickInterval = interval
	}
	if v := os.Getenv("CASH_OVERDRAFT"); v != "" {
		overdraft, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid CASH_OVERDRAFT %q", v)
		}
		cfg.CashOverdraft = overdraft
	}

	return cfg, nil
}
