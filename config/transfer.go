package config

import (
	"fmt"
	"net/url"
	"time"
)

const (
	TransferBackendHTTP  = "http"
	TransferBackendLocal = "local"

	defaultTransferBackend    = TransferBackendLocal
	defaultTransferEndpoint   = "http://127.0.0.1:8080"
	defaultTransferTimeout    = 20 * time.Second
	defaultTransferMaxRetries = uint(5)
	defaultTransferRetryDelay = 500 * time.Millisecond
)

// TransferConfig configures the client of the asset transfer service
type TransferConfig struct {
	Backend    string        `long:"backend" description:"Asset transfer service backend" choice:"http" choice:"local"`
	Endpoint   string        `long:"endpoint" description:"Base URL of the asset transfer service"`
	Timeout    time.Duration `long:"timeout" description:"Timeout of a single request to the asset transfer service"`
	MaxRetries uint          `long:"maxretries" description:"Attempts made when querying a transfer outcome"`
	RetryDelay time.Duration `long:"retrydelay" description:"Delay between two attempts of an outcome query"`
}

func (cfg *TransferConfig) Validate() error {
	switch cfg.Backend {
	case TransferBackendLocal:
	case TransferBackendHTTP:
		if _, err := url.ParseRequestURI(cfg.Endpoint); err != nil {
			return fmt.Errorf("invalid transfer endpoint %q: %w", cfg.Endpoint, err)
		}
	default:
		return fmt.Errorf("unsupported transfer backend %q", cfg.Backend)
	}

	if cfg.Timeout <= 0 {
		return fmt.Errorf("transfer timeout must be positive")
	}
	if cfg.MaxRetries == 0 {
		return fmt.Errorf("transfer max retries must be positive")
	}

	return nil
}

func DefaultTransferConfig() TransferConfig {
	return TransferConfig{
		Backend:    defaultTransferBackend,
		Endpoint:   defaultTransferEndpoint,
		Timeout:    defaultTransferTimeout,
		MaxRetries: defaultTransferMaxRetries,
		RetryDelay: defaultTransferRetryDelay,
	}
}
