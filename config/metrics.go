package config

import (
	"fmt"
	"net"
	"time"
)

const (
	defaultMetricsPort           = 2112
	defaultMetricsHost           = "127.0.0.1"
	defaultMetricsUpdateInterval = time.Second
)

// MetricsConfig defines the Prometheus server configuration
type MetricsConfig struct {
	Host           string        `long:"host" description:"IP of the Prometheus server"`
	Port           int           `long:"port" description:"Port of the Prometheus server"`
	UpdateInterval time.Duration `long:"updateinterval" description:"The interval at which pool gauges are refreshed"`
}

func (cfg *MetricsConfig) Validate() error {
	if err := validateHostPort(cfg.Host, cfg.Port); err != nil {
		return err
	}
	if cfg.UpdateInterval <= 0 {
		return fmt.Errorf("metrics update interval must be positive")
	}

	return nil
}

func (cfg *MetricsConfig) Address() (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}
	return net.JoinHostPort(cfg.Host, fmt.Sprint(cfg.Port)), nil
}

func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Port:           defaultMetricsPort,
		Host:           defaultMetricsHost,
		UpdateInterval: defaultMetricsUpdateInterval,
	}
}

func validateHostPort(host string, port int) error {
	if port < 0 || port > 65535 {
		return fmt.Errorf("invalid port: %d", port)
	}

	if ip := net.ParseIP(host); ip == nil {
		return fmt.Errorf("invalid host: %v", host)
	}

	return nil
}
