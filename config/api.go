package config

import (
	"fmt"
	"net"
	"time"
)

const (
	defaultAPIPort         = 8090
	defaultAPIHost         = "127.0.0.1"
	defaultAPIWriteTimeout = 30 * time.Second
)

// APIConfig defines the command and query HTTP server
type APIConfig struct {
	Host         string        `long:"host" description:"IP the API server listens on"`
	Port         int           `long:"port" description:"Port of the API server"`
	WriteTimeout time.Duration `long:"writetimeout" description:"Maximum duration before timing out writes of a response"`
}

func (cfg *APIConfig) Validate() error {
	return validateHostPort(cfg.Host, cfg.Port)
}

func (cfg *APIConfig) Address() (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}
	return net.JoinHostPort(cfg.Host, fmt.Sprint(cfg.Port)), nil
}

func DefaultAPIConfig() APIConfig {
	return APIConfig{
		Host:         defaultAPIHost,
		Port:         defaultAPIPort,
		WriteTimeout: defaultAPIWriteTimeout,
	}
}
