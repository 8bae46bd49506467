package config

import (
	"fmt"
	"time"
)

const (
	defaultBlockInterval = time.Second
	// one epoch is half a day at the default block interval
	defaultEpochLength = uint64(43_200)
)

// ClockConfig describes how block heights and epochs are derived
type ClockConfig struct {
	Genesis       string        `long:"genesis" description:"Time of block zero in RFC3339 format"`
	BlockInterval time.Duration `long:"blockinterval" description:"Duration of one block"`
	EpochLength   uint64        `long:"epochlength" description:"Number of blocks in one epoch"`
}

func (cfg *ClockConfig) GenesisTime() (time.Time, error) {
	t, err := time.Parse(time.RFC3339, cfg.Genesis)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid genesis time %q: %w", cfg.Genesis, err)
	}
	return t, nil
}

func (cfg *ClockConfig) Validate() error {
	if _, err := cfg.GenesisTime(); err != nil {
		return err
	}
	if cfg.BlockInterval <= 0 {
		return fmt.Errorf("block interval must be positive")
	}
	if cfg.EpochLength == 0 {
		return fmt.Errorf("epoch length must be positive")
	}

	return nil
}

// DefaultClockConfig starts the chain at the given time
func DefaultClockConfig(genesis time.Time) ClockConfig {
	return ClockConfig{
		Genesis:       genesis.UTC().Truncate(time.Second).Format(time.RFC3339),
		BlockInterval: defaultBlockInterval,
		EpochLength:   defaultEpochLength,
	}
}
