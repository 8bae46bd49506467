package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/jessevdk/go-flags"

	"github.com/babylonchain/staking-ledger/reward"
	"github.com/babylonchain/staking-ledger/util"
)

const (
	defaultLogLevel         = "info"
	defaultLogFormat        = "console"
	defaultLogFilename      = "stkd.log"
	defaultConfigFileName   = "stkd.conf"
	defaultLogDirname       = "logs"
	defaultDataDirname      = "data"
	defaultOwnerID          = "owner"
	defaultAssetContractID  = "asset-token"
	defaultRecoveryInterval = 30 * time.Second
)

var (
	// DefaultStakingDir specifies the default home directory for the daemon:
	//   C:\Users\<username>\AppData\Local\ on Windows
	//   ~/.stkd on Linux
	//   ~/Library/Application Support/Stkd on MacOS
	DefaultStakingDir = btcutil.AppDataDir("stkd", false)
)

type Config struct {
	LogLevel  string `long:"loglevel" description:"Logging level for all subsystems" choice:"debug" choice:"info" choice:"warn" choice:"error" choice:"fatal"`
	LogFormat string `long:"logformat" description:"Encoding of log lines" choice:"console" choice:"json" choice:"logfmt"`

	OwnerID         string `long:"ownerid" description:"Account allowed to pause and resume the pool"`
	AssetContractID string `long:"assetcontractid" description:"Asset contract whose transfer notifications are accepted as stakes"`

	RewardNumerator   uint64 `long:"rewardnumerator" description:"Numerator of the per-block reward rate"`
	RewardDenominator uint64 `long:"rewarddenominator" description:"Denominator of the per-block reward rate"`

	RecoveryInterval time.Duration `long:"recoveryinterval" description:"The interval between two attempts to resolve outstanding transfers"`

	Clock *ClockConfig `group:"clock" namespace:"clock"`

	DatabaseConfig *DBConfig `group:"dbconfig" namespace:"dbconfig"`

	Transfer *TransferConfig `group:"transfer" namespace:"transfer"`

	API *APIConfig `group:"api" namespace:"api"`

	Metrics *MetricsConfig `group:"metrics" namespace:"metrics"`
}

// LoadConfig parses the config file under the home directory and checks
// that the result is usable. Defaults are not applied here, `stkd init`
// writes every option into the file.
func LoadConfig(homePath string) (*Config, error) {
	cfgFile := ConfigFile(homePath)
	if !util.FileExists(cfgFile) {
		return nil, fmt.Errorf("specified config file does "+
			"not exist in %s", cfgFile)
	}

	var cfg Config
	fileParser := flags.NewParser(&cfg, flags.Default)
	if err := flags.NewIniParser(fileParser).ParseFile(cfgFile); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the given configuration to be sane
func (cfg *Config) Validate() error {
	if cfg.OwnerID == "" {
		return fmt.Errorf("owner id must be set")
	}
	if cfg.AssetContractID == "" {
		return fmt.Errorf("asset contract id must be set")
	}
	if err := cfg.RewardRate().Validate(); err != nil {
		return err
	}
	if cfg.RecoveryInterval <= 0 {
		return fmt.Errorf("recovery interval must be positive")
	}

	if cfg.Clock == nil {
		return fmt.Errorf("empty clock config")
	}
	if err := cfg.Clock.Validate(); err != nil {
		return fmt.Errorf("invalid clock config: %w", err)
	}

	if cfg.DatabaseConfig == nil {
		return fmt.Errorf("empty db config")
	}
	if err := cfg.DatabaseConfig.Validate(); err != nil {
		return fmt.Errorf("invalid db config: %w", err)
	}

	if cfg.Transfer == nil {
		return fmt.Errorf("empty transfer config")
	}
	if err := cfg.Transfer.Validate(); err != nil {
		return fmt.Errorf("invalid transfer config: %w", err)
	}

	if cfg.API == nil {
		return fmt.Errorf("empty api config")
	}
	if err := cfg.API.Validate(); err != nil {
		return fmt.Errorf("invalid api config: %w", err)
	}

	if cfg.Metrics == nil {
		return fmt.Errorf("empty metrics config")
	}
	if err := cfg.Metrics.Validate(); err != nil {
		return fmt.Errorf("invalid metrics config: %w", err)
	}

	return nil
}

func (cfg *Config) RewardRate() reward.Rate {
	return reward.Rate{
		Numerator:   cfg.RewardNumerator,
		Denominator: cfg.RewardDenominator,
	}
}

func ConfigFile(homePath string) string {
	return filepath.Join(homePath, defaultConfigFileName)
}

func LogFile(homePath string) string {
	return filepath.Join(LogDir(homePath), defaultLogFilename)
}

func LogDir(homePath string) string {
	return filepath.Join(homePath, defaultLogDirname)
}

func DataDir(homePath string) string {
	return filepath.Join(homePath, defaultDataDirname)
}

func DefaultConfigWithHomePath(homePath string) Config {
	rate := reward.DefaultRate()
	clockCfg := DefaultClockConfig(time.Now())
	transferCfg := DefaultTransferConfig()
	apiCfg := DefaultAPIConfig()
	metricsCfg := DefaultMetricsConfig()
	cfg := Config{
		LogLevel:          defaultLogLevel,
		LogFormat:         defaultLogFormat,
		OwnerID:           defaultOwnerID,
		AssetContractID:   defaultAssetContractID,
		RewardNumerator:   rate.Numerator,
		RewardDenominator: rate.Denominator,
		RecoveryInterval:  defaultRecoveryInterval,
		Clock:             &clockCfg,
		DatabaseConfig:    DefaultDBConfigWithHomePath(homePath),
		Transfer:          &transferCfg,
		API:               &apiCfg,
		Metrics:           &metricsCfg,
	}

	if err := cfg.Validate(); err != nil {
		panic(err)
	}

	return cfg
}

func DefaultConfig() Config {
	return DefaultConfigWithHomePath(DefaultStakingDir)
}
