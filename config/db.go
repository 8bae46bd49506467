package config

import (
	"fmt"
	"time"

	"github.com/lightningnetwork/lnd/kvdb"
)

const (
	DefaultDBFileName        = "ledger.db"
	defaultDBTimeout         = 60 * time.Second
	defaultAutoCompactMinAge = 168 * time.Hour
	defaultNoFreelistSync    = true
	defaultAutoCompact       = false
)

// DBConfig is the bolt backend configuration of the ledger database
type DBConfig struct {
	// DBPath is the directory path in which the database file should be
	// stored.
	DBPath string `long:"dbpath" description:"The directory path in which the database file should be stored."`

	// DBFileName is the name of the database file.
	DBFileName string `long:"dbfilename" description:"The name of the database file."`

	// NoFreelistSync, if true, prevents the database from syncing its
	// freelist to disk, resulting in improved performance at the expense of
	// increased startup time.
	NoFreelistSync bool `long:"nofreelistsync" description:"Prevents the database from syncing its freelist to disk, resulting in improved performance at the expense of increased startup time."`

	// AutoCompact specifies if a Bolt based database backend should be
	// automatically compacted on startup (if the minimum age of the
	// database file is reached).
	AutoCompact bool `long:"autocompact" description:"Specifies if a Bolt based database backend should be automatically compacted on startup (if the minimum age of the database file is reached)."`

	// AutoCompactMinAge specifies the minimum time that must have passed
	// since a bolt database file was last compacted for the compaction to
	// be considered again.
	AutoCompactMinAge time.Duration `long:"autocompactminage" description:"Specifies the minimum time that must have passed since a bolt database file was last compacted for the compaction to be considered again."`

	DBTimeout time.Duration `long:"dbtimeout" description:"Specifies the timeout value to use when opening the ledger database."`
}

func DefaultDBConfigWithHomePath(homePath string) *DBConfig {
	return &DBConfig{
		DBPath:            DataDir(homePath),
		DBFileName:        DefaultDBFileName,
		NoFreelistSync:    defaultNoFreelistSync,
		AutoCompact:       defaultAutoCompact,
		AutoCompactMinAge: defaultAutoCompactMinAge,
		DBTimeout:         defaultDBTimeout,
	}
}

func (cfg *DBConfig) Validate() error {
	if cfg.DBPath == "" {
		return fmt.Errorf("DB path should not be empty")
	}

	if cfg.DBFileName == "" {
		return fmt.Errorf("DB file name should not be empty")
	}

	return nil
}

// GetDBBackend opens the bolt database described by the config
func (cfg *DBConfig) GetDBBackend() (kvdb.Backend, error) {
	return kvdb.GetBoltBackend(&kvdb.BoltBackendConfig{
		DBPath:            cfg.DBPath,
		DBFileName:        cfg.DBFileName,
		NoFreelistSync:    cfg.NoFreelistSync,
		AutoCompact:       cfg.AutoCompact,
		AutoCompactMinAge: cfg.AutoCompactMinAge,
		DBTimeout:         cfg.DBTimeout,
	})
}
