package config

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Config represents the complete swapd configuration
type Config struct {
	// ProgramID is the base58 program address every pool, vault and share
	// mint is derived under.
	ProgramID string `toml:"program_id" mapstructure:"program_id"`

	State    StateConfig    `toml:"state" mapstructure:"state"`
	Receipts ReceiptsConfig `toml:"receipts" mapstructure:"receipts"`
	Log      LogConfig      `toml:"log" mapstructure:"log"`

	configPath string `toml:"-" mapstructure:"-"`
}

// StateConfig selects the key-value database holding ledger state
type StateConfig struct {
	Backend   string `toml:"backend" mapstructure:"backend"`
	Path      string `toml:"path" mapstructure:"path"`
	CacheSize int    `toml:"cache_size" mapstructure:"cache_size"`
}

// ReceiptsConfig selects where invocation receipts are recorded
type ReceiptsConfig struct {
	Backend      string `toml:"backend" mapstructure:"backend"`
	Path         string `toml:"path" mapstructure:"path"`
	DSN          string `toml:"dsn" mapstructure:"dsn"`
	MaxOpenConns int    `toml:"max_open_conns" mapstructure:"max_open_conns"`
}

// LogConfig configures the zap logger
type LogConfig struct {
	Level  string `toml:"level" mapstructure:"level"`
	Format string `toml:"format" mapstructure:"format"`
}

// Supported backends
const (
	BackendPebble  = "pebble"
	BackendBbolt   = "bbolt"
	BackendLevelDB = "leveldb"
	BackendMemory  = "memory"

	ReceiptsNone     = "none"
	ReceiptsSQLite   = "sqlite"
	ReceiptsPostgres = "postgres"
)

// GetConfigPath returns the path the configuration was read from, empty
// when no file was used.
func (c *Config) GetConfigPath() string {
	return c.configPath
}

// Program parses ProgramID.
func (c *Config) Program() (solana.PublicKey, error) {
	pk, err := solana.PublicKeyFromBase58(c.ProgramID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("program_id: %w", err)
	}
	return pk, nil
}
