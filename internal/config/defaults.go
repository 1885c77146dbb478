package config

import "github.com/spf13/viper"

// DefaultProgramID is used when no program_id is configured
const DefaultProgramID = "2Yc6p67wRJ8zYpqJqWeZ7cBL6Hrr17JRnqivah38kkP2"

// setDefaults registers every key so environment overrides apply to all
func setDefaults(v *viper.Viper) {
	v.SetDefault("program_id", DefaultProgramID)

	v.SetDefault("state.backend", BackendPebble)
	v.SetDefault("state.path", "data/state")
	v.SetDefault("state.cache_size", 4096)

	v.SetDefault("receipts.backend", ReceiptsNone)
	v.SetDefault("receipts.path", "data/receipts.db")
	v.SetDefault("receipts.dsn", "")
	v.SetDefault("receipts.max_open_conns", 10)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}
