package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, DefaultProgramID, config.ProgramID)
	assert.Equal(t, BackendPebble, config.State.Backend)
	assert.Equal(t, 4096, config.State.CacheSize)
	assert.Equal(t, ReceiptsNone, config.Receipts.Backend)
	assert.Equal(t, "info", config.Log.Level)
	assert.Empty(t, config.GetConfigPath())

	pk, err := config.Program()
	require.NoError(t, err)
	assert.Equal(t, DefaultProgramID, pk.String())
}

func TestLoadConfigFile(t *testing.T) {
	content := `
program_id = "11111111111111111111111111111112"

[state]
backend = "bbolt"
path = "/var/lib/swapd/state.db"

[receipts]
backend = "sqlite"
path = "/var/lib/swapd/receipts.db"

[log]
level = "debug"
format = "console"
`
	path := filepath.Join(t.TempDir(), "swapd.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, BackendBbolt, config.State.Backend)
	assert.Equal(t, "/var/lib/swapd/state.db", config.State.Path)
	assert.Equal(t, 4096, config.State.CacheSize)
	assert.Equal(t, ReceiptsSQLite, config.Receipts.Backend)
	assert.Equal(t, "console", config.Log.Format)
	assert.Equal(t, path, config.GetConfigPath())
}

func TestLoadConfigEnv(t *testing.T) {
	t.Setenv("SWAPD_STATE_BACKEND", "memory")
	t.Setenv("SWAPD_LOG_LEVEL", "warn")
	t.Setenv("SWAPD_RECEIPTS_BACKEND", "postgres")
	t.Setenv("SWAPD_RECEIPTS_DSN", "postgres://swapd@localhost/swapd")

	config, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, config.State.Backend)
	assert.Equal(t, "warn", config.Log.Level)
	assert.Equal(t, ReceiptsPostgres, config.Receipts.Backend)
	assert.Equal(t, "postgres://swapd@localhost/swapd", config.Receipts.DSN)
}

func TestLoadConfigFlags(t *testing.T) {
	t.Setenv("SWAPD_STATE_BACKEND", "bbolt")

	flags := pflag.NewFlagSet("swapd", pflag.ContinueOnError)
	flags.String("state.backend", "", "")
	flags.String("log.level", "", "")
	require.NoError(t, flags.Parse([]string{"--state.backend=memory"}))

	config, err := LoadConfigWithFlags("", flags)
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, config.State.Backend)
	// unset flags leave the default alone
	assert.Equal(t, "info", config.Log.Level)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		return &Config{
			ProgramID: DefaultProgramID,
			State:     StateConfig{Backend: "PEBBLE", Path: "state"},
			Receipts:  ReceiptsConfig{Backend: ""},
			Log:       LogConfig{Level: "info", Format: "json"},
		}
	}

	t.Run("Normalizes", func(t *testing.T) {
		c := valid()
		require.NoError(t, ValidateConfig(c))
		assert.Equal(t, BackendPebble, c.State.Backend)
		assert.Equal(t, ReceiptsNone, c.Receipts.Backend)
	})

	cases := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"ProgramID", func(c *Config) { c.ProgramID = "not-base58!" }, "program_id"},
		{"Backend", func(c *Config) { c.State.Backend = "nudb" }, "state.backend"},
		{"StatePath", func(c *Config) { c.State.Path = "" }, "state.path"},
		{"CacheSize", func(c *Config) { c.State.CacheSize = -1 }, "state.cache_size"},
		{"SQLitePath", func(c *Config) { c.Receipts.Backend = "sqlite" }, "receipts.path"},
		{"PostgresDSN", func(c *Config) { c.Receipts.Backend = "postgres" }, "receipts.dsn"},
		{"LogLevel", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"LogFormat", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := valid()
			tc.modify(c)
			err := ValidateConfig(c)
			require.ErrorIs(t, err, ErrInvalid)
			assert.Contains(t, err.Error(), tc.want)
		})
	}

	t.Run("CollectsAll", func(t *testing.T) {
		c := valid()
		c.State.Backend = "nudb"
		c.Log.Format = "xml"
		var verr *ValidationError
		require.ErrorAs(t, ValidateConfig(c), &verr)
		assert.Len(t, verr.Problems, 2)
	})
}
