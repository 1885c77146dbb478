package config

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError collects every problem found in a configuration
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid configuration: " + strings.Join(e.Problems, "; ")
}

// ErrInvalid matches any *ValidationError with errors.Is
var ErrInvalid = errors.New("invalid configuration")

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalid
}

// ValidateConfig validates the complete configuration
func ValidateConfig(c *Config) error {
	var problems []string
	add := func(format string, args ...interface{}) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if _, err := c.Program(); err != nil {
		add("%v", err)
	}

	c.State.Backend = strings.ToLower(c.State.Backend)
	switch c.State.Backend {
	case BackendPebble, BackendBbolt, BackendLevelDB:
		if c.State.Path == "" {
			add("state.path is required for backend %s", c.State.Backend)
		}
	case BackendMemory:
	default:
		add("state.backend %q is not one of pebble, bbolt, leveldb, memory", c.State.Backend)
	}
	if c.State.CacheSize < 0 {
		add("state.cache_size must be >= 0")
	}

	c.Receipts.Backend = strings.ToLower(c.Receipts.Backend)
	switch c.Receipts.Backend {
	case ReceiptsNone, "":
		c.Receipts.Backend = ReceiptsNone
	case ReceiptsSQLite:
		if c.Receipts.Path == "" {
			add("receipts.path is required for sqlite")
		}
	case ReceiptsPostgres:
		if c.Receipts.DSN == "" {
			add("receipts.dsn is required for postgres")
		}
	default:
		add("receipts.backend %q is not one of none, sqlite, postgres", c.Receipts.Backend)
	}
	if c.Receipts.MaxOpenConns < 0 {
		add("receipts.max_open_conns must be >= 0")
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		add("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		add("log.format %q is not one of json, console", c.Log.Format)
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}
