package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/LeJamon/goswap/internal/storage/relationaldb"
	_ "github.com/lib/pq" // PostgreSQL driver
)

// Dialect is the PostgreSQL flavor of the receipt queries
var Dialect = relationaldb.Dialect{
	Name: "postgres",
	Upsert: `INSERT INTO invocations (id, seq, operation, result, code, affected, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?)
			  ON CONFLICT (id) DO UPDATE SET
			  seq = EXCLUDED.seq,
			  operation = EXCLUDED.operation,
			  result = EXCLUDED.result,
			  code = EXCLUDED.code,
			  affected = EXCLUDED.affected,
			  created_at = EXCLUDED.created_at`,
	Bind: relationaldb.DollarBind,
}

// PostgresDatabase implements the Database interface for PostgreSQL
type PostgresDatabase struct {
	db       *sql.DB
	config   *relationaldb.Config
	receipts *relationaldb.SQLReceiptRepository
}

// NewDatabase creates a new PostgreSQL database instance
func NewDatabase(config *relationaldb.Config) (*PostgresDatabase, error) {
	if err := config.Validate(); err != nil {
		return nil, relationaldb.NewConfigurationError("new_database", "invalid configuration", err)
	}
	if config.Driver != "postgres" {
		return nil, relationaldb.NewConfigurationError("new_database", "driver is not postgres", relationaldb.ErrInvalidDriver)
	}
	return &PostgresDatabase{config: config}, nil
}

// Open opens the database connection and initializes schema
func (db *PostgresDatabase) Open(ctx context.Context) error {
	connStr, err := db.config.BuildConnectionString()
	if err != nil {
		return relationaldb.NewConfigurationError("open", "failed to build connection string", err)
	}

	sqlDB, err := sql.Open("postgres", connStr)
	if err != nil {
		return relationaldb.NewConnectionError("open", "failed to open database connection", err)
	}

	sqlDB.SetMaxOpenConns(db.config.MaxOpenConns)
	sqlDB.SetMaxIdleConns(db.config.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(db.config.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(db.config.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(ctx, db.config.DefaultTimeout)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return relationaldb.NewConnectionError("open", "failed to ping database", err)
	}

	if err := initSchema(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return relationaldb.NewSchemaError("open", "failed to initialize schema", err)
	}

	db.db = sqlDB
	db.receipts = relationaldb.NewSQLReceiptRepository(sqlDB, Dialect)
	return nil
}

// Close closes the database connection
func (db *PostgresDatabase) Close(ctx context.Context) error {
	if db.db == nil {
		return nil
	}
	err := db.db.Close()
	db.db = nil
	db.receipts = nil
	if err != nil {
		return relationaldb.NewConnectionError("close", "failed to close database connection", err)
	}
	return nil
}

// Ping tests the database connection
func (db *PostgresDatabase) Ping(ctx context.Context) error {
	if db.db == nil {
		return relationaldb.ErrDatabaseClosed
	}

	ctx, cancel := context.WithTimeout(ctx, db.config.DefaultTimeout)
	defer cancel()

	if err := db.db.PingContext(ctx); err != nil {
		return relationaldb.NewConnectionError("ping", "database ping failed", err)
	}
	return nil
}

// Receipts returns the receipt repository. It is nil until Open succeeds.
func (db *PostgresDatabase) Receipts() relationaldb.ReceiptRepository {
	if db.receipts == nil {
		return nil
	}
	return db.receipts
}

func initSchema(ctx context.Context, db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS invocations (
			id BYTEA PRIMARY KEY,
			seq BIGINT NOT NULL,
			operation VARCHAR(32) NOT NULL,
			result VARCHAR(64) NOT NULL,
			code INTEGER NOT NULL,
			affected INTEGER NOT NULL,
			created_at BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_invocations_seq ON invocations(seq)`,
		`CREATE INDEX IF NOT EXISTS idx_invocations_operation ON invocations(operation)`,
	}

	for _, query := range queries {
		if _, err := db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute schema query: %w", err)
		}
	}
	return nil
}
