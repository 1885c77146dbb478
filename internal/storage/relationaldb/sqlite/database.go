// Package sqlite stores receipts in an embedded SQLite file using the
// pure-Go modernc driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/LeJamon/goswap/internal/storage/relationaldb"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// Dialect is the SQLite flavor of the receipt queries
var Dialect = relationaldb.Dialect{
	Name: "sqlite",
	Upsert: `INSERT OR REPLACE INTO invocations (id, seq, operation, result, code, affected, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`,
	Bind: relationaldb.QuestionBind,
}

// SQLiteDatabase implements the Database interface for SQLite
type SQLiteDatabase struct {
	db       *sql.DB
	config   *relationaldb.Config
	receipts *relationaldb.SQLReceiptRepository
}

// NewDatabase creates a new SQLite database instance
func NewDatabase(config *relationaldb.Config) (*SQLiteDatabase, error) {
	if err := config.Validate(); err != nil {
		return nil, relationaldb.NewConfigurationError("new_database", "invalid configuration", err)
	}
	if config.Driver != "sqlite" {
		return nil, relationaldb.NewConfigurationError("new_database", "driver is not sqlite", relationaldb.ErrInvalidDriver)
	}
	return &SQLiteDatabase{config: config}, nil
}

// Open opens the database file and initializes schema
func (db *SQLiteDatabase) Open(ctx context.Context) error {
	connStr, err := db.config.BuildConnectionString()
	if err != nil {
		return relationaldb.NewConfigurationError("open", "failed to build connection string", err)
	}

	sqlDB, err := sql.Open("sqlite", connStr)
	if err != nil {
		return relationaldb.NewConnectionError("open", "failed to open database", err)
	}
	sqlDB.SetMaxOpenConns(db.config.MaxOpenConns)
	sqlDB.SetMaxIdleConns(db.config.MaxIdleConns)

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

// Close closes the database
func (db *SQLiteDatabase) Close(ctx context.Context) error {
	if db.db == nil {
		return nil
	}
	err := db.db.Close()
	db.db = nil
	db.receipts = nil
	if err != nil {
		return relationaldb.NewConnectionError("close", "failed to close database", err)
	}
	return nil
}

// Ping tests the database connection
func (db *SQLiteDatabase) Ping(ctx context.Context) error {
	if db.db == nil {
		return relationaldb.ErrDatabaseClosed
	}
	if err := db.db.PingContext(ctx); err != nil {
		return relationaldb.NewConnectionError("ping", "database ping failed", err)
	}
	return nil
}

// Receipts returns the receipt repository. It is nil until Open succeeds.
func (db *SQLiteDatabase) Receipts() relationaldb.ReceiptRepository {
	if db.receipts == nil {
		return nil
	}
	return db.receipts
}

func initSchema(ctx context.Context, db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS invocations (
			id BLOB PRIMARY KEY,
			seq INTEGER NOT NULL,
			operation TEXT NOT NULL,
			result TEXT NOT NULL,
			code INTEGER NOT NULL,
			affected INTEGER NOT NULL,
			created_at INTEGER NOT NULL
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
