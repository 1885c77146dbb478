package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/LeJamon/goswap/internal/config"
	"github.com/LeJamon/goswap/internal/core/ledger/pda"
	"github.com/LeJamon/goswap/internal/core/ledger/state"
	"github.com/LeJamon/goswap/internal/core/tx"
	"github.com/LeJamon/goswap/internal/core/tx/amm"
	"github.com/LeJamon/goswap/internal/storage/database"
	"github.com/LeJamon/goswap/internal/storage/database/bbolt"
	"github.com/LeJamon/goswap/internal/storage/database/leveldb"
	"github.com/LeJamon/goswap/internal/storage/database/memorydb"
	"github.com/LeJamon/goswap/internal/storage/database/pebble"
	"github.com/LeJamon/goswap/internal/storage/relationaldb"
	"github.com/LeJamon/goswap/internal/storage/relationaldb/postgres"
	"github.com/LeJamon/goswap/internal/storage/relationaldb/sqlite"
	"go.uber.org/zap"
)

const stateBucket = "state"

// node is the wired ledger a command works against
type node struct {
	store    *state.Store
	deriver  *pda.ProgramDeriver
	engine   *tx.Engine
	receipts *relationaldb.Manager
}

func openStateDB(c config.StateConfig) (database.DB, error) {
	if c.Backend == config.BackendMemory {
		return memorydb.New(), nil
	}
	if err := os.MkdirAll(filepath.Dir(c.Path), 0o755); err != nil {
		return nil, fmt.Errorf("state directory: %w", err)
	}
	var (
		db  database.DB
		err error
	)
	switch c.Backend {
	case config.BackendPebble:
		db, err = pebble.Open(c.Path)
	case config.BackendBbolt:
		db, err = bbolt.Open(c.Path, stateBucket)
	case config.BackendLevelDB:
		db, err = leveldb.Open(c.Path)
	default:
		return nil, fmt.Errorf("%w: %q", database.ErrUnknownBackend, c.Backend)
	}
	if err != nil {
		return nil, err
	}
	return db, nil
}

func openReceipts(ctx context.Context, c config.ReceiptsConfig, logger *zap.Logger) (*relationaldb.Manager, error) {
	var (
		dbConfig *relationaldb.Config
		db       relationaldb.Database
		err      error
	)
	switch c.Backend {
	case config.ReceiptsNone:
		return nil, nil
	case config.ReceiptsSQLite:
		if err := os.MkdirAll(filepath.Dir(c.Path), 0o755); err != nil {
			return nil, fmt.Errorf("receipts directory: %w", err)
		}
		dbConfig = relationaldb.SQLiteConfig(c.Path)
		db, err = sqlite.NewDatabase(dbConfig)
	case config.ReceiptsPostgres:
		dbConfig = postgresConfig(c)
		db, err = postgres.NewDatabase(dbConfig)
	default:
		return nil, fmt.Errorf("unknown receipts backend %q", c.Backend)
	}
	if err != nil {
		return nil, err
	}
	m := relationaldb.NewManager(db, dbConfig, relationaldb.WithLogger(logger))
	if err := m.Open(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

// postgresConfig caps the pool at max_open_conns, shrinking the idle pool
// with it.
func postgresConfig(c config.ReceiptsConfig) *relationaldb.Config {
	dbConfig := relationaldb.PostgresConfig(c.DSN)
	if c.MaxOpenConns <= 0 {
		return dbConfig
	}
	return dbConfig.WithPoolSettings(c.MaxOpenConns, min(dbConfig.MaxIdleConns, c.MaxOpenConns),
		dbConfig.ConnMaxLifetime, dbConfig.ConnMaxIdleTime)
}

// openNode opens state, the optional receipt store and an engine whose
// sequence continues after the last recorded receipt.
func openNode(ctx context.Context, c *config.Config, logger *zap.Logger) (*node, error) {
	program, err := c.Program()
	if err != nil {
		return nil, err
	}
	db, err := openStateDB(c.State)
	if err != nil {
		return nil, fmt.Errorf("open state: %w", err)
	}
	store, err := state.NewStore(db, c.State.CacheSize, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	n := &node{store: store, deriver: pda.NewProgramDeriver(program)}

	n.receipts, err = openReceipts(ctx, c.Receipts, logger)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("open receipts: %w", err)
	}

	engineConfig := tx.EngineConfig{StartSequence: 1}
	opts := []tx.EngineOption{tx.WithLogger(logger)}
	if n.receipts != nil {
		repo := n.receipts.Receipts()
		last, err := repo.GetMaxSequence(ctx)
		if err != nil {
			n.Close()
			return nil, err
		}
		if last != nil {
			engineConfig.StartSequence = *last + 1
		}
		opts = append(opts, tx.WithReceiptSink(relationaldb.NewReceiptSink(repo)))
	}
	n.engine = tx.NewEngine(store, n.deriver, amm.NewProcessor(), engineConfig, opts...)

	logger.Debug("node opened",
		zap.String("program_id", program.String()),
		zap.String("state", c.State.Backend),
		zap.String("receipts", c.Receipts.Backend),
		zap.Uint64("start_sequence", engineConfig.StartSequence),
	)
	return n, nil
}

func (n *node) Close() {
	if n.receipts != nil {
		if err := n.receipts.Close(context.Background()); err != nil {
			logger.Warn("close receipts", zap.Error(err))
		}
	}
	if err := n.store.Close(); err != nil {
		logger.Warn("close state", zap.Error(err))
	}
}

// withNode runs fn against an opened node and closes it afterwards
func withNode(ctx context.Context, fn func(*node) error) error {
	n, err := openNode(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer n.Close()
	return fn(n)
}
