package relationaldb

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Manager provides lifecycle management for a Database
type Manager struct {
	db     Database
	config *Config
	logger *zap.Logger

	mu        sync.RWMutex
	connected bool
	lastError error
}

// ManagerOption defines functional options for Manager
type ManagerOption func(*Manager)

// WithLogger sets the logger for the manager
func WithLogger(logger *zap.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new database manager
func NewManager(db Database, config *Config, options ...ManagerOption) *Manager {
	m := &Manager{
		db:     db,
		config: config,
		logger: zap.NewNop(),
	}
	for _, option := range options {
		option(m)
	}
	return m
}

// Open opens the database, retrying retryable failures up to MaxRetries
// times with a doubling delay.
func (m *Manager) Open(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return nil
	}

	delay := m.config.RetryDelay
	var err error
	for attempt := 0; attempt <= m.config.MaxRetries; attempt++ {
		if attempt > 0 {
			m.logger.Warn("retrying database open",
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
		if err = m.db.Open(ctx); err == nil || !IsRetryable(err) {
			break
		}
	}
	if err != nil {
		if IsRetryable(err) {
			err = fmt.Errorf("%w after %d attempts: %w", ErrConnectionFailed, m.config.MaxRetries+1, err)
		}
		m.lastError = err
		m.logger.Error("failed to open database", zap.String("driver", m.config.Driver), zap.Error(err))
		return err
	}

	m.connected = true
	m.lastError = nil
	m.logger.Info("database opened", zap.String("driver", m.config.Driver))
	return nil
}

// Close closes the database
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return nil
	}
	if err := m.db.Close(ctx); err != nil {
		m.logger.Error("failed to close database", zap.Error(err))
		return err
	}
	m.connected = false
	return nil
}

// IsConnected returns whether the database is connected
func (m *Manager) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// LastError returns the last error encountered
func (m *Manager) LastError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastError
}

// HealthCheck pings the database
func (m *Manager) HealthCheck(ctx context.Context) error {
	if !m.IsConnected() {
		return ErrDatabaseClosed
	}
	if err := m.db.Ping(ctx); err != nil {
		m.mu.Lock()
		m.lastError = err
		m.mu.Unlock()
		return err
	}
	return nil
}

// Receipts returns the receipt repository of the managed database
func (m *Manager) Receipts() ReceiptRepository {
	return m.db.Receipts()
}
