package database

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"

	"github.com/rpupo63/portfolio-intake-backend/errs"
	"github.com/rpupo63/portfolio-intake-backend/retrier"
)

// State is the lifecycle position of a ConnectionManager.
type State int32

const (
	Disconnected State = iota
	Connecting
	Ready
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Ready:
		return "ready"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

const defaultPingTimeout = 5 * time.Second

// Opener produces a fresh, not yet verified, store handle.
type Opener func(ctx context.Context) (*gorm.DB, error)

// DefaultConnectPolicy allows 5 attempts with waits between 4s and 10s, retrying connectivity faults only.
func DefaultConnectPolicy() retrier.Policy {
	return retrier.Policy{
		Name:        "database connection",
		MaxAttempts: 5,
		MinWait:     4 * time.Second,
		MaxWait:     10 * time.Second,
		Retryable:   IsConnectivityFault,
	}
}

// ConnectionManager owns the store handle: Disconnected -> Connecting -> Ready, and back to
// Disconnected on exhausted retries or Close. Once Ready the handle is shared without locking.
type ConnectionManager struct {
	open        Opener
	policy      retrier.Policy
	pingTimeout time.Duration
	logger      zerolog.Logger

	state     atomic.Int32
	closed    atomic.Bool
	db        *gorm.DB
	closeOnce sync.Once
	closeErr  error
}

func WithConnectPolicy(p retrier.Policy) func(*ConnectionManager) {
	return func(m *ConnectionManager) {
		m.policy = p
	}
}

func WithPingTimeout(d time.Duration) func(*ConnectionManager) {
	return func(m *ConnectionManager) {
		m.pingTimeout = d
	}
}

func NewConnectionManager(open Opener, opts ...func(*ConnectionManager)) *ConnectionManager {
	m := &ConnectionManager{
		open:        open,
		policy:      DefaultConnectPolicy(),
		pingTimeout: defaultPingTimeout,
		logger:      zlog.With().Str("component", "connectionManager").Logger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.policy = m.policy.WithLogger(m.logger)
	return m
}

func (m *ConnectionManager) State() State {
	return State(m.state.Load())
}

// Connect opens and pings the store under the connect policy. An error here must abort startup.
func (m *ConnectionManager) Connect(ctx context.Context) error {
	if m.closed.Load() {
		return fmt.Errorf("connect after close: %w", errs.ErrNotConnected)
	}
	if !m.state.CompareAndSwap(int32(Disconnected), int32(Connecting)) {
		return fmt.Errorf("connect called while %s", m.State())
	}

	var db *gorm.DB
	attempts, err := m.policy.Run(ctx, func(ctx context.Context) error {
		conn, err := m.open(ctx)
		if err != nil {
			return err
		}
		if err := ping(ctx, conn, m.pingTimeout); err != nil {
			closeQuietly(conn)
			return err
		}
		db = conn
		return nil
	})
	if err != nil {
		m.state.Store(int32(Disconnected))
		m.logger.Error().Err(err).Int("attempts", attempts).Msg("Failed to connect to database after retries")
		return errs.NewDatabaseConnectionError(attempts, err)
	}

	m.db = db
	m.state.Store(int32(Ready))
	m.logger.Info().Int("attempts", attempts).Msg("Database connection established")
	return nil
}

// DB returns the shared handle, or ErrNotConnected outside the Ready state.
func (m *ConnectionManager) DB() (*gorm.DB, error) {
	if m.State() != Ready {
		return nil, errs.ErrNotConnected
	}
	return m.db, nil
}

// Close releases the handle. Only the first call has any effect.
func (m *ConnectionManager) Close() error {
	m.closeOnce.Do(func() {
		m.closed.Store(true)
		wasReady := m.state.Swap(int32(Disconnected)) == int32(Ready)
		if !wasReady || m.db == nil {
			return
		}

		sqlDB, err := m.db.DB()
		if err != nil {
			m.closeErr = err
			return
		}
		m.closeErr = sqlDB.Close()
		m.logger.Info().Msg("Database connection closed")
	})
	return m.closeErr
}

func ping(ctx context.Context, db *gorm.DB, timeout time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return sqlDB.PingContext(pingCtx)
}

func closeQuietly(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// IsConnectivityFault reports whether err means the store could not be reached, as opposed to the
// server answering with an error (bad credentials, bad database name, bad data).
func IsConnectivityFault(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, driver.ErrBadConn) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var connectErr *pgconn.ConnectError
	return errors.As(err, &connectErr)
}

// PostgresOpener opens the primary store and, when replicaDSN is set, routes reads to the replica.
func PostgresOpener(dsn, replicaDSN string) Opener {
	return func(ctx context.Context) (*gorm.DB, error) {
		db, err := gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt:          false,
			DisableAutomaticPing: true,
			Logger:               newGormLogger(),
		})
		if err != nil {
			return nil, err
		}

		if replicaDSN != "" {
			resolver := dbresolver.Register(dbresolver.Config{
				Replicas: []gorm.Dialector{postgres.Open(replicaDSN)},
				Policy:   dbresolver.RandomPolicy{},
			})
			if err := db.Use(resolver); err != nil {
				closeQuietly(db)
				return nil, fmt.Errorf("register read replica: %w", err)
			}
		}
		return db, nil
	}
}

func newGormLogger() logger.Interface {
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             10 * time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)
}
