// Package sql is a thin layer over a pool of sqlite connections. Tables are
// accessed through helper packages such as sql/witnesses.
package sql

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	sqlite "github.com/go-llsqlite/crawshaw"
	"github.com/go-llsqlite/crawshaw/sqlitex"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var (
	// ErrNoConnection is returned if pooled connection is not available.
	ErrNoConnection = errors.New("database: no free connection")
	// ErrNotFound is returned if requested record is not found.
	ErrNotFound = errors.New("database: not found")
	// ErrObjectExists is returned if database constraints didn't allow to insert an object.
	ErrObjectExists = errors.New("database: object exists")
	// ErrTooNew is returned if database version is newer than expected.
	ErrTooNew = errors.New("database version is too new")
	// ErrClosed is returned when using a closed database.
	ErrClosed = errors.New("database: closed")
)

// Executor is an interface for executing raw statement.
type Executor interface {
	Exec(string, Encoder, Decoder) (int, error)
}

// Statement is an sqlite statement.
type Statement = sqlite.Stmt

// Encoder binds parameters, positional (?1) or named (@id).
// See https://www.sqlite.org/c3ref/bind_blob.html.
type Encoder func(*Statement)

// Decoder reads a row. Returning false stops the iteration.
type Decoder func(*Statement) bool

type conf struct {
	uri         string
	flags       sqlite.OpenFlags
	connections int
	latency     bool
	logger      *zap.Logger
	migrations  Migrations
}

// Opt for configuring database.
type Opt func(c *conf)

// WithConnections overwrites number of pooled connections.
func WithConnections(n int) Opt {
	return func(c *conf) {
		c.connections = n
	}
}

// WithLogger specifies logger for the database.
func WithLogger(logger *zap.Logger) Opt {
	return func(c *conf) {
		c.logger = logger
	}
}

// WithMigrations replaces the embedded schema. Nil disables migrations.
func WithMigrations(migrations Migrations) Opt {
	return func(c *conf) {
		c.migrations = migrations
	}
}

// WithLatencyMetering enables metric that track latency for every database query.
func WithLatencyMetering(enable bool) Opt {
	return func(c *conf) {
		c.latency = enable
	}
}

// InMemory creates an in-memory database for testing and panics if
// there's an error.
func InMemory(opts ...Opt) *Database {
	// every connection to :memory: is a separate database, so only one is pooled
	opts = append(opts, WithConnections(1), func(c *conf) { c.flags = 0 })
	db, err := Open("file::memory:?mode=memory", opts...)
	if err != nil {
		panic(err)
	}
	return db
}

// Open database in WAL mode and applies pending migrations.
//
// https://sqlite.org/wal.html
func Open(uri string, opts ...Opt) (*Database, error) {
	cfg := &conf{
		uri: uri,
		flags: sqlite.SQLITE_OPEN_READWRITE |
			sqlite.SQLITE_OPEN_CREATE |
			sqlite.SQLITE_OPEN_WAL |
			sqlite.SQLITE_OPEN_URI |
			sqlite.SQLITE_OPEN_NOMUTEX,
		connections: 16,
		logger:      zap.NewNop(),
		migrations:  embeddedMigrations,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	pool, err := sqlitex.Open(cfg.uri, cfg.flags, cfg.connections)
	if err != nil {
		return nil, fmt.Errorf("open db %s: %w", cfg.uri, err)
	}
	db := &Database{pool: pool, latency: cfg.latency}
	if cfg.migrations == nil {
		return db, nil
	}
	var before, after int
	err = db.WithTx(context.Background(), func(tx *Tx) error {
		var err error
		if before, err = version(tx); err != nil {
			return err
		}
		if err := cfg.migrations(tx); err != nil {
			return err
		}
		after, err = version(tx)
		return err
	})
	if err != nil {
		return nil, multierr.Combine(fmt.Errorf("migrate %s: %w", cfg.uri, err), db.Close())
	}
	if before != after {
		cfg.logger.Info("database migrated",
			zap.String("uri", cfg.uri),
			zap.Int("from", before),
			zap.Int("to", after),
		)
	}
	return db, nil
}

// Database is a pool of connections to one sqlite database.
type Database struct {
	pool    *sqlitex.Pool
	latency bool

	mu     sync.Mutex
	closed bool
}

func (db *Database) conn(ctx context.Context) (*sqlite.Conn, error) {
	db.mu.Lock()
	closed := db.closed
	db.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}
	conn := db.pool.Get(ctx)
	if conn == nil {
		return nil, ErrNoConnection
	}
	return conn, nil
}

// WithTx runs exec in an immediate transaction, which takes the write lock upfront.
// The transaction is committed only if exec returns nil.
//
// https://www.sqlite.org/lang_transaction.html
func (db *Database) WithTx(ctx context.Context, exec func(*Tx) error) (err error) {
	conn, err := db.conn(ctx)
	if err != nil {
		return err
	}
	defer db.pool.Put(conn)
	tx := &Tx{conn: conn, latency: db.latency}
	if err := tx.run("BEGIN IMMEDIATE;"); err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := exec(tx); err != nil {
		return multierr.Combine(err, tx.run("ROLLBACK;"))
	}
	if err := tx.run("COMMIT;"); err != nil {
		return multierr.Combine(fmt.Errorf("commit: %w", err), tx.run("ROLLBACK;"))
	}
	return nil
}

// Exec runs a statement on a pooled connection.
// It blocks until a connection is available or the database is closed.
func (db *Database) Exec(query string, encoder Encoder, decoder Decoder) (int, error) {
	conn, err := db.conn(context.Background())
	if err != nil {
		return 0, err
	}
	defer db.pool.Put(conn)
	return exec(conn, db.latency, query, encoder, decoder)
}

// Close closes all pooled connections. Closing twice is a no-op.
func (db *Database) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return nil
	}
	if err := db.pool.Close(); err != nil {
		return fmt.Errorf("close pool %w", err)
	}
	db.closed = true
	return nil
}

// Tx is a transaction started by WithTx. It is valid only inside the callback.
type Tx struct {
	conn    *sqlite.Conn
	latency bool
}

func (tx *Tx) run(stmt string) error {
	_, err := tx.conn.Prep(stmt).Step()
	return err
}

// Exec query.
func (tx *Tx) Exec(query string, encoder Encoder, decoder Decoder) (int, error) {
	return exec(tx.conn, tx.latency, query, encoder, decoder)
}

func exec(conn *sqlite.Conn, latency bool, query string, encoder Encoder, decoder Decoder) (int, error) {
	if latency {
		start := time.Now()
		defer func() {
			queryDuration.WithLabelValues(query).Observe(float64(time.Since(start)))
		}()
	}
	stmt, err := conn.Prepare(query)
	if err != nil {
		return 0, fmt.Errorf("prepare %s: %w", query, err)
	}
	if encoder != nil {
		encoder(stmt)
	}
	defer stmt.ClearBindings()

	rows := 0
	for {
		row, err := stmt.Step()
		if err != nil {
			switch sqlite.ErrCode(err) {
			case sqlite.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite.SQLITE_CONSTRAINT_UNIQUE:
				return 0, ErrObjectExists
			}
			return 0, fmt.Errorf("step %d: %w", rows, err)
		}
		if !row {
			return rows, nil
		}
		rows++
		if decoder != nil && !decoder(stmt) {
			if err := stmt.Reset(); err != nil {
				return rows, fmt.Errorf("statement reset %w", err)
			}
			return rows, nil
		}
	}
}
