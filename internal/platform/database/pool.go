// Package database opens the SQL pool behind the card profile store: an
// on-device SQLite file by default, PostgreSQL for shared kiosk deployments.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	_ "modernc.org/sqlite"
)

// database/sql driver names.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

const pingTimeout = 5 * time.Second

type Config struct {
	Driver          string
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultConfig suits the single-user SQLite cache.
func DefaultConfig() Config {
	return Config{
		Driver:          DriverSQLite,
		MaxOpenConns:    4,
		MaxIdleConns:    2,
		ConnMaxLifetime: 30 * time.Minute,
	}
}

type Pool struct {
	db     *sql.DB
	driver string
}

// New opens the database and fails unless a ping succeeds within five seconds.
func New(ctx context.Context, cfg Config) (*Pool, error) {
	if cfg.URL == "" {
		return nil, errors.New("database url is required")
	}
	dsn := cfg.URL
	switch cfg.Driver {
	case DriverSQLite:
		dsn = SQLiteDSN(cfg.URL)
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	p := &Pool{db: db, driver: cfg.Driver}
	if err := p.Health(ctx); err != nil {
		return nil, errors.Join(fmt.Errorf("ping %s: %w", cfg.Driver, err), db.Close())
	}
	return p, nil
}

// SQLiteDSN expands a file path into a modernc.org/sqlite DSN: WAL so lookups
// do not wait on the writer, and a busy timeout instead of immediate
// SQLITE_BUSY. Values that already carry a query string pass through.
func SQLiteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path
	}
	q := url.Values{"_pragma": {"busy_timeout(5000)", "journal_mode(WAL)", "synchronous(NORMAL)"}}
	return "file:" + path + "?" + q.Encode()
}

func (p *Pool) DB() *sql.DB       { return p.db }
func (p *Pool) Driver() string    { return p.driver }
func (p *Pool) Stats() sql.DBStats { return p.db.Stats() }

// Health pings the database with its own short deadline.
func (p *Pool) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return p.db.PingContext(ctx)
}

// Collector exposes connection pool statistics to Prometheus.
func (p *Pool) Collector() prometheus.Collector {
	return collectors.NewDBStatsCollector(p.db, "campuscard_"+p.driver)
}

func (p *Pool) Close() error {
	if p == nil {
		return nil
	}
	return p.db.Close()
}
