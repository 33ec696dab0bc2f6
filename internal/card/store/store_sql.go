package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"
	"time"

	"campuscard/internal/card/models"
	"campuscard/internal/sentinel"
	"campuscard/migrations"
	cardsync "campuscard/pkg/platform/sync"
)

// Dialect selects placeholder syntax for the SQL store.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// DialectForDriver maps a database/sql driver name to its dialect.
func DialectForDriver(driver string) (Dialect, error) {
	switch driver {
	case "sqlite", "sqlite3":
		return DialectSQLite, nil
	case "pgx", "postgres":
		return DialectPostgres, nil
	default:
		return "", fmt.Errorf("unsupported store driver %q", driver)
	}
}

// SQLStore persists profiles in a SQL database. SQLite backs the on-device
// cache; PostgreSQL backs shared kiosk deployments.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	writes  *cardsync.KeyedMutex[models.Token]
}

// NewSQL constructs a SQL-backed profile store. Call Migrate before first use.
func NewSQL(db *sql.DB, dialect Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: dialect, writes: cardsync.NewKeyedMutex[models.Token]()}
}

// Migrate applies the embedded *.up.sql files in name order. Every migration
// is idempotent so it is safe to run on each start.
func (s *SQLStore) Migrate(ctx context.Context) error {
	entries, err := fs.ReadDir(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	for _, file := range files {
		content, err := fs.ReadFile(migrations.FS, file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}
		if _, err := s.db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("apply migration %s: %w", file, unavailable(err))
		}
	}
	return nil
}

func (s *SQLStore) Put(ctx context.Context, profile *models.Profile) error {
	if profile == nil || profile.Token.IsZero() {
		return fmt.Errorf("profile with token is required: %w", sentinel.ErrInvalidInput)
	}
	query := s.rebind(`
		INSERT INTO card_profiles (token, name, email, role, balance, valid_until, is_active, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (token) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			role = excluded.role,
			balance = excluded.balance,
			valid_until = excluded.valid_until,
			is_active = excluded.is_active,
			updated_at = excluded.updated_at
	`)
	updatedAt := profile.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	return s.writes.Do(profile.Token, func() error {
		_, err := s.db.ExecContext(ctx, query,
			string(profile.Token),
			profile.Name,
			profile.Email,
			profile.Role,
			profile.Balance,
			profile.ValidUntil,
			profile.IsActive,
			updatedAt.UnixMilli(),
		)
		if err != nil {
			return fmt.Errorf("put profile: %w", unavailable(err))
		}
		return nil
	})
}

func (s *SQLStore) Get(ctx context.Context, token models.Token) (*models.Profile, error) {
	query := s.rebind(`
		SELECT token, name, email, role, balance, valid_until, is_active, updated_at
		FROM card_profiles
		WHERE token = ?
	`)
	p, err := scanProfile(s.db.QueryRowContext(ctx, query, string(token)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("profile not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("get profile: %w", unavailable(err))
	}
	return p, nil
}

func (s *SQLStore) Delete(ctx context.Context, token models.Token) error {
	query := s.rebind(`DELETE FROM card_profiles WHERE token = ?`)
	return s.writes.Do(token, func() error {
		res, err := s.db.ExecContext(ctx, query, string(token))
		if err != nil {
			return fmt.Errorf("delete profile: %w", unavailable(err))
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete profile: %w", unavailable(err))
		}
		if n == 0 {
			return fmt.Errorf("profile not found: %w", sentinel.ErrNotFound)
		}
		return nil
	})
}

func (s *SQLStore) List(ctx context.Context) ([]*models.Profile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT token, name, email, role, balance, valid_until, is_active, updated_at
		FROM card_profiles
		ORDER BY token
	`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", unavailable(err))
	}
	defer rows.Close()

	var out []*models.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", unavailable(err))
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profiles: %w", unavailable(err))
	}
	return out, nil
}

// Ping reports whether the backing database is readable.
func (s *SQLStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return unavailable(err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*models.Profile, error) {
	var (
		p         models.Profile
		token     string
		updatedAt int64
	)
	if err := row.Scan(&token, &p.Name, &p.Email, &p.Role, &p.Balance, &p.ValidUntil, &p.IsActive, &updatedAt); err != nil {
		return nil, err
	}
	p.Token = models.Token(token)
	if updatedAt > 0 {
		p.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	}
	return &p, nil
}

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (s *SQLStore) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// unavailable tags infrastructure errors so callers can tell a broken store
// from a cache miss.
func unavailable(err error) error {
	if errors.Is(err, sentinel.ErrUnavailable) {
		return err
	}
	return errors.Join(sentinel.ErrUnavailable, err)
}

var (
	_ Store = (*InMemoryStore)(nil)
	_ Store = (*SQLStore)(nil)
)
