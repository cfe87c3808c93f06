package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresStore reads accounts from PostgreSQL via the pgx stdlib driver.
type PostgresStore struct {
	db *sql.DB
}

var _ Store = (*PostgresStore)(nil)

// OpenPostgres connects to the account database.
func OpenPostgres(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	// Tuned pool defaults; adjust under load tests
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &PostgresStore{db: db}, nil
}

// NewPostgresStore wraps an existing connection pool (used by tests).
func NewPostgresStore(db *sql.DB) *PostgresStore { return &PostgresStore{db: db} }

func (s *PostgresStore) Close() error { return s.db.Close() }

// DB exposes the pool for readiness probes.
func (s *PostgresStore) DB() *sql.DB { return s.db }

const accountColumns = `id, email, name, role, is_active, password_hash, password_changed_at, created_at`

func (s *PostgresStore) Find(ctx context.Context, id string) (*Account, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+accountColumns+` from accounts where id = $1`, id)
	return scanAccount(row)
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*Account, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+accountColumns+` from accounts where lower(email) = $1`,
		normalizeEmail(email))
	return scanAccount(row)
}

func (s *PostgresStore) UpdatePassword(ctx context.Context, id, passwordHash string, changedAt time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`update accounts set password_hash = $2, password_changed_at = $3 where id = $1`,
		id, passwordHash, changedAt.UTC())
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanAccount(row *sql.Row) (*Account, error) {
	var (
		a       Account
		name    sql.NullString
		role    string
		changed sql.NullTime
	)
	err := row.Scan(&a.ID, &a.Email, &name, &role, &a.IsActive, &a.PasswordHash, &changed, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan account: %w", err)
	}
	a.Name = name.String
	parsed, ok := ParseRole(role)
	if !ok {
		return nil, fmt.Errorf("account %s: unknown role %q", a.ID, strings.TrimSpace(role))
	}
	a.Role = parsed
	if changed.Valid {
		at := changed.Time.UTC()
		a.PasswordChangedAt = &at
	}
	return &a, nil
}
