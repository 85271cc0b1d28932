package customer

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"csr-insights-go/internal/types"
)

// Schema creates the customers table read by PostgresDirectory.
const Schema = `
CREATE TABLE IF NOT EXISTS customers (
	phone_number       TEXT PRIMARY KEY,
	phone_key          TEXT NOT NULL,
	name               TEXT NOT NULL,
	email              TEXT,
	account_id         TEXT,
	plan               TEXT NOT NULL DEFAULT '',
	monthly_bill       DOUBLE PRECISION NOT NULL DEFAULT 0,
	account_age_months INTEGER NOT NULL DEFAULT 0,
	previous_calls     INTEGER NOT NULL DEFAULT 0,
	last_call_date     TEXT,
	previous_sentiment TEXT,
	notes              TEXT,
	location           TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS customers_phone_key ON customers (phone_key);
`

const lookupSQL = `
SELECT phone_number, name, COALESCE(email, ''), COALESCE(account_id, ''), plan, monthly_bill,
       account_age_months, previous_calls, COALESCE(last_call_date, ''),
       COALESCE(previous_sentiment, ''), COALESCE(notes, ''), location
FROM customers
WHERE phone_key = $1
LIMIT 1`

const upsertSQL = `
INSERT INTO customers (phone_number, phone_key, name, email, account_id, plan, monthly_bill,
                       account_age_months, previous_calls, last_call_date, previous_sentiment, notes, location)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
ON CONFLICT (phone_number) DO UPDATE SET
	phone_key = EXCLUDED.phone_key, name = EXCLUDED.name, email = EXCLUDED.email,
	account_id = EXCLUDED.account_id, plan = EXCLUDED.plan, monthly_bill = EXCLUDED.monthly_bill,
	account_age_months = EXCLUDED.account_age_months, previous_calls = EXCLUDED.previous_calls,
	last_call_date = EXCLUDED.last_call_date, previous_sentiment = EXCLUDED.previous_sentiment,
	notes = EXCLUDED.notes, location = EXCLUDED.location`

// querier is the part of *pgxpool.Pool the directory uses.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresDirectory reads customers from a Postgres table. phone_key holds
// NormalizePhone of the stored number.
type PostgresDirectory struct {
	db   querier
	pool *pgxpool.Pool
}

func NewPostgresDirectory(pool *pgxpool.Pool) *PostgresDirectory {
	return &PostgresDirectory{db: pool, pool: pool}
}

func ConnectPostgres(ctx context.Context, connString string) (*PostgresDirectory, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connect to customer db: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping customer db: %w", err)
	}
	return NewPostgresDirectory(pool), nil
}

func (p *PostgresDirectory) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}

// EnsureSchema creates the customers table when missing.
func (p *PostgresDirectory) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("create customers table: %w", err)
	}
	return nil
}

func (p *PostgresDirectory) Lookup(ctx context.Context, phone string) (types.CustomerInfo, error) {
	key := NormalizePhone(phone)
	if key == "" {
		return types.CustomerInfo{}, ErrNotFound
	}

	var c types.CustomerInfo
	err := p.db.QueryRow(ctx, lookupSQL, key).Scan(
		&c.PhoneNumber, &c.Name, &c.Email, &c.AccountID, &c.Plan, &c.MonthlyBill,
		&c.AccountAgeMonths, &c.PreviousCalls, &c.LastCallDate,
		&c.PreviousSentiment, &c.Notes, &c.Location,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return types.CustomerInfo{}, ErrNotFound
	}
	if err != nil {
		return types.CustomerInfo{}, fmt.Errorf("lookup customer: %w", err)
	}
	return c, nil
}

// Put inserts or replaces a customer.
func (p *PostgresDirectory) Put(ctx context.Context, c types.CustomerInfo) error {
	_, err := p.db.Exec(ctx, upsertSQL,
		c.PhoneNumber, NormalizePhone(c.PhoneNumber), c.Name, c.Email, c.AccountID, c.Plan, c.MonthlyBill,
		c.AccountAgeMonths, c.PreviousCalls, c.LastCallDate, c.PreviousSentiment, c.Notes, c.Location,
	)
	if err != nil {
		return fmt.Errorf("save customer %s: %w", c.PhoneNumber, err)
	}
	return nil
}
