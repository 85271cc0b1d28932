package customer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csr-insights-go/internal/types"
)

func TestNormalizePhone(t *testing.T) {
	tests := map[string]string{
		"5551234567":        "5551234567",
		"+15551234567":      "5551234567",
		"1-555-123-4567":    "5551234567",
		"+1 (555) 123-4567": "5551234567",
		"555 1234":          "5551234",
		"":                  "",
		"call me":           "",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizePhone(in), in)
	}
}

func TestMemoryDirectoryLookup(t *testing.T) {
	d := NewMemoryDirectory(ReferenceCustomers(time.Now())...)
	assert.Equal(t, 5, d.Len())

	for _, phone := range []string{"5551234567", "+15551234567", "(555) 123-4567", "15551234567"} {
		c, err := d.Lookup(context.Background(), phone)
		require.NoError(t, err, phone)
		assert.Equal(t, "John Smith", c.Name)
	}

	_, err := d.Lookup(context.Background(), "+19999999999")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = d.Lookup(context.Background(), "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryDirectoryPutReplaces(t *testing.T) {
	d := NewMemoryDirectory()
	d.Put(types.CustomerInfo{PhoneNumber: "+17205550100", Name: "Old"})
	d.Put(types.CustomerInfo{PhoneNumber: "720-555-0100", Name: "New"})
	assert.Equal(t, 1, d.Len())

	c, err := d.Lookup(context.Background(), "7205550100")
	require.NoError(t, err)
	assert.Equal(t, "New", c.Name)
}

func TestReferenceCustomersDates(t *testing.T) {
	now := time.Date(2025, 11, 20, 9, 0, 0, 0, time.UTC)
	cs := ReferenceCustomers(now)
	assert.Equal(t, "2025-11-05T09:00:00Z", cs[0].LastCallDate)
	assert.Equal(t, "very_negative", cs[4].PreviousSentiment)
}

// fakeDB stands in for a pgx pool.
type fakeDB struct {
	row      fakeRow
	lastSQL  string
	lastArgs []any
	execErr  error
}

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.values) {
		return errors.New("column count mismatch")
	}
	for i, v := range r.values {
		switch d := dest[i].(type) {
		case *string:
			*d = v.(string)
		case *float64:
			*d = v.(float64)
		case *int:
			*d = v.(int)
		default:
			return errors.New("unsupported scan target")
		}
	}
	return nil
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.lastSQL, f.lastArgs = sql, args
	return f.row
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.lastSQL, f.lastArgs = sql, args
	return pgconn.NewCommandTag("INSERT 0 1"), f.execErr
}

func TestPostgresDirectoryLookup(t *testing.T) {
	db := &fakeDB{row: fakeRow{values: []any{
		"+15551234567", "John Smith", "john@example.com", "ACC1", "Magenta", 85.0,
		24, 3, "", "neutral", "", "Dallas, TX",
	}}}
	p := &PostgresDirectory{db: db}

	c, err := p.Lookup(context.Background(), "(555) 123-4567")
	require.NoError(t, err)
	assert.Equal(t, "John Smith", c.Name)
	assert.Equal(t, 85.0, c.MonthlyBill)
	assert.Equal(t, 24, c.AccountAgeMonths)
	assert.Equal(t, []any{"5551234567"}, db.lastArgs)
}

func TestPostgresDirectoryErrors(t *testing.T) {
	p := &PostgresDirectory{db: &fakeDB{row: fakeRow{err: pgx.ErrNoRows}}}
	_, err := p.Lookup(context.Background(), "5550000000")
	assert.ErrorIs(t, err, ErrNotFound)

	boom := errors.New("connection reset")
	p = &PostgresDirectory{db: &fakeDB{row: fakeRow{err: boom}}}
	_, err = p.Lookup(context.Background(), "5550000000")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestPostgresDirectoryPut(t *testing.T) {
	db := &fakeDB{}
	p := &PostgresDirectory{db: db}
	require.NoError(t, p.Put(context.Background(), types.CustomerInfo{PhoneNumber: "+1 555 123 4567", Name: "John"}))
	require.Len(t, db.lastArgs, 13)
	assert.Equal(t, "5551234567", db.lastArgs[1])

	db.execErr = errors.New("read-only")
	assert.Error(t, p.Put(context.Background(), types.CustomerInfo{PhoneNumber: "1"}))
	assert.Error(t, p.EnsureSchema(context.Background()))
}
