// README: Ride store backed by PostgreSQL.
package rides

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, r *Ride) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO rides (
            id, provider, service_tier, price_amount, price_currency,
            eta_minutes, origin, destination, scheduled_time, status,
            created_at, updated_at
        ) VALUES (
            $1, $2, $3, $4, $5,
            $6, $7, $8, $9, $10,
            $11, $12
        )`,
		r.ID, r.Provider, r.ServiceTier, r.Price.Amount, r.Price.Currency,
		r.ETAMinutes, r.Origin, r.Destination, r.ScheduledTime, string(r.Status),
		r.CreatedAt, r.UpdatedAt,
	)
	return err
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Ride, error) {
	return scanRide(s.db.QueryRow(ctx, selectRides+` WHERE id = $1`, id))
}

const selectRides = `
        SELECT id, provider, service_tier, price_amount, price_currency,
               eta_minutes, origin, destination, scheduled_time, status,
               created_at, updated_at
        FROM rides`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRide(row rowScanner) (*Ride, error) {
	var r Ride
	var status string
	err := row.Scan(
		&r.ID, &r.Provider, &r.ServiceTier, &r.Price.Amount, &r.Price.Currency,
		&r.ETAMinutes, &r.Origin, &r.Destination, &r.ScheduledTime, &status,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	r.Status = Status(status)
	return &r, nil
}

func (s *PostgresStore) List(ctx context.Context, f Filter) ([]*Ride, error) {
	var conds []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, strings.Replace(cond, "?", placeholder(len(args)), 1))
	}
	if f.Status != nil {
		add("status = ?", string(*f.Status))
	}
	if f.After != nil {
		add("scheduled_time >= ?", *f.After)
	}
	if f.Before != nil {
		add("scheduled_time <= ?", *f.Before)
	}

	query := selectRides
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY scheduled_time ASC, id ASC"

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Ride
	for rows.Next() {
		r, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Mutate serializes per-record writes with a row lock: the ride is read
// FOR UPDATE inside a transaction, fn is applied, and the row is rewritten.
func (s *PostgresStore) Mutate(ctx context.Context, id string, fn func(*Ride) error) (*Ride, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	r, err := scanRide(tx.QueryRow(ctx, selectRides+` WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, err
	}

	if err := fn(r); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
        UPDATE rides
        SET scheduled_time = $1, status = $2, updated_at = $3
        WHERE id = $4`,
		r.ScheduledTime, string(r.Status), r.UpdatedAt, r.ID,
	)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

func placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}
