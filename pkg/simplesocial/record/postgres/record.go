// Package postgres tracks publish history in a PostgreSQL table, for
// deployments where the content directory lives on ephemeral storage and a
// filesystem record would not survive redeploys.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tendant/simple-social/pkg/simplesocial"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Record is a PostgreSQL implementation of simplesocial.PublishRecord.
//
// Expected schema:
//
//	CREATE TABLE posted_basename (
//	    basename   TEXT PRIMARY KEY,
//	    posted_at  TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
type Record struct {
	db DBTX
}

// New creates a new PostgreSQL record.
func New(db DBTX) *Record {
	return &Record{db: db}
}

// NewWithPool creates a new PostgreSQL record with a connection pool.
func NewWithPool(pool *pgxpool.Pool) *Record {
	return &Record{db: pool}
}

func (r *Record) PostedBasenames(ctx context.Context) (map[string]struct{}, error) {
	rows, err := r.db.Query(ctx, `SELECT basename FROM posted_basename`)
	if err != nil {
		return nil, &simplesocial.RecordError{Backend: "postgres", Op: "list", Err: err}
	}
	defer rows.Close()

	posted := make(map[string]struct{})
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, &simplesocial.RecordError{Backend: "postgres", Op: "list", Err: err}
		}
		posted[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, &simplesocial.RecordError{Backend: "postgres", Op: "list", Err: err}
	}
	return posted, nil
}

// MarkPosted inserts the basename. Inserting a basename that is already
// recorded is a no-op, which keeps retries after a lost commit response
// idempotent.
func (r *Record) MarkPosted(ctx context.Context, basename string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO posted_basename (basename) VALUES ($1) ON CONFLICT (basename) DO NOTHING`,
		basename)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "42P01" {
			return &simplesocial.RecordError{Backend: "postgres", Op: "mark",
				Err: errors.New("posted_basename table does not exist, run migrations")}
		}
		return &simplesocial.RecordError{Backend: "postgres", Op: "mark", Err: err}
	}
	return nil
}
