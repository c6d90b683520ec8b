// Package postgres is the PostgreSQL repo.Store. Overlap exclusion is enforced
// by the bookings_no_overlap constraint; the promotion usage cap by a
// conditional UPDATE.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Alijeyrad/salonora_backend/internal/repo"
)

const (
	sqlStateExclusionViolation = "23P01"
	sqlStateUniqueViolation    = "23505"
)

type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

var _ repo.Store = (*Store)(nil)

func New(db *sqlx.DB) *Store {
	return &Store{db: db, now: time.Now}
}

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }
func (s *Store) Close() error                   { return s.db.Close() }

// mapErr translates driver errors into repo sentinels.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return repo.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case sqlStateExclusionViolation, sqlStateUniqueViolation:
			return errors.Join(repo.ErrConflict, err)
		}
	}
	return err
}

func columns(cols []string) string {
	return strings.Join(cols, ", ")
}

// execOne runs a statement that must touch exactly one row.
func execOne(ctx context.Context, db sqlx.ExecerContext, query string, args ...any) error {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repo.ErrNotFound
	}
	return nil
}
