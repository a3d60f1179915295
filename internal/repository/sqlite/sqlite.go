package sqlite

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"time"

	"github.com/garnizeh/jobmatch/internal/db"
	"github.com/garnizeh/jobmatch/pkg/repository"
)

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// SQLiteRepo implements repository interfaces using the internal DB wrapper.
// A repo returned to a WithTx callback is bound to that transaction.
type SQLiteRepo struct {
	conn   *db.DB
	q      queryer
	inTx   bool
	logger *slog.Logger
}

// Ensure SQLiteRepo implements the public interfaces.
var _ repository.Store = (*SQLiteRepo)(nil)
var _ repository.TokenRepo = (*SQLiteRepo)(nil)

func New(conn *db.DB, logger *slog.Logger) *SQLiteRepo {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &SQLiteRepo{conn: conn, q: conn.GetConn(), logger: logger}
}

func (r *SQLiteRepo) WithTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if r.inTx {
		return fn(r)
	}

	return r.conn.WithTx(ctx, func(tx *sql.Tx) error {
		return fn(&SQLiteRepo{conn: r.conn, q: tx, inTx: true, logger: r.logger})
	})
}

// affected reports whether a conditional update touched a row.
func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func nullInt(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

func now() int64 {
	return time.Now().UTC().UnixMilli()
}
