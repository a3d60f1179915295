package sqlite

import (
	"context"
)

// RevokeToken records a token id as revoked until its expiry.
func (r *SQLiteRepo) RevokeToken(ctx context.Context, jti string, expiresAt int64) error {
	_, err := r.q.ExecContext(ctx, `INSERT INTO revoked_tokens (jti, expires_at, revoked_at) VALUES (?, ?, ?) ON CONFLICT(jti) DO NOTHING`, jti, expiresAt, now())
	return err
}

func (r *SQLiteRepo) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var cnt int
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(1) FROM revoked_tokens WHERE jti = ?`, jti).Scan(&cnt); err != nil {
		return false, err
	}
	return cnt > 0, nil
}

// PurgeExpiredTokens drops revocations whose tokens expired before the
// given unix-millisecond instant.
func (r *SQLiteRepo) PurgeExpiredTokens(ctx context.Context, before int64) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM revoked_tokens WHERE expires_at < ?`, before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
