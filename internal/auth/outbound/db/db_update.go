package db

import (
	"context"
	"time"
)

// MarkCodeUsed consumes a code. The conditional update is the single-use
// guarantee: exactly one of any number of racing callers sees true.
func (s *DB) MarkCodeUsed(ctx context.Context, codeID int64) (consumed bool, err error) {
	ctx, span := s.startSpan(ctx, "MarkCodeUsed")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx,
		`UPDATE auth_codes SET is_used = TRUE WHERE id = $1 AND NOT is_used`,
		codeID,
	)
	if err != nil {
		return false, s.mapError(err)
	}

	return tag.RowsAffected() == 1, nil
}

// IncrementFailedLogin bumps the failure counter and arms the lockout once
// the counter reaches max. The whole step is one statement so concurrent
// failures cannot lose increments.
func (s *DB) IncrementFailedLogin(ctx context.Context, userID int64, max int32, lockedUntil time.Time) (err error) {
	ctx, span := s.startSpan(ctx, "IncrementFailedLogin")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx,
		`UPDATE users
		 SET failed_login_attempts = failed_login_attempts + 1,
		     locked_until = CASE
		         WHEN failed_login_attempts + 1 >= $2 THEN $3
		         ELSE locked_until
		     END
		 WHERE id = $1`,
		userID, max, lockedUntil,
	)
	return s.mapError(err)
}

// ResetFailedLogin clears the failure counter and any lockout.
func (s *DB) ResetFailedLogin(ctx context.Context, userID int64) (err error) {
	ctx, span := s.startSpan(ctx, "ResetFailedLogin")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx,
		`UPDATE users SET failed_login_attempts = 0, locked_until = NULL WHERE id = $1`,
		userID,
	)
	return s.mapError(err)
}
