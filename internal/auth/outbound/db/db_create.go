package db

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/mehran-jafari/account/internal/auth/entity"
	"github.com/mehran-jafari/account/internal/pkg/goerror"
)

// CreateCode inserts a fresh one-time code inside a single transaction.
//
// Expired unused rows holding the candidate number are purged first so
// their digits become reusable, then an application-level uniqueness check
// runs over the still-active codes. The partial unique index on
// (number) WHERE NOT is_used backstops writers that race past the check;
// either path surfaces as goerror.ErrConflict so the caller can retry with
// a fresh candidate.
func (s *DB) CreateCode(ctx context.Context, code entity.Code) (err error) {
	ctx, span := s.startSpan(ctx, "CreateCode")
	defer func() { s.endSpan(span, err) }()

	tx, err := s.conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if rErr := tx.Rollback(ctx); rErr != nil && !errors.Is(rErr, pgx.ErrTxClosed) {
			slog.ErrorContext(ctx, "failed to rolback", "error", rErr)
		}
	}()

	if err := s.createCodeTx(ctx, tx, code); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return s.mapError(err)
	}

	return nil
}

// ReplaceCode deletes every unused code owned by the account and inserts
// the replacement in the same transaction, so no reader ever observes the
// account without an active code mid-reissue.
func (s *DB) ReplaceCode(ctx context.Context, code entity.Code) (err error) {
	ctx, span := s.startSpan(ctx, "ReplaceCode")
	defer func() { s.endSpan(span, err) }()

	tx, err := s.conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if rErr := tx.Rollback(ctx); rErr != nil && !errors.Is(rErr, pgx.ErrTxClosed) {
			slog.ErrorContext(ctx, "failed to rolback", "error", rErr)
		}
	}()

	if _, err := tx.Exec(ctx,
		`DELETE FROM auth_codes WHERE user_id = $1 AND NOT is_used`,
		code.UserID,
	); err != nil {
		return s.mapError(err)
	}

	if err := s.createCodeTx(ctx, tx, code); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return s.mapError(err)
	}

	return nil
}

func (s *DB) createCodeTx(ctx context.Context, tx pgx.Tx, code entity.Code) error {
	// Expired rows are purged lazily here instead of by a reaper; the
	// reference time is the code's own CreatedAt, set by the caller's clock.
	if _, err := tx.Exec(ctx,
		`DELETE FROM auth_codes WHERE number = $1 AND NOT is_used AND expires_at <= $2`,
		code.Number, code.CreatedAt,
	); err != nil {
		return s.mapError(err)
	}

	var taken bool
	if err := tx.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM auth_codes
			WHERE number = $1 AND NOT is_used AND expires_at > $2
		)`,
		code.Number, code.CreatedAt,
	).Scan(&taken); err != nil {
		return s.mapError(err)
	}
	if taken {
		return goerror.ErrConflict
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO auth_codes (id, user_id, number, purpose, created_at, expires_at, is_used)
		 VALUES ($1, $2, $3, $4, $5, $6, FALSE)`,
		code.ID, code.UserID, code.Number, int16(code.Purpose), code.CreatedAt, code.ExpiresAt,
	); err != nil {
		return s.mapError(err)
	}

	return nil
}
