package db

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/mehran-jafari/account/internal/auth/entity"
)

// NewRegistration creates the account, its credential and its first code in
// one transaction. Code delivery happens after commit through the event
// bus, never inside the transaction.
func (s *DB) NewRegistration(ctx context.Context, reg entity.NewRegistration) (err error) {
	ctx, span := s.startSpan(ctx, "NewRegistration")
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
		`INSERT INTO users (id, phone_number, full_name, status)
		 VALUES ($1, $2, $3, $4)`,
		reg.UserID, reg.PhoneNumber, reg.FullName, int16(entity.UserStatusUnverified),
	); err != nil {
		return s.mapError(err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO user_credentials (user_id, password) VALUES ($1, $2)`,
		reg.UserID, reg.Password,
	); err != nil {
		return s.mapError(err)
	}

	if err := s.createCodeTx(ctx, tx, reg.Code); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return s.mapError(err)
	}

	return nil
}

// ConsumeCodeAndActivate flips the code and the account status together so
// a crash between the two cannot leave a consumed code with an unverified
// account.
func (s *DB) ConsumeCodeAndActivate(ctx context.Context, codeID, userID int64) (consumed bool, err error) {
	ctx, span := s.startSpan(ctx, "ConsumeCodeAndActivate")
	defer func() { s.endSpan(span, err) }()

	tx, err := s.conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, err
	}
	defer func() {
		if rErr := tx.Rollback(ctx); rErr != nil && !errors.Is(rErr, pgx.ErrTxClosed) {
			slog.ErrorContext(ctx, "failed to rolback", "error", rErr)
		}
	}()

	tag, err := tx.Exec(ctx,
		`UPDATE auth_codes SET is_used = TRUE WHERE id = $1 AND NOT is_used`,
		codeID,
	)
	if err != nil {
		return false, s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	if _, err := tx.Exec(ctx,
		`UPDATE users SET status = $2, updated_at = $3 WHERE id = $1`,
		userID, int16(entity.UserStatusActive), time.Now().UTC(),
	); err != nil {
		return false, s.mapError(err)
	}

	if err = tx.Commit(ctx); err != nil {
		return false, s.mapError(err)
	}

	return true, nil
}

// ConsumeCodeAndSetPassword flips the code and replaces the credential in
// one transaction (password-change confirmation).
func (s *DB) ConsumeCodeAndSetPassword(ctx context.Context, codeID, userID int64, hash string) (consumed bool, err error) {
	ctx, span := s.startSpan(ctx, "ConsumeCodeAndSetPassword")
	defer func() { s.endSpan(span, err) }()

	tx, err := s.conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, err
	}
	defer func() {
		if rErr := tx.Rollback(ctx); rErr != nil && !errors.Is(rErr, pgx.ErrTxClosed) {
			slog.ErrorContext(ctx, "failed to rolback", "error", rErr)
		}
	}()

	tag, err := tx.Exec(ctx,
		`UPDATE auth_codes SET is_used = TRUE WHERE id = $1 AND NOT is_used`,
		codeID,
	)
	if err != nil {
		return false, s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	if _, err := tx.Exec(ctx,
		`UPDATE user_credentials SET password = $2, updated_at = $3 WHERE user_id = $1`,
		userID, hash, time.Now().UTC(),
	); err != nil {
		return false, s.mapError(err)
	}

	if err = tx.Commit(ctx); err != nil {
		return false, s.mapError(err)
	}

	return true, nil
}
