package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/mehran-jafari/account/internal/auth/entity"
	"github.com/samber/lo"
)

func (s *DB) GetUserByPhone(ctx context.Context, phone string) (user entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByPhone")
	defer func() { s.endSpan(span, err) }()

	var (
		status      int16
		lockedUntil pgtype.Timestamptz
	)

	err = s.conn.QueryRow(ctx,
		`SELECT id, phone_number, full_name, status, failed_login_attempts, locked_until, updated_at
		 FROM users
		 WHERE phone_number = $1 AND deleted_at IS NULL`,
		phone,
	).Scan(&user.ID, &user.PhoneNumber, &user.FullName, &status,
		&user.FailedLoginAttempts, &lockedUntil, &user.UpdatedAt)
	if err != nil {
		return entity.User{}, s.mapError(err)
	}

	user.Status = entity.UserStatus(status)
	if lockedUntil.Valid {
		user.LockedUntil = lo.ToPtr(lockedUntil.Time)
	}

	return user, nil
}

func (s *DB) GetUserLoginInfo(ctx context.Context, phone string) (info entity.UserLoginInfo, err error) {
	ctx, span := s.startSpan(ctx, "GetUserLoginInfo")
	defer func() { s.endSpan(span, err) }()

	var (
		status      int16
		lockedUntil pgtype.Timestamptz
	)

	err = s.conn.QueryRow(ctx,
		`SELECT u.id, u.phone_number, u.status, u.failed_login_attempts, u.locked_until, c.password
		 FROM users u
		 JOIN user_credentials c ON c.user_id = u.id
		 WHERE u.phone_number = $1 AND u.deleted_at IS NULL`,
		phone,
	).Scan(&info.ID, &info.PhoneNumber, &status,
		&info.FailedLoginAttempts, &lockedUntil, &info.Password)
	if err != nil {
		return entity.UserLoginInfo{}, s.mapError(err)
	}

	info.Status = entity.UserStatus(status)
	if lockedUntil.Valid {
		info.LockedUntil = lo.ToPtr(lockedUntil.Time)
	}

	return info, nil
}

// GetCodeByUserNumber returns the newest unused code matching the digits
// the user typed. Expiry is not filtered here; the caller decides what an
// expired match means.
func (s *DB) GetCodeByUserNumber(ctx context.Context, userID int64, number string) (code entity.Code, err error) {
	ctx, span := s.startSpan(ctx, "GetCodeByUserNumber")
	defer func() { s.endSpan(span, err) }()

	var purpose int16

	err = s.conn.QueryRow(ctx,
		`SELECT id, user_id, number, purpose, created_at, expires_at, is_used
		 FROM auth_codes
		 WHERE user_id = $1 AND number = $2 AND NOT is_used
		 ORDER BY created_at DESC
		 LIMIT 1`,
		userID, number,
	).Scan(&code.ID, &code.UserID, &code.Number, &purpose,
		&code.CreatedAt, &code.ExpiresAt, &code.IsUsed)
	if err != nil {
		return entity.Code{}, s.mapError(err)
	}

	code.Purpose = entity.CodePurpose(purpose)
	return code, nil
}

// GetActiveCode returns the newest unused, unexpired code for the account.
func (s *DB) GetActiveCode(ctx context.Context, userID int64, now time.Time) (code entity.Code, err error) {
	ctx, span := s.startSpan(ctx, "GetActiveCode")
	defer func() { s.endSpan(span, err) }()

	var purpose int16

	err = s.conn.QueryRow(ctx,
		`SELECT id, user_id, number, purpose, created_at, expires_at, is_used
		 FROM auth_codes
		 WHERE user_id = $1 AND NOT is_used AND expires_at > $2
		 ORDER BY created_at DESC
		 LIMIT 1`,
		userID, now,
	).Scan(&code.ID, &code.UserID, &code.Number, &purpose,
		&code.CreatedAt, &code.ExpiresAt, &code.IsUsed)
	if err != nil {
		return entity.Code{}, s.mapError(err)
	}

	code.Purpose = entity.CodePurpose(purpose)
	return code, nil
}
