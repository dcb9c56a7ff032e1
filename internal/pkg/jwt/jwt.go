package jwt

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidSigningMethod is returned when a token was signed with an
	// unsupported algorithm.
	ErrInvalidSigningMethod = errors.New("invalid JWT signing method")

	// ErrSigningKeyTooShort is returned when the HS512 key is shorter than
	// 64 bytes.
	ErrSigningKeyTooShort = errors.New("HS512 signing key must be at least 64 bytes (512 bits)")

	// ErrTokenExpired is returned for tokens past their expiry.
	ErrTokenExpired = errors.New("JWT token has expired")

	// ErrInvalidToken is returned when a token is malformed or fails
	// validation.
	ErrInvalidToken = errors.New("invalid token")
)

// JWT issues and checks access tokens for authenticated users.
type JWT interface {
	// Generate creates a signed token carrying the user id and phone number.
	Generate(uid int64, phone string) (string, error)
	// Verify parses the token, validates it, and returns its claims.
	Verify(tokenStr string) (Claims, error)
}

type clocker interface {
	Now() time.Time
}

type generator interface {
	Generate() string
}

// Config carries everything needed to build a token implementation.
type Config struct {
	// Secret is the HMAC signing key.
	Secret []byte
	// Issuer is stamped into the iss claim.
	Issuer string
	// Audiences are the accepted aud values.
	Audiences []string
	// TTLMinutes is how long an issued token stays valid.
	TTLMinutes time.Duration
	// Clock supplies the current time.
	Clock clocker
	// UUID generates token IDs.
	UUID generator
}

// Claims extends the registered claim set with the authenticated user.
type Claims struct {
	jwt.RegisteredClaims
	// UserID is the authenticated user identifier.
	UserID int64 `json:"user_id,string"`
	// UserPhone is the authenticated user mobile number.
	UserPhone string `json:"user_phone"`
}

type jwtContextKey struct{}

// SetAuth stores verified claims in the context for downstream handlers.
func SetAuth(ctx context.Context, clm Claims) context.Context {
	return context.WithValue(ctx, jwtContextKey{}, clm)
}

// GetAuth returns the claims stored by SetAuth, or nil when absent.
func GetAuth(ctx context.Context) *Claims {
	clm, ok := ctx.Value(jwtContextKey{}).(Claims)
	if !ok {
		return nil
	}

	return &clm
}
