package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers every reason a presented token is refused.
var ErrInvalidToken = errors.New("invalid token")

// TokenUser is the user part of the token payload.
type TokenUser struct {
	ID string `json:"id"`
}

// Claims is the signed payload: {"user":{"id":...}} plus jti/iat/exp.
type Claims struct {
	User TokenUser `json:"user"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies HS256 tokens bound to a session.
type Tokens struct {
	secret   []byte
	ttl      time.Duration
	sessions Sessions
	now      func() time.Time
}

// NewTokens returns an issuer. A zero ttl issues tokens without an expiry.
func NewTokens(secret string, ttl time.Duration, sessions Sessions) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl, sessions: sessions, now: time.Now}
}

// Issue opens a session for userID and returns the signed token.
func (t *Tokens) Issue(ctx context.Context, userID string) (string, error) {
	sid, err := t.sessions.Create(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}

	now := t.now()
	claims := Claims{
		User: TokenUser{ID: userID},
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       sid,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if t.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(t.ttl))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		t.sessions.Delete(ctx, sid)
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature, expiry and session of raw. Any token problem
// wraps ErrInvalidToken; other errors come from the session registry.
func (t *Tokens) Verify(ctx context.Context, raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.User.ID == "" || claims.ID == "" {
		return nil, fmt.Errorf("%w: missing user or session", ErrInvalidToken)
	}

	active, err := t.sessions.Active(ctx, claims.ID, claims.User.ID)
	if err != nil {
		return nil, fmt.Errorf("session lookup: %w", err)
	}
	if !active {
		return nil, fmt.Errorf("%w: session revoked", ErrInvalidToken)
	}
	return claims, nil
}

// Revoke ends the session behind claims.
func (t *Tokens) Revoke(ctx context.Context, claims *Claims) error {
	if err := t.sessions.Delete(ctx, claims.ID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
