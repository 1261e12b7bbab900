// Package auth issues and verifies bearer tokens, hashes passwords, and
// validates registrations.
package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/nyashahama/scas-screening-backend/internal/db"
)

// DefaultTokenTTL is the token lifetime when none is configured.
const DefaultTokenTTL = 2 * time.Hour

var (
	// ErrTokenExpired is returned for a well-formed token past its exp.
	ErrTokenExpired = errors.New("auth: token expired")
	// ErrTokenInvalid covers every other verification failure.
	ErrTokenInvalid = errors.New("auth: invalid token")
)

// Claims is the token payload. The JSON names are part of the API: clients
// decode them to show the profile.
type Claims struct {
	ID       string      `json:"id"`
	Email    string      `json:"email"`
	Role     db.UserRole `json:"role"`
	Fullname string      `json:"fullname"`
	jwt.RegisteredClaims
}

// UserID parses the id claim.
func (c *Claims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.ID)
}

// IsAdmin reports whether the token carries the admin role.
func (c *Claims) IsAdmin() bool { return c.Role == db.UserRoleAdmin }

// Issuer signs and verifies HS256 tokens with a shared secret.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer returns an Issuer. ttl <= 0 selects DefaultTokenTTL.
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL is the lifetime of issued tokens.
func (i *Issuer) TTL() time.Duration { return i.ttl }

// Sign issues a token for u.
func (i *Issuer) Sign(u db.User) (string, error) {
	now := i.now()
	claims := Claims{
		ID:       u.ID.String(),
		Email:    u.Email,
		Role:     u.Role,
		Fullname: u.Fullname,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token. iat and exp are required and only
// HS256 is accepted.
func (i *Issuer) Verify(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{},
		func(*jwt.Token) (interface{}, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(i.now),
	)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, ErrTokenExpired
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	c, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || c.IssuedAt == nil {
		return nil, ErrTokenInvalid
	}
	if _, err := c.UserID(); err != nil {
		return nil, fmt.Errorf("%w: bad id claim", ErrTokenInvalid)
	}
	return c, nil
}
