package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/nyashahama/scas-screening-backend/internal/db"
)

// ─── INPUT TYPES ─────────────────────────────────────────────────────────────

// RegisterUserParams carries an already validated registration. PasswordHash
// is the bcrypt hash, never the plaintext.
type RegisterUserParams struct {
	Fullname     string
	Email        string
	Role         db.UserRole
	PasswordHash string
	Gender       string // "M", "F" or empty
	Age          int    // 0 means unknown
}

// ─── ERRORS ──────────────────────────────────────────────────────────────────

// ErrEmailTaken is returned when the email is already registered.
var ErrEmailTaken = errors.New("store: email already registered")

// ErrUserNotFound is returned when no user matches the lookup.
var ErrUserNotFound = errors.New("store: user not found")

// uniqueViolation is the Postgres SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// ─── METHODS ─────────────────────────────────────────────────────────────────

// RegisterUser inserts a user. Emails are stored lower-cased so that lookups
// and the unique constraint agree. A concurrent registration of the same
// email surfaces as ErrEmailTaken rather than a raw constraint error.
func (s *Store) RegisterUser(ctx context.Context, p RegisterUserParams) (db.User, error) {
	role := p.Role
	if role == "" {
		role = db.UserRoleStudent
	}

	u, err := s.q.CreateUser(ctx, db.CreateUserParams{
		Fullname:     strings.TrimSpace(p.Fullname),
		Email:        strings.ToLower(strings.TrimSpace(p.Email)),
		Role:         role,
		PasswordHash: p.PasswordHash,
		Gender:       sql.NullString{String: p.Gender, Valid: p.Gender != ""},
		Age:          sql.NullInt16{Int16: int16(p.Age), Valid: p.Age > 0},
	})
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return db.User{}, ErrEmailTaken
		}
		return db.User{}, fmt.Errorf("RegisterUser: %w", err)
	}
	return u, nil
}

// EnsureAdmin creates the bootstrap administrator unless an admin already
// exists. created reports whether a row was inserted.
func (s *Store) EnsureAdmin(ctx context.Context, fullname, email, passwordHash string) (u db.User, created bool, err error) {
	err = s.withTx(ctx, func(ctx context.Context, q db.Querier) error {
		existing, err := q.GetFirstAdmin(ctx)
		if err == nil {
			u = existing
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("EnsureAdmin: find admin: %w", err)
		}

		u, err = q.CreateUser(ctx, db.CreateUserParams{
			Fullname:     fullname,
			Email:        strings.ToLower(strings.TrimSpace(email)),
			Role:         db.UserRoleAdmin,
			PasswordHash: passwordHash,
		})
		if err != nil {
			return fmt.Errorf("EnsureAdmin: create admin: %w", err)
		}
		created = true
		return nil
	})
	if err != nil {
		return db.User{}, false, err
	}
	return u, created, nil
}

// FindUserByEmail looks a user up case-insensitively.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (db.User, error) {
	u, err := s.q.GetUserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, sql.ErrNoRows) {
		return db.User{}, ErrUserNotFound
	}
	if err != nil {
		return db.User{}, fmt.Errorf("FindUserByEmail: %w", err)
	}
	return u, nil
}
