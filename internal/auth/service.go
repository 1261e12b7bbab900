package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nyashahama/scas-screening-backend/internal/db"
	"github.com/nyashahama/scas-screening-backend/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned by Login for an unknown email or a wrong
// password; the two cases are not distinguished.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// UserStore is the persistence the service needs. *store.Store satisfies it.
type UserStore interface {
	RegisterUser(ctx context.Context, p store.RegisterUserParams) (db.User, error)
	FindUserByEmail(ctx context.Context, email string) (db.User, error)
}

// Session is a signed token plus the profile it was issued for.
type Session struct {
	Token string
	User  db.User
}

// Service registers and logs in users.
type Service struct {
	users  UserStore
	issuer *Issuer
	cost   int
}

// NewService returns a Service hashing with bcrypt.DefaultCost.
func NewService(users UserStore, issuer *Issuer) *Service {
	return &Service{users: users, issuer: issuer, cost: bcrypt.DefaultCost}
}

// Issuer exposes the token issuer for middleware wiring.
func (s *Service) Issuer() *Issuer { return s.issuer }

// Register validates in, stores a student account and signs a token for it.
// Validation failures and a taken email are returned as *FieldError.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Session, error) {
	reg, err := ValidateRegistration(in)
	if err != nil {
		return Session{}, err
	}

	hash, err := HashPassword(reg.Password, s.cost)
	if err != nil {
		return Session{}, err
	}

	u, err := s.users.RegisterUser(ctx, store.RegisterUserParams{
		Fullname:     reg.Fullname,
		Email:        reg.Email,
		Role:         db.UserRoleStudent,
		PasswordHash: hash,
		Gender:       reg.Gender,
		Age:          reg.Age,
	})
	if errors.Is(err, store.ErrEmailTaken) {
		return Session{}, &FieldError{Field: "email", Message: "already registered", Err: err}
	}
	if err != nil {
		return Session{}, fmt.Errorf("auth: register: %w", err)
	}

	token, err := s.issuer.Sign(u)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, User: u}, nil
}

// Login checks the password and signs a token.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return Session{}, ErrInvalidCredentials
	}

	u, err := s.users.FindUserByEmail(ctx, email)
	if errors.Is(err, store.ErrUserNotFound) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, fmt.Errorf("auth: login: %w", err)
	}
	if !CheckPassword(u.PasswordHash, password) {
		return Session{}, ErrInvalidCredentials
	}

	token, err := s.issuer.Sign(u)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, User: u}, nil
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("auth: hash password: %w", err)
	}
	return string(b), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
