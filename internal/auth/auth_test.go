package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nyashahama/scas-screening-backend/internal/db"
	"github.com/nyashahama/scas-screening-backend/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// ─── STUBS ───────────────────────────────────────────────────────────────────

type memUsers struct {
	byEmail map[string]db.User
	err     error
}

func newMemUsers() *memUsers { return &memUsers{byEmail: map[string]db.User{}} }

func (m *memUsers) RegisterUser(_ context.Context, p store.RegisterUserParams) (db.User, error) {
	if m.err != nil {
		return db.User{}, m.err
	}
	if _, ok := m.byEmail[p.Email]; ok {
		return db.User{}, store.ErrEmailTaken
	}
	u := db.User{ID: uuid.New(), Fullname: p.Fullname, Email: p.Email, Role: p.Role, PasswordHash: p.PasswordHash}
	m.byEmail[p.Email] = u
	return u, nil
}

func (m *memUsers) FindUserByEmail(_ context.Context, email string) (db.User, error) {
	if m.err != nil {
		return db.User{}, m.err
	}
	u, ok := m.byEmail[email]
	if !ok {
		return db.User{}, store.ErrUserNotFound
	}
	return u, nil
}

func newTestService() (*Service, *memUsers) {
	users := newMemUsers()
	svc := NewService(users, NewIssuer("test-secret", time.Hour))
	svc.cost = bcrypt.MinCost
	return svc, users
}

func validInput() RegisterInput {
	return RegisterInput{Fullname: "María José", Email: "Maria.Jose@Gmail.com", Password: "secret1", Gender: "F", Age: "13"}
}

// ─── ValidateRegistration ────────────────────────────────────────────────────

func TestValidateRegistration(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*RegisterInput)
		wantField string
	}{
		{"valid", func(*RegisterInput) {}, ""},
		{"valid without gender", func(in *RegisterInput) { in.Gender = "" }, ""},
		{"valid hotmail", func(in *RegisterInput) { in.Email = "ana_99@hotmail.com" }, ""},
		{"name with digits", func(in *RegisterInput) { in.Fullname = "Ana 2" }, "fullname"},
		{"blank name", func(in *RegisterInput) { in.Fullname = "   " }, "fullname"},
		{"email starting with digit", func(in *RegisterInput) { in.Email = "1ana@gmail.com" }, "email"},
		{"email other domain", func(in *RegisterInput) { in.Email = "ana@yahoo.com" }, "email"},
		{"age not a number", func(in *RegisterInput) { in.Age = "trece" }, "age"},
		{"age too young", func(in *RegisterInput) { in.Age = "11" }, "age"},
		{"age too old", func(in *RegisterInput) { in.Age = "16" }, "age"},
		{"password too short", func(in *RegisterInput) { in.Password = "12345" }, "password"},
		{"password too long", func(in *RegisterInput) { in.Password = "12345678901" }, "password"},
		{"bad gender", func(in *RegisterInput) { in.Gender = "X" }, "gender"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			reg, err := ValidateRegistration(in)

			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if reg.Email != strings.ToLower(strings.TrimSpace(in.Email)) {
					t.Errorf("email not normalized: %q", reg.Email)
				}
				return
			}
			var fe *FieldError
			if !errors.As(err, &fe) {
				t.Fatalf("expected *FieldError, got %v", err)
			}
			if fe.Field != tt.wantField {
				t.Errorf("field: got %q, want %q", fe.Field, tt.wantField)
			}
		})
	}
}

// ─── Tokens ──────────────────────────────────────────────────────────────────

func TestIssuer_SignVerifyRoundTrip(t *testing.T) {
	iss := NewIssuer("s3cret", time.Hour)
	u := db.User{ID: uuid.New(), Email: "ana@gmail.com", Role: db.UserRoleAdmin, Fullname: "Ana"}

	tok, err := iss.Sign(u)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	c, err := iss.Verify(tok)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	id, _ := c.UserID()
	if id != u.ID || c.Email != u.Email || !c.IsAdmin() || c.Fullname != "Ana" {
		t.Errorf("claims: %+v", c)
	}
	if c.ExpiresAt.Sub(c.IssuedAt.Time) != time.Hour {
		t.Errorf("ttl: got %v", c.ExpiresAt.Sub(c.IssuedAt.Time))
	}
}

func TestIssuer_Expired(t *testing.T) {
	iss := NewIssuer("s3cret", time.Hour)
	base := time.Now()
	iss.now = func() time.Time { return base }
	tok, err := iss.Sign(db.User{ID: uuid.New(), Role: db.UserRoleStudent})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	iss.now = func() time.Time { return base.Add(2 * time.Hour) }
	if _, err := iss.Verify(tok); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}

func TestIssuer_RejectsForeignSecretAndGarbage(t *testing.T) {
	tok, err := NewIssuer("one", time.Hour).Sign(db.User{ID: uuid.New()})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if _, err := NewIssuer("two", time.Hour).Verify(tok); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("foreign secret: expected ErrTokenInvalid, got %v", err)
	}
	if _, err := NewIssuer("one", time.Hour).Verify("not.a.token"); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("garbage: expected ErrTokenInvalid, got %v", err)
	}
}

func TestNewIssuer_DefaultTTL(t *testing.T) {
	if got := NewIssuer("x", 0).TTL(); got != DefaultTokenTTL {
		t.Errorf("TTL: got %v, want %v", got, DefaultTokenTTL)
	}
}

// ─── Service ─────────────────────────────────────────────────────────────────

func TestRegisterThenLogin(t *testing.T) {
	svc, users := newTestService()
	ctx := context.Background()

	sess, err := svc.Register(ctx, validInput())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if sess.User.Role != db.UserRoleStudent || sess.Token == "" {
		t.Errorf("session: %+v", sess)
	}
	stored := users.byEmail["maria.jose@gmail.com"]
	if stored.PasswordHash == "" || stored.PasswordHash == "secret1" {
		t.Error("password must be stored hashed")
	}

	login, err := svc.Login(ctx, "  MARIA.JOSE@gmail.com ", "secret1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if login.User.ID != sess.User.ID {
		t.Error("login returned a different user")
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	if _, err := svc.Register(ctx, validInput()); err != nil {
		t.Fatalf("first: %v", err)
	}

	_, err := svc.Register(ctx, validInput())
	var fe *FieldError
	if !errors.As(err, &fe) || fe.Field != "email" {
		t.Fatalf("expected email FieldError, got %v", err)
	}
	if !errors.Is(err, store.ErrEmailTaken) {
		t.Error("expected ErrEmailTaken in chain")
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	if _, err := svc.Register(ctx, validInput()); err != nil {
		t.Fatalf("Register: %v", err)
	}

	for _, tc := range []struct{ email, password string }{
		{"maria.jose@gmail.com", "wrong12"},
		{"nobody@gmail.com", "secret1"},
		{"", ""},
	} {
		if _, err := svc.Login(ctx, tc.email, tc.password); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("%q/%q: expected ErrInvalidCredentials, got %v", tc.email, tc.password, err)
		}
	}
}

func TestLogin_StoreFailureIsNotCredentialError(t *testing.T) {
	svc, users := newTestService()
	users.err = errors.New("db down")
	_, err := svc.Login(context.Background(), "ana@gmail.com", "secret1")
	if err == nil || errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected infrastructure error, got %v", err)
	}
}
