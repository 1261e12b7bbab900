package api

import (
	"errors"
	"net/http"

	"github.com/nyashahama/scas-screening-backend/internal/auth"
	"github.com/nyashahama/scas-screening-backend/internal/cache"
	"github.com/nyashahama/scas-screening-backend/internal/db"
)

// ─── SHAPES ──────────────────────────────────────────────────────────────────

type registerRequest struct {
	Fullname string      `json:"fullname"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Gender   string      `json:"gender"`
	Age      looseString `json:"age"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	OK       bool        `json:"ok"`
	Token    string      `json:"token,omitempty"`
	ID       string      `json:"id"`
	Email    string      `json:"email"`
	Role     db.UserRole `json:"role"`
	Fullname string      `json:"fullname"`
}

func newSessionResponse(sess auth.Session) sessionResponse {
	return sessionResponse{
		OK:       true,
		Token:    sess.Token,
		ID:       sess.User.ID.String(),
		Email:    sess.User.Email,
		Role:     sess.User.Role,
		Fullname: sess.User.Fullname,
	}
}

// ─── POST /auth/register ─────────────────────────────────────────────────────

// handleRegister creates a student account and signs the caller in. The
// first failing field is reported as {"ok":false,"error":…,"field":…}.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decode(w, r, &req) {
		return
	}

	sess, err := s.accounts.Register(r.Context(), auth.RegisterInput{
		Fullname: req.Fullname,
		Email:    req.Email,
		Password: req.Password,
		Gender:   req.Gender,
		Age:      string(req.Age),
	})
	var fe *auth.FieldError
	if errors.As(err, &fe) {
		respond(w, http.StatusBadRequest, map[string]any{
			"ok":    false,
			"error": fe.Message,
			"field": fe.Field,
		})
		return
	}
	if err != nil {
		s.respondInternalErr(w, r, err)
		return
	}

	// A new student changes the admin list and headcount.
	if err := s.cache.Invalidate(r.Context(), cache.KeyStudentList, cache.KeyDashboardStats); err != nil {
		s.logger.Warn("register: cache invalidate failed", "error", err, logField(r))
	}

	s.logger.Info("account registered", "user_id", sess.User.ID, logField(r))
	respond(w, http.StatusCreated, newSessionResponse(sess))
}

// ─── POST /auth/login ────────────────────────────────────────────────────────

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decode(w, r, &req) {
		return
	}

	sess, err := s.accounts.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		respond(w, http.StatusUnauthorized, map[string]any{"ok": false, "error": "invalid email or password"})
		return
	}
	if err != nil {
		s.respondInternalErr(w, r, err)
		return
	}

	respond(w, http.StatusOK, newSessionResponse(sess))
}

// ─── GET /auth/me ────────────────────────────────────────────────────────────

// handleMe echoes the verified token claims.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	c, _ := claimsFrom(r.Context())
	respond(w, http.StatusOK, sessionResponse{
		OK:       true,
		ID:       c.ID,
		Email:    c.Email,
		Role:     c.Role,
		Fullname: c.Fullname,
	})
}
