// Package api implements the HTTP layer for the SCAS screening service.
// Handlers are methods on *Server. Each handler file is responsible for one
// resource group and only imports the dependencies it actually uses.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/nyashahama/scas-screening-backend/internal/auth"
	"github.com/nyashahama/scas-screening-backend/internal/cache"
	"github.com/nyashahama/scas-screening-backend/internal/classifier"
	"github.com/nyashahama/scas-screening-backend/internal/db"
	"github.com/nyashahama/scas-screening-backend/internal/scoring"
	"github.com/nyashahama/scas-screening-backend/internal/screening"
	"github.com/nyashahama/scas-screening-backend/internal/store"
)

// Config holds values read from environment variables at startup.
type Config struct {
	// Env is "production", "staging", or "development".
	Env string

	// AllowedOrigin is the CORS origin in production. Empty means "*".
	AllowedOrigin string
}

// ─── COLLABORATORS ───────────────────────────────────────────────────────────

// Screener runs the submission pipeline. *screening.Service satisfies it.
type Screener interface {
	Submit(ctx context.Context, userID uuid.UUID, raw []scoring.RawAnswer) (screening.Result, error)
	Preview(ctx context.Context, raw []scoring.RawAnswer) (screening.Result, error)
}

// Records reads stored submissions. *store.Store satisfies it.
type Records interface {
	History(ctx context.Context, userID uuid.UUID, questionnaireID int32) ([]db.Submission, error)
	SubmissionDetail(ctx context.Context, id uuid.UUID) (store.SubmissionDetail, error)
}

// ModelControl exposes the serving classifier. *classifier.Classifier
// satisfies it.
type ModelControl interface {
	Status() classifier.Status
	Reload(ctx context.Context) (classifier.Status, error)
}

// Retrainer runs a synchronous training pass. *worker.Runner satisfies it.
type Retrainer interface {
	RunNow(ctx context.Context) (classifier.TrainResult, error)
}

// Pinger reports database reachability for /healthz. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Deps groups the Server's collaborators. Every field is required except DB
// and Cache.
type Deps struct {
	Querier   db.Querier
	Records   Records
	Accounts  *auth.Service
	Items     screening.ItemSource
	Screener  Screener
	Model     ModelControl
	Retrainer Retrainer
	Cache     cache.Cache
	DB        Pinger
}

// Server holds all shared dependencies. Each handler file attaches methods to
// this type and uses only the fields it needs.
type Server struct {
	// q handles single-query reads for the admin views. Injected directly, no
	// repo wrapper.
	q db.Querier

	// records reads multi-query submission views.
	records Records

	// accounts registers users and issues tokens; its issuer verifies them.
	accounts *auth.Service
	issuer   *auth.Issuer

	items     screening.ItemSource
	screener  Screener
	model     ModelControl
	retrainer Retrainer

	// cache holds the admin dashboard; never nil.
	cache cache.Cache
	db    Pinger

	cfg    Config
	logger *slog.Logger
}

// NewServer constructs the Server and wires the chi router. The returned
// http.Handler is ready to pass to http.Server.
func NewServer(deps Deps, cfg Config, logger *slog.Logger) http.Handler {
	c := deps.Cache
	if c == nil {
		c = cache.NewNoopCache()
	}
	s := &Server{
		q:         deps.Querier,
		records:   deps.Records,
		accounts:  deps.Accounts,
		issuer:    deps.Accounts.Issuer(),
		items:     deps.Items,
		screener:  deps.Screener,
		model:     deps.Model,
		retrainer: deps.Retrainer,
		cache:     c,
		db:        deps.DB,
		cfg:       cfg,
		logger:    logger,
	}

	return s.routes()
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	// ── Global middleware ─────────────────────────────────────────────────────
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggerMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(s.corsMiddleware)
	r.Use(middleware.Timeout(30 * time.Second))

	// ── Health ────────────────────────────────────────────────────────────────
	r.Get("/healthz", s.handleHealthz)

	// ── Accounts ─────────────────────────────────────────────────────────────
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
		r.With(s.requireAuth).Get("/me", s.handleMe)
	})

	// ── Admin dashboard (legacy path, with and without trailing slash) ───────
	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth, s.requireRole(db.UserRoleAdmin))
		r.Get("/students", s.handleListStudents)
		r.Get("/students/", s.handleListStudents)
	})

	// ── API v1 ────────────────────────────────────────────────────────────────
	r.Route("/api", func(r chi.Router) {
		r.Use(s.requireAuth)

		// Survey: any authenticated user.
		r.Route("/survey/scas", func(r chi.Router) {
			r.Get("/", s.handleGetQuestionnaire)
			r.Post("/submit", s.handleSubmit)
			r.Post("/preview", s.handlePreview)
			r.Get("/history", s.handleHistory)
		})

		// Admin: admin role only.
		r.Route("/admin", func(r chi.Router) {
			r.Use(s.requireRole(db.UserRoleAdmin))
			r.Get("/students", s.handleListStudents)
			r.Get("/students/{userID}/submissions", s.handleStudentSubmissions)
			r.Get("/submissions/{submissionID}", s.handleSubmissionDetail)
			r.Get("/model", s.handleModelStatus)
			r.Post("/model/train", s.handleTrainModel)
			r.Post("/model/reload", s.handleReloadModel)
		})
	})

	return r
}

// handleHealthz returns 200, or 503 when the database is unreachable.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.PingContext(ctx); err != nil {
			s.logger.Warn("healthz: database unreachable", "error", err, logField(r))
			respondErr(w, http.StatusServiceUnavailable, "database unreachable")
			return
		}
	}
	respond(w, http.StatusOK, map[string]string{"status": "ok"})
}
