// Package screening sequences a submission through the pipeline:
// normalize → score → rule label → model verdict, with duplicate suppression
// and atomic persistence in between.
package screening

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nyashahama/scas-screening-backend/internal/classifier"
	"github.com/nyashahama/scas-screening-backend/internal/db"
	"github.com/nyashahama/scas-screening-backend/internal/scoring"
	"github.com/nyashahama/scas-screening-backend/internal/store"
)

// DefaultDuplicateWindow coalesces rapid resubmissions such as a double click.
const DefaultDuplicateWindow = 5 * time.Second

// ─── ERRORS ──────────────────────────────────────────────────────────────────

// ErrUnknownRespondent is returned when the caller's id has no user row.
var ErrUnknownRespondent = errors.New("screening: unknown respondent")

// ValidationError rejects a submission before anything is persisted. Reason
// is safe to show to the client.
type ValidationError struct {
	Reason string
	Err    error
}

func (e *ValidationError) Error() string { return "screening: " + e.Reason }
func (e *ValidationError) Unwrap() error { return e.Err }

// ─── COLLABORATORS ───────────────────────────────────────────────────────────

// ItemSource supplies the questionnaire definition.
type ItemSource interface {
	Questionnaire(ctx context.Context) (scoring.Questionnaire, error)
}

// Respondents resolves an authenticated id to a user row.
type Respondents interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (db.User, error)
}

// SubmissionStore runs fn with exclusive access to one respondent's history.
type SubmissionStore interface {
	WithRespondentLock(ctx context.Context, userID uuid.UUID, fn func(ctx context.Context, l store.Ledger) error) error
}

// Classifier produces the model verdict. *classifier.Classifier satisfies it.
type Classifier interface {
	Classify(ctx context.Context, v scoring.ScoreVector) classifier.Output
}

// Observer is notified after a new (non-duplicate) submission is committed.
// It runs synchronously and must not block; failures are its own concern.
type Observer interface {
	SubmissionAccepted(ctx context.Context, r Result)
}

// ─── RESULT ──────────────────────────────────────────────────────────────────

// Result is everything the caller learns about a submission.
type Result struct {
	SubmissionID uuid.UUID
	UserID       uuid.UUID
	Vector       scoring.ScoreVector
	Level        scoring.Level
	Model        classifier.Output
	Duplicate    bool
	SubmittedAt  time.Time
}

// ─── SERVICE ─────────────────────────────────────────────────────────────────

// Service is the submission orchestrator. Construct it once and share it.
type Service struct {
	items       ItemSource
	respondents Respondents
	submissions SubmissionStore
	classifier  Classifier
	observers   []Observer
	window      time.Duration
	now         func() time.Time
	logger      *slog.Logger
}

// Option customizes a Service.
type Option func(*Service)

// WithDuplicateWindow overrides DefaultDuplicateWindow. Zero disables
// duplicate suppression.
func WithDuplicateWindow(d time.Duration) Option {
	return func(s *Service) { s.window = d }
}

// WithClock injects the time source used for created_at and the window check.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithObserver registers an Observer.
func WithObserver(o Observer) Option {
	return func(s *Service) { s.observers = append(s.observers, o) }
}

// NewService wires the orchestrator.
func NewService(items ItemSource, respondents Respondents, submissions SubmissionStore, c Classifier, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		items:       items,
		respondents: respondents,
		submissions: submissions,
		classifier:  c,
		window:      DefaultDuplicateWindow,
		now:         time.Now,
		logger:      logger,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Submit normalizes, scores, persists and classifies one submission.
//
// A submission arriving within the duplicate window of the respondent's
// previous one is not stored; the previous record's id and scores are
// returned with Duplicate set. The check and the insert run under a
// per-respondent lock, so concurrent resubmissions cannot both be stored.
//
// Errors: *ValidationError for an unknown respondent or an unusable answer
// set (nothing is persisted); any other error is a persistence failure.
func (s *Service) Submit(ctx context.Context, userID uuid.UUID, raw []scoring.RawAnswer) (Result, error) {
	if _, err := s.respondents.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Result{}, &ValidationError{Reason: "unknown respondent", Err: ErrUnknownRespondent}
		}
		return Result{}, fmt.Errorf("screening: resolve respondent: %w", err)
	}

	q, err := s.items.Questionnaire(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("screening: load questionnaire: %w", err)
	}

	answers, err := scoring.Normalize(q, raw)
	if err != nil {
		return Result{}, &ValidationError{Reason: "no valid answers", Err: err}
	}
	vec := scoring.Score(q, answers)

	res := Result{UserID: userID}
	err = s.submissions.WithRespondentLock(ctx, userID, func(ctx context.Context, l store.Ledger) error {
		now := s.now()

		if s.window > 0 {
			last, found, err := l.LatestSubmission(ctx, userID, q.ID)
			if err != nil {
				return err
			}
			if found && now.Sub(last.CreatedAt) < s.window {
				res.SubmissionID = last.ID
				res.Vector = store.VectorOf(last)
				res.SubmittedAt = last.CreatedAt
				res.Duplicate = true
				return nil
			}
		}

		sub, err := l.InsertSubmission(ctx, store.NewSubmission{
			UserID:        userID,
			Questionnaire: q,
			Answers:       answers,
			Vector:        vec,
			CreatedAt:     now,
		})
		if err != nil {
			return err
		}
		res.SubmissionID = sub.ID
		res.Vector = vec
		res.SubmittedAt = sub.CreatedAt
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("screening: persist submission: %w", err)
	}

	res.Level = scoring.ClassifyTotal(res.Vector.Total)
	res.Model = s.classifier.Classify(ctx, res.Vector)

	if res.Duplicate {
		s.logger.Info("screening: duplicate submission coalesced",
			"user_id", userID,
			"submission_id", res.SubmissionID,
		)
		return res, nil
	}

	s.logger.Info("screening: submission accepted",
		"user_id", userID,
		"submission_id", res.SubmissionID,
		"answers", len(answers),
		"total", res.Vector.Total,
		"level", res.Level,
		"model_source", res.Model.Source,
	)
	for _, o := range s.observers {
		o.SubmissionAccepted(ctx, res)
	}
	return res, nil
}

// Preview scores answers without persisting or resolving a respondent.
func (s *Service) Preview(ctx context.Context, raw []scoring.RawAnswer) (Result, error) {
	q, err := s.items.Questionnaire(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("screening: load questionnaire: %w", err)
	}
	answers, err := scoring.Normalize(q, raw)
	if err != nil {
		return Result{}, &ValidationError{Reason: "no valid answers", Err: err}
	}
	vec := scoring.Score(q, answers)
	return Result{
		Vector: vec,
		Level:  scoring.ClassifyTotal(vec.Total),
		Model:  s.classifier.Classify(ctx, vec),
	}, nil
}
