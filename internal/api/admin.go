package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nyashahama/scas-screening-backend/internal/cache"
	"github.com/nyashahama/scas-screening-backend/internal/classifier"
	"github.com/nyashahama/scas-screening-backend/internal/db"
	"github.com/nyashahama/scas-screening-backend/internal/scoring"
	"github.com/nyashahama/scas-screening-backend/internal/store"
	"github.com/nyashahama/scas-screening-backend/internal/worker"
)

const recentTrainingRuns = 10

// ─── GET /students, /api/admin/students ─────────────────────────────────────

type studentSummary struct {
	ID        string         `json:"id"`
	Fullname  string         `json:"fullname"`
	Email     string         `json:"email"`
	Gender    *string        `json:"gender"`
	Age       *int           `json:"age"`
	Attempts  int64          `json:"attempts"`
	LastScore *int           `json:"last_score"`
	LastDate  *time.Time     `json:"last_date"`
	LastLevel *scoring.Level `json:"last_level"`
}

type dashboardStats struct {
	Students int64   `json:"students"`
	Attempts int64   `json:"attempts"`
	AvgLast  float64 `json:"avg_last"`
}

func newStudentSummary(row db.ListStudentSummariesRow) studentSummary {
	out := studentSummary{
		ID:       row.ID.String(),
		Fullname: row.Fullname,
		Email:    row.Email,
		Attempts: row.Attempts,
	}
	if row.Gender.Valid {
		out.Gender = &row.Gender.String
	}
	if row.Age.Valid {
		age := int(row.Age.Int16)
		out.Age = &age
	}
	if row.LastScore.Valid {
		score := int(row.LastScore.Int32)
		level := scoring.ClassifyTotal(score)
		out.LastScore = &score
		out.LastLevel = &level
	}
	if row.LastDate.Valid {
		at := row.LastDate.Time.UTC()
		out.LastDate = &at
	}
	return out
}

// handleListStudents returns every student with their latest result plus
// dashboard totals. Both halves are served from the cache when present; a
// cache failure falls through to the database.
func (s *Server) handleListStudents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	q, err := s.items.Questionnaire(ctx)
	if err != nil {
		s.respondInternalErr(w, r, fmt.Errorf("students: load questionnaire: %w", err))
		return
	}

	var students []studentSummary
	found, err := s.cache.Get(ctx, cache.KeyStudentList, &students)
	if err != nil {
		s.logger.Warn("students: cache read failed", "error", err, logField(r))
	}
	if !found {
		rows, err := s.q.ListStudentSummaries(ctx, q.ID)
		if err != nil {
			s.respondInternalErr(w, r, fmt.Errorf("students: list: %w", err))
			return
		}
		students = make([]studentSummary, 0, len(rows))
		for _, row := range rows {
			students = append(students, newStudentSummary(row))
		}
		if err := s.cache.Set(ctx, cache.KeyStudentList, students); err != nil {
			s.logger.Warn("students: cache write failed", "error", err, logField(r))
		}
	}

	var stats dashboardStats
	found, err = s.cache.Get(ctx, cache.KeyDashboardStats, &stats)
	if err != nil {
		s.logger.Warn("students: stats cache read failed", "error", err, logField(r))
	}
	if !found {
		row, err := s.q.GetDashboardStats(ctx, q.ID)
		if err != nil {
			s.respondInternalErr(w, r, fmt.Errorf("students: stats: %w", err))
			return
		}
		stats = dashboardStats{Students: row.Students, Attempts: row.Attempts, AvgLast: row.AvgLast}
		if err := s.cache.Set(ctx, cache.KeyDashboardStats, stats); err != nil {
			s.logger.Warn("students: stats cache write failed", "error", err, logField(r))
		}
	}

	respond(w, http.StatusOK, map[string]any{"students": students, "stats": stats})
}

// ─── GET /api/admin/students/{userID}/submissions ───────────────────────────

type userView struct {
	ID       string `json:"id"`
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
}

func newUserView(u db.User) userView {
	return userView{ID: u.ID.String(), Fullname: u.Fullname, Email: u.Email}
}

func (s *Server) handleStudentSubmissions(w http.ResponseWriter, r *http.Request) {
	userID, ok := uuidParam(w, r, "userID")
	if !ok {
		return
	}

	u, err := s.q.GetUserByID(r.Context(), userID)
	if errors.Is(err, sql.ErrNoRows) {
		respondErr(w, http.StatusNotFound, "student not found")
		return
	}
	if err != nil {
		s.respondInternalErr(w, r, err)
		return
	}

	q, err := s.items.Questionnaire(r.Context())
	if err != nil {
		s.respondInternalErr(w, r, err)
		return
	}
	subs, err := s.records.History(r.Context(), userID, q.ID)
	if err != nil {
		s.respondInternalErr(w, r, err)
		return
	}

	respond(w, http.StatusOK, map[string]any{
		"student":     newUserView(u),
		"submissions": newSubmissionViews(subs),
	})
}

// ─── GET /api/admin/submissions/{submissionID} ──────────────────────────────

type itemAnswerView struct {
	ItemNumber int     `json:"item_number"`
	Prompt     string  `json:"prompt"`
	IsScored   bool    `json:"is_scored"`
	Subscale   *string `json:"subscale"`
	Value      int     `json:"value"`
}

func (s *Server) handleSubmissionDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "submissionID")
	if !ok {
		return
	}

	d, err := s.records.SubmissionDetail(r.Context(), id)
	if errors.Is(err, store.ErrSubmissionNotFound) {
		respondErr(w, http.StatusNotFound, "submission not found")
		return
	}
	if err != nil {
		s.respondInternalErr(w, r, err)
		return
	}

	items := make([]itemAnswerView, 0, len(d.Items))
	for _, it := range d.Items {
		v := itemAnswerView{
			ItemNumber: int(it.ItemNumber),
			Prompt:     it.Prompt,
			IsScored:   it.IsScored,
			Value:      int(it.Value),
		}
		if it.Subscale.Valid {
			v.Subscale = &it.Subscale.String
		}
		items = append(items, v)
	}

	respond(w, http.StatusOK, map[string]any{
		"submission": newSubmissionView(d.Submission),
		"student":    newUserView(d.User),
		"items":      items,
	})
}

// ─── MODEL ───────────────────────────────────────────────────────────────────

type trainingRunView struct {
	ID         string          `json:"id"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Samples    int32           `json:"samples"`
	Trained    bool            `json:"trained"`
	Location   *string         `json:"location"`
	Metrics    json.RawMessage `json:"metrics,omitempty"`
}

func newTrainingRunView(run db.TrainingRun) trainingRunView {
	v := trainingRunView{
		ID:         run.ID.String(),
		StartedAt:  run.StartedAt.UTC(),
		FinishedAt: run.FinishedAt.UTC(),
		Samples:    run.Samples,
		Trained:    run.Trained,
	}
	if run.Location.Valid {
		v.Location = &run.Location.String
	}
	if run.Metrics.Valid {
		v.Metrics = run.Metrics.RawMessage
	}
	return v
}

// handleModelStatus reports the serving model and the latest training runs.
func (s *Server) handleModelStatus(w http.ResponseWriter, r *http.Request) {
	runs, err := s.q.ListTrainingRuns(r.Context(), recentTrainingRuns)
	if err != nil {
		s.respondInternalErr(w, r, err)
		return
	}
	views := make([]trainingRunView, 0, len(runs))
	for _, run := range runs {
		views = append(views, newTrainingRunView(run))
	}
	respond(w, http.StatusOK, map[string]any{
		"status": s.model.Status(),
		"runs":   views,
	})
}

// handleTrainModel retrains synchronously. A pass already in flight yields 409.
func (s *Server) handleTrainModel(w http.ResponseWriter, r *http.Request) {
	res, err := s.retrainer.RunNow(r.Context())
	if errors.Is(err, worker.ErrBusy) {
		respondErr(w, http.StatusConflict, "training already in progress")
		return
	}
	if err != nil {
		s.respondInternalErr(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{
		"result": res,
		"status": s.model.Status(),
	})
}

// handleReloadModel re-reads the artifact from its store. On failure the
// previous model stays in service.
func (s *Server) handleReloadModel(w http.ResponseWriter, r *http.Request) {
	st, err := s.model.Reload(r.Context())
	if err != nil {
		s.respondInternalErr(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]classifier.Status{"status": st})
}
