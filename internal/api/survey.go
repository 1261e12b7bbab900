package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nyashahama/scas-screening-backend/internal/classifier"
	"github.com/nyashahama/scas-screening-backend/internal/db"
	"github.com/nyashahama/scas-screening-backend/internal/scoring"
	"github.com/nyashahama/scas-screening-backend/internal/screening"
	"github.com/nyashahama/scas-screening-backend/internal/store"
)

// ─── GET /api/survey/scas ────────────────────────────────────────────────────

type questionnaireView struct {
	ID    int32  `json:"id"`
	Code  string `json:"code"`
	Title string `json:"title"`
}

type itemView struct {
	ID         int32   `json:"id"`
	ItemNumber int     `json:"item_number"`
	Prompt     string  `json:"prompt"`
	IsScored   bool    `json:"is_scored"`
	Subscale   *string `json:"subscale"`
}

func subscalePtr(s scoring.Subscale) *string {
	if s == scoring.SubscaleNone {
		return nil
	}
	v := string(s)
	return &v
}

// handleGetQuestionnaire returns the questionnaire metadata and its items in
// display order.
func (s *Server) handleGetQuestionnaire(w http.ResponseWriter, r *http.Request) {
	q, err := s.items.Questionnaire(r.Context())
	if errors.Is(err, store.ErrQuestionnaireNotFound) {
		respondErr(w, http.StatusNotFound, "questionnaire not found")
		return
	}
	if err != nil {
		s.respondInternalErr(w, r, err)
		return
	}

	items := make([]itemView, 0, q.Len())
	for _, it := range q.Items() {
		items = append(items, itemView{
			ID:         it.ID,
			ItemNumber: it.Number,
			Prompt:     it.Prompt,
			IsScored:   it.Scored,
			Subscale:   subscalePtr(it.Subscale),
		})
	}

	respond(w, http.StatusOK, map[string]any{
		"survey": questionnaireView{ID: q.ID, Code: q.Code, Title: q.Title},
		"items":  items,
	})
}

// ─── POST /api/survey/scas/submit ────────────────────────────────────────────

type answerInput struct {
	ItemID json.RawMessage `json:"item_id"`
	Value  json.RawMessage `json:"value"`
}

type submitRequest struct {
	Answers []answerInput `json:"answers"`
}

func (req submitRequest) raw() []scoring.RawAnswer {
	out := make([]scoring.RawAnswer, len(req.Answers))
	for i, a := range req.Answers {
		out[i] = scoring.RawAnswer{ItemID: a.ItemID, Value: a.Value}
	}
	return out
}

type submitResponse struct {
	ResponseID  string                 `json:"response_id,omitempty"`
	TotalScore  int                    `json:"total_score"`
	Subscales   scoring.SubscaleScores `json:"subscales"`
	Level       scoring.Level          `json:"level"`
	ML          classifier.Output      `json:"ml"`
	Duplicate   bool                   `json:"duplicate"`
	SubmittedAt *time.Time             `json:"submitted_at,omitempty"`
}

func newSubmitResponse(res screening.Result) submitResponse {
	out := submitResponse{
		TotalScore: res.Vector.Total,
		Subscales:  res.Vector.Subscales,
		Level:      res.Level,
		ML:         res.Model,
		Duplicate:  res.Duplicate,
	}
	if !res.SubmittedAt.IsZero() {
		out.ResponseID = res.SubmissionID.String()
		at := res.SubmittedAt.UTC()
		out.SubmittedAt = &at
	}
	return out
}

// handleSubmit scores and stores the caller's answers. A resubmission inside
// the duplicate window returns the earlier record with duplicate=true.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if !decode(w, r, &req) {
		return
	}

	claims, _ := claimsFrom(r.Context())
	userID, err := claims.UserID()
	if err != nil {
		respondErr(w, http.StatusUnauthorized, "invalid token")
		return
	}

	res, err := s.screener.Submit(r.Context(), userID, req.raw())
	if s.respondScreeningErr(w, r, err) {
		return
	}

	respond(w, http.StatusOK, newSubmitResponse(res))
}

// ─── POST /api/survey/scas/preview ───────────────────────────────────────────

// handlePreview scores answers without storing anything.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if !decode(w, r, &req) {
		return
	}

	res, err := s.screener.Preview(r.Context(), req.raw())
	if s.respondScreeningErr(w, r, err) {
		return
	}
	respond(w, http.StatusOK, newSubmitResponse(res))
}

// respondScreeningErr writes the response for a non-nil pipeline error and
// reports whether it did.
func (s *Server) respondScreeningErr(w http.ResponseWriter, r *http.Request, err error) bool {
	if err == nil {
		return false
	}
	var ve *screening.ValidationError
	if errors.As(err, &ve) {
		respondErr(w, http.StatusBadRequest, ve.Reason)
		return true
	}
	if errors.Is(err, store.ErrQuestionnaireNotFound) {
		respondErr(w, http.StatusNotFound, "questionnaire not found")
		return true
	}
	s.respondInternalErr(w, r, err)
	return true
}

// ─── GET /api/survey/scas/history ────────────────────────────────────────────

type submissionView struct {
	ID         string                 `json:"id"`
	TotalScore int                    `json:"total_score"`
	Subscales  scoring.SubscaleScores `json:"subscales"`
	Level      scoring.Level          `json:"level"`
	CreatedAt  time.Time              `json:"created_at"`
}

func newSubmissionView(sub db.Submission) submissionView {
	v := store.VectorOf(sub)
	return submissionView{
		ID:         sub.ID.String(),
		TotalScore: v.Total,
		Subscales:  v.Subscales,
		Level:      scoring.ClassifyTotal(v.Total),
		CreatedAt:  sub.CreatedAt.UTC(),
	}
}

func newSubmissionViews(subs []db.Submission) []submissionView {
	out := make([]submissionView, 0, len(subs))
	for _, sub := range subs {
		out = append(out, newSubmissionView(sub))
	}
	return out
}

// handleHistory lists the caller's own submissions, newest first.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())
	userID, err := claims.UserID()
	if err != nil {
		respondErr(w, http.StatusUnauthorized, "invalid token")
		return
	}

	q, err := s.items.Questionnaire(r.Context())
	if err != nil {
		s.respondInternalErr(w, r, fmt.Errorf("history: load questionnaire: %w", err))
		return
	}

	subs, err := s.records.History(r.Context(), userID, q.ID)
	if err != nil {
		s.respondInternalErr(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"submissions": newSubmissionViews(subs)})
}
