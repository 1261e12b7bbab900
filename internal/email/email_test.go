package email

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nyashahama/scas-screening-backend/internal/classifier"
	"github.com/nyashahama/scas-screening-backend/internal/db"
	"github.com/nyashahama/scas-screening-backend/internal/scoring"
	"github.com/nyashahama/scas-screening-backend/internal/screening"
)

// ─── STUBS ───────────────────────────────────────────────────────────────────

type recordingSender struct {
	mu    sync.Mutex
	calls []HighLevelAlertParams
	err   error
}

func (r *recordingSender) SendHighLevelAlert(_ context.Context, p HighLevelAlertParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, p)
	return r.err
}

func (r *recordingSender) sent() []HighLevelAlertParams {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]HighLevelAlertParams(nil), r.calls...)
}

type stubUsers struct{ u db.User }

func (s stubUsers) GetUserByID(context.Context, uuid.UUID) (db.User, error) { return s.u, nil }

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func highResult() screening.Result {
	return screening.Result{
		SubmissionID: uuid.New(),
		UserID:       uuid.New(),
		Vector:       scoring.ScoreVector{Total: 90},
		Level:        scoring.LevelHigh,
		Model:        classifier.RuleOutput(scoring.LevelHigh),
		SubmittedAt:  time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
	}
}

// ─── resendClient ────────────────────────────────────────────────────────────

func TestResendClient_SendsAuthorizedJSON(t *testing.T) {
	var got resendRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"email_1"}`))
	}))
	defer srv.Close()

	c := newResendClient("re_key", "alertas@colegio.edu", "SCAS", "https://scas.example/", srv.URL)
	err := c.SendHighLevelAlert(context.Background(), HighLevelAlertParams{
		To:           "consejeria@colegio.edu",
		StudentName:  "Ana <b>",
		StudentEmail: "ana@gmail.com",
		SubmissionID: "abc",
		Total:        90,
		MaxTotal:     114,
		ModelLabel:   "high",
		ModelSource:  "model",
	})
	if err != nil {
		t.Fatalf("SendHighLevelAlert: %v", err)
	}

	if auth != "Bearer re_key" {
		t.Errorf("Authorization: got %q", auth)
	}
	if got.From != "SCAS <alertas@colegio.edu>" || len(got.To) != 1 || got.To[0] != "consejeria@colegio.edu" {
		t.Errorf("envelope: %+v", got)
	}
	if !strings.Contains(got.HTML, "Ana &lt;b&gt;") {
		t.Error("student name must be HTML-escaped")
	}
	if !strings.Contains(got.HTML, "https://scas.example/api/admin/submissions/abc") {
		t.Error("detail link missing")
	}
	if !strings.Contains(got.HTML, "90 / 114") {
		t.Error("score missing from body")
	}
}

func TestResendClient_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":{"name":"validation_error","message":"bad from","statusCode":422}}`))
	}))
	defer srv.Close()

	c := newResendClient("k", "a@b.c", "n", "", srv.URL)
	err := c.SendHighLevelAlert(context.Background(), HighLevelAlertParams{To: "x@y.z"})
	if err == nil || !strings.Contains(err.Error(), "validation_error") {
		t.Errorf("expected Resend error, got %v", err)
	}
}

func TestResendClient_NonJSONFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer srv.Close()

	c := newResendClient("k", "a@b.c", "n", "", srv.URL)
	if err := c.SendHighLevelAlert(context.Background(), HighLevelAlertParams{To: "x@y.z"}); err == nil {
		t.Error("expected error for non-JSON 502")
	}
}

// ─── AlertObserver ───────────────────────────────────────────────────────────

func TestAlertObserver_SendsOnlyForHigh(t *testing.T) {
	sender := &recordingSender{}
	users := stubUsers{u: db.User{Fullname: "Ana", Email: "ana@gmail.com"}}
	obs := NewAlertObserver(sender, users, "consejeria@colegio.edu", 114, discardLogger())

	low := highResult()
	low.Level = scoring.LevelLow
	obs.SubmissionAccepted(context.Background(), low)
	obs.SubmissionAccepted(context.Background(), highResult())

	if err := obs.Wait(context.Background()); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	calls := sender.sent()
	if len(calls) != 1 {
		t.Fatalf("sent %d alerts, want 1", len(calls))
	}
	if calls[0].StudentName != "Ana" || calls[0].Total != 90 || calls[0].MaxTotal != 114 || calls[0].ModelSource != "rule" {
		t.Errorf("params: %+v", calls[0])
	}
}

func TestAlertObserver_DisabledWithoutRecipient(t *testing.T) {
	sender := &recordingSender{}
	obs := NewAlertObserver(sender, stubUsers{}, "", 114, discardLogger())
	obs.SubmissionAccepted(context.Background(), highResult())
	_ = obs.Wait(context.Background())
	if n := len(sender.sent()); n != 0 {
		t.Errorf("sent %d alerts with no recipient", n)
	}
}

func TestAlertObserver_SendFailureIsSwallowed(t *testing.T) {
	sender := &recordingSender{err: errors.New("smtp down")}
	obs := NewAlertObserver(sender, stubUsers{}, "x@y.z", 114, discardLogger())
	obs.SubmissionAccepted(context.Background(), highResult())
	if err := obs.Wait(context.Background()); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if n := len(sender.sent()); n != 1 {
		t.Errorf("attempts: got %d, want 1", n)
	}
}
