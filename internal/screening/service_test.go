package screening_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nyashahama/scas-screening-backend/internal/classifier"
	"github.com/nyashahama/scas-screening-backend/internal/db"
	"github.com/nyashahama/scas-screening-backend/internal/scoring"
	"github.com/nyashahama/scas-screening-backend/internal/screening"
	"github.com/nyashahama/scas-screening-backend/internal/store"
)

// ─── STUBS ───────────────────────────────────────────────────────────────────

type staticItems struct{ q scoring.Questionnaire }

func (s staticItems) Questionnaire(context.Context) (scoring.Questionnaire, error) { return s.q, nil }

type stubRespondents struct {
	known map[uuid.UUID]bool
	err   error
}

func (s stubRespondents) GetUserByID(_ context.Context, id uuid.UUID) (db.User, error) {
	if s.err != nil {
		return db.User{}, s.err
	}
	if !s.known[id] {
		return db.User{}, sql.ErrNoRows
	}
	return db.User{ID: id, Role: db.UserRoleStudent}, nil
}

// memLedger is an in-memory SubmissionStore. The mutex plays the role of the
// advisory lock.
type memLedger struct {
	mu        sync.Mutex
	rows      []db.Submission
	answers   map[uuid.UUID][]scoring.Answer
	insertErr error
}

func newMemLedger() *memLedger {
	return &memLedger{answers: map[uuid.UUID][]scoring.Answer{}}
}

func (m *memLedger) WithRespondentLock(ctx context.Context, _ uuid.UUID, fn func(context.Context, store.Ledger) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot := len(m.rows)
	if err := fn(ctx, m); err != nil {
		m.rows = m.rows[:snapshot] // rollback
		return err
	}
	return nil
}

func (m *memLedger) LatestSubmission(_ context.Context, userID uuid.UUID, qid int32) (db.Submission, bool, error) {
	for i := len(m.rows) - 1; i >= 0; i-- {
		if r := m.rows[i]; r.UserID == userID && r.QuestionnaireID == qid {
			return r, true, nil
		}
	}
	return db.Submission{}, false, nil
}

func (m *memLedger) InsertSubmission(_ context.Context, n store.NewSubmission) (db.Submission, error) {
	if m.insertErr != nil {
		return db.Submission{}, m.insertErr
	}
	row := db.Submission{
		ID:              uuid.New(),
		UserID:          n.UserID,
		QuestionnaireID: n.Questionnaire.ID,
		TotalScore:      int32(n.Vector.Total),
		Gad:             int32(n.Vector.Subscales.GAD),
		Soc:             int32(n.Vector.Subscales.SOC),
		Ocd:             int32(n.Vector.Subscales.OCD),
		Paa:             int32(n.Vector.Subscales.PAA),
		Phb:             int32(n.Vector.Subscales.PHB),
		Sad:             int32(n.Vector.Subscales.SAD),
		CreatedAt:       n.CreatedAt,
	}
	m.rows = append(m.rows, row)
	m.answers[row.ID] = n.Answers
	return row, nil
}

func (m *memLedger) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

type ruleClassifier struct{}

func (ruleClassifier) Classify(_ context.Context, v scoring.ScoreVector) classifier.Output {
	return classifier.RuleOutput(scoring.ClassifyTotal(v.Total))
}

type recordingObserver struct {
	mu   sync.Mutex
	seen []screening.Result
}

func (o *recordingObserver) SubmissionAccepted(_ context.Context, r screening.Result) {
	o.mu.Lock()
	o.seen = append(o.seen, r)
	o.mu.Unlock()
}

// fakeClock is advanced manually.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// ─── HELPERS ─────────────────────────────────────────────────────────────────

type fixture struct {
	svc      *screening.Service
	ledger   *memLedger
	clock    *fakeClock
	observer *recordingObserver
	userID   uuid.UUID
}

func newFixture(t *testing.T, opts ...screening.Option) *fixture {
	t.Helper()
	userID := uuid.New()
	f := &fixture{
		ledger:   newMemLedger(),
		clock:    &fakeClock{t: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)},
		observer: &recordingObserver{},
		userID:   userID,
	}
	opts = append([]screening.Option{
		screening.WithClock(f.clock.Now),
		screening.WithObserver(f.observer),
	}, opts...)
	f.svc = screening.NewService(
		staticItems{q: scoring.SCASQuestionnaire()},
		stubRespondents{known: map[uuid.UUID]bool{userID: true}},
		f.ledger,
		ruleClassifier{},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		opts...,
	)
	return f
}

func uniform(value int) []scoring.RawAnswer {
	out := make([]scoring.RawAnswer, 0, 44)
	for n := 1; n <= 44; n++ {
		out = append(out, scoring.RawAnswer{
			ItemID: json.RawMessage(fmt.Sprint(n)),
			Value:  json.RawMessage(fmt.Sprint(value)),
		})
	}
	return out
}

// ─── TESTS ───────────────────────────────────────────────────────────────────

func TestSubmit_AllZero(t *testing.T) {
	f := newFixture(t)
	res, err := f.svc.Submit(context.Background(), f.userID, uniform(0))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.Vector.Total != 0 || res.Vector.Subscales.Sum() != 0 {
		t.Errorf("got %+v, want zero vector", res.Vector)
	}
	if res.Level != scoring.LevelLow || res.Duplicate {
		t.Errorf("level=%s duplicate=%v", res.Level, res.Duplicate)
	}
	if res.Model.Source != classifier.SourceRule || res.Model.Probabilities[scoring.LevelLow] != 0.70 {
		t.Errorf("model output: %+v", res.Model)
	}
	if got := len(f.ledger.answers[res.SubmissionID]); got != 44 {
		t.Errorf("stored %d answers, want 44", got)
	}
	if !res.SubmittedAt.Equal(f.clock.Now()) {
		t.Errorf("submitted_at: got %v, want %v", res.SubmittedAt, f.clock.Now())
	}
}

func TestSubmit_AllThreeIsHigh(t *testing.T) {
	f := newFixture(t)
	res, err := f.svc.Submit(context.Background(), f.userID, uniform(3))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.Vector.Total != 114 || res.Level != scoring.LevelHigh {
		t.Errorf("total=%d level=%s, want 114/high", res.Vector.Total, res.Level)
	}
}

func TestSubmit_DuplicateWithinWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Submit(ctx, f.userID, uniform(2))
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	f.clock.Advance(4 * time.Second)

	// Different answers still coalesce into the stored record.
	second, err := f.svc.Submit(ctx, f.userID, uniform(0))
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if !second.Duplicate {
		t.Error("expected duplicate=true")
	}
	if second.SubmissionID != first.SubmissionID {
		t.Errorf("id: got %s, want %s", second.SubmissionID, first.SubmissionID)
	}
	if second.Vector != first.Vector || second.Level != first.Level {
		t.Errorf("scores differ: %+v vs %+v", second.Vector, first.Vector)
	}
	if f.ledger.count() != 1 {
		t.Errorf("stored %d records, want 1", f.ledger.count())
	}
	if len(f.observer.seen) != 1 {
		t.Errorf("observer called %d times, want 1", len(f.observer.seen))
	}
}

func TestSubmit_AfterWindowCreatesNewRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Submit(ctx, f.userID, uniform(1))
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	f.clock.Advance(5 * time.Second)

	second, err := f.svc.Submit(ctx, f.userID, uniform(1))
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if second.Duplicate || second.SubmissionID == first.SubmissionID {
		t.Errorf("expected a new record, got %+v", second)
	}
	if f.ledger.count() != 2 {
		t.Errorf("stored %d records, want 2", f.ledger.count())
	}
}

func TestSubmit_WindowDisabled(t *testing.T) {
	f := newFixture(t, screening.WithDuplicateWindow(0))
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := f.svc.Submit(ctx, f.userID, uniform(1)); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}
	if f.ledger.count() != 3 {
		t.Errorf("stored %d records, want 3", f.ledger.count())
	}
}

func TestSubmit_ConcurrentResubmissionsStoreOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const n = 10
	var wg sync.WaitGroup
	ids := make(chan uuid.UUID, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := f.svc.Submit(ctx, f.userID, uniform(2))
			if err != nil {
				t.Errorf("Submit: %v", err)
				return
			}
			ids <- res.SubmissionID
		}()
	}
	wg.Wait()
	close(ids)

	if f.ledger.count() != 1 {
		t.Fatalf("stored %d records, want 1", f.ledger.count())
	}
	var first uuid.UUID
	for id := range ids {
		if first == uuid.Nil {
			first = id
		}
		if id != first {
			t.Errorf("callers saw different ids: %s vs %s", id, first)
		}
	}
}

func TestSubmit_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		userID  func(f *fixture) uuid.UUID
		answers []scoring.RawAnswer
		wantErr error
	}{
		{
			name:    "unknown respondent",
			userID:  func(*fixture) uuid.UUID { return uuid.New() },
			answers: uniform(1),
			wantErr: screening.ErrUnknownRespondent,
		},
		{
			name:    "empty answers",
			userID:  func(f *fixture) uuid.UUID { return f.userID },
			answers: nil,
			wantErr: scoring.ErrEmptySubmission,
		},
		{
			name:   "only unknown items",
			userID: func(f *fixture) uuid.UUID { return f.userID },
			answers: []scoring.RawAnswer{
				{ItemID: json.RawMessage(`99`), Value: json.RawMessage(`1`)},
			},
			wantErr: scoring.ErrEmptySubmission,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.svc.Submit(context.Background(), tt.userID(f), tt.answers)

			var verr *screening.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v in chain, got %v", tt.wantErr, err)
			}
			if f.ledger.count() != 0 {
				t.Error("nothing may be persisted on validation failure")
			}
		})
	}
}

func TestSubmit_PersistenceErrorIsNotValidation(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("connection reset")
	f.ledger.insertErr = boom

	_, err := f.svc.Submit(context.Background(), f.userID, uniform(1))
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
	var verr *screening.ValidationError
	if errors.As(err, &verr) {
		t.Error("persistence failure must not be a ValidationError")
	}
	if len(f.observer.seen) != 0 {
		t.Error("observer must not run on failure")
	}
}

func TestPreview_DoesNotPersist(t *testing.T) {
	f := newFixture(t)
	res, err := f.svc.Preview(context.Background(), uniform(3))
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if res.Vector.Total != 114 || res.Level != scoring.LevelHigh {
		t.Errorf("got %+v", res)
	}
	if f.ledger.count() != 0 {
		t.Error("Preview must not persist")
	}
}
