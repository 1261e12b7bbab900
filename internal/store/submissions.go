package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nyashahama/scas-screening-backend/internal/db"
	"github.com/nyashahama/scas-screening-backend/internal/scoring"
)

// ─── INPUT TYPES ─────────────────────────────────────────────────────────────

// NewSubmission is a scored submission ready to be written. Answers must
// already be normalized against Questionnaire.
type NewSubmission struct {
	UserID        uuid.UUID
	Questionnaire scoring.Questionnaire
	Answers       []scoring.Answer
	Vector        scoring.ScoreVector
	CreatedAt     time.Time
}

// SubmissionDetail is one stored submission with its respondent and answers.
type SubmissionDetail struct {
	Submission db.Submission
	User       db.User
	Items      []db.ListSubmissionItemsRow
}

// ─── ERRORS ──────────────────────────────────────────────────────────────────

// ErrSubmissionNotFound is returned when a submission id does not exist.
var ErrSubmissionNotFound = errors.New("store: submission not found")

// ─── LEDGER ──────────────────────────────────────────────────────────────────

// Ledger is the view of submissions available while a respondent lock is
// held. Both calls run in the same transaction.
type Ledger interface {
	// LatestSubmission returns the respondent's newest submission for the
	// questionnaire. found is false when there is none.
	LatestSubmission(ctx context.Context, userID uuid.UUID, questionnaireID int32) (sub db.Submission, found bool, err error)

	// InsertSubmission writes the header row and one row per answer.
	InsertSubmission(ctx context.Context, n NewSubmission) (db.Submission, error)
}

type txLedger struct {
	q db.Querier
}

func (l txLedger) LatestSubmission(ctx context.Context, userID uuid.UUID, questionnaireID int32) (db.Submission, bool, error) {
	sub, err := l.q.GetLatestSubmission(ctx, db.GetLatestSubmissionParams{
		UserID:          userID,
		QuestionnaireID: questionnaireID,
	})
	if errors.Is(err, sql.ErrNoRows) {
		return db.Submission{}, false, nil
	}
	if err != nil {
		return db.Submission{}, false, fmt.Errorf("LatestSubmission: %w", err)
	}
	return sub, true, nil
}

func (l txLedger) InsertSubmission(ctx context.Context, n NewSubmission) (db.Submission, error) {
	sub, err := l.q.CreateSubmission(ctx, db.CreateSubmissionParams{
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
	})
	if err != nil {
		return db.Submission{}, fmt.Errorf("InsertSubmission: create submission: %w", err)
	}

	for _, a := range n.Answers {
		it, ok := n.Questionnaire.Lookup(a.ItemNumber)
		if !ok {
			return db.Submission{}, fmt.Errorf("InsertSubmission: item %d not in questionnaire %s", a.ItemNumber, n.Questionnaire.Code)
		}
		if err := l.q.CreateSubmissionItem(ctx, db.CreateSubmissionItemParams{
			SubmissionID: sub.ID,
			ItemID:       it.ID,
			Value:        int16(a.Value),
		}); err != nil {
			return db.Submission{}, fmt.Errorf("InsertSubmission: create item %d: %w", a.ItemNumber, err)
		}
	}
	return sub, nil
}

// ─── METHODS ─────────────────────────────────────────────────────────────────

// WithRespondentLock runs fn in a read-committed transaction that holds a
// transaction-scoped advisory lock keyed on userID. Concurrent submissions
// from the same respondent are serialized, so the duplicate check in fn sees
// every earlier commit. Submissions from different respondents do not block
// each other.
func (s *Store) WithRespondentLock(ctx context.Context, userID uuid.UUID, fn func(ctx context.Context, l Ledger) error) error {
	return s.withTxOpts(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted}, func(ctx context.Context, q db.Querier) error {
		if err := q.LockRespondent(ctx, userID.String()); err != nil {
			return fmt.Errorf("WithRespondentLock: %w", err)
		}
		return fn(ctx, txLedger{q: q})
	})
}

// History lists a respondent's submissions for a questionnaire, newest first.
func (s *Store) History(ctx context.Context, userID uuid.UUID, questionnaireID int32) ([]db.Submission, error) {
	subs, err := s.q.ListSubmissionsByUser(ctx, db.ListSubmissionsByUserParams{
		UserID:          userID,
		QuestionnaireID: questionnaireID,
	})
	if err != nil {
		return nil, fmt.Errorf("History: %w", err)
	}
	return subs, nil
}

// SubmissionDetail loads a submission, its respondent and its answers.
func (s *Store) SubmissionDetail(ctx context.Context, id uuid.UUID) (SubmissionDetail, error) {
	sub, err := s.q.GetSubmissionByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return SubmissionDetail{}, ErrSubmissionNotFound
	}
	if err != nil {
		return SubmissionDetail{}, fmt.Errorf("SubmissionDetail: get submission: %w", err)
	}

	user, err := s.q.GetUserByID(ctx, sub.UserID)
	if err != nil {
		return SubmissionDetail{}, fmt.Errorf("SubmissionDetail: get user: %w", err)
	}

	items, err := s.q.ListSubmissionItems(ctx, sub.ID)
	if err != nil {
		return SubmissionDetail{}, fmt.Errorf("SubmissionDetail: list items: %w", err)
	}
	return SubmissionDetail{Submission: sub, User: user, Items: items}, nil
}

// VectorOf rebuilds the score vector stored on a submission row.
func VectorOf(s db.Submission) scoring.ScoreVector {
	return scoring.ScoreVector{
		Total: int(s.TotalScore),
		Subscales: scoring.SubscaleScores{
			GAD: int(s.Gad),
			SOC: int(s.Soc),
			OCD: int(s.Ocd),
			PAA: int(s.Paa),
			PHB: int(s.Phb),
			SAD: int(s.Sad),
		},
	}
}
