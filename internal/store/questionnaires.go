package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/nyashahama/scas-screening-backend/internal/db"
	"github.com/nyashahama/scas-screening-backend/internal/scoring"
)

// ErrQuestionnaireNotFound is returned when the questionnaire code has not
// been seeded.
var ErrQuestionnaireNotFound = errors.New("store: questionnaire not found")

// EnsureQuestionnaire upserts the SCAS questionnaire and its 44 items in one
// transaction and returns the stored definition. Running it again updates
// prompts and tags in place, so item ids stay stable across restarts.
func (s *Store) EnsureQuestionnaire(ctx context.Context) (scoring.Questionnaire, error) {
	var out scoring.Questionnaire

	err := s.withTx(ctx, func(ctx context.Context, q db.Querier) error {
		qn, err := q.UpsertQuestionnaire(ctx, db.UpsertQuestionnaireParams{
			Code:        scoring.SCASCode,
			Title:       scoring.SCASTitle,
			Description: sql.NullString{String: scoring.SCASDescription, Valid: true},
			MinAge:      sql.NullInt16{Int16: scoring.SCASMinAge, Valid: true},
			MaxAge:      sql.NullInt16{Int16: scoring.SCASMaxAge, Valid: true},
		})
		if err != nil {
			return fmt.Errorf("EnsureQuestionnaire: upsert questionnaire: %w", err)
		}

		defs := scoring.SCASItems()
		items := make([]scoring.Item, 0, len(defs))
		for _, d := range defs {
			row, err := q.UpsertQuestionnaireItem(ctx, db.UpsertQuestionnaireItemParams{
				QuestionnaireID: qn.ID,
				ItemNumber:      int32(d.Number),
				Prompt:          d.Prompt,
				IsScored:        d.Scored,
				Subscale:        sql.NullString{String: string(d.Subscale), Valid: d.Subscale != scoring.SubscaleNone},
			})
			if err != nil {
				return fmt.Errorf("EnsureQuestionnaire: upsert item %d: %w", d.Number, err)
			}
			item, err := toScoringItem(row)
			if err != nil {
				return fmt.Errorf("EnsureQuestionnaire: %w", err)
			}
			items = append(items, item)
		}

		out = scoring.NewQuestionnaire(qn.ID, qn.Code, qn.Title, items)
		return nil
	})
	if err != nil {
		return scoring.Questionnaire{}, err
	}
	return out, nil
}

// LoadQuestionnaire reads a questionnaire and its items by code.
func (s *Store) LoadQuestionnaire(ctx context.Context, code string) (scoring.Questionnaire, error) {
	qn, err := s.q.GetQuestionnaireByCode(ctx, code)
	if errors.Is(err, sql.ErrNoRows) {
		return scoring.Questionnaire{}, ErrQuestionnaireNotFound
	}
	if err != nil {
		return scoring.Questionnaire{}, fmt.Errorf("LoadQuestionnaire: get %s: %w", code, err)
	}

	rows, err := s.q.ListQuestionnaireItems(ctx, qn.ID)
	if err != nil {
		return scoring.Questionnaire{}, fmt.Errorf("LoadQuestionnaire: list items: %w", err)
	}
	items := make([]scoring.Item, 0, len(rows))
	for _, r := range rows {
		item, err := toScoringItem(r)
		if err != nil {
			return scoring.Questionnaire{}, fmt.Errorf("LoadQuestionnaire: %w", err)
		}
		items = append(items, item)
	}
	return scoring.NewQuestionnaire(qn.ID, qn.Code, qn.Title, items), nil
}

// toScoringItem rejects subscale tags the scorer does not know.
func toScoringItem(r db.QuestionnaireItem) (scoring.Item, error) {
	tag := scoring.Subscale(r.Subscale.String)
	if !tag.Valid() {
		return scoring.Item{}, fmt.Errorf("item %d: unknown subscale %q", r.ItemNumber, r.Subscale.String)
	}
	return scoring.Item{
		ID:       r.ID,
		Number:   int(r.ItemNumber),
		Prompt:   r.Prompt,
		Scored:   r.IsScored,
		Subscale: tag,
	}, nil
}

// ─── CACHED LOADER ───────────────────────────────────────────────────────────

// QuestionnaireLoader memoizes LoadQuestionnaire for one code. The definition
// only changes through seeding, which runs before the server starts.
// A failed load is not cached.
type QuestionnaireLoader struct {
	store *Store
	code  string

	mu     sync.Mutex
	loaded bool
	q      scoring.Questionnaire
}

// NewQuestionnaireLoader returns a loader for code.
func NewQuestionnaireLoader(s *Store, code string) *QuestionnaireLoader {
	return &QuestionnaireLoader{store: s, code: code}
}

// Questionnaire returns the cached definition, loading it on first use.
func (l *QuestionnaireLoader) Questionnaire(ctx context.Context) (scoring.Questionnaire, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.loaded {
		return l.q, nil
	}
	q, err := l.store.LoadQuestionnaire(ctx, l.code)
	if err != nil {
		return scoring.Questionnaire{}, err
	}
	l.q, l.loaded = q, true
	return q, nil
}

// Prime installs an already loaded definition, typically the one returned by
// EnsureQuestionnaire at startup.
func (l *QuestionnaireLoader) Prime(q scoring.Questionnaire) {
	l.mu.Lock()
	l.q, l.loaded = q, true
	l.mu.Unlock()
}
