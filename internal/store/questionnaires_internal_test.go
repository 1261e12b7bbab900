package store

import (
	"database/sql"
	"testing"

	"github.com/nyashahama/scas-screening-backend/internal/db"
	"github.com/nyashahama/scas-screening-backend/internal/scoring"
)

func TestToScoringItem_KnownTags(t *testing.T) {
	tagged, err := toScoringItem(db.QuestionnaireItem{
		ID: 7, ItemNumber: 3, Prompt: "I feel scared", IsScored: true,
		Subscale: sql.NullString{String: "PHB", Valid: true},
	})
	if err != nil {
		t.Fatalf("tagged item: %v", err)
	}
	if tagged.Subscale != scoring.SubscalePHB || tagged.Number != 3 || !tagged.Scored {
		t.Errorf("tagged item: %+v", tagged)
	}

	filler, err := toScoringItem(db.QuestionnaireItem{ID: 11, ItemNumber: 11, Prompt: "I am good at sports"})
	if err != nil {
		t.Fatalf("filler item: %v", err)
	}
	if filler.Subscale != scoring.SubscaleNone {
		t.Errorf("filler subscale: %q", filler.Subscale)
	}
}

func TestToScoringItem_UnknownTagRejected(t *testing.T) {
	_, err := toScoringItem(db.QuestionnaireItem{
		ID: 9, ItemNumber: 9, Prompt: "x", IsScored: true,
		Subscale: sql.NullString{String: "XYZ", Valid: true},
	})
	if err == nil {
		t.Fatal("expected an error for an unknown subscale tag")
	}
}
