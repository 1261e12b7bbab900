// Package scoring implements the SCAS scoring pipeline: answer normalization,
// total and subscale aggregation, and the rule-based severity classifier. It is
// intentionally dependency-free: it imports nothing from internal/ and can be
// tested without a database.
package scoring

import "sort"

// Subscale is one of the six SCAS symptom categories an item may contribute
// to. The zero value means the item carries no subscale tag.
type Subscale string

const (
	SubscaleNone Subscale = ""
	SubscaleGAD  Subscale = "GAD" // generalised anxiety
	SubscaleSOC  Subscale = "SOC" // social phobia
	SubscaleOCD  Subscale = "OCD" // obsessive-compulsive
	SubscalePAA  Subscale = "PAA" // panic / agoraphobia
	SubscalePHB  Subscale = "PHB" // physical injury fears
	SubscaleSAD  Subscale = "SAD" // separation anxiety
)

// Subscales lists the six tags in feature order.
var Subscales = []Subscale{SubscaleGAD, SubscaleSOC, SubscaleOCD, SubscalePAA, SubscalePHB, SubscaleSAD}

// Valid reports whether s is one of the six known tags or SubscaleNone.
func (s Subscale) Valid() bool {
	if s == SubscaleNone {
		return true
	}
	for _, known := range Subscales {
		if s == known {
			return true
		}
	}
	return false
}

// Item is the scoring-relevant metadata of one questionnaire prompt.
type Item struct {
	ID       int32  // questionnaire_items.id
	Number   int    // ordinal position, 1..44; the public item identifier
	Prompt   string // display text
	Scored   bool
	Subscale Subscale
}

// Questionnaire is an immutable, ordered set of items. Build it with
// NewQuestionnaire so the lookup index is populated.
type Questionnaire struct {
	ID    int32
	Code  string
	Title string

	items []Item
	index map[int]Item
}

// NewQuestionnaire copies items, orders them by Number and indexes them.
// Later duplicates of the same Number replace earlier ones.
func NewQuestionnaire(id int32, code, title string, items []Item) Questionnaire {
	index := make(map[int]Item, len(items))
	for _, it := range items {
		index[it.Number] = it
	}
	ordered := make([]Item, 0, len(index))
	for _, it := range index {
		ordered = append(ordered, it)
	}
	sort.Slice(ordered, func(a, b int) bool { return ordered[a].Number < ordered[b].Number })

	return Questionnaire{ID: id, Code: code, Title: title, items: ordered, index: index}
}

// Items returns the items ordered by Number. The slice must not be modified.
func (q Questionnaire) Items() []Item { return q.items }

// Lookup returns the item with the given number.
func (q Questionnaire) Lookup(number int) (Item, bool) {
	it, ok := q.index[number]
	return it, ok
}

// Len is the number of items.
func (q Questionnaire) Len() int { return len(q.items) }

// ScoredCount is the number of items that contribute to the total.
func (q Questionnaire) ScoredCount() int {
	n := 0
	for _, it := range q.items {
		if it.Scored {
			n++
		}
	}
	return n
}

// MaxTotal is the highest total a complete submission can reach.
func (q Questionnaire) MaxTotal() int { return q.ScoredCount() * MaxValue }
