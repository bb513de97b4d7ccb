package mining

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/ZanzyTHEbar/husrm/husrm/sequence"
)

var ErrRuleMismatch = errors.New("rule measures do not match the database")

const verifyTolerance = 1e-9

// Measures are the exact statistics of a rule, computed by scanning every sequence.
type Measures struct {
	Support           int
	AntecedentSupport int
	Utility           float64
}

// Confidence returns Support / AntecedentSupport, or 0 when the antecedent never occurs.
func (m Measures) Confidence() float64 {
	if m.AntecedentSupport == 0 {
		return 0
	}
	return float64(m.Support) / float64(m.AntecedentSupport)
}

// Measure computes the rule's measures by brute force. A sequence supports
// the rule when every antecedent item occurs in an itemset strictly before
// every consequent item.
func Measure(db *sequence.Database, ant, cons []sequence.Item) Measures {
	var m Measures
	for _, s := range db.Sequences {
		lastAnt, antUtil, ok := locateAll(s, ant, func(pos, best int) bool { return pos > best }, -1)
		if !ok {
			continue
		}
		m.AntecedentSupport++
		firstCons, consUtil, ok := locateAll(s, cons, func(pos, best int) bool { return pos < best }, s.Len())
		if !ok || lastAnt >= firstCons {
			continue
		}
		m.Support++
		m.Utility += antUtil + consUtil
	}
	return m
}

// locateAll finds every item in s and returns the extreme position chosen by
// better together with the items' summed utility.
func locateAll(s *sequence.Sequence, items []sequence.Item, better func(pos, best int) bool, start int) (int, float64, bool) {
	best := start
	var utility float64
	for _, item := range items {
		pos, idx, ok := s.Locate(item)
		if !ok {
			return 0, 0, false
		}
		if better(pos, best) {
			best = pos
		}
		utility += s.Itemsets[pos].Utilities[idx]
	}
	return best, utility, true
}

// VerifyingSink checks every rule against the database before forwarding it.
// The database must be the one that was mined; item pruning leaves the
// measures of every reported rule unchanged.
type VerifyingSink struct {
	db   *sequence.Database
	next RuleSink
}

func NewVerifyingSink(db *sequence.Database, next RuleSink) *VerifyingSink {
	return &VerifyingSink{db: db, next: next}
}

func (v *VerifyingSink) Emit(r Rule) error {
	m := Measure(v.db, r.Antecedent, r.Consequent)
	if m.Support != r.Support ||
		!scalar.EqualWithinAbsOrRel(m.Confidence(), r.Confidence, verifyTolerance, verifyTolerance) ||
		!scalar.EqualWithinAbsOrRel(m.Utility, r.Utility, verifyTolerance, verifyTolerance) {
		return fmt.Errorf("%w: %s reported sup=%d conf=%s util=%s, expected sup=%d conf=%s util=%s",
			ErrRuleMismatch, r.Key(),
			r.Support, FormatNumber(r.Confidence), FormatNumber(r.Utility),
			m.Support, FormatNumber(m.Confidence()), FormatNumber(m.Utility))
	}
	if v.next == nil {
		return nil
	}
	return v.next.Emit(r)
}
