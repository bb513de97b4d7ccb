package mining

import (
	"github.com/ZanzyTHEbar/husrm/husrm/indexing"
	"github.com/ZanzyTHEbar/husrm/husrm/metrics"
	"github.com/ZanzyTHEbar/husrm/husrm/sequence"
)

// expandRight grows the consequent of ant ==> cons with every item larger
// than its last consequent item. The antecedent, and therefore its support,
// is unchanged.
func (r *run) expandRight(table *utilityTable, ant, cons []sequence.Item, sidsAnt indexing.SequenceIDSet) error {
	r.stats.RightExpansions++
	r.collector.Expansion(metrics.DirectionRight)

	maxA, maxC := ant[len(ant)-1], cons[len(cons)-1]
	tables := make(tableSet[utilityTable])
	for _, parent := range table.rows {
		s := r.db.Sequence(parent.sid)
		r.extendAfterBeta(tables, s, parent, maxC)
		r.extendBeforeBeta(tables, s, parent, maxA, maxC)
	}

	tight := r.cfg.Strategies.TightBounds
	for _, item := range tables.items() {
		t := tables[item]
		newCons := appendItem(cons, item)
		if err := r.emit(ant, newCons, t.support(), sidsAnt.Size(), t.totalUtility); err != nil {
			return err
		}

		left, right := t.bounds(tight)
		if left >= r.minUtil && len(ant) < r.cfg.MaxAntecedent {
			if err := r.expandFirstLeft(t, ant, newCons, sidsAnt); err != nil {
				return err
			}
		}
		if right >= r.minUtil && len(newCons) < r.cfg.MaxConsequent {
			if err := r.expandRight(t, ant, newCons, sidsAnt); err != nil {
				return err
			}
		}
	}
	r.observer.Sample()
	return nil
}

// extendAfterBeta adds candidates found at or after beta; beta stays put.
// Right-only items between the old and the new largest consequent item are
// no longer usable on the right.
func (r *run) extendAfterBeta(tables tableSet[utilityTable], s *sequence.Sequence, parent row, maxC sequence.Item) {
	for pos := parent.beta; pos < s.Len(); pos++ {
		is := s.Itemsets[pos]
		for j, item := range is.Items {
			if item <= maxC {
				continue
			}
			u := is.Utilities[j]
			skipped := sumItems(s, parent.beta, s.Len(), func(w sequence.Item) bool {
				return w > maxC && w < item
			})
			tables.get(item).add(row{
				sid:     parent.sid,
				utility: parent.utility + u,
				lutil:   parent.lutil,
				rutil:   parent.rutil - u - skipped,
				lrutil:  parent.lrutil,
				alpha:   parent.alpha,
				beta:    parent.beta,
			})
		}
	}
}

// extendBeforeBeta adds candidates found strictly between alpha and beta.
// The candidate's itemset becomes the new beta, so left-only items from there
// on stop counting toward lutil.
func (r *run) extendBeforeBeta(tables tableSet[utilityTable], s *sequence.Sequence, parent row, maxA, maxC sequence.Item) {
	var leftUntil float64
	for pos := parent.beta - 1; pos > parent.alpha; pos-- {
		is := s.Itemsets[pos]
		for j, item := range is.Items {
			u := is.Utilities[j]
			kind := classify(item, maxA, maxC)
			switch kind {
			case sideLeft:
				leftUntil += u
				continue
			case sideNone:
				continue
			}

			lostRight := sumItems(s, pos, parent.beta, func(w sequence.Item) bool {
				return w < item && classify(w, maxA, maxC) == sideRight
			})
			next := row{
				sid:     parent.sid,
				utility: parent.utility + u,
				lutil:   parent.lutil - leftUntil,
				alpha:   parent.alpha,
				beta:    pos,
			}
			if kind == sideRight {
				gained := sumItems(s, pos, parent.beta, func(w sequence.Item) bool {
					return w > item && classify(w, maxA, maxC) == sideBoth
				})
				next.lrutil = parent.lrutil
				next.rutil = parent.rutil - u + gained - lostRight
			} else {
				next.lrutil = parent.lrutil - u
				next.rutil = parent.rutil - lostRight
			}
			tables.get(item).add(next)
		}
	}
}
