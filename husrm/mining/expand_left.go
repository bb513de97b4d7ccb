package mining

import (
	"github.com/ZanzyTHEbar/husrm/husrm/indexing"
	"github.com/ZanzyTHEbar/husrm/husrm/metrics"
	"github.com/ZanzyTHEbar/husrm/husrm/sequence"
)

// betaIndex maps a sequence id to the itemset of the first consequent item.
// It is built on first use from the two-sided table the left expansions
// started from, and shared by every deeper left expansion.
type betaIndex struct {
	rows  []row
	betas map[int]int
}

func (b *betaIndex) get(sid int) int {
	if b.betas == nil {
		b.betas = make(map[int]int, len(b.rows))
		for _, rw := range b.rows {
			b.betas[rw.sid] = rw.beta
		}
	}
	return b.betas[sid]
}

// expandFirstLeft switches from two-sided rows to left-only rows: the
// consequent is final from here on.
func (r *run) expandFirstLeft(table *utilityTable, ant, cons []sequence.Item, sidsAnt indexing.SequenceIDSet) error {
	r.stats.LeftExpansions++
	r.collector.Expansion(metrics.DirectionLeft)

	maxA := ant[len(ant)-1]
	tight := r.cfg.Strategies.TightBounds
	tables := make(tableSet[leftTable])
	for _, parent := range table.rows {
		base := parent.lutil + parent.lrutil
		if !tight {
			base += parent.rutil
		}
		collectLeft(tables, r.db.Sequence(parent.sid), parent.sid, parent.beta, maxA, parent.utility, base)
	}

	betas := &betaIndex{rows: table.rows}
	if err := r.evaluateLeft(tables, ant, cons, sidsAnt, betas); err != nil {
		return err
	}
	r.observer.Sample()
	return nil
}

func (r *run) expandSecondLeft(table *leftTable, ant, cons []sequence.Item, sidsAnt indexing.SequenceIDSet, betas *betaIndex) error {
	r.stats.LeftExpansions++
	r.collector.Expansion(metrics.DirectionLeft)

	maxA := ant[len(ant)-1]
	tables := make(tableSet[leftTable])
	for _, parent := range table.rows {
		beta := betas.get(parent.sid)
		collectLeft(tables, r.db.Sequence(parent.sid), parent.sid, beta, maxA, parent.utility, parent.lutil)
	}

	if err := r.evaluateLeft(tables, ant, cons, sidsAnt, betas); err != nil {
		return err
	}
	r.observer.Sample()
	return nil
}

// collectLeft adds one row per item larger than maxA found before beta.
// Items between maxA and the candidate can no longer join the antecedent.
func collectLeft(tables tableSet[leftTable], s *sequence.Sequence, sid, beta int, maxA sequence.Item, utility, lutil float64) {
	for pos := 0; pos < beta; pos++ {
		is := s.Itemsets[pos]
		for j, item := range is.Items {
			if item <= maxA {
				continue
			}
			u := is.Utilities[j]
			skipped := sumItems(s, 0, beta, func(w sequence.Item) bool {
				return w > maxA && w < item
			})
			tables.get(item).add(leftRow{
				sid:     sid,
				utility: utility + u,
				lutil:   lutil - u - skipped,
			})
		}
	}
}

func (r *run) evaluateLeft(tables tableSet[leftTable], ant, cons []sequence.Item, sidsAnt indexing.SequenceIDSet, betas *betaIndex) error {
	for _, item := range tables.items() {
		t := tables[item]
		newAnt := appendItem(ant, item)
		high := t.totalUtility >= r.minUtil
		expand := t.bound() >= r.minUtil && len(newAnt) < r.cfg.MaxAntecedent
		if !high && !expand {
			continue
		}

		sidsNew := sidsAnt.Intersect(r.index.Get(item))
		if err := r.emit(newAnt, cons, t.support(), sidsNew.Size(), t.totalUtility); err != nil {
			return err
		}
		if expand {
			if err := r.expandSecondLeft(t, newAnt, cons, sidsNew, betas); err != nil {
				return err
			}
		}
	}
	return nil
}
